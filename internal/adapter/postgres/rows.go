package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

// Rows are decoded by column name, never by position.

const menuItemColumns = `item_id, name, description, category, price, available_quantity, is_available, image_url`

type menuItemRow struct {
	ItemID            int64           `db:"item_id"`
	Name              string          `db:"name"`
	Description       *string         `db:"description"`
	Category          string          `db:"category"`
	Price             decimal.Decimal `db:"price"`
	AvailableQuantity int             `db:"available_quantity"`
	IsAvailable       bool            `db:"is_available"`
	ImageURL          *string         `db:"image_url"`
}

func (r menuItemRow) toDomain() *domain.MenuItem {
	return &domain.MenuItem{
		ID:                r.ItemID,
		Name:              r.Name,
		Description:       r.Description,
		Category:          r.Category,
		Price:             r.Price,
		AvailableQuantity: r.AvailableQuantity,
		IsAvailable:       r.IsAvailable,
		ImageURL:          r.ImageURL,
	}
}

const orderColumns = `order_id, user_id, order_date, status, total_amount, delivery_date, special_instructions, updated_at`

type orderRow struct {
	OrderID             int64           `db:"order_id"`
	UserID              int64           `db:"user_id"`
	OrderDate           time.Time       `db:"order_date"`
	Status              string          `db:"status"`
	TotalAmount         decimal.Decimal `db:"total_amount"`
	DeliveryDate        *time.Time      `db:"delivery_date"`
	SpecialInstructions *string         `db:"special_instructions"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

func (r orderRow) toDomain() *domain.Order {
	return &domain.Order{
		ID:           r.OrderID,
		UserID:       r.UserID,
		Status:       domain.Status(r.Status),
		TotalAmount:  r.TotalAmount,
		Instructions: r.SpecialInstructions,
		CreatedAt:    r.OrderDate,
		UpdatedAt:    r.UpdatedAt,
		DeliveryAt:   r.DeliveryDate,
	}
}

const orderItemColumns = `order_item_id, order_id, item_id, quantity, unit_price, subtotal`

type orderItemRow struct {
	OrderItemID int64           `db:"order_item_id"`
	OrderID     int64           `db:"order_id"`
	ItemID      int64           `db:"item_id"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}

const billingColumns = `bill_id, order_id, user_id, amount, payment_method, payment_status, transaction_id, paid_at, created_at`

type billingRow struct {
	BillID        int64           `db:"bill_id"`
	OrderID       int64           `db:"order_id"`
	UserID        int64           `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod string          `db:"payment_method"`
	PaymentStatus string          `db:"payment_status"`
	TransactionID *string         `db:"transaction_id"`
	PaidAt        time.Time       `db:"paid_at"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r billingRow) toDomain() *domain.Billing {
	return &domain.Billing{
		ID:            r.BillID,
		OrderID:       r.OrderID,
		UserID:        r.UserID,
		Amount:        r.Amount,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		TransactionID: r.TransactionID,
		PaidAt:        r.PaidAt,
		CreatedAt:     r.CreatedAt,
	}
}

func queryMenuItem(ctx context.Context, q Querier, sql string, args ...any) (*domain.MenuItem, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[menuItemRow])
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func queryMenuItems(ctx context.Context, q Querier, sql string, args ...any) ([]*domain.MenuItem, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[menuItemRow])
	if err != nil {
		return nil, err
	}
	items := make([]*domain.MenuItem, 0, len(collected))
	for _, r := range collected {
		items = append(items, r.toDomain())
	}
	return items, nil
}

func queryOrder(ctx context.Context, q Querier, sql string, args ...any) (*domain.Order, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[orderRow])
	if err != nil {
		return nil, err
	}
	order := row.toDomain()

	if order.Items, err = queryOrderItems(ctx, q, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func queryOrderItems(ctx context.Context, q Querier, orderID int64) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY order_item_id`, orderID)
	if err != nil {
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[orderItemRow])
	if err != nil {
		return nil, err
	}
	items := make([]domain.OrderItem, 0, len(collected))
	for _, r := range collected {
		items = append(items, domain.OrderItem{
			ID:        r.OrderItemID,
			OrderID:   r.OrderID,
			ItemID:    r.ItemID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Subtotal:  r.Subtotal,
		})
	}
	return items, nil
}
