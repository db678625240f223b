package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/canteen/internal/config"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type UnitOfWork struct {
	db             DB
	acquireTimeout time.Duration
	txTimeout      time.Duration
}

func NewUnitOfWork(db DB, cfg config.DatabaseConfig) *UnitOfWork {
	return &UnitOfWork{
		db:             db,
		acquireTimeout: cfg.AcquireTimeout,
		txTimeout:      cfg.TxTimeout,
	}
}

// Serializable runs fn in a SERIALIZABLE transaction. Once started, the transaction
// ignores caller cancellation and is bounded by the configured tx timeout instead.
func (u *UnitOfWork) Serializable(ctx context.Context, fn func(ctx context.Context, tx interfaces.TxStore) error) error {
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.txTimeout)
	defer cancel()

	beginCtx, cancelBegin := context.WithTimeout(txCtx, u.acquireTimeout)
	tx, err := u.db.BeginTx(beginCtx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	cancelBegin()
	if err != nil {
		return acquireError("begin transaction", err)
	}
	defer tx.Rollback(txCtx)

	if err := fn(txCtx, &txStore{q: tx}); err != nil {
		return classify("transaction", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return classify("commit", err)
	}
	return nil
}

type txStore struct {
	q Querier
}

func (t *txStore) GetMenuItem(ctx context.Context, itemID int64) (*domain.MenuItem, error) {
	item, err := queryMenuItem(ctx, t.q, `SELECT `+menuItemColumns+` FROM menu_items WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, classify("get menu item", err)
	}
	return item, nil
}

func (t *txStore) DecrementStock(ctx context.Context, itemID int64, qty int) (bool, error) {
	tag, err := t.q.Exec(ctx, `
		UPDATE menu_items
		SET available_quantity = available_quantity - $2
		WHERE item_id = $1 AND available_quantity >= $2
	`, itemID, qty)
	if err != nil {
		return false, classify("decrement stock", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *txStore) RestoreStock(ctx context.Context, itemID int64, qty int) error {
	tag, err := t.q.Exec(ctx, `
		UPDATE menu_items
		SET available_quantity = available_quantity + $2
		WHERE item_id = $1
	`, itemID, qty)
	if err != nil {
		return classify("restore stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("restore stock for item %d: %w", itemID, domain.ErrNotFound)
	}
	return nil
}

func (t *txStore) InsertOrder(ctx context.Context, order *domain.Order) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, total_amount, special_instructions, delivery_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_id, order_date, updated_at
	`, order.UserID, string(order.Status), order.TotalAmount, order.Instructions, order.DeliveryAt,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return classify("insert order", err)
	}
	return nil
}

func (t *txStore) InsertOrderItem(ctx context.Context, item *domain.OrderItem) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO order_items (order_id, item_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_item_id
	`, item.OrderID, item.ItemID, item.Quantity, item.UnitPrice, item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		return classify("insert order item", err)
	}
	return nil
}

func (t *txStore) GetOrderForUpdate(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := queryOrder(ctx, t.q,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1 AND user_id = $2 FOR UPDATE`,
		orderID, userID)
	if err != nil {
		return nil, classify("get order for update", err)
	}
	return order, nil
}

func (t *txStore) UpdateOrderStatus(ctx context.Context, orderID int64, from, to domain.Status) (bool, error) {
	tag, err := t.q.Exec(ctx, `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE order_id = $1 AND status = $2
	`, orderID, string(from), string(to))
	if err != nil {
		return false, classify("update order status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *txStore) InsertBilling(ctx context.Context, bill *domain.Billing) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO billing (order_id, user_id, amount, payment_method, payment_status, transaction_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING bill_id, created_at
	`, bill.OrderID, bill.UserID, bill.Amount, string(bill.PaymentMethod), string(bill.PaymentStatus),
		bill.TransactionID, bill.PaidAt,
	).Scan(&bill.ID, &bill.CreatedAt)
	if err != nil {
		return classify("insert billing", err)
	}
	return nil
}
