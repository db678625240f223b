package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type orderRepository struct {
	db *ReadPool
}

func NewOrderRepository(db *ReadPool) interfaces.OrderReader {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByID(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.read(ctx, func(q Querier) error {
		var err error
		order, err = queryOrder(ctx, q,
			`SELECT `+orderColumns+` FROM orders WHERE order_id = $1 AND user_id = $2`,
			orderID, userID)
		return err
	})
	if err != nil {
		return nil, classify("find order", err)
	}
	return order, nil
}

// ListByUser returns order headers, newest first, without their items.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	var collected []orderRow
	err := r.db.read(ctx, func(q Querier) error {
		rows, err := q.Query(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_date DESC, order_id DESC`,
			userID)
		if err != nil {
			return err
		}
		collected, err = pgx.CollectRows(rows, pgx.RowToStructByName[orderRow])
		return err
	})
	if err != nil {
		return nil, classify("list orders", err)
	}

	orders := make([]*domain.Order, 0, len(collected))
	for _, row := range collected {
		orders = append(orders, row.toDomain())
	}
	return orders, nil
}
