package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type billingRepository struct {
	db *ReadPool
}

func NewBillingRepository(db *ReadPool) interfaces.BillingReader {
	return &billingRepository{db: db}
}

func (r *billingRepository) FindByID(ctx context.Context, userID, billID int64) (*domain.Billing, error) {
	var row billingRow
	err := r.db.read(ctx, func(q Querier) error {
		rows, err := q.Query(ctx,
			`SELECT `+billingColumns+` FROM billing WHERE bill_id = $1 AND user_id = $2`,
			billID, userID)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[billingRow])
		return err
	})
	if err != nil {
		return nil, classify("find bill", err)
	}
	return row.toDomain(), nil
}

func (r *billingRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Billing, error) {
	var collected []billingRow
	err := r.db.read(ctx, func(q Querier) error {
		rows, err := q.Query(ctx,
			`SELECT `+billingColumns+` FROM billing WHERE user_id = $1 ORDER BY created_at DESC, bill_id DESC`,
			userID)
		if err != nil {
			return err
		}
		collected, err = pgx.CollectRows(rows, pgx.RowToStructByName[billingRow])
		return err
	})
	if err != nil {
		return nil, classify("list bills", err)
	}

	bills := make([]*domain.Billing, 0, len(collected))
	for _, row := range collected {
		bills = append(bills, row.toDomain())
	}
	return bills, nil
}
