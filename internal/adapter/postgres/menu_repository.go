package postgres

import (
	"context"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

type menuRepository struct {
	db *ReadPool
}

func NewMenuRepository(db *ReadPool) interfaces.CatalogReader {
	return &menuRepository{db: db}
}

func (r *menuRepository) GetItem(ctx context.Context, itemID int64) (*domain.MenuItem, error) {
	var item *domain.MenuItem
	err := r.db.read(ctx, func(q Querier) error {
		var err error
		item, err = queryMenuItem(ctx, q, `SELECT `+menuItemColumns+` FROM menu_items WHERE item_id = $1`, itemID)
		return err
	})
	if err != nil {
		return nil, classify("get menu item", err)
	}
	return item, nil
}

func (r *menuRepository) ListAvailable(ctx context.Context) ([]*domain.MenuItem, error) {
	var items []*domain.MenuItem
	err := r.db.read(ctx, func(q Querier) error {
		var err error
		items, err = queryMenuItems(ctx, q,
			`SELECT `+menuItemColumns+` FROM menu_items WHERE is_available ORDER BY category, name`)
		return err
	})
	if err != nil {
		return nil, classify("list menu", err)
	}
	return items, nil
}

func (r *menuRepository) ListByCategory(ctx context.Context, category string) ([]*domain.MenuItem, error) {
	var items []*domain.MenuItem
	err := r.db.read(ctx, func(q Querier) error {
		var err error
		items, err = queryMenuItems(ctx, q,
			`SELECT `+menuItemColumns+` FROM menu_items WHERE category = $1 AND is_available ORDER BY name`,
			category)
		return err
	})
	if err != nil {
		return nil, classify("list menu category", err)
	}
	return items, nil
}
