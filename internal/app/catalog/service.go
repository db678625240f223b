package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

// Service is the read-only menu surface.
type Service struct {
	catalog interfaces.CatalogReader
	logger  logger.Logger
}

func NewService(catalog interfaces.CatalogReader, logger logger.Logger) *Service {
	return &Service{
		catalog: catalog,
		logger:  logger,
	}
}

func (s *Service) ListMenu(ctx context.Context) ([]*domain.MenuItem, error) {
	items, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		s.logger.Error("menu_list_failed", "Failed to list menu", logger.RequestID(ctx), nil, err)
		return nil, err
	}
	return items, nil
}

func (s *Service) GetMenuItem(ctx context.Context, itemID int64) (*domain.MenuItem, error) {
	if itemID <= 0 {
		return nil, &domain.ValidationError{Field: "item_id", Message: "item id must be positive"}
	}
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("menu item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *Service) ListMenuByCategory(ctx context.Context, category string) ([]*domain.MenuItem, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return nil, &domain.ValidationError{Field: "category", Message: "category is required"}
	}

	items, err := s.catalog.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Error("menu_list_failed", "Failed to list menu category", logger.RequestID(ctx), map[string]interface{}{
			"category": category,
		}, err)
		return nil, err
	}
	return items, nil
}
