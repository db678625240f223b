package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

const maxOrderLines = 50

// Build is the advisory result: priced lines and their total.
// Stock may still change before the order is committed.
type Build struct {
	Items []domain.OrderItem
	Total decimal.Decimal
}

type Builder struct {
	catalog interfaces.CatalogReader
}

func NewBuilder(catalog interfaces.CatalogReader) *Builder {
	return &Builder{catalog: catalog}
}

// Build validates the requested lines against the catalog, stopping at the first failure.
// Repeated lines for one item are checked against stock by their combined quantity.
func (b *Builder) Build(ctx context.Context, lines []interfaces.CreateOrderItemCommand) (*Build, error) {
	if len(lines) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "order must contain at least 1 item"}
	}
	if len(lines) > maxOrderLines {
		return nil, &domain.ValidationError{Field: "items", Message: fmt.Sprintf("order must not contain more than %d items", maxOrderLines)}
	}
	for i, line := range lines {
		if line.ItemID <= 0 {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].item_id", i), Message: "item id must be positive"}
		}
		if line.Quantity < 1 {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be a positive integer"}
		}
		if line.Quantity > domain.MaxLineQuantity {
			return nil, &domain.ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("quantity must not exceed %d", domain.MaxLineQuantity),
			}
		}
	}

	requested := make(map[int64]int, len(lines))
	items := make([]domain.OrderItem, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		menuItem, err := b.catalog.GetItem(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewItemUnavailable(line.ItemID)
			}
			return nil, err
		}

		sum, ok := domain.AddQuantity(requested[line.ItemID], line.Quantity)
		if !ok {
			return nil, domain.NewInsufficientStock(line.ItemID)
		}
		requested[line.ItemID] = sum
		if err := menuItem.CheckFulfil(sum); err != nil {
			return nil, err
		}

		item := domain.NewOrderItem(line.ItemID, line.Quantity, menuItem.Price)
		items = append(items, item)
		total = total.Add(item.Subtotal)
	}

	return &Build{Items: items, Total: total}, nil
}
