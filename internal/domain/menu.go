package domain

import "github.com/shopspring/decimal"

// MenuItem is a catalog entry. Its stock is only changed by order creation and cancellation.
type MenuItem struct {
	ID                int64
	Name              string
	Description       *string
	Category          string
	Price             decimal.Decimal
	AvailableQuantity int
	IsAvailable       bool
	ImageURL          *string
}

// CheckFulfil returns ItemUnavailable or InsufficientStock when qty cannot be served.
func (m *MenuItem) CheckFulfil(qty int) error {
	if !m.IsAvailable {
		return NewItemUnavailable(m.ID)
	}
	if qty > m.AvailableQuantity {
		return NewInsufficientStock(m.ID)
	}
	return nil
}
