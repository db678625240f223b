package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the most one item can be ordered in, per line or across
// repeated lines. Stock is stored as INTEGER, so nothing larger can be served.
const MaxLineQuantity = math.MaxInt32

// MaxAmount is the largest money value a NUMERIC(10,2) column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// Order represents a canteen order placed by one user
type Order struct {
	ID           int64
	UserID       int64
	Status       Status
	TotalAmount  decimal.Decimal
	Instructions *string
	Items        []OrderItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeliveryAt   *time.Time
}

// OrderItem is one order line. UnitPrice is the menu price at the time the order was placed.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ItemID    int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewOrderItem snapshots unitPrice and computes the line subtotal
func NewOrderItem(itemID int64, quantity int, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Reprice replaces the snapshot price, keeping the subtotal consistent.
func (i *OrderItem) Reprice(unitPrice decimal.Decimal) {
	i.UnitPrice = unitPrice
	i.Subtotal = unitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder creates a pending order with the total derived from its lines
func NewOrder(userID int64, items []OrderItem, instructions *string) (*Order, error) {
	now := time.Now().UTC()
	order := &Order{
		UserID:       userID,
		Status:       StatusPending,
		Instructions: instructions,
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.CalculateTotal()
	if err := order.CheckAmounts(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate applies structural rules that hold for every order
func (o *Order) Validate() error {
	if o.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "authenticated user is required"}
	}
	if len(o.Items) == 0 {
		return &ValidationError{Field: "items", Message: "order must contain at least 1 item"}
	}
	for i, item := range o.Items {
		if item.ItemID <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].item_id", i), Message: "item id must be positive"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be a positive integer"}
		}
		if item.Quantity > MaxLineQuantity {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity)}
		}
		if item.UnitPrice.IsNegative() {
			return &ValidationError{Field: fmt.Sprintf("items[%d].unit_price", i), Message: "price must not be negative"}
		}
	}
	return nil
}

// CalculateTotal sets TotalAmount to the sum of the line subtotals.
// It is only called before the order is persisted.
func (o *Order) CalculateTotal() {
	o.TotalAmount = o.ItemsTotal()
}

// CheckAmounts rejects line subtotals or a total that cannot be stored.
func (o *Order) CheckAmounts() error {
	for i, item := range o.Items {
		if item.Subtotal.GreaterThan(MaxAmount) {
			return &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: fmt.Sprintf("line total must not exceed %s", MaxAmount.StringFixed(2)),
			}
		}
	}
	if o.TotalAmount.GreaterThan(MaxAmount) {
		return &ValidationError{Field: "items", Message: fmt.Sprintf("order total must not exceed %s", MaxAmount.StringFixed(2))}
	}
	return nil
}

// ItemsTotal sums the line subtotals as currently held
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// QuantityByItem folds repeated lines for the same menu item together.
// A combined quantity above MaxLineQuantity is InsufficientStock for that item.
func (o *Order) QuantityByItem() (map[int64]int, error) {
	qty := make(map[int64]int, len(o.Items))
	for _, item := range o.Items {
		sum, ok := AddQuantity(qty[item.ItemID], item.Quantity)
		if !ok {
			return nil, NewInsufficientStock(item.ItemID)
		}
		qty[item.ItemID] = sum
	}
	return qty, nil
}

// AddQuantity adds b to the running quantity a. ok is false when either is
// negative or the sum would pass MaxLineQuantity.
func AddQuantity(a, b int) (sum int, ok bool) {
	if a < 0 || b < 0 || b > MaxLineQuantity-a {
		return 0, false
	}
	return a + b, true
}

// TransitionTo moves the order to newStatus or returns ErrInvalidTransition
func (o *Order) TransitionTo(newStatus Status) error {
	if !o.CanTransitionTo(newStatus) {
		return fmt.Errorf("order %d is %s, cannot become %s: %w", o.ID, o.Status, newStatus, ErrInvalidTransition)
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// CanTransitionTo checks if the order can transition to the new status
func (o *Order) CanTransitionTo(newStatus Status) bool {
	if o.Status.IsTerminal() {
		return false
	}
	validTransitions := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {},
		StatusCancelled: {},
	}

	for _, s := range validTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}
