package domain

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewOrderComputesTotal(t *testing.T) {
	items := []OrderItem{
		NewOrderItem(1, 2, decimal.RequireFromString("150.00")),
		NewOrderItem(2, 1, decimal.RequireFromString("300.00")),
	}

	order, err := NewOrder(7, items, nil)
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("600.00")), "got %s", order.TotalAmount)
	require.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("300.00")))
}

func TestNewOrderValidation(t *testing.T) {
	price := decimal.RequireFromString("10.00")

	tests := []struct {
		name   string
		userID int64
		items  []OrderItem
		field  string
	}{
		{"missing user", 0, []OrderItem{NewOrderItem(1, 1, price)}, "user_id"},
		{"no items", 1, nil, "items"},
		{"zero quantity", 1, []OrderItem{NewOrderItem(1, 0, price)}, "items[0].quantity"},
		{"bad item id", 1, []OrderItem{NewOrderItem(0, 1, price)}, "items[0].item_id"},
		{"negative price", 1, []OrderItem{NewOrderItem(1, 1, decimal.NewFromInt(-1))}, "items[0].unit_price"},
		{"huge quantity", 1, []OrderItem{NewOrderItem(1, 1, price), NewOrderItem(1, math.MaxInt, price)}, "items[1].quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.userID, tt.items, nil)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRepriceKeepsSubtotalConsistent(t *testing.T) {
	item := NewOrderItem(3, 4, decimal.RequireFromString("2.50"))
	item.Reprice(decimal.RequireFromString("3.25"))

	require.True(t, item.Subtotal.Equal(decimal.RequireFromString("13.00")))
}

func TestQuantityByItemFoldsRepeatedLines(t *testing.T) {
	price := decimal.NewFromInt(1)
	order, err := NewOrder(1, []OrderItem{
		NewOrderItem(5, 1, price),
		NewOrderItem(6, 2, price),
		NewOrderItem(5, 3, price),
	}, nil)
	require.NoError(t, err)

	qty, err := order.QuantityByItem()
	require.NoError(t, err)
	require.Equal(t, map[int64]int{5: 4, 6: 2}, qty)
}

func TestQuantityByItemRejectsOversizedTotals(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{ItemID: 5, Quantity: MaxLineQuantity},
		{ItemID: 5, Quantity: MaxLineQuantity},
		{ItemID: 5, Quantity: 2},
	}}

	_, err := order.QuantityByItem()
	require.ErrorIs(t, err, ErrInsufficientStock)

	var itemErr *ItemError
	require.True(t, errors.As(err, &itemErr))
	require.Equal(t, int64(5), itemErr.ItemID)
}

func TestAddQuantity(t *testing.T) {
	sum, ok := AddQuantity(3, 4)
	require.True(t, ok)
	require.Equal(t, 7, sum)

	_, ok = AddQuantity(MaxLineQuantity, 1)
	require.False(t, ok)
	_, ok = AddQuantity(1, math.MaxInt)
	require.False(t, ok)
	_, ok = AddQuantity(1, -2)
	require.False(t, ok)
}

func TestNewOrderRejectsUnstorableAmounts(t *testing.T) {
	_, err := NewOrder(1, []OrderItem{NewOrderItem(1, 100, decimal.RequireFromString("1000000.00"))}, nil)
	require.ErrorIs(t, err, ErrValidation)

	// each line fits, the sum does not
	_, err = NewOrder(1, []OrderItem{
		NewOrderItem(1, 1, decimal.RequireFromString("60000000.00")),
		NewOrderItem(2, 1, decimal.RequireFromString("60000000.00")),
	}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "items", verr.Field)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCancelled, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{"", StatusConfirmed, false},
	}

	for _, tt := range tests {
		o := &Order{Status: tt.from}
		if got := o.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransitionToTerminalFails(t *testing.T) {
	o := &Order{ID: 9, Status: StatusConfirmed}

	err := o.TransitionTo(StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, StatusConfirmed, o.Status)
	require.True(t, o.Status.IsTerminal())
}

func TestNewBillingTakesAmountFromOrder(t *testing.T) {
	order := &Order{ID: 4, UserID: 2, Status: StatusPending, TotalAmount: decimal.RequireFromString("600.00")}
	ref := "TXN-1"

	bill, err := NewBilling(order, PaymentCash, &ref)
	require.NoError(t, err)
	require.True(t, bill.Amount.Equal(order.TotalAmount))
	require.Equal(t, PaymentCompleted, bill.PaymentStatus)
	require.Equal(t, int64(4), bill.OrderID)
	require.Equal(t, int64(2), bill.UserID)
}

func TestNewBillingNormalizesTransactionID(t *testing.T) {
	order := &Order{ID: 4, UserID: 2, Status: StatusPending, TotalAmount: decimal.NewFromInt(10)}

	blank := "   "
	bill, err := NewBilling(order, PaymentCard, &blank)
	require.NoError(t, err)
	require.Nil(t, bill.TransactionID)

	padded := "  TXN-9 "
	bill, err = NewBilling(order, PaymentCard, &padded)
	require.NoError(t, err)
	require.Equal(t, "TXN-9", *bill.TransactionID)

	// 100 characters, 200 bytes
	wide := strings.Repeat("ж", maxTransactionIDLength)
	bill, err = NewBilling(order, PaymentCard, &wide)
	require.NoError(t, err)
	require.Equal(t, wide, *bill.TransactionID)

	tooLong := wide + "x"
	_, err = NewBilling(order, PaymentCard, &tooLong)
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewBillingRejectsNonPending(t *testing.T) {
	for _, status := range []Status{StatusConfirmed, StatusCancelled} {
		order := &Order{ID: 4, UserID: 2, Status: status}
		_, err := NewBilling(order, PaymentCard, nil)
		require.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" Cash ")
	require.NoError(t, err)
	require.Equal(t, PaymentCash, m)

	_, err = ParsePaymentMethod("")
	require.ErrorIs(t, err, ErrValidation)

	_, err = ParsePaymentMethod("barter")
	require.ErrorIs(t, err, ErrValidation)
}

func TestItemErrorUnwraps(t *testing.T) {
	err := NewInsufficientStock(12)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.NotErrorIs(t, err, ErrItemUnavailable)
	require.Equal(t, "item 12: insufficient stock", err.Error())

	var ie *ItemError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, int64(12), ie.ItemID)
}

func TestMenuItemCheckFulfil(t *testing.T) {
	item := &MenuItem{ID: 1, IsAvailable: true, AvailableQuantity: 2}
	require.NoError(t, item.CheckFulfil(2))
	require.ErrorIs(t, item.CheckFulfil(3), ErrInsufficientStock)

	item.IsAvailable = false
	require.ErrorIs(t, item.CheckFulfil(1), ErrItemUnavailable)
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(ErrConflict))
	require.True(t, IsRetryable(ErrResourceUnavailable))
	require.False(t, IsRetryable(ErrPersistence))
	require.False(t, IsRetryable(NewInsufficientStock(1)))
}
