package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxTransactionIDLength = 100

// Billing records the single payment made for an order
type Billing struct {
	ID            int64
	OrderID       int64
	UserID        int64
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	TransactionID *string
	PaidAt        time.Time
	CreatedAt     time.Time
}

// NewBilling prepares a completed payment for a pending order.
// The amount always comes from the order, never from the caller.
func NewBilling(order *Order, method PaymentMethod, transactionID *string) (*Billing, error) {
	if order.Status != StatusPending {
		return nil, fmt.Errorf("order %d is %s, only pending orders can be billed: %w", order.ID, order.Status, ErrInvalidTransition)
	}
	transactionID, err := normalizeTransactionID(transactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Billing{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Amount:        order.TotalAmount,
		PaymentMethod: method,
		PaymentStatus: PaymentCompleted,
		TransactionID: transactionID,
		PaidAt:        now,
		CreatedAt:     now,
	}, nil
}

// normalizeTransactionID trims the reference and drops it when blank.
func normalizeTransactionID(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	id := strings.TrimSpace(*raw)
	if id == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(id) > maxTransactionIDLength {
		return nil, &ValidationError{Field: "transaction_id", Message: fmt.Sprintf("transaction id must not exceed %d characters", maxTransactionIDLength)}
	}
	return &id, nil
}
