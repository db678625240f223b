package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

// ParsePaymentMethod normalises user input into one of the accepted methods.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw))); m {
	case PaymentCash, PaymentCard, PaymentDigital:
		return m, nil
	case "":
		return "", &ValidationError{Field: "payment_method", Message: "payment method is required"}
	default:
		return "", &ValidationError{
			Field:   "payment_method",
			Message: fmt.Sprintf("payment method must be one of: %s, %s, %s", PaymentCash, PaymentCard, PaymentDigital),
		}
	}
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
)
