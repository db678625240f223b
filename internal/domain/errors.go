package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrItemUnavailable     = errors.New("item unavailable")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrConflict            = errors.New("concurrent modification")
	ErrPersistence         = errors.New("persistence failure")
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// ValidationError describes malformed caller input. It never involves storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ItemError ties a catalog-driven rejection to the menu item that caused it.
type ItemError struct {
	ItemID int64
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func NewItemUnavailable(itemID int64) error {
	return &ItemError{ItemID: itemID, Err: ErrItemUnavailable}
}

func NewInsufficientStock(itemID int64) error {
	return &ItemError{ItemID: itemID, Err: ErrInsufficientStock}
}

// IsRetryable reports whether the caller may retry the whole operation with fresh validation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrResourceUnavailable)
}
