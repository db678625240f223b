package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

var domainErrors = []error{
	domain.ErrValidation,
	domain.ErrNotFound,
	domain.ErrInvalidTransition,
	domain.ErrItemUnavailable,
	domain.ErrInsufficientStock,
	domain.ErrConflict,
	domain.ErrPersistence,
	domain.ErrResourceUnavailable,
}

// classify maps a driver error onto the domain taxonomy. Errors that already
// carry a domain kind are returned untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrResourceUnavailable, err)
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}
