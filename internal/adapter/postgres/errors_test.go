package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, domain.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrConflict},
		{"unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), domain.ErrConflict},
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"deadline", context.DeadlineExceeded, domain.ErrResourceUnavailable},
		{"check violation", &pgconn.PgError{Code: "23514"}, domain.ErrPersistence},
		{"connection reset", errors.New("connection reset by peer"), domain.ErrPersistence},
		{"already classified", domain.NewInsufficientStock(4), domain.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			require.ErrorIs(t, got, tt.want)
		})
	}

	require.NoError(t, classify("op", nil))
	require.True(t, domain.IsRetryable(classify("commit", &pgconn.PgError{Code: "40001"})))
}
