package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/canteen/internal/config"
	"github.com/YelzhanWeb/canteen/internal/domain"
	"github.com/YelzhanWeb/canteen/internal/interfaces"
)

var errUnexpectedQuery = errors.New("unexpected query")

// exhaustedPool never hands out a connection; every wait ends with its context.
type exhaustedPool struct{}

func (exhaustedPool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errUnexpectedQuery
}

func (exhaustedPool) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (exhaustedPool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errUnexpectedQuery
}

func (exhaustedPool) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (exhaustedPool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var shortWaits = config.DatabaseConfig{AcquireTimeout: 20 * time.Millisecond, TxTimeout: time.Second}

func TestSerializableReportsExhaustedPool(t *testing.T) {
	uow := NewUnitOfWork(exhaustedPool{}, shortWaits)

	err := uow.Serializable(context.Background(), func(context.Context, interfaces.TxStore) error {
		t.Fatal("unit of work must not run without a connection")
		return nil
	})
	require.ErrorIs(t, err, domain.ErrResourceUnavailable)
	require.True(t, domain.IsRetryable(err))
}

func TestSerializableIgnoresCallerCancellation(t *testing.T) {
	uow := NewUnitOfWork(exhaustedPool{}, shortWaits)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a cancelled caller still waits out the acquire timeout instead of aborting
	err := uow.Serializable(ctx, func(context.Context, interfaces.TxStore) error { return nil })
	require.ErrorIs(t, err, domain.ErrResourceUnavailable)
	require.NotErrorIs(t, err, context.Canceled)
}

func TestReadsReportExhaustedPool(t *testing.T) {
	reads := NewReadPool(exhaustedPool{}, shortWaits)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := NewMenuRepository(reads).GetItem(ctx, 1)
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, domain.ErrResourceUnavailable)
	case <-time.After(2 * time.Second):
		t.Fatal("read did not give up on an exhausted pool")
	}

	_, err := NewOrderRepository(reads).ListByUser(ctx, 7)
	require.ErrorIs(t, err, domain.ErrResourceUnavailable)
	_, err = NewBillingRepository(reads).FindByID(ctx, 7, 1)
	require.ErrorIs(t, err, domain.ErrResourceUnavailable)
}
