package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YelzhanWeb/canteen/internal/config"
	"github.com/YelzhanWeb/canteen/internal/domain"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so reads share code with the unit of work.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type DB interface {
	Querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Acquirer is the part of *pgxpool.Pool the read side needs.
type Acquirer interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
}

// ReadPool runs each read on its own pooled connection. Only the wait for the
// connection is bounded by the acquire timeout; the query uses the caller's context.
type ReadPool struct {
	pool           Acquirer
	acquireTimeout time.Duration
}

func NewReadPool(pool Acquirer, cfg config.DatabaseConfig) *ReadPool {
	return &ReadPool{pool: pool, acquireTimeout: cfg.AcquireTimeout}
}

func (p *ReadPool) read(ctx context.Context, fn func(q Querier) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	conn, err := p.pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		return acquireError("acquire connection", err)
	}
	defer conn.Release()

	return fn(conn)
}

// acquireError reports an exhausted pool as retryable.
func acquireError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrResourceUnavailable, err)
	}
	return classify(op, err)
}

// Connect opens the process-wide pool. The caller owns it and closes it on shutdown.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
