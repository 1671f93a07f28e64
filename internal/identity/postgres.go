package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the part of *pgxpool.Pool the provider needs. pgxmock
// implements it as well.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Postgres keeps accounts in the accounts table.
type Postgres struct {
	pool PgxPool
}

func NewPostgres(pool PgxPool) *Postgres {
	return &Postgres{pool: pool}
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("identity: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("identity: ping: %w", err)
	}
	return pool, nil
}

func (p *Postgres) SetAccountEnabled(ctx context.Context, id string, enabled bool) error {
	const q = `
UPDATE accounts
SET disabled = $2, updated_at = now()
WHERE id = $1`
	tag, err := p.pool.Exec(ctx, q, id, !enabled)
	if err != nil {
		return fmt.Errorf("identity: set enabled=%t for %s: %w", enabled, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (p *Postgres) DeleteAccount(ctx context.Context, id string) error {
	const q = `DELETE FROM accounts WHERE id = $1`
	tag, err := p.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("identity: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
