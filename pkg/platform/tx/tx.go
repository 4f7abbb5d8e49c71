// Package tx carries a pgx transaction through context so stores can join
// a unit of work without changing their signatures.
package tx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Querier is the subset of pgxpool.Pool and pgx.Tx that stores use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx stores a transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a transaction from context if present.
func From(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// QuerierFrom returns the context transaction, or fallback outside one.
func QuerierFrom(ctx context.Context, fallback Querier) Querier {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return fallback
}

// Run executes fn inside a transaction. A transaction already in ctx is
// joined instead, and the outermost Run commits.
func Run(ctx context.Context, db Beginner, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	t, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(WithTx(ctx, t)); err != nil {
		if rbErr := t.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return t.Commit(ctx)
}
