package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// DBTxKey carries an open transaction on the request context so that
// repositories participate in it transparently.
const DBTxKey contextKey = "db_tx"

// TxFromContext retrieves the transaction from context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// WithTx runs fn inside a transaction. The transaction is exposed to
// repository calls through the returned context; it commits when fn returns
// nil and rolls back otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		// Already inside a transaction; join it.
		return fn(ctx)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, DBTxKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
