package postgres

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Thin helpers over getExecutor so repositories stay one-liners regardless of
// whether a call runs inside a transaction or straight on the pool.

func execSQL(ctx context.Context, pool *pgxpool.Pool, tx any, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.Exec(ctx, sql, args...)
}

func queryRows(ctx context.Context, pool *pgxpool.Pool, tx any, sql string, args ...interface{}) (pgx.Rows, error) {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return nil, err
	}
	return exec.Query(ctx, sql, args...)
}

func pickRow(ctx context.Context, pool *pgxpool.Pool, tx any, sql string, args ...interface{}) pgx.Row {
	exec, err := getExecutor(pool, tx)
	if err != nil {
		return errRow{err}
	}
	return exec.QueryRow(ctx, sql, args...)
}

// errRow defers an executor resolution error to Scan, keeping the
// QueryRow-then-Scan call shape intact.
type errRow struct{ err error }

func (r errRow) Scan(...interface{}) error { return r.err }
