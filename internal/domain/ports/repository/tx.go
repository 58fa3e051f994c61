package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls. The
// concrete type is infra-defined (pgx.Tx for Postgres); repositories must
// gracefully accept nil and fall back to their non-transactional path.
type Tx interface{}

// NoTX marks call sites that deliberately run outside any transaction.
var NoTX Tx

// TransactionManager executes a function inside a database transaction,
// passing the transaction handle via tx.
//
// USAGE
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//	    u, err := users.FindByID(ctx, tx, id)
//	    ...
//	    return err
//	})
//
// If fn returns an error the transaction rolls back and nothing it wrote is
// observable; otherwise it commits.
//
// Keep this interface small and stable.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error

	// AcquireUserLock serializes the current transaction against every other
	// transaction holding the same user's lock. Subscribe and refund flows
	// take it first so concurrent attempts for one user cannot both pass the
	// status check; cross-user operations never contend.
	AcquireUserLock(ctx context.Context, tx Tx, userID string) error
}
