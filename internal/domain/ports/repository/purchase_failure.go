package repository

import (
	"context"

	"pickforme-subscription/internal/domain/model"
)

// PurchaseFailureRepository is the append-only audit store. Writes must never
// run inside the purchase transaction they document.
type PurchaseFailureRepository interface {
	Save(ctx context.Context, tx Tx, f *model.PurchaseFailure) error

	// FindByReceipt returns an existing record for the same raw receipt, or
	// domain.ErrNotFound. Used to avoid duplicate records when a client
	// retries a failing purchase.
	FindByReceipt(ctx context.Context, tx Tx, receipt model.Receipt) (*model.PurchaseFailure, error)

	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PurchaseFailure, error)
}
