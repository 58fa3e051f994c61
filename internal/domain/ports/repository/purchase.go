package repository

import (
	"context"

	"pickforme-subscription/internal/domain/model"
)

// PurchaseRepository persists ledger entries. Entries are created once, flip
// IsExpired at most once via MarkExpired, and are never deleted.
type PurchaseRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Purchase) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Purchase, error)

	// FindActiveSubscription returns the most recent non-expired
	// subscription entry for the user (createdAt descending), or
	// domain.ErrNotFound. One-time purchase entries never match.
	FindActiveSubscription(ctx context.Context, tx Tx, userID string) (*model.Purchase, error)

	// ListSubscriptionsByUser returns every subscription entry for the user,
	// newest first, expired or not.
	ListSubscriptionsByUser(ctx context.Context, tx Tx, userID string) ([]*model.Purchase, error)

	// MarkExpired sets IsExpired=true. Calling it on an already-expired entry
	// succeeds.
	MarkExpired(ctx context.Context, tx Tx, id string) error
}
