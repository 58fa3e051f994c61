package repository

import (
	"context"

	"pickforme-subscription/internal/domain/model"
)

// ProductRepository is the read-only catalog lookup (Save exists for seeding
// and tests only; the ledger never writes products).
type ProductRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Product) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Product, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Product, error)

	// FindSubscriptionsByPlatform returns subscription-type products for the
	// exact platform string. Unknown platforms yield an empty list, not an
	// error.
	FindSubscriptionsByPlatform(ctx context.Context, tx Tx, platform string) ([]*model.Product, error)
}
