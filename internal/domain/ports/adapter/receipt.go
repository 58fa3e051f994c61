package adapter

import (
	"context"

	"pickforme-subscription/internal/domain/model"
)

// ReceiptValidator turns a raw platform receipt into a normalized purchase or
// fails. Implementations call the platform's verification service and must
// treat "expired" and "malformed" identically: both surface as
// domain.ErrReceiptInvalid, and the caller aborts immediately (no retries —
// a receipt rarely becomes valid moments later).
type ReceiptValidator interface {
	// Validate checks the receipt against the product's store SKU and
	// platform. Both platform paths return the same normalized shape so the
	// ledger never branches on platform.
	Validate(ctx context.Context, receipt model.Receipt, product *model.Product) (*model.NormalizedPurchase, error)
}
