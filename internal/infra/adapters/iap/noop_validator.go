// File: internal/infra/adapters/iap/noop_validator.go
package iap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/adapter"
)

var _ adapter.ReceiptValidator = (*NoopValidator)(nil)

// NoopValidator accepts every receipt. Dev mode and tests only.
type NoopValidator struct {
	mu  sync.Mutex
	seq int64
}

func NewNoopValidator() *NoopValidator { return &NoopValidator{} }

func (n *NoopValidator) Validate(ctx context.Context, receipt model.Receipt, product *model.Product) (*model.NormalizedPurchase, error) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.mu.Unlock()
	verifiedBy := model.VerifiedByAppleReceipt
	if product.Platform == model.PlatformAndroid {
		verifiedBy = model.VerifiedByGoogleAPI
	}
	return &model.NormalizedPurchase{
		Platform:      product.Platform,
		ProductID:     product.ProductID,
		TransactionID: fmt.Sprintf("noop-%d", seq),
		PurchaseDate:  time.Now(),
		VerifiedBy:    verifiedBy,
	}, nil
}
