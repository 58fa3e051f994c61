// File: internal/infra/adapters/iap/multi_validator.go
package iap

import (
	"context"
	"fmt"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/adapter"
)

var _ adapter.ReceiptValidator = (*MultiValidator)(nil)

// MultiValidator routes each receipt to the validator for the product's
// platform. Catalog entries are platform-scoped, so the product alone decides.
type MultiValidator struct {
	byPlatform map[model.Platform]adapter.ReceiptValidator
}

func NewMultiValidator(byPlatform map[model.Platform]adapter.ReceiptValidator) *MultiValidator {
	return &MultiValidator{byPlatform: byPlatform}
}

func (m *MultiValidator) Validate(ctx context.Context, receipt model.Receipt, product *model.Product) (*model.NormalizedPurchase, error) {
	v := m.byPlatform[product.Platform]
	if v == nil {
		return nil, fmt.Errorf("%w: no validator for platform %q", domain.ErrReceiptInvalid, product.Platform)
	}
	return v.Validate(ctx, receipt, product)
}
