package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ FailureUseCase = (*failureUC)(nil)

// FailureUseCase is the audit trail of rejected or erroring purchase
// attempts. Records are written on the pool, never inside the purchase
// transaction, so they survive the rollback they document.
type FailureUseCase interface {
	// Record persists a failure record for a purchase confirmation attempt.
	// Retries of the same raw receipt are collapsed into the first record.
	Record(ctx context.Context, userID, productID string, receipt model.Receipt, cause error) error

	ListByUser(ctx context.Context, userID string) ([]*model.PurchaseFailure, error)
}

type failureUC struct {
	failures repository.PurchaseFailureRepository
	log      *zerolog.Logger
}

func NewFailureUseCase(failures repository.PurchaseFailureRepository, logger *zerolog.Logger) *failureUC {
	return &failureUC{failures: failures, log: logger}
}

func (uc *failureUC) Record(ctx context.Context, userID, productID string, receipt model.Receipt, cause error) error {
	if len(receipt) > 0 {
		if _, err := uc.failures.FindByReceipt(ctx, repository.NoTX, receipt); err == nil {
			// The client is retrying the same broken receipt.
			return nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Err(err).Msg("purchase failure dedup lookup failed")
		}
	}

	f := model.NewPurchaseFailure(userID, productID, receipt, cause)
	f.ErrorStack = fmt.Sprintf("%+v", cause)
	f.Meta = map[string]any{
		"userMessage": domain.UserMessage(cause),
	}
	if err := uc.failures.Save(ctx, repository.NoTX, f); err != nil {
		// Losing an audit record must not mask the original failure; the
		// caller still reports `cause` to the client.
		uc.log.Error().Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("failed to persist purchase failure record")
		return err
	}

	uc.log.Error().Err(cause).
		Str("user_id", userID).
		Str("product_id", productID).
		Msg("purchase confirmation failed")
	return nil
}

func (uc *failureUC) ListByUser(ctx context.Context, userID string) ([]*model.PurchaseFailure, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.failures.ListByUser(ctx, repository.NoTX, userID)
}
