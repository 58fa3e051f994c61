package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ RefundUseCase = (*refundUC)(nil)

// RefundUseCase decides refund eligibility and executes the expire/refund
// transition — the only code path allowed to flip Purchase.IsExpired.
type RefundUseCase interface {
	// CheckRefundEligibility fails closed: no user, no active subscription
	// entry, or any consumption of the granted allowance all make the
	// subscription non-refundable.
	CheckRefundEligibility(ctx context.Context, userID string) (*model.RefundEligibility, error)

	// ProcessRefund re-derives eligibility inside the transaction before
	// mutating. When it returns ErrRefundIneligible the result still carries
	// the user-facing reason; the entry and balances are untouched.
	ProcessRefund(ctx context.Context, userID, subscriptionID string) (*model.RefundResult, error)

	// ExpireSubscription marks the entry expired and resets the user's
	// balances to baseline. Idempotent: expiring an already-expired entry
	// resets balances again and succeeds. Runs inside the caller's
	// transaction when tx is non-nil; the caller then owns commit/abort.
	ExpireSubscription(ctx context.Context, tx repository.Tx, sub *model.Purchase) error
}

type refundUC struct {
	users     repository.UserRepository
	purchases repository.PurchaseRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewRefundUseCase(users repository.UserRepository, purchases repository.PurchaseRepository, tm repository.TransactionManager, logger *zerolog.Logger) *refundUC {
	return &refundUC{users: users, purchases: purchases, tm: tm, log: logger}
}

func (uc *refundUC) CheckRefundEligibility(ctx context.Context, userID string) (*model.RefundEligibility, error) {
	return uc.eligibilityTx(ctx, repository.NoTX, userID)
}

// eligibilityTx deliberately ignores the event-membership override: only a
// real ledger entry can be refunded. Consumption is judged against the fixed
// baseline constants, not against the balance right after this entry's
// credit.
func (uc *refundUC) eligibilityTx(ctx context.Context, tx repository.Tx, userID string) (*model.RefundEligibility, error) {
	user, err := uc.users.FindByID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &model.RefundEligibility{Msg: domain.MsgRefundUserNotFound}, nil
		}
		return nil, err
	}

	if _, err := uc.purchases.FindActiveSubscription(ctx, tx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &model.RefundEligibility{Msg: domain.MsgNoRefundableSub}, nil
		}
		return nil, err
	}

	if !user.AtBaseline() {
		return &model.RefundEligibility{Msg: domain.MsgRefundIneligibleUsed}, nil
	}
	return &model.RefundEligibility{IsRefundable: true, Msg: domain.MsgRefundable}, nil
}

func (uc *refundUC) ProcessRefund(ctx context.Context, userID, subscriptionID string) (*model.RefundResult, error) {
	if userID == "" || subscriptionID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var result *model.RefundResult
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.tm.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		eligibility, err := uc.eligibilityTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !eligibility.IsRefundable {
			result = &model.RefundResult{Msg: eligibility.Msg}
			return domain.ErrRefundIneligible
		}

		sub, err := uc.purchases.FindByID(ctx, tx, subscriptionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrSubscriptionNotFound
			}
			return err
		}
		if sub.UserID != userID {
			return domain.ErrSubscriptionNotFound
		}

		if err := uc.ExpireSubscription(ctx, tx, sub); err != nil {
			return err
		}
		result = &model.RefundResult{RefundSuccess: true, Msg: domain.MsgRefundComplete}
		return nil
	})
	if err != nil {
		return result, err
	}

	uc.log.Info().
		Str("user_id", userID).
		Str("purchase_id", subscriptionID).
		Msg("subscription refunded")
	return result, nil
}

func (uc *refundUC) ExpireSubscription(ctx context.Context, tx repository.Tx, sub *model.Purchase) error {
	if sub == nil || sub.ID == "" {
		return domain.ErrInvalidArgument
	}
	if err := uc.purchases.MarkExpired(ctx, tx, sub.ID); err != nil {
		return err
	}
	sub.IsExpired = true

	if err := uc.users.ResetToBaseline(ctx, tx, sub.UserID); err != nil {
		// A vanished user is not a reason to fail the expiry of the entry.
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return nil
}
