package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

// StatusUseCase computes the current membership status of a user. It is a
// pure read: nothing here ever writes, and in particular a time-expired entry
// keeps IsExpired=false until an explicit refund/expire transition flips it.
// Callers that need a strict "is active" boolean must use this computation,
// never the stored flag.
type StatusUseCase interface {
	// SubscriptionStatus evaluates the status as of now.
	SubscriptionStatus(ctx context.Context, userID string) (*model.SubscriptionStatus, error)

	// SubscriptionStatusAt evaluates the status as of an arbitrary instant.
	// Status is a deterministic function of (ledger, user, now), which is
	// what makes lazy expiration workable without a sweep job.
	SubscriptionStatusAt(ctx context.Context, userID string, now time.Time) (*model.SubscriptionStatus, error)
}

type statusUC struct {
	users     repository.UserRepository
	purchases repository.PurchaseRepository
	log       *zerolog.Logger
}

func NewStatusUseCase(users repository.UserRepository, purchases repository.PurchaseRepository, logger *zerolog.Logger) *statusUC {
	return &statusUC{users: users, purchases: purchases, log: logger}
}

func (uc *statusUC) SubscriptionStatus(ctx context.Context, userID string) (*model.SubscriptionStatus, error) {
	return uc.statusTx(ctx, repository.NoTX, userID, time.Now())
}

func (uc *statusUC) SubscriptionStatusAt(ctx context.Context, userID string, now time.Time) (*model.SubscriptionStatus, error) {
	return uc.statusTx(ctx, repository.NoTX, userID, now)
}

// statusTx is shared with the subscribe and refund flows, which re-run the
// status check inside their own transaction.
func (uc *statusUC) statusTx(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.SubscriptionStatus, error) {
	user, err := uc.users.FindByID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Absence is a status, not an error.
			return &model.SubscriptionStatus{Msg: domain.MsgUserNotFound}, nil
		}
		return nil, err
	}

	// The event-membership override wins while active: a real ledger entry is
	// not consulted at all.
	if user.Event == 1 && user.MembershipAt != nil {
		expiry := model.MembershipExpiry(*user.MembershipAt, model.EventMembershipMonths)
		if left := model.DaysLeft(expiry, now); left > 0 {
			return &model.SubscriptionStatus{
				Activate:  true,
				LeftDays:  left,
				ExpiresAt: &expiry,
				Msg:       domain.MsgEventMembership,
			}, nil
		}
	}

	sub, err := uc.purchases.FindActiveSubscription(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &model.SubscriptionStatus{Msg: domain.MsgNoActiveSubscription}, nil
		}
		return nil, err
	}

	expiry := model.MembershipExpiry(sub.CreatedAt, model.SubscriptionMonths)
	left := model.DaysLeft(expiry, now)
	status := &model.SubscriptionStatus{
		Subscription: sub,
		Activate:     left > 0,
		LeftDays:     left,
		ExpiresAt:    &expiry,
		Msg:          domain.MsgSubscriptionActive,
	}
	if !status.Activate {
		status.Msg = domain.MsgSubscriptionExpired
	}
	return status, nil
}
