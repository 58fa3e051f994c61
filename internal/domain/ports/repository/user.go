package repository

import (
	"context"

	"pickforme-subscription/internal/domain/model"
)

// UserRepository reads users and applies the two atomic balance mutations the
// ledger is allowed to make. No other component writes balance fields.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)

	// ApplyPurchaseRewards credits the reward balances and stamps the
	// membership timestamps: lastMembershipAt is always set to now;
	// membershipAt only when the user has neither timestamp yet, so
	// grandfathered cohorts keep their original anchor date. A non-zero
	// reward event value is copied onto the user.
	ApplyPurchaseRewards(ctx context.Context, tx Tx, userID string, rewards model.ProductReward) error

	// ResetToBaseline restores the no-subscription balances
	// (model.DefaultPoint / model.DefaultAiPoint), clears both membership
	// timestamps and the event cohort flag.
	ResetToBaseline(ctx context.Context, tx Tx, userID string) error
}
