package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/adapter"
	"pickforme-subscription/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase is the entitlement ledger: it converts a verified
// platform purchase into a durable ledger entry plus a balance credit, as one
// atomic unit.
type SubscriptionUseCase interface {
	// CreateSubscription validates the receipt and grants the entitlement.
	// Failure modes, in check order: ErrUserNotFound, ErrAlreadySubscribed,
	// ErrProductNotFound, ErrReceiptInvalid. On any failure neither the
	// ledger entry nor the balance change is observable.
	CreateSubscription(ctx context.Context, userID, productID string, receipt model.Receipt) (*model.Purchase, error)

	// CreateSubscriptionWithoutValidation is the support-staff bypass of
	// receipt validation. Every other check, and the atomicity guarantee,
	// is identical to CreateSubscription — in particular it cannot bypass
	// the double-subscription invariant.
	CreateSubscriptionWithoutValidation(ctx context.Context, userID, productID string, receipt model.Receipt) (*model.Purchase, error)

	// SubscriptionProductsByPlatform lists subscribable catalog entries for
	// the platform; unknown platforms yield an empty list.
	SubscriptionProductsByPlatform(ctx context.Context, platform string) ([]*model.Product, error)

	// UserSubscriptions lists the user's subscription ledger entries, newest
	// first, expired included.
	UserSubscriptions(ctx context.Context, userID string) ([]*model.Purchase, error)
}

type subscriptionUC struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	purchases repository.PurchaseRepository
	status    *statusUC
	tm        repository.TransactionManager
	validator adapter.ReceiptValidator
	log       *zerolog.Logger
}

func NewSubscriptionUseCase(
	users repository.UserRepository,
	products repository.ProductRepository,
	purchases repository.PurchaseRepository,
	status *statusUC,
	tm repository.TransactionManager,
	validator adapter.ReceiptValidator,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		users:     users,
		products:  products,
		purchases: purchases,
		status:    status,
		tm:        tm,
		validator: validator,
		log:       logger,
	}
}

func (uc *subscriptionUC) CreateSubscription(ctx context.Context, userID, productID string, receipt model.Receipt) (*model.Purchase, error) {
	return uc.create(ctx, userID, productID, receipt, true)
}

func (uc *subscriptionUC) CreateSubscriptionWithoutValidation(ctx context.Context, userID, productID string, receipt model.Receipt) (*model.Purchase, error) {
	return uc.create(ctx, userID, productID, receipt, false)
}

// create runs the four precondition checks and both writes inside a single
// transaction, serialized per user by an advisory lock so two concurrent
// attempts for the same user cannot both pass the status check.
func (uc *subscriptionUC) create(ctx context.Context, userID, productID string, receipt model.Receipt, validate bool) (*model.Purchase, error) {
	if userID == "" || productID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var created *model.Purchase
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.tm.AcquireUserLock(ctx, tx, userID); err != nil {
			return err
		}

		if _, err := uc.users.FindByID(ctx, tx, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}

		status, err := uc.status.statusTx(ctx, tx, userID, time.Now())
		if err != nil {
			return err
		}
		if status.Activate {
			return domain.ErrAlreadySubscribed
		}

		product, err := uc.products.FindByID(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrProductNotFound
			}
			return err
		}
		if !product.IsSubscription() {
			return domain.ErrProductNotFound
		}

		var normalized model.NormalizedPurchase
		if validate {
			verified, err := uc.validator.Validate(ctx, receipt, product)
			if err != nil {
				if errors.Is(err, domain.ErrReceiptInvalid) {
					return err
				}
				return fmt.Errorf("%w: %v", domain.ErrReceiptInvalid, err)
			}
			normalized = *verified
		} else {
			normalized = model.AdminPurchase(product, len(receipt) > 0)
			// Admin entries never store a receipt, even if one was sent.
			receipt = nil
		}

		entry, err := model.NewPurchase(userID, product, normalized, receipt)
		if err != nil {
			return err
		}
		if err := uc.purchases.Save(ctx, tx, entry); err != nil {
			return err
		}
		if err := uc.users.ApplyPurchaseRewards(ctx, tx, userID, product.Rewards()); err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("user_id", userID).
		Str("purchase_id", created.ID).
		Str("verified_by", created.Purchase.VerifiedBy).
		Str("platform", string(created.Purchase.Platform)).
		Msg("subscription granted")
	return created, nil
}

func (uc *subscriptionUC) SubscriptionProductsByPlatform(ctx context.Context, platform string) ([]*model.Product, error) {
	return uc.products.FindSubscriptionsByPlatform(ctx, repository.NoTX, platform)
}

func (uc *subscriptionUC) UserSubscriptions(ctx context.Context, userID string) ([]*model.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.purchases.ListSubscriptionsByUser(ctx, repository.NoTX, userID)
}
