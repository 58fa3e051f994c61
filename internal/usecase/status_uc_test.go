//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
	"pickforme-subscription/internal/usecase"
)

func seedEntry(t *testing.T, purchases *MockPurchaseRepo, userID string, createdAt time.Time, expired bool) *model.Purchase {
	t.Helper()
	entry, err := model.NewPurchase(userID, testProduct("prod-1", model.PlatformAndroid), model.NormalizedPurchase{
		Platform:      model.PlatformAndroid,
		ProductID:     "pickforme_basic",
		TransactionID: "txn-1",
		PurchaseDate:  createdAt,
		VerifiedBy:    model.VerifiedByGoogleAPI,
	}, nil)
	if err != nil {
		t.Fatalf("build entry: %v", err)
	}
	entry.CreatedAt = createdAt
	entry.IsExpired = expired
	if err := purchases.Save(context.Background(), repository.NoTX, entry); err != nil {
		t.Fatalf("save entry: %v", err)
	}
	return entry
}

func TestStatusUseCase_SubscriptionStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("missing user is a status, not an error", func(t *testing.T) {
		users := NewMockUserRepo()
		purchases := NewMockPurchaseRepo()
		uc := usecase.NewStatusUseCase(users, purchases, newTestLogger())

		status, err := uc.SubscriptionStatus(ctx, "nobody")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if status.Activate {
			t.Error("missing user must be inactive")
		}
		if status.Msg != domain.MsgUserNotFound {
			t.Errorf("unexpected msg: %q", status.Msg)
		}
	})

	t.Run("no entries means inactive", func(t *testing.T) {
		users := NewMockUserRepo()
		purchases := NewMockPurchaseRepo()
		users.Save(ctx, repository.NoTX, testUser("user-1"))
		uc := usecase.NewStatusUseCase(users, purchases, newTestLogger())

		status, err := uc.SubscriptionStatus(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if status.Activate || status.Subscription != nil {
			t.Errorf("expected inactive empty status, got %+v", status)
		}
		if status.Msg != domain.MsgNoActiveSubscription {
			t.Errorf("unexpected msg: %q", status.Msg)
		}
	})

	t.Run("fresh entry is active for roughly a month", func(t *testing.T) {
		users := NewMockUserRepo()
		purchases := NewMockPurchaseRepo()
		users.Save(ctx, repository.NoTX, testUser("user-1"))
		now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
		seedEntry(t, purchases, "user-1", now, false)
		uc := usecase.NewStatusUseCase(users, purchases, newTestLogger())

		status, err := uc.SubscriptionStatusAt(ctx, "user-1", now)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !status.Activate {
			t.Fatal("expected active status")
		}
		// Mar 15 midnight + 1 month = Apr 15 midnight; 31 days from Mar 15.
		if status.LeftDays != 31 {
			t.Errorf("expected 31 left days, got %d", status.LeftDays)
		}
		want := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
		if status.ExpiresAt == nil || !status.ExpiresAt.Equal(want) {
			t.Errorf("expected expiry %v, got %v", want, status.ExpiresAt)
		}
		if status.Msg != domain.MsgSubscriptionActive {
			t.Errorf("unexpected msg: %q", status.Msg)
		}
	})

	t.Run("time-expired entry is inactive but flag stays false", func(t *testing.T) {
		users := NewMockUserRepo()
		purchases := NewMockPurchaseRepo()
		users.Save(ctx, repository.NoTX, testUser("user-1"))
		created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		entry := seedEntry(t, purchases, "user-1", created, false)
		uc := usecase.NewStatusUseCase(users, purchases, newTestLogger())

		now := created.AddDate(0, 0, 40)
		status, err := uc.SubscriptionStatusAt(ctx, "user-1", now)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if status.Activate || status.LeftDays != 0 {
			t.Errorf("expected lapsed status, got activate=%v left=%d", status.Activate, status.LeftDays)
		}
		if status.Msg != domain.MsgSubscriptionExpired {
			t.Errorf("unexpected msg: %q", status.Msg)
		}
		// Lazy expiration: reading status never mutates the ledger.
		stored, _ := purchases.FindByID(ctx, repository.NoTX, entry.ID)
		if stored.IsExpired {
			t.Error("status read must not flip IsExpired")
		}
	})

	t.Run("explicitly expired entries are never selected", func(t *testing.T) {
		users := NewMockUserRepo()
		purchases := NewMockPurchaseRepo()
		users.Save(ctx, repository.NoTX, testUser("user-1"))
		seedEntry(t, purchases, "user-1", time.Now(), true)
		uc := usecase.NewStatusUseCase(users, purchases, newTestLogger())

		status, err := uc.SubscriptionStatus(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if status.Activate || status.Subscription != nil {
			t.Errorf("refunded entry must not make the user active: %+v", status)
		}
	})

	t.Run("event membership overrides the ledger", func(t *testing.T) {
		users := NewMockUserRepo()
		purchases := NewMockPurchaseRepo()
		u := testUser("user-1")
		u.Event = 1
		anchor := time.Date(2024, 1, 10, 16, 45, 0, 0, time.UTC)
		u.MembershipAt = &anchor
		users.Save(ctx, repository.NoTX, u)
		uc := usecase.NewStatusUseCase(users, purchases, newTestLogger())

		now := anchor.AddDate(0, 2, 0)
		status, err := uc.SubscriptionStatusAt(ctx, "user-1", now)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !status.Activate {
			t.Fatal("expected event membership to activate the user")
		}
		if status.Msg != domain.MsgEventMembership {
			t.Errorf("unexpected msg: %q", status.Msg)
		}
		want := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
		if status.ExpiresAt == nil || !status.ExpiresAt.Equal(want) {
			t.Errorf("expected six-month expiry %v, got %v", want, status.ExpiresAt)
		}
		if status.Subscription != nil {
			t.Error("event membership carries no ledger entry")
		}
	})

	t.Run("lapsed event membership falls through to the ledger", func(t *testing.T) {
		users := NewMockUserRepo()
		purchases := NewMockPurchaseRepo()
		u := testUser("user-1")
		u.Event = 1
		anchor := time.Now().AddDate(-1, 0, 0)
		u.MembershipAt = &anchor
		users.Save(ctx, repository.NoTX, u)
		seedEntry(t, purchases, "user-1", time.Now(), false)
		uc := usecase.NewStatusUseCase(users, purchases, newTestLogger())

		status, err := uc.SubscriptionStatus(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !status.Activate || status.Subscription == nil {
			t.Errorf("expected ledger entry to win after event lapsed: %+v", status)
		}
	})
}
