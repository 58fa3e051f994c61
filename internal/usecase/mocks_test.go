//go:build !integration

package usecase_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/adapter"
	"pickforme-subscription/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	LockCalls  int
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction by default.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

func (m *MockTxManager) AcquireUserLock(ctx context.Context, tx repository.Tx, userID string) error {
	m.LockCalls++
	return nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.Mutex
	store map[string]*model.User

	SaveFunc                 func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc             func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	ApplyPurchaseRewardsFunc func(ctx context.Context, tx repository.Tx, userID string, rewards model.ProductReward) error
	ResetToBaselineFunc      func(ctx context.Context, tx repository.Tx, userID string) error

	AppliedRewards []model.ProductReward
	Resets         int
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) ApplyPurchaseRewards(ctx context.Context, tx repository.Tx, userID string, rewards model.ProductReward) error {
	if m.ApplyPurchaseRewardsFunc != nil {
		return m.ApplyPurchaseRewardsFunc(ctx, tx, userID, rewards)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[userID]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	u.Point += rewards.Point
	u.AiPoint += rewards.AiPoint
	if rewards.Event != 0 {
		u.Event = rewards.Event
	}
	if u.MembershipAt == nil && u.LastMembershipAt == nil {
		t := now
		u.MembershipAt = &t
	}
	t := now
	u.LastMembershipAt = &t
	m.AppliedRewards = append(m.AppliedRewards, rewards)
	return nil
}

func (m *MockUserRepo) ResetToBaseline(ctx context.Context, tx repository.Tx, userID string) error {
	if m.ResetToBaselineFunc != nil {
		return m.ResetToBaselineFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Point = model.DefaultPoint
	u.AiPoint = model.DefaultAiPoint
	u.Event = 0
	u.MembershipAt = nil
	u.LastMembershipAt = nil
	m.Resets++
	return nil
}

// ---- Mock ProductRepository ----

type MockProductRepo struct {
	mu    sync.Mutex
	store map[string]*model.Product

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Product, error)
}

func NewMockProductRepo() *MockProductRepo {
	return &MockProductRepo{store: make(map[string]*model.Product)}
}

var _ repository.ProductRepository = (*MockProductRepo)(nil)

func (m *MockProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Product, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockProductRepo) FindSubscriptionsByPlatform(ctx context.Context, tx repository.Tx, platform string) ([]*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Product, 0)
	for _, p := range m.store {
		if string(p.Platform) == platform && p.Type == model.ProductTypeSubscription {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- Mock PurchaseRepository ----

type MockPurchaseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Purchase

	SaveFunc                   func(ctx context.Context, tx repository.Tx, p *model.Purchase) error
	FindActiveSubscriptionFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.Purchase, error)
	MarkExpiredFunc            func(ctx context.Context, tx repository.Tx, id string) error
}

func NewMockPurchaseRepo() *MockPurchaseRepo {
	return &MockPurchaseRepo{store: make(map[string]*model.Purchase)}
}

var _ repository.PurchaseRepository = (*MockPurchaseRepo)(nil)

func (m *MockPurchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPurchaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPurchaseRepo) FindActiveSubscription(ctx context.Context, tx repository.Tx, userID string) (*model.Purchase, error) {
	if m.FindActiveSubscriptionFunc != nil {
		return m.FindActiveSubscriptionFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *model.Purchase
	for _, p := range m.store {
		if p.UserID != userID || p.IsExpired || !p.Product.IsSubscription() {
			continue
		}
		if best == nil || p.CreatedAt.After(best.CreatedAt) {
			best = p
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *MockPurchaseRepo) ListSubscriptionsByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Purchase, 0)
	for _, p := range m.store {
		if p.UserID == userID && p.Product.IsSubscription() {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPurchaseRepo) MarkExpired(ctx context.Context, tx repository.Tx, id string) error {
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsExpired = true
	return nil
}

// ---- Mock PurchaseFailureRepository ----

type MockFailureRepo struct {
	mu    sync.Mutex
	Saved []*model.PurchaseFailure

	SaveFunc func(ctx context.Context, tx repository.Tx, f *model.PurchaseFailure) error
}

func NewMockFailureRepo() *MockFailureRepo { return &MockFailureRepo{} }

var _ repository.PurchaseFailureRepository = (*MockFailureRepo)(nil)

func (m *MockFailureRepo) Save(ctx context.Context, tx repository.Tx, f *model.PurchaseFailure) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockFailureRepo) FindByReceipt(ctx context.Context, tx repository.Tx, receipt model.Receipt) (*model.PurchaseFailure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.Saved {
		if bytes.Equal(f.Receipt, receipt) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockFailureRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PurchaseFailure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.PurchaseFailure, 0)
	for _, f := range m.Saved {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock ReceiptValidator ----

type MockValidator struct {
	ValidateFunc func(ctx context.Context, receipt model.Receipt, product *model.Product) (*model.NormalizedPurchase, error)
	Calls        int
}

var _ adapter.ReceiptValidator = (*MockValidator)(nil)

func (m *MockValidator) Validate(ctx context.Context, receipt model.Receipt, product *model.Product) (*model.NormalizedPurchase, error) {
	m.Calls++
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, receipt, product)
	}
	verifiedBy := model.VerifiedByAppleReceipt
	if product.Platform == model.PlatformAndroid {
		verifiedBy = model.VerifiedByGoogleAPI
	}
	return &model.NormalizedPurchase{
		Platform:      product.Platform,
		ProductID:     product.ProductID,
		TransactionID: "txn-1",
		PurchaseDate:  time.Now(),
		VerifiedBy:    verifiedBy,
	}, nil
}

// ---- fixtures ----

func testProduct(id string, platform model.Platform) *model.Product {
	return &model.Product{
		ID:            id,
		Type:          model.ProductTypeSubscription,
		ProductID:     "pickforme_basic",
		Platform:      platform,
		RewardPoint:   900,
		RewardAiPoint: 9000,
		CreatedAt:     time.Now(),
	}
}

func testUser(id string) *model.User {
	return &model.User{
		ID:        id,
		Email:     id + "@example.com",
		Point:     model.DefaultPoint,
		AiPoint:   model.DefaultAiPoint,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
