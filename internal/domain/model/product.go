package model

import (
	"time"

	"pickforme-subscription/internal/domain"
)

type ProductType string

const (
	ProductTypePurchase     ProductType = "purchase"
	ProductTypeSubscription ProductType = "subscription"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Product is a purchasable catalog entry. Products are platform-scoped: the
// same SKU on iOS and Android is two separate rows. Immutable after seeding;
// the ledger only ever reads products and snapshots them into entries.
type Product struct {
	ID   string      `json:"id"`
	Type ProductType `json:"type"`
	// ProductID is the store SKU the platform knows the product by
	// (e.g. "pickforme_basic").
	ProductID     string   `json:"productId"`
	Platform      Platform `json:"platform"`
	RewardPoint   int64    `json:"rewardPoint"`
	RewardAiPoint int64    `json:"rewardAiPoint"`
	// RewardEvent, when non-zero, enrolls the buyer into a legacy event
	// membership cohort.
	RewardEvent int       `json:"rewardEvent"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductReward is the balance change a purchase credits onto the user.
type ProductReward struct {
	Point   int64
	AiPoint int64
	Event   int
}

func (p *Product) IsZero() bool { return p == nil || p.ID == "" }

func (p *Product) IsSubscription() bool {
	return p != nil && p.Type == ProductTypeSubscription
}

func (p *Product) Rewards() ProductReward {
	return ProductReward{Point: p.RewardPoint, AiPoint: p.RewardAiPoint, Event: p.RewardEvent}
}

// NewProduct validates and constructs a catalog entry.
func NewProduct(id string, typ ProductType, productID string, platform Platform, rewardPoint, rewardAiPoint int64) (*Product, error) {
	if id == "" || productID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if typ != ProductTypePurchase && typ != ProductTypeSubscription {
		return nil, domain.ErrInvalidArgument
	}
	if platform != PlatformIOS && platform != PlatformAndroid {
		return nil, domain.ErrInvalidArgument
	}
	if rewardPoint < 0 || rewardAiPoint < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Product{
		ID:            id,
		Type:          typ,
		ProductID:     productID,
		Platform:      platform,
		RewardPoint:   rewardPoint,
		RewardAiPoint: rewardAiPoint,
		CreatedAt:     time.Now(),
	}, nil
}
