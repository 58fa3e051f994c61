package model

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"pickforme-subscription/internal/domain"

	"github.com/oklog/ulid/v2"
)

// Receipt is the raw, platform-specific purchase receipt exactly as the client
// sent it: a base64 JSON string for iOS, an object with packageName and
// purchaseToken for Android. The ledger never inspects it; it is stored for
// audit and handed opaquely to the platform validators.
type Receipt = json.RawMessage

// VerifiedBy records which path vouched for a purchase.
const (
	VerifiedByAppleReceipt = "apple-receipt"
	VerifiedByGoogleAPI    = "google-api"
	VerifiedByAdmin        = "admin"
)

// NormalizedPurchase is the platform-agnostic shape both receipt validators
// produce, so nothing downstream branches on platform.
type NormalizedPurchase struct {
	Platform              Platform   `json:"platform"`
	ProductID             string     `json:"productId"`
	TransactionID         string     `json:"transactionId"`
	OriginalTransactionID string     `json:"originalTransactionId,omitempty"`
	PurchaseDate          time.Time  `json:"purchaseDate"`
	ExpiryTime            *time.Time `json:"expiryTime,omitempty"`
	IsTrial               bool       `json:"isTrial"`
	VerifiedBy            string     `json:"verifiedBy"`
	CreatedByAdmin        bool       `json:"createdByAdmin,omitempty"`
	VerificationNote      string     `json:"verificationNote,omitempty"`
}

// Purchase is one granted entitlement period: the durable ledger entry written
// when a subscription purchase commits. The product is snapshotted at purchase
// time so later catalog edits never change past grants. CreatedAt anchors all
// expiration math and is never recomputed.
//
// Invariant: per user at most one entry with IsExpired=false and a
// subscription-type product exists at any instant. Creation re-checks status
// inside the same transaction that inserts the entry.
type Purchase struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Product   Product             `json:"product"`
	Purchase  NormalizedPurchase  `json:"purchase"`
	Receipt   Receipt             `json:"receipt,omitempty"`
	IsExpired bool                `json:"isExpired"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// NewPurchase snapshots the product and binds the normalized purchase data to
// the user. IDs are ULIDs so lexicographic order matches creation order.
func NewPurchase(userID string, product *Product, np NormalizedPurchase, receipt Receipt) (*Purchase, error) {
	if userID == "" || product.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Purchase{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:    userID,
		Product:   *product,
		Purchase:  np,
		Receipt:   receipt,
		IsExpired: false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AdminPurchase builds the normalized record for a support-staff grant that
// bypassed receipt validation. The synthetic transaction id keeps such grants
// separately auditable.
func AdminPurchase(product *Product, hasReceipt bool) NormalizedPurchase {
	platform := product.Platform
	if !hasReceipt {
		platform = PlatformAndroid
	}
	now := time.Now()
	return NormalizedPurchase{
		Platform:         platform,
		ProductID:        product.ProductID,
		TransactionID:    fmt.Sprintf("admin_%d", now.UnixMilli()),
		PurchaseDate:     now,
		VerifiedBy:       VerifiedByAdmin,
		CreatedByAdmin:   true,
		VerificationNote: "manual grant without receipt validation",
	}
}
