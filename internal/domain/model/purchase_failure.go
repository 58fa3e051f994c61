package model

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseFailure is an append-only audit record of a purchase confirmation
// attempt that errored. It is written outside the purchase transaction so it
// survives the rollback it documents, and it is never read back by the ledger
// itself; support staff query it when triaging payment complaints.
type PurchaseFailure struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	ProductID    string         `json:"productId"`
	Platform     Platform       `json:"platform,omitempty"`
	Receipt      Receipt        `json:"receipt,omitempty"`
	ErrorMessage string         `json:"errorMessage"`
	ErrorStack   string         `json:"errorStack,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func NewPurchaseFailure(userID, productID string, receipt Receipt, cause error) *PurchaseFailure {
	f := &PurchaseFailure{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Receipt:   receipt,
		CreatedAt: time.Now(),
	}
	if cause != nil {
		f.ErrorMessage = cause.Error()
	}
	return f
}
