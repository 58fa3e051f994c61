// File: internal/infra/adapters/iap/apple_validator.go
package iap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/adapter"
	"pickforme-subscription/internal/infra/metrics"
)

const (
	appleProdVerifyURL    = "https://buy.itunes.apple.com/verifyReceipt"
	appleSandboxVerifyURL = "https://sandbox.itunes.apple.com/verifyReceipt"

	// Apple status: this receipt is from the sandbox environment but was sent
	// to production. Retry against sandbox.
	appleStatusSandboxReceipt = 21007
)

var _ adapter.ReceiptValidator = (*AppleValidator)(nil)

// AppleValidator verifies iOS receipts via the verifyReceipt endpoint.
// A receipt that decodes but does not carry an unexpired transaction for the
// expected SKU is domain.ErrReceiptInvalid, same as one that does not decode
// at all.
type AppleValidator struct {
	sharedSecret string
	verifyURL    string
	sandboxURL   string
	excludeOld   bool
	client       *http.Client
}

func NewAppleValidator(sharedSecret, verifyURL, sandboxURL string, excludeOld bool) *AppleValidator {
	if verifyURL == "" {
		verifyURL = appleProdVerifyURL
	}
	if sandboxURL == "" {
		sandboxURL = appleSandboxVerifyURL
	}
	return &AppleValidator{
		sharedSecret: sharedSecret,
		verifyURL:    verifyURL,
		sandboxURL:   sandboxURL,
		excludeOld:   excludeOld,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

type appleVerifyResponse struct {
	Status            int `json:"status"`
	LatestReceiptInfo []struct {
		ProductID             string `json:"product_id"`
		TransactionID         string `json:"transaction_id"`
		OriginalTransactionID string `json:"original_transaction_id"`
		PurchaseDateMs        string `json:"purchase_date_ms"`
		ExpiresDateMs         string `json:"expires_date_ms"`
		IsTrialPeriod         string `json:"is_trial_period"`
	} `json:"latest_receipt_info"`
}

func (a *AppleValidator) Validate(ctx context.Context, receipt model.Receipt, product *model.Product) (*model.NormalizedPurchase, error) {
	start := time.Now()
	defer func() { metrics.ObserveReceiptVerify(string(model.PlatformIOS), time.Since(start).Seconds()) }()

	receiptData, err := decodeAppleReceipt(receipt)
	if err != nil {
		metrics.IncReceiptVerify(string(model.PlatformIOS), "invalid")
		return nil, fmt.Errorf("%w: %v", domain.ErrReceiptInvalid, err)
	}

	out, err := a.verify(ctx, a.verifyURL, receiptData)
	if err != nil {
		metrics.IncReceiptVerify(string(model.PlatformIOS), "error")
		return nil, err
	}
	if out.Status == appleStatusSandboxReceipt {
		if out, err = a.verify(ctx, a.sandboxURL, receiptData); err != nil {
			metrics.IncReceiptVerify(string(model.PlatformIOS), "error")
			return nil, err
		}
	}
	if out.Status != 0 {
		metrics.IncReceiptVerify(string(model.PlatformIOS), "invalid")
		return nil, fmt.Errorf("%w: apple status %d", domain.ErrReceiptInvalid, out.Status)
	}

	np, err := a.pickTransaction(out, product)
	if err != nil {
		metrics.IncReceiptVerify(string(model.PlatformIOS), "invalid")
		return nil, err
	}
	metrics.IncReceiptVerify(string(model.PlatformIOS), "ok")
	return np, nil
}

func (a *AppleValidator) verify(ctx context.Context, endpoint, receiptData string) (*appleVerifyResponse, error) {
	payload := map[string]any{
		"receipt-data":             receiptData,
		"password":                 a.sharedSecret,
		"exclude-old-transactions": a.excludeOld,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("apple verifyReceipt http %d", resp.StatusCode)
	}
	var out appleVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// pickTransaction selects the latest transaction for the product's SKU and
// requires it to be unexpired right now.
func (a *AppleValidator) pickTransaction(out *appleVerifyResponse, product *model.Product) (*model.NormalizedPurchase, error) {
	var best *model.NormalizedPurchase
	var bestExpiry time.Time
	for _, info := range out.LatestReceiptInfo {
		if info.ProductID != product.ProductID {
			continue
		}
		expiry := msToTime(info.ExpiresDateMs)
		if best != nil && !expiry.After(bestExpiry) {
			continue
		}
		np := &model.NormalizedPurchase{
			Platform:              model.PlatformIOS,
			ProductID:             info.ProductID,
			TransactionID:         info.TransactionID,
			OriginalTransactionID: info.OriginalTransactionID,
			PurchaseDate:          msToTime(info.PurchaseDateMs),
			IsTrial:               info.IsTrialPeriod == "true",
			VerifiedBy:            model.VerifiedByAppleReceipt,
		}
		if !expiry.IsZero() {
			e := expiry
			np.ExpiryTime = &e
		}
		best, bestExpiry = np, expiry
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no transaction for sku %s", domain.ErrReceiptInvalid, product.ProductID)
	}
	if best.ExpiryTime != nil && !best.ExpiryTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: subscription expired at store", domain.ErrReceiptInvalid)
	}
	return best, nil
}

// decodeAppleReceipt accepts either a bare base64 string or an object with a
// receiptData field, which is how older clients wrap it.
func decodeAppleReceipt(receipt model.Receipt) (string, error) {
	var s string
	if err := json.Unmarshal(receipt, &s); err == nil && s != "" {
		return s, nil
	}
	var obj struct {
		ReceiptData string `json:"receiptData"`
	}
	if err := json.Unmarshal(receipt, &obj); err == nil && obj.ReceiptData != "" {
		return obj.ReceiptData, nil
	}
	return "", fmt.Errorf("receipt carries no receipt-data")
}

func msToTime(ms string) time.Time {
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(n)
}
