// File: internal/infra/adapters/iap/google_validator.go
package iap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/adapter"
	"pickforme-subscription/internal/infra/metrics"
)

const (
	androidPublisherBaseURL = "https://androidpublisher.googleapis.com"
	androidPublisherScope   = "https://www.googleapis.com/auth/androidpublisher"

	subscriptionStateActive = "SUBSCRIPTION_STATE_ACTIVE"
)

var _ adapter.ReceiptValidator = (*GoogleValidator)(nil)

// GoogleValidator verifies Android purchase tokens against the Play Developer
// API (subscriptionsv2). Anything other than an ACTIVE subscription state is
// domain.ErrReceiptInvalid.
type GoogleValidator struct {
	packageName string
	baseURL     string
	tokenSource oauth2.TokenSource
	client      *http.Client
}

// NewGoogleValidator authenticates with a service account JSON key file.
func NewGoogleValidator(ctx context.Context, packageName, credentialsFile, baseURL string) (*GoogleValidator, error) {
	if packageName == "" {
		return nil, fmt.Errorf("google package name empty")
	}
	keyJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(keyJSON, androidPublisherScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	if baseURL == "" {
		baseURL = androidPublisherBaseURL
	}
	return &GoogleValidator{
		packageName: packageName,
		baseURL:     baseURL,
		tokenSource: jwtCfg.TokenSource(ctx),
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// androidReceipt is the shape the mobile client submits for Play purchases.
type androidReceipt struct {
	PackageName   string `json:"packageName"`
	ProductID     string `json:"productId"`
	PurchaseToken string `json:"purchaseToken"`
}

type subscriptionsV2Response struct {
	SubscriptionState string `json:"subscriptionState"`
	StartTime         string `json:"startTime"`
	LatestOrderID     string `json:"latestOrderId"`
	LineItems         []struct {
		ProductID  string `json:"productId"`
		ExpiryTime string `json:"expiryTime"`
		OfferDetails struct {
			OfferID string `json:"offerId"`
		} `json:"offerDetails"`
	} `json:"lineItems"`
}

func (g *GoogleValidator) Validate(ctx context.Context, receipt model.Receipt, product *model.Product) (*model.NormalizedPurchase, error) {
	start := time.Now()
	defer func() { metrics.ObserveReceiptVerify(string(model.PlatformAndroid), time.Since(start).Seconds()) }()

	var r androidReceipt
	if err := json.Unmarshal(receipt, &r); err != nil || r.PurchaseToken == "" {
		metrics.IncReceiptVerify(string(model.PlatformAndroid), "invalid")
		return nil, fmt.Errorf("%w: receipt carries no purchase token", domain.ErrReceiptInvalid)
	}

	out, err := g.fetchSubscription(ctx, r.PurchaseToken)
	if err != nil {
		metrics.IncReceiptVerify(string(model.PlatformAndroid), "error")
		return nil, err
	}
	if out == nil {
		metrics.IncReceiptVerify(string(model.PlatformAndroid), "invalid")
		return nil, fmt.Errorf("%w: play purchase not found", domain.ErrReceiptInvalid)
	}
	if out.SubscriptionState != subscriptionStateActive {
		metrics.IncReceiptVerify(string(model.PlatformAndroid), "invalid")
		return nil, fmt.Errorf("%w: play subscription state %s", domain.ErrReceiptInvalid, out.SubscriptionState)
	}

	np := &model.NormalizedPurchase{
		Platform:      model.PlatformAndroid,
		ProductID:     product.ProductID,
		TransactionID: out.LatestOrderID,
		VerifiedBy:    model.VerifiedByGoogleAPI,
	}
	if np.TransactionID == "" {
		np.TransactionID = r.PurchaseToken
	}
	if t, err := time.Parse(time.RFC3339, out.StartTime); err == nil {
		np.PurchaseDate = t
	} else {
		np.PurchaseDate = time.Now()
	}
	for _, li := range out.LineItems {
		if li.ProductID != product.ProductID {
			continue
		}
		if t, err := time.Parse(time.RFC3339, li.ExpiryTime); err == nil {
			e := t
			np.ExpiryTime = &e
		}
	}
	metrics.IncReceiptVerify(string(model.PlatformAndroid), "ok")
	return np, nil
}

func (g *GoogleValidator) fetchSubscription(ctx context.Context, purchaseToken string) (*subscriptionsV2Response, error) {
	tok, err := g.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("google token: %w", err)
	}
	endpoint := fmt.Sprintf("%s/androidpublisher/v3/applications/%s/purchases/subscriptionsv2/tokens/%s",
		g.baseURL, url.PathEscape(g.packageName), url.PathEscape(purchaseToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	tok.SetAuthHeader(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		// Play answers 400/404 for tokens it has never issued.
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("androidpublisher http %d", resp.StatusCode)
	}
	var out subscriptionsV2Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
