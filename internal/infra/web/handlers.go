package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/infra/logging"
	"pickforme-subscription/internal/infra/metrics"
)

type createSubscriptionRequest struct {
	ProductID string          `json:"productId"`
	Receipt   json.RawMessage `json:"receipt"`
}

// Handler for confirming a store purchase and granting the subscription.
func (s *Server) createSubscriptionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := logging.UserID(ctx)

		var req createSubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		purchase, err := s.subUC.CreateSubscription(ctx, userID, req.ProductID, model.Receipt(req.Receipt))
		if err != nil {
			// The failure record is written on the pool, after the grant
			// transaction has already rolled back.
			metrics.IncPurchaseFailure()
			_ = s.failureUC.Record(ctx, userID, req.ProductID, model.Receipt(req.Receipt), err)
			s.writeDomainError(w, err)
			return
		}

		metrics.IncSubscriptionGranted(string(purchase.Purchase.Platform), purchase.Purchase.VerifiedBy)
		writeJSON(w, http.StatusCreated, purchase)
	}
}

// Admin variant: grants without receipt validation. Every other check still
// applies.
func (s *Server) adminCreateSubscriptionHandler() http.HandlerFunc {
	type adminRequest struct {
		UserID    string          `json:"userId"`
		ProductID string          `json:"productId"`
		Receipt   json.RawMessage `json:"receipt"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req adminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.ProductID == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		purchase, err := s.subUC.CreateSubscriptionWithoutValidation(ctx, req.UserID, req.ProductID, model.Receipt(req.Receipt))
		if err != nil {
			s.writeDomainError(w, err)
			return
		}

		metrics.IncSubscriptionGranted(string(purchase.Purchase.Platform), purchase.Purchase.VerifiedBy)
		writeJSON(w, http.StatusCreated, purchase)
	}
}

// Handler for the storefront catalog. Unknown platforms get an empty list.
func (s *Server) listProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		platform := chi.URLParam(r, "platform")

		products, err := s.subUC.SubscriptionProductsByPlatform(ctx, platform)
		if err != nil {
			http.Error(w, "Failed to list products", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Product `json:"data"`
		}{Data: products}
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) listSubscriptionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := logging.UserID(ctx)

		purchases, err := s.subUC.UserSubscriptions(ctx, userID)
		if err != nil {
			http.Error(w, "Failed to list subscriptions", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data []*model.Purchase `json:"data"`
		}{Data: purchases}
		writeJSON(w, http.StatusOK, response)
	}
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := logging.UserID(ctx)

		status, err := s.statusUC.SubscriptionStatus(ctx, userID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func (s *Server) refundEligibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := logging.UserID(ctx)

		elig, err := s.refundUC.CheckRefundEligibility(ctx, userID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, elig)
	}
}

func (s *Server) processRefundHandler() http.HandlerFunc {
	type refundRequest struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := logging.UserID(ctx)

		var req refundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubscriptionID == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		result, err := s.refundUC.ProcessRefund(ctx, userID, req.SubscriptionID)
		switch {
		case errors.Is(err, domain.ErrRefundIneligible):
			// result carries the user-facing reason; nothing was mutated.
			metrics.IncRefund("ineligible")
			writeJSON(w, http.StatusBadRequest, result)
		case err != nil:
			metrics.IncRefund("error")
			s.writeDomainError(w, err)
		default:
			metrics.IncRefund("completed")
			writeJSON(w, http.StatusOK, result)
		}
	}
}

func (s *Server) listFailuresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := chi.URLParam(r, "userID")

		failures, err := s.failureUC.ListByUser(ctx, userID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}

		response := struct {
			Data []*model.PurchaseFailure `json:"data"`
		}{Data: failures}
		writeJSON(w, http.StatusOK, response)
	}
}

// writeDomainError maps sentinel errors to HTTP statuses and renders the
// user-facing message.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrSubscriptionNotFound),
		errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadySubscribed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrReceiptInvalid),
		errors.Is(err, domain.ErrRefundIneligible),
		errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	default:
		s.log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, struct {
		Msg string `json:"msg"`
	}{Msg: domain.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
