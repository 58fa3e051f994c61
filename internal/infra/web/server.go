package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pickforme-subscription/internal/config"
	"pickforme-subscription/internal/usecase"
)

type Server struct {
	subUC     usecase.SubscriptionUseCase
	statusUC  usecase.StatusUseCase
	refundUC  usecase.RefundUseCase
	failureUC usecase.FailureUseCase
	auth      *AuthManager
	adminKey  string
	log       *zerolog.Logger

	httpServer *http.Server
}

func NewServer(
	cfg config.ServerConfig,
	subUC usecase.SubscriptionUseCase,
	statusUC usecase.StatusUseCase,
	refundUC usecase.RefundUseCase,
	failureUC usecase.FailureUseCase,
	auth *AuthManager,
	adminKey string,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		subUC:     subUC,
		statusUC:  statusUC,
		refundUC:  refundUC,
		failureUC: failureUC,
		auth:      auth,
		adminKey:  adminKey,
		log:       logger,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Routes builds the full router. Exposed separately so tests can mount it on
// httptest.Server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.requestLogMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/purchase", func(r chi.Router) {
		// Catalog listing needs no session; the mobile storefront calls it
		// before login.
		r.Get("/subscription/products/{platform}", s.listProductsHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.userAuthMiddleware)
			r.Post("/subscription", s.createSubscriptionHandler())
			r.Get("/subscription/list", s.listSubscriptionsHandler())
			r.Get("/subscription/status", s.statusHandler())
			r.Get("/subscription/refund", s.refundEligibilityHandler())
			r.Post("/subscription/refund", s.processRefundHandler())
		})

		r.Group(func(r chi.Router) {
			r.Use(s.adminAuthMiddleware)
			r.Post("/admin/subscription", s.adminCreateSubscriptionHandler())
			r.Get("/admin/failures/{userID}", s.listFailuresHandler())
		})
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
