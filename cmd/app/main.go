// File: cmd/app/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pickforme-subscription/internal/config"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/adapter"
	"pickforme-subscription/internal/infra/adapters/iap"
	pg "pickforme-subscription/internal/infra/db/postgres"
	"pickforme-subscription/internal/infra/logging"
	"pickforme-subscription/internal/infra/metrics"
	red "pickforme-subscription/internal/infra/redis"
	"pickforme-subscription/internal/infra/web"
	"pickforme-subscription/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	if err := pg.Migrate(cfg.Database.URL); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	productRepo := pg.NewProductRepoCacheDecorator(pg.NewPostgresProductRepo(pool), redisClient)
	purchaseRepo := pg.NewPostgresPurchaseRepo(pool)
	failureRepo := pg.NewPostgresPurchaseFailureRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Receipt validators ----
	validator := buildValidator(ctx, cfg, logger)

	// ---- Use cases ----
	statusUC := usecase.NewStatusUseCase(userRepo, purchaseRepo, logger)
	subUC := usecase.NewSubscriptionUseCase(userRepo, productRepo, purchaseRepo, statusUC, tm, validator, logger)
	refundUC := usecase.NewRefundUseCase(userRepo, purchaseRepo, tm, logger)
	failureUC := usecase.NewFailureUseCase(failureRepo, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, 24*time.Hour)
	server := web.NewServer(cfg.Server, subUC, statusUC, refundUC, failureUC, auth, cfg.Auth.AdminAPIKey, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

// buildValidator wires the per-platform receipt validators. Dev mode accepts
// everything; in prod a platform without credentials simply has no validator,
// and purchases for it fail verification.
func buildValidator(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) adapter.ReceiptValidator {
	if cfg.Runtime.Dev {
		logger.Warn().Msg("receipt validation disabled (dev mode)")
		return iap.NewNoopValidator()
	}

	byPlatform := map[model.Platform]adapter.ReceiptValidator{}
	if cfg.IAP.Apple.SharedSecret != "" {
		byPlatform[model.PlatformIOS] = iap.NewAppleValidator(
			cfg.IAP.Apple.SharedSecret, cfg.IAP.Apple.VerifyURL, cfg.IAP.Apple.SandboxURL, cfg.IAP.Apple.ExcludeOld,
		)
	} else {
		logger.Warn().Msg("iap.apple.shared_secret not set; iOS purchases will fail verification")
	}
	if cfg.IAP.Google.CredentialsFile != "" {
		gv, err := iap.NewGoogleValidator(ctx, cfg.IAP.Google.PackageName, cfg.IAP.Google.CredentialsFile, cfg.IAP.Google.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("google validator")
		}
		byPlatform[model.PlatformAndroid] = gv
	} else {
		logger.Warn().Msg("iap.google.credentials_file not set; Android purchases will fail verification")
	}
	return iap.NewMultiValidator(byPlatform)
}
