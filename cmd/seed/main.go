// File: cmd/seed/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"pickforme-subscription/internal/config"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
	pg "pickforme-subscription/internal/infra/db/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pg.Migrate(cfg.Database.URL); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	productRepo := pg.NewPostgresProductRepo(pool)

	// If products already exist, do nothing
	existing, err := productRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d products already present. No changes.\n", len(existing))
		for _, p := range existing {
			fmt.Printf("  - %s (%s/%s sku=%s point=%d aiPoint=%d)\n", p.ID, p.Platform, p.Type, p.ProductID, p.RewardPoint, p.RewardAiPoint)
		}
		return
	}

	// One subscription product per platform, same SKU rewards.
	seed := []struct {
		ID       string
		SKU      string
		Platform model.Platform
		Point    int64
		AiPoint  int64
	}{
		{"sub-basic-ios", "pickforme_basic", model.PlatformIOS, 900, 9000},
		{"sub-basic-android", "pickforme_basic", model.PlatformAndroid, 900, 9000},
	}

	for _, s := range seed {
		p, err := model.NewProduct(s.ID, model.ProductTypeSubscription, s.SKU, s.Platform, s.Point, s.AiPoint)
		if err != nil {
			log.Fatalf("build product %s: %v", s.ID, err)
		}
		if err := productRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save product %s: %v", s.ID, err)
		}
		fmt.Printf("seeded %s (%s)\n", p.ID, p.Platform)
	}
	fmt.Println("done.")
}
