package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
	"pickforme-subscription/internal/infra/metrics"
	red "pickforme-subscription/internal/infra/redis"
)

var _ repository.ProductRepository = (*productRepoCacheDecorator)(nil)

// productRepoCacheDecorator caches the immutable catalog in Redis. The
// catalog only changes on seeding, so a short TTL plus invalidation on Save
// is enough.
type productRepoCacheDecorator struct {
	inner repository.ProductRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProductRepoCacheDecorator(inner repository.ProductRepository, cache red.RedisClient) repository.ProductRepository {
	return &productRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func (d *productRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	key := fmt.Sprintf("product:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("product", "hit")
		var p model.Product
		if json.Unmarshal([]byte(val), &p) == nil {
			return &p, nil
		}
	}

	metrics.IncCacheRequest("product", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		bytes, _ := json.Marshal(p)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return p, nil
}

// For write operations, we must invalidate the cache.
func (d *productRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	d.cache.Del(ctx, fmt.Sprintf("product:%s", p.ID))
	d.cache.Del(ctx, "products:all", fmt.Sprintf("products:subs:%s", p.Platform))
	return d.inner.Save(ctx, tx, p)
}

func (d *productRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Product, error) {
	key := "products:all"
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("product_list", "hit")
		var ps []*model.Product
		if json.Unmarshal([]byte(val), &ps) == nil {
			return ps, nil
		}
	}

	metrics.IncCacheRequest("product_list", "miss")
	ps, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		bytes, _ := json.Marshal(ps)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return ps, nil
}

func (d *productRepoCacheDecorator) FindSubscriptionsByPlatform(ctx context.Context, tx repository.Tx, platform string) ([]*model.Product, error) {
	key := fmt.Sprintf("products:subs:%s", platform)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("product_subs", "hit")
		var ps []*model.Product
		if json.Unmarshal([]byte(val), &ps) == nil {
			return ps, nil
		}
	}

	metrics.IncCacheRequest("product_subs", "miss")
	ps, err := d.inner.FindSubscriptionsByPlatform(ctx, tx, platform)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		bytes, _ := json.Marshal(ps)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return ps, nil
}
