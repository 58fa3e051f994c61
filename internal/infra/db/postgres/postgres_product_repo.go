package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.ProductRepository = (*PostgresProductRepo)(nil)

type PostgresProductRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepo(pool *pgxpool.Pool) *PostgresProductRepo {
	return &PostgresProductRepo{pool: pool}
}

const productColumns = `id, type, product_id, platform, reward_point, reward_ai_point, reward_event, created_at`

func (r *PostgresProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
INSERT INTO products (id, type, product_id, platform, reward_point, reward_ai_point, reward_event, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET type            = EXCLUDED.type,
      product_id      = EXCLUDED.product_id,
      platform        = EXCLUDED.platform,
      reward_point    = EXCLUDED.reward_point,
      reward_ai_point = EXCLUDED.reward_ai_point,
      reward_event    = EXCLUDED.reward_event;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Type, p.ProductID, p.Platform, p.RewardPoint, p.RewardAiPoint, p.RewardEvent, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *PostgresProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	row := pickRow(ctx, r.pool, tx, q, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r *PostgresProductRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *PostgresProductRepo) FindSubscriptionsByPlatform(ctx context.Context, tx repository.Tx, platform string) ([]*model.Product, error) {
	const q = `
SELECT ` + productColumns + `
  FROM products
 WHERE platform = $1 AND type = $2
 ORDER BY created_at;
`
	rows, err := queryRows(ctx, r.pool, tx, q, platform, model.ProductTypeSubscription)
	if err != nil {
		return nil, fmt.Errorf("list subscription products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Type, &p.ProductID, &p.Platform, &p.RewardPoint, &p.RewardAiPoint, &p.RewardEvent, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*model.Product, error) {
	out := make([]*model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
