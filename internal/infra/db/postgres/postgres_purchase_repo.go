package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pickforme-subscription/internal/domain"
	"pickforme-subscription/internal/domain/model"
	"pickforme-subscription/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PurchaseRepository = (*PostgresPurchaseRepo)(nil)

type PostgresPurchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPurchaseRepo(pool *pgxpool.Pool) *PostgresPurchaseRepo {
	return &PostgresPurchaseRepo{pool: pool}
}

func (r *PostgresPurchaseRepo) Save(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	productJSON, err := json.Marshal(p.Product)
	if err != nil {
		return fmt.Errorf("marshal product snapshot: %w", err)
	}
	purchaseJSON, err := json.Marshal(p.Purchase)
	if err != nil {
		return fmt.Errorf("marshal purchase data: %w", err)
	}
	const q = `
INSERT INTO purchases (id, user_id, product, purchase, receipt, is_expired, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET is_expired = EXCLUDED.is_expired,
      updated_at = now();
`
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, productJSON, purchaseJSON, nullableJSON(p.Receipt), p.IsExpired, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save purchase: %w", err)
	}
	return nil
}

const purchaseColumns = `id, user_id, product, purchase, receipt, is_expired, created_at, updated_at`

func (r *PostgresPurchaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Purchase, error) {
	const q = `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1;`
	row := pickRow(ctx, r.pool, tx, q, id)
	p, err := scanPurchase(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	return p, nil
}

// FindActiveSubscription returns the newest non-expired subscription entry.
// "Active" here means the flag has not been flipped; whether the period has
// run out is the caller's date math, not the store's.
func (r *PostgresPurchaseRepo) FindActiveSubscription(ctx context.Context, tx repository.Tx, userID string) (*model.Purchase, error) {
	const q = `
SELECT ` + purchaseColumns + `
  FROM purchases
 WHERE user_id = $1
   AND is_expired = FALSE
   AND product->>'type' = 'subscription'
 ORDER BY created_at DESC
 LIMIT 1;
`
	row := pickRow(ctx, r.pool, tx, q, userID)
	p, err := scanPurchase(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find active subscription: %w", err)
	}
	return p, nil
}

func (r *PostgresPurchaseRepo) ListSubscriptionsByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	const q = `
SELECT ` + purchaseColumns + `
  FROM purchases
 WHERE user_id = $1
   AND product->>'type' = 'subscription'
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	out := make([]*model.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkExpired flips is_expired. A second call on the same entry is a no-op,
// not an error.
func (r *PostgresPurchaseRepo) MarkExpired(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE purchases SET is_expired = TRUE, updated_at = now() WHERE id = $1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("mark purchase expired: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPurchase(row pgx.Row) (*model.Purchase, error) {
	var (
		p            model.Purchase
		productJSON  []byte
		purchaseJSON []byte
		receipt      []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &productJSON, &purchaseJSON, &receipt, &p.IsExpired, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(productJSON, &p.Product); err != nil {
		return nil, fmt.Errorf("%w: product snapshot: %v", domain.ErrReadDatabaseRow, err)
	}
	if err := json.Unmarshal(purchaseJSON, &p.Purchase); err != nil {
		return nil, fmt.Errorf("%w: purchase data: %v", domain.ErrReadDatabaseRow, err)
	}
	if len(receipt) > 0 {
		p.Receipt = model.Receipt(receipt)
	}
	return &p, nil
}

// nullableJSON maps an empty raw message to SQL NULL; pgx would otherwise
// reject zero-length input for a jsonb column.
func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
