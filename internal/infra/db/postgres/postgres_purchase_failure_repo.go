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
var _ repository.PurchaseFailureRepository = (*PostgresPurchaseFailureRepo)(nil)

type PostgresPurchaseFailureRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPurchaseFailureRepo(pool *pgxpool.Pool) *PostgresPurchaseFailureRepo {
	return &PostgresPurchaseFailureRepo{pool: pool}
}

func (r *PostgresPurchaseFailureRepo) Save(ctx context.Context, tx repository.Tx, f *model.PurchaseFailure) error {
	var metaJSON interface{}
	if f.Meta != nil {
		b, err := json.Marshal(f.Meta)
		if err != nil {
			return fmt.Errorf("marshal failure meta: %w", err)
		}
		metaJSON = b
	}
	const q = `
INSERT INTO purchase_failures (id, user_id, product_id, platform, receipt, error_message, error_stack, meta, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		f.ID, f.UserID, f.ProductID, f.Platform, nullableJSON(f.Receipt), f.ErrorMessage, f.ErrorStack, metaJSON, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save purchase failure: %w", err)
	}
	return nil
}

const failureColumns = `id, user_id, product_id, platform, receipt, error_message, error_stack, meta, created_at`

// FindByReceipt matches on the md5 of the receipt text, which the dedup index
// covers.
func (r *PostgresPurchaseFailureRepo) FindByReceipt(ctx context.Context, tx repository.Tx, receipt model.Receipt) (*model.PurchaseFailure, error) {
	if len(receipt) == 0 {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT ` + failureColumns + `
  FROM purchase_failures
 WHERE md5(receipt::text) = md5($1::jsonb::text)
 ORDER BY created_at
 LIMIT 1;
`
	row := pickRow(ctx, r.pool, tx, q, []byte(receipt))
	f, err := scanFailure(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find purchase failure by receipt: %w", err)
	}
	return f, nil
}

func (r *PostgresPurchaseFailureRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PurchaseFailure, error) {
	const q = `
SELECT ` + failureColumns + `
  FROM purchase_failures
 WHERE user_id = $1
 ORDER BY created_at DESC;
`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchase failures: %w", err)
	}
	defer rows.Close()
	out := make([]*model.PurchaseFailure, 0)
	for rows.Next() {
		f, err := scanFailure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFailure(row pgx.Row) (*model.PurchaseFailure, error) {
	var (
		f        model.PurchaseFailure
		receipt  []byte
		metaJSON []byte
	)
	if err := row.Scan(&f.ID, &f.UserID, &f.ProductID, &f.Platform, &receipt, &f.ErrorMessage, &f.ErrorStack, &metaJSON, &f.CreatedAt); err != nil {
		return nil, err
	}
	if len(receipt) > 0 {
		f.Receipt = model.Receipt(receipt)
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &f.Meta); err != nil {
			return nil, fmt.Errorf("%w: failure meta: %v", domain.ErrReadDatabaseRow, err)
		}
	}
	return &f, nil
}
