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

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, email, point, ai_point, event, membership_at, last_membership_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,now()
) ON CONFLICT (id) DO UPDATE SET
  email=$2, point=$3, ai_point=$4, event=$5,
  membership_at=$6, last_membership_at=$7, updated_at=now();
`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Email, u.Point, u.AiPoint, u.Event, u.MembershipAt, u.LastMembershipAt, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `
SELECT id, email, point, ai_point, event, membership_at, last_membership_at, created_at, updated_at
  FROM users WHERE id=$1;`
	row := pickRow(ctx, r.pool, tx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Point, &u.AiPoint, &u.Event, &u.MembershipAt, &u.LastMembershipAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ApplyPurchaseRewards credits the reward balances in one statement.
// membership_at is only stamped for users who never held a membership before,
// so grandfathered cohorts keep their original anchor date; last_membership_at
// always moves. A zero reward event leaves the cohort flag alone.
func (r *PostgresUserRepo) ApplyPurchaseRewards(ctx context.Context, tx repository.Tx, userID string, rewards model.ProductReward) error {
	const q = `
UPDATE users SET
  point    = point + $2,
  ai_point = ai_point + $3,
  event    = CASE WHEN $4 <> 0 THEN $4 ELSE event END,
  membership_at = CASE
    WHEN membership_at IS NULL AND last_membership_at IS NULL THEN now()
    ELSE membership_at
  END,
  last_membership_at = now(),
  updated_at = now()
WHERE id = $1;
`
	ct, err := execSQL(ctx, r.pool, tx, q, userID, rewards.Point, rewards.AiPoint, rewards.Event)
	if err != nil {
		return fmt.Errorf("apply purchase rewards: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResetToBaseline puts the user back to the no-subscription state.
func (r *PostgresUserRepo) ResetToBaseline(ctx context.Context, tx repository.Tx, userID string) error {
	const q = `
UPDATE users SET
  point    = $2,
  ai_point = $3,
  event    = 0,
  membership_at      = NULL,
  last_membership_at = NULL,
  updated_at = now()
WHERE id = $1;
`
	ct, err := execSQL(ctx, r.pool, tx, q, userID, int64(model.DefaultPoint), int64(model.DefaultAiPoint))
	if err != nil {
		return fmt.Errorf("reset user to baseline: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
