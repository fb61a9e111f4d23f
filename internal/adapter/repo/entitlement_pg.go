package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"oracle/internal/domain"
)

// EntitlementRepositoryPG implements domain.EntitlementStore backed by
// PostgreSQL.
type EntitlementRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewEntitlementRepository creates a new EntitlementRepositoryPG.
func NewEntitlementRepository(pool *pgxpool.Pool) *EntitlementRepositoryPG {
	return &EntitlementRepositoryPG{pool: pool}
}

const entitlementColumns = `user_id, tier_id, questions_used, last_question_at, tier_expires_at, profile_name, profile_birth_date, setup_complete, created_at, updated_at`

// Get fetches a user's entitlement row.
func (r *EntitlementRepositoryPG) Get(ctx context.Context, userID string) (*domain.Entitlement, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entitlementColumns+` FROM entitlements WHERE user_id = $1`, userID)
	return scanEntitlement(row)
}

// Create inserts a fresh entitlement row.
func (r *EntitlementRepositoryPG) Create(ctx context.Context, e *domain.Entitlement) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO entitlements (user_id, tier_id, questions_used, last_question_at, tier_expires_at, profile_name, profile_birth_date, setup_complete, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`,
		e.UserID,
		e.TierID,
		e.QuestionsUsed,
		e.LastQuestionAt,
		e.TierExpiresAt,
		nullIfEmpty(e.ProfileName),
		e.ProfileBirthDate,
		e.SetupComplete,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entitlement: %w", err)
	}
	return nil
}

// Save persists the full mutable state of an existing row.
func (r *EntitlementRepositoryPG) Save(ctx context.Context, e *domain.Entitlement) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE entitlements
SET tier_id = $2,
    questions_used = $3,
    last_question_at = $4,
    tier_expires_at = $5,
    profile_name = $6,
    profile_birth_date = $7,
    setup_complete = $8,
    updated_at = $9
WHERE user_id = $1
`,
		e.UserID,
		e.TierID,
		e.QuestionsUsed,
		e.LastQuestionAt,
		e.TierExpiresAt,
		nullIfEmpty(e.ProfileName),
		e.ProfileBirthDate,
		e.SetupComplete,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update entitlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ConsumeQuestion is the per-user serialization point: the quota and cooldown
// rules are re-validated inside a single conditional UPDATE, so two racing
// requests can never both consume the last slot or land inside one cooldown
// window.
func (r *EntitlementRepositoryPG) ConsumeQuestion(ctx context.Context, userID string, p domain.ConsumeParams) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE entitlements
SET questions_used = questions_used + 1,
    last_question_at = $2,
    updated_at = $2
WHERE user_id = $1
  AND ($3::int < 0 OR questions_used < $3)
  AND (last_question_at IS NULL OR last_question_at <= $2::timestamptz - make_interval(secs => $4))
`,
		userID,
		p.Now,
		p.Quota,
		p.Cooldown.Seconds(),
	)
	if err != nil {
		return false, fmt.Errorf("consume question: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanEntitlement(row pgx.Row) (*domain.Entitlement, error) {
	var (
		e    domain.Entitlement
		name *string
	)
	if err := row.Scan(
		&e.UserID,
		&e.TierID,
		&e.QuestionsUsed,
		&e.LastQuestionAt,
		&e.TierExpiresAt,
		&name,
		&e.ProfileBirthDate,
		&e.SetupComplete,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if name != nil {
		e.ProfileName = *name
	}
	return &e, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
