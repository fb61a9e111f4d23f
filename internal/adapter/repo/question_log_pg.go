package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"oracle/internal/domain"
)

// QuestionLogRepositoryPG implements domain.QuestionLog backed by PostgreSQL.
type QuestionLogRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewQuestionLogRepository creates a new QuestionLogRepositoryPG.
func NewQuestionLogRepository(pool *pgxpool.Pool) *QuestionLogRepositoryPG {
	return &QuestionLogRepositoryPG{pool: pool}
}

// Append inserts one audit row. Rows are never updated or deleted.
func (r *QuestionLogRepositoryPG) Append(ctx context.Context, entry *domain.QuestionLogEntry) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO question_log (id, user_id, tier_id, persona, question_text, response_text, method, country_code, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`,
		entry.ID,
		entry.UserID,
		entry.TierID,
		entry.Persona,
		entry.QuestionText,
		entry.ResponseText,
		entry.Method,
		nullIfEmpty(entry.CountryCode),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert question log: %w", err)
	}
	return nil
}
