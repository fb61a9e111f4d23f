package domain

import (
	"context"
	"time"
)

// ConsumeParams carries the tier rules an atomic consume must re-validate.
type ConsumeParams struct {
	Quota    int // QuotaUnlimited for no limit
	Cooldown time.Duration
	Now      time.Time
}

// EntitlementStore defines persistence for per-user entitlement records.
type EntitlementStore interface {
	// Get returns the entitlement for userID, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Entitlement, error)
	// Create inserts a fresh record. The record must not already exist.
	Create(ctx context.Context, e *Entitlement) error
	// Save persists the full mutable state of an existing record.
	Save(ctx context.Context, e *Entitlement) error
	// ConsumeQuestion increments questions_used and stamps last_question_at in
	// one atomic operation, re-validating quota and cooldown inside it. It
	// reports false when the record no longer satisfies either rule; nothing is
	// consumed in that case.
	ConsumeQuestion(ctx context.Context, userID string, p ConsumeParams) (bool, error)
}

// QuestionLog appends audit rows for answered requests.
type QuestionLog interface {
	Append(ctx context.Context, entry *QuestionLogEntry) error
}
