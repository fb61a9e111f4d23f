package domain

import "time"

// Entitlement is the durable per-user record every allow/deny decision is made
// against. One row per user, created on first contact, never deleted.
type Entitlement struct {
	UserID           string
	TierID           TierID
	QuestionsUsed    int
	LastQuestionAt   *time.Time
	TierExpiresAt    *time.Time
	ProfileName      string
	ProfileBirthDate *time.Time
	SetupComplete    bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewEntitlement returns the fresh default-tier record for a first-contact user.
func NewEntitlement(userID string, defaultTier TierID, now time.Time) *Entitlement {
	return &Entitlement{
		UserID:    userID,
		TierID:    defaultTier,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TierExpired reports whether a paid tier's validity window has passed. A paid
// tier without an expiry on record is treated as expired.
func (e *Entitlement) TierExpired(t Tier, now time.Time) bool {
	if !t.Paid() {
		return false
	}
	return e.TierExpiresAt == nil || !e.TierExpiresAt.After(now)
}
