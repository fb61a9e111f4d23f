package domain

import "time"

// TierID identifies a subscription tier.
type TierID string

const (
	TierFree      TierID = "free"
	TierPremium6M TierID = "premium_6m"
	TierPremium12 TierID = "premium_12m"
)

// QuotaUnlimited marks a tier without a question limit.
const QuotaUnlimited = -1

// Tier describes the rules of one subscription level.
type Tier struct {
	ID         TierID
	Name       string
	Quota      int // QuotaUnlimited for no limit
	Cooldown   time.Duration
	PriceCents int
}

// Unlimited reports whether the tier has no question quota.
func (t Tier) Unlimited() bool {
	return t.Quota == QuotaUnlimited
}

// Paid reports whether the tier is a time-limited paid tier.
func (t Tier) Paid() bool {
	return t.PriceCents > 0
}

// TierCatalog is the immutable tier table, loaded once at startup.
type TierCatalog struct {
	tiers      map[TierID]Tier
	defaultTID TierID
}

// NewTierCatalog builds the built-in tier table.
func NewTierCatalog() *TierCatalog {
	tiers := map[TierID]Tier{
		TierFree: {
			ID:       TierFree,
			Name:     "Free",
			Quota:    50,
			Cooldown: 30 * time.Minute,
		},
		TierPremium6M: {
			ID:         TierPremium6M,
			Name:       "6 Months Premium",
			Quota:      QuotaUnlimited,
			Cooldown:   15 * time.Minute,
			PriceCents: 299,
		},
		TierPremium12: {
			ID:         TierPremium12,
			Name:       "12 Months Premium",
			Quota:      QuotaUnlimited,
			Cooldown:   10 * time.Minute,
			PriceCents: 499,
		},
	}
	return &TierCatalog{tiers: tiers, defaultTID: TierFree}
}

// Tier looks up a tier by ID. Referencing a tier that is not configured is a
// configuration fault, not a user error.
func (c *TierCatalog) Tier(id TierID) (Tier, error) {
	t, ok := c.tiers[id]
	if !ok {
		return Tier{}, ErrUnknownTier
	}
	return t, nil
}

// Default returns the tier assigned to new users and to users whose paid tier
// has expired.
func (c *TierCatalog) Default() Tier {
	return c.tiers[c.defaultTID]
}
