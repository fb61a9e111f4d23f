package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"oracle/internal/domain"
)

// Engine applies tier rules against the entitlement store to decide whether a
// user may ask a question, and records consumed questions. The check-then-commit
// race is closed by pushing the commit into the store's atomic conditional
// update rather than serializing readers.
type Engine struct {
	catalog *domain.TierCatalog
	store   domain.EntitlementStore
	logger  zerolog.Logger
}

// NewEngine constructs an Engine over the given catalog and store.
func NewEngine(catalog *domain.TierCatalog, store domain.EntitlementStore, logger zerolog.Logger) *Engine {
	return &Engine{catalog: catalog, store: store, logger: logger}
}

// Load returns the user's entitlement, creating the default-tier record on
// first contact.
func (en *Engine) Load(ctx context.Context, userID string, now time.Time) (*domain.Entitlement, error) {
	ent, err := en.store.Get(ctx, userID)
	if err == nil {
		return ent, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load entitlement: %w", err)
	}
	ent = domain.NewEntitlement(userID, en.catalog.Default().ID, now)
	if err := en.store.Create(ctx, ent); err != nil {
		// A concurrent first contact may have created the row already.
		if existing, getErr := en.store.Get(ctx, userID); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create entitlement: %w", err)
	}
	return ent, nil
}

// Check evaluates tier rules for the user at the given instant. An expired paid
// tier is reconciled back to the default tier (with usage reset) and persisted
// before quota or cooldown are considered.
func (en *Engine) Check(ctx context.Context, userID string, now time.Time) (domain.Decision, error) {
	ent, err := en.Load(ctx, userID, now)
	if err != nil {
		return domain.Decision{}, err
	}

	tier, err := en.reconcile(ctx, ent, now)
	if err != nil {
		return domain.Decision{}, err
	}

	return decide(ent, tier, now), nil
}

// reconcile reverts an expired paid tier to the default tier, persisting the
// reset immediately so the current request is evaluated under the new rules.
func (en *Engine) reconcile(ctx context.Context, ent *domain.Entitlement, now time.Time) (domain.Tier, error) {
	tier, err := en.catalog.Tier(ent.TierID)
	if err != nil {
		return domain.Tier{}, fmt.Errorf("tier %q: %w", ent.TierID, err)
	}
	if !ent.TierExpired(tier, now) {
		return tier, nil
	}

	def := en.catalog.Default()
	ent.TierID = def.ID
	ent.TierExpiresAt = nil
	ent.QuestionsUsed = 0
	ent.UpdatedAt = now
	if err := en.store.Save(ctx, ent); err != nil {
		return domain.Tier{}, fmt.Errorf("reconcile tier: %w", err)
	}
	en.logger.Info().Str("user_id", ent.UserID).Str("tier", string(tier.ID)).Msg("expired tier reconciled to default")
	return def, nil
}

func decide(ent *domain.Entitlement, tier domain.Tier, now time.Time) domain.Decision {
	if !tier.Unlimited() && ent.QuestionsUsed >= tier.Quota {
		return domain.DenyQuota()
	}
	if ent.LastQuestionAt != nil {
		elapsed := now.Sub(*ent.LastQuestionAt)
		if elapsed < tier.Cooldown {
			return domain.DenyCooldown(tier.Cooldown - elapsed)
		}
	}
	return domain.Allow()
}

// Commit consumes one question slot for the user. The quota and cooldown rules
// are re-validated inside the store's atomic update, so two racing commits for
// the same user can never both succeed past the limit. It reports false when
// the slot could not be consumed.
func (en *Engine) Commit(ctx context.Context, userID string, now time.Time) (bool, error) {
	ent, err := en.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load entitlement: %w", err)
	}
	tier, err := en.catalog.Tier(ent.TierID)
	if err != nil {
		return false, fmt.Errorf("tier %q: %w", ent.TierID, err)
	}
	ok, err := en.store.ConsumeQuestion(ctx, userID, domain.ConsumeParams{
		Quota:    tier.Quota,
		Cooldown: tier.Cooldown,
		Now:      now,
	})
	if err != nil {
		return false, fmt.Errorf("consume question: %w", err)
	}
	return ok, nil
}

// Upgrade applies a confirmed purchase: new tier, new expiry, fresh allotment.
// Usage is always reset to zero, matching expiry reconciliation; a mid-cycle
// upgrade discards the partially-used free count.
func (en *Engine) Upgrade(ctx context.Context, userID string, tierID domain.TierID, expiresAt time.Time, now time.Time) error {
	tier, err := en.catalog.Tier(tierID)
	if err != nil {
		return err
	}
	ent, err := en.Load(ctx, userID, now)
	if err != nil {
		return err
	}
	ent.TierID = tier.ID
	ent.QuestionsUsed = 0
	ent.UpdatedAt = now
	if tier.Paid() {
		exp := expiresAt
		ent.TierExpiresAt = &exp
	} else {
		ent.TierExpiresAt = nil
	}
	if err := en.store.Save(ctx, ent); err != nil {
		return fmt.Errorf("save upgrade: %w", err)
	}
	en.logger.Info().Str("user_id", userID).Str("tier", string(tierID)).Time("expires_at", expiresAt).Msg("tier upgraded")
	return nil
}

// Status builds the read-only status view. An expired paid tier is presented as
// the default tier with zero usage but nothing is persisted; the next Check
// performs the actual reconciliation.
func (en *Engine) Status(ctx context.Context, userID string, now time.Time) (domain.StatusSnapshot, error) {
	ent, err := en.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		ent = domain.NewEntitlement(userID, en.catalog.Default().ID, now)
	} else if err != nil {
		return domain.StatusSnapshot{}, fmt.Errorf("load entitlement: %w", err)
	}

	tier, err := en.catalog.Tier(ent.TierID)
	if err != nil {
		return domain.StatusSnapshot{}, fmt.Errorf("tier %q: %w", ent.TierID, err)
	}
	used := ent.QuestionsUsed
	if ent.TierExpired(tier, now) {
		tier = en.catalog.Default()
		used = 0
	}

	snap := domain.StatusSnapshot{
		TierID:          tier.ID,
		TierName:        tier.Name,
		QuestionsUsed:   used,
		Remaining:       domain.QuotaUnlimited,
		CooldownMinutes: int(tier.Cooldown / time.Minute),
	}
	if !tier.Unlimited() {
		snap.Remaining = tier.Quota - used
		if snap.Remaining < 0 {
			snap.Remaining = 0
		}
	}
	if d := decide(ent, tier, now); !d.Allowed && d.Reason == domain.DenyCooldownActive {
		snap.MinutesUntilNext = d.RemainingMinutes()
	}
	return snap, nil
}
