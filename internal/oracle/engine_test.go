package oracle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"oracle/internal/adapter/repo"
	"oracle/internal/domain"
)

func newTestEngine(t *testing.T) (*Engine, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore()
	engine := NewEngine(domain.NewTierCatalog(), store, zerolog.Nop())
	return engine, store
}

func TestEngineFirstContactCreatesDefaultRecord(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	decision, err := engine.Check(ctx, "u1", now)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	ent, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, ent.TierID)
	require.Zero(t, ent.QuestionsUsed)
	require.False(t, ent.SetupComplete)
}

func TestEngineQuotaProgression(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Consume the full free allotment, stepping past the cooldown each time.
	for i := 0; i < 50; i++ {
		decision, err := engine.Check(ctx, "u1", now)
		require.NoError(t, err)
		require.True(t, decision.Allowed, "question %d should be allowed", i+1)

		ok, err := engine.Commit(ctx, "u1", now)
		require.NoError(t, err)
		require.True(t, ok, "commit %d should succeed", i+1)

		now = now.Add(31 * time.Minute)
	}

	decision, err := engine.Check(ctx, "u1", now)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, domain.DenyQuotaExceeded, decision.Reason)

	// A commit attempted anyway must not go through.
	ok, err := engine.Commit(ctx, "u1", now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEngineCooldown(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := engine.Check(ctx, "u1", now)
	require.NoError(t, err)
	ok, err := engine.Commit(ctx, "u1", now)
	require.NoError(t, err)
	require.True(t, ok)

	// Immediately afterwards the free tier's 30 minute cooldown applies.
	decision, err := engine.Check(ctx, "u1", now.Add(time.Second))
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, domain.DenyCooldownActive, decision.Reason)
	require.Greater(t, decision.RemainingMinutes(), 0)
	require.LessOrEqual(t, decision.RemainingMinutes(), 30)

	// After the cooldown has elapsed the next question is allowed.
	decision, err = engine.Check(ctx, "u1", now.Add(30*time.Minute))
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestEngineReconcilesExpiredTier(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	expired := now.Add(-time.Hour)
	ent := domain.NewEntitlement("u1", domain.TierPremium6M, now.Add(-48*time.Hour))
	ent.TierExpiresAt = &expired
	ent.QuestionsUsed = 120
	require.NoError(t, store.Create(ctx, ent))

	decision, err := engine.Check(ctx, "u1", now)
	require.NoError(t, err)
	// Evaluated under the free tier in the same request: usage was reset, so
	// the request is allowed.
	require.True(t, decision.Allowed)

	reloaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, reloaded.TierID)
	require.Zero(t, reloaded.QuestionsUsed)
	require.Nil(t, reloaded.TierExpiresAt)
}

func TestEngineUpgradeResetsUsage(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := engine.Check(ctx, "u1", now)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		ok, err := engine.Commit(ctx, "u1", now.Add(time.Duration(i)*31*time.Minute))
		require.NoError(t, err)
		require.True(t, ok)
	}

	expiresAt := now.AddDate(0, 6, 0)
	require.NoError(t, engine.Upgrade(ctx, "u1", domain.TierPremium6M, expiresAt, now))

	ent, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.TierPremium6M, ent.TierID)
	require.Zero(t, ent.QuestionsUsed)
	require.NotNil(t, ent.TierExpiresAt)
	require.True(t, ent.TierExpiresAt.Equal(expiresAt))

	require.ErrorIs(t, engine.Upgrade(ctx, "u1", domain.TierID("gold"), expiresAt, now), domain.ErrUnknownTier)
}

func TestEngineCommitRace(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// One slot left, cooldown long since elapsed.
	past := now.Add(-24 * time.Hour)
	ent := domain.NewEntitlement("u1", domain.TierFree, past)
	ent.QuestionsUsed = 49
	ent.LastQuestionAt = &past
	require.NoError(t, store.Create(ctx, ent))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := engine.Commit(ctx, "u1", now)
			if err != nil {
				t.Errorf("commit: %v", err)
				return
			}
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, succeeded, "exactly one racing commit may take the last slot")

	reloaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 50, reloaded.QuestionsUsed)
}

func TestEngineStatus(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Unknown users are presented as fresh free-tier users, nothing persisted.
	snap, err := engine.Status(ctx, "ghost", now)
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, snap.TierID)
	require.Equal(t, 50, snap.Remaining)
	_, err = store.Get(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = engine.Check(ctx, "u1", now)
	require.NoError(t, err)
	ok, err := engine.Commit(ctx, "u1", now)
	require.NoError(t, err)
	require.True(t, ok)

	snap, err = engine.Status(ctx, "u1", now.Add(10*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, snap.QuestionsUsed)
	require.Equal(t, 49, snap.Remaining)
	require.Equal(t, 30, snap.CooldownMinutes)
	require.Equal(t, 20, snap.MinutesUntilNext)
}

func TestEngineStatusPresentsExpiredTierReconciled(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	expired := now.Add(-time.Minute)
	ent := domain.NewEntitlement("u1", domain.TierPremium12, now.Add(-time.Hour))
	ent.TierExpiresAt = &expired
	ent.QuestionsUsed = 7
	require.NoError(t, store.Create(ctx, ent))

	snap, err := engine.Status(ctx, "u1", now)
	require.NoError(t, err)
	require.Equal(t, domain.TierFree, snap.TierID)
	require.Zero(t, snap.QuestionsUsed)
	require.Equal(t, 50, snap.Remaining)

	// Read-only: the stored record is untouched.
	reloaded, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, domain.TierPremium12, reloaded.TierID)
	require.Equal(t, 7, reloaded.QuestionsUsed)
}
