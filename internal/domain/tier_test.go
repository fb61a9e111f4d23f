package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTierCatalogLookup(t *testing.T) {
	catalog := NewTierCatalog()

	tests := []struct {
		name      string
		id        TierID
		wantErr   bool
		unlimited bool
		cooldown  time.Duration
	}{
		{name: "free", id: TierFree, cooldown: 30 * time.Minute},
		{name: "premium 6m", id: TierPremium6M, unlimited: true, cooldown: 15 * time.Minute},
		{name: "premium 12m", id: TierPremium12, unlimited: true, cooldown: 10 * time.Minute},
		{name: "unknown", id: TierID("gold"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tier, err := catalog.Tier(tc.id)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownTier) {
					t.Fatalf("Tier(%q) err = %v, want ErrUnknownTier", tc.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Tier(%q) unexpected error: %v", tc.id, err)
			}
			if tier.Unlimited() != tc.unlimited {
				t.Fatalf("Tier(%q).Unlimited() = %v, want %v", tc.id, tier.Unlimited(), tc.unlimited)
			}
			if tier.Cooldown != tc.cooldown {
				t.Fatalf("Tier(%q).Cooldown = %v, want %v", tc.id, tier.Cooldown, tc.cooldown)
			}
		})
	}
}

func TestTierCatalogDefault(t *testing.T) {
	catalog := NewTierCatalog()
	def := catalog.Default()
	if def.ID != TierFree {
		t.Fatalf("Default().ID = %q, want %q", def.ID, TierFree)
	}
	if def.Paid() {
		t.Fatal("default tier must not be paid")
	}
	if def.Quota != 50 {
		t.Fatalf("Default().Quota = %d, want 50", def.Quota)
	}
}

func TestTierExpired(t *testing.T) {
	catalog := NewTierCatalog()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	premium, _ := catalog.Tier(TierPremium6M)
	free := catalog.Default()

	tests := []struct {
		name    string
		tier    Tier
		expires *time.Time
		want    bool
	}{
		{name: "free never expires", tier: free, expires: nil, want: false},
		{name: "paid without expiry", tier: premium, expires: nil, want: true},
		{name: "paid expired", tier: premium, expires: &past, want: true},
		{name: "paid expiring exactly now", tier: premium, expires: &now, want: true},
		{name: "paid still valid", tier: premium, expires: &future, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := &Entitlement{UserID: "u1", TierID: tc.tier.ID, TierExpiresAt: tc.expires}
			if got := e.TierExpired(tc.tier, now); got != tc.want {
				t.Fatalf("TierExpired() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDecisionRemainingMinutes(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      int
	}{
		{name: "rounds down", remaining: 29*time.Minute + 59*time.Second, want: 29},
		{name: "exact minutes", remaining: 10 * time.Minute, want: 10},
		{name: "under a minute", remaining: 30 * time.Second, want: 0},
		{name: "negative clamps to zero", remaining: -time.Minute, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := DenyCooldown(tc.remaining)
			if got := d.RemainingMinutes(); got != tc.want {
				t.Fatalf("RemainingMinutes() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTruncateQuestion(t *testing.T) {
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'q'
	}
	if got := TruncateQuestion(string(long)); len(got) != 500 {
		t.Fatalf("TruncateQuestion() len = %d, want 500", len(got))
	}
	if got := TruncateQuestion("short"); got != "short" {
		t.Fatalf("TruncateQuestion() = %q, want unchanged", got)
	}
}
