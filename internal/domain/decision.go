package domain

import "time"

// DenialReason enumerates the expected denial states. These are outcomes, not
// failures.
type DenialReason string

const (
	DenyQuotaExceeded  DenialReason = "quota_exceeded"
	DenyCooldownActive DenialReason = "cooldown_active"
)

// Decision is the result of evaluating tier rules against a user's entitlement.
type Decision struct {
	Allowed bool
	Reason  DenialReason
	// CooldownRemaining is set only for cooldown denials.
	CooldownRemaining time.Duration
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// DenyQuota returns a quota-exhausted denial.
func DenyQuota() Decision {
	return Decision{Reason: DenyQuotaExceeded}
}

// DenyCooldown returns a cooldown denial carrying the remaining wait.
func DenyCooldown(remaining time.Duration) Decision {
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Reason: DenyCooldownActive, CooldownRemaining: remaining}
}

// RemainingMinutes reports the cooldown wait rounded down to whole minutes for
// user display. Never negative.
func (d Decision) RemainingMinutes() int {
	if d.CooldownRemaining <= 0 {
		return 0
	}
	return int(d.CooldownRemaining / time.Minute)
}
