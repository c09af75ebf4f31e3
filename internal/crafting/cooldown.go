package crafting

import (
	"time"
)

// CooldownStatus is the result of evaluating both cooldowns for an
// attempt. Remaining is always >= 0.
type CooldownStatus struct {
	Remaining time.Duration
	Ready     bool
}

// RemainingWait computes the binding remaining wait for a craft attempt
// at the given instant: the maximum of the global cooldown (driven by
// the profile timestamp) and the recipe cooldown (driven by the
// per-recipe state timestamp). A nil timestamp means never crafted, so
// no outstanding cooldown. Deterministic and side-effect free; the
// executor re-evaluates it under its transaction.
func RemainingWait(now time.Time, globalCooldown time.Duration, profileLast *time.Time, recipeCooldown time.Duration, stateLast *time.Time) CooldownStatus {
	global := remainingFor(now, profileLast, globalCooldown)
	recipe := remainingFor(now, stateLast, recipeCooldown)

	remaining := global
	if recipe > remaining {
		remaining = recipe
	}
	return CooldownStatus{Remaining: remaining, Ready: remaining <= 0}
}

func remainingFor(now time.Time, last *time.Time, cooldown time.Duration) time.Duration {
	if last == nil || cooldown <= 0 {
		return 0
	}
	remaining := last.Add(cooldown).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
