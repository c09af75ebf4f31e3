package crafting

import "time"

// OutcomeKind classifies the result of one craft attempt. Recoverable
// rejections are reported verbatim to the caller; fatal kinds carry a
// generic message and the detail goes to logs and metrics.
type OutcomeKind string

const (
	OutcomeSuccess              OutcomeKind = "success"
	OutcomeRejectedPolicy       OutcomeKind = "rejected_policy"
	OutcomeRejectedCooldown     OutcomeKind = "rejected_cooldown"
	OutcomeRejectedInsufficient OutcomeKind = "rejected_insufficient"
	OutcomeRecipeNotFound       OutcomeKind = "recipe_not_found"
	OutcomeFailedConsistency    OutcomeKind = "failed_consistency"
	OutcomeFailedConfig         OutcomeKind = "failed_config"
	OutcomeFailedInternal       OutcomeKind = "failed_internal"
)

// Outcome is the structured result of a craft attempt.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Success bool        `json:"success"`
	Message string      `json:"message"`

	// RetryAfter is populated only on a cooldown rejection.
	RetryAfter *time.Duration `json:"retry_after,omitempty"`

	// Result is a display summary of what was produced, on success.
	Result string `json:"result,omitempty"`
}

func successOutcome(message, result string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Success: true, Message: message, Result: result}
}

func rejectedOutcome(kind OutcomeKind, message string) Outcome {
	return Outcome{Kind: kind, Message: message}
}

func cooldownOutcome(remaining time.Duration, message string) Outcome {
	return Outcome{Kind: OutcomeRejectedCooldown, Message: message, RetryAfter: &remaining}
}
