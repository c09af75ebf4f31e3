package crafting

import (
	"fmt"
	"time"
)

// ErrOnCooldown is returned when a craft attempt is still on cooldown
type ErrOnCooldown struct {
	Remaining time.Duration
}

func (e ErrOnCooldown) Error() string {
	minutes := int(e.Remaining.Minutes())
	seconds := int(e.Remaining.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("on cooldown: %dm %ds remaining", minutes, seconds)
	}
	return fmt.Sprintf("on cooldown: %ds remaining", seconds)
}

// Is allows errors.Is() to work with ErrOnCooldown
func (e ErrOnCooldown) Is(target error) bool {
	_, ok := target.(ErrOnCooldown)
	return ok
}

// InsufficientIngredientError names the first failing ingredient of a
// requirement check: what was required and what the player owns.
type InsufficientIngredientError struct {
	Name     string
	Required int
	Owned    int
}

func (e *InsufficientIngredientError) Error() string {
	return fmt.Sprintf("not enough %s: need %d, have %d", e.Name, e.Required, e.Owned)
}
