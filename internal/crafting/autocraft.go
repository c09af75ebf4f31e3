package crafting

import (
	"context"
	"fmt"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/metrics"
)

// CraftAuto repeats the manual pipeline up to AutoCraftMaxAttempts
// times. A cooldown rejection no longer than AutoCraftRetryThreshold is
// slept through once per attempt and retried; any other failure ends
// the loop. The per-state auto flag is re-read at every iteration
// boundary, so a disable takes effect at the next wakeup without
// interrupting an in-flight sleep.
func (s *service) CraftAuto(ctx context.Context, playerID, recipeName string) (int, Outcome, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCraftAutoCalled, "playerID", playerID, "recipe", recipeName)

	settings, recipe, out, err := s.resolve(ctx, recipeName)
	if err != nil {
		return 0, Outcome{}, err
	}
	if recipe == nil {
		return 0, out, nil
	}

	// Reject auto-ineligible recipes before turning the flag on
	if err := CheckPolicy(*settings, *recipe, true); err != nil {
		return 0, rejectedOutcome(OutcomeRejectedPolicy, err.Error()), nil
	}

	if _, err := s.repo.GetOrCreateRecipeState(ctx, playerID, recipe.ID); err != nil {
		return 0, Outcome{}, fmt.Errorf(ErrMsgGetRecipeStateFailed, err)
	}
	if err := s.repo.SetAutoEnabled(ctx, playerID, recipe.ID, true); err != nil {
		return 0, Outcome{}, fmt.Errorf(ErrMsgSetAutoEnabledFailed, err)
	}

	metrics.AutoCraftSessions.Inc()

	crafted := 0
	last := rejectedOutcome(OutcomeRejectedPolicy, MsgAutoTurnedOff)

	for attempt := 0; attempt < AutoCraftMaxAttempts; attempt++ {
		enabled, err := s.autoStillEnabled(ctx, playerID, recipe.ID)
		if err != nil {
			return crafted, last, err
		}
		if !enabled {
			log.Info(LogMsgAutoCraftDisabled, "playerID", playerID, "recipe", recipe.Name)
			last = rejectedOutcome(OutcomeRejectedPolicy, MsgAutoTurnedOff)
			break
		}

		last = s.craftOnce(ctx, settings, recipe, playerID, true)

		// One sleep-and-retry per attempt for short cooldowns; this is
		// the engine's only suspension point
		if retry, wait := shouldRetryAfterCooldown(last); retry {
			log.Debug(LogMsgAutoCraftSleeping, "playerID", playerID, "recipe", recipe.Name, "wait", wait)
			metrics.AutoCraftRetrySleeps.Inc()
			if err := s.sleep(ctx, wait); err != nil {
				// Context canceled mid-sleep; report what happened so far
				return crafted, last, nil
			}

			enabled, err := s.autoStillEnabled(ctx, playerID, recipe.ID)
			if err != nil {
				return crafted, last, err
			}
			if !enabled {
				log.Info(LogMsgAutoCraftDisabled, "playerID", playerID, "recipe", recipe.Name)
				last = rejectedOutcome(OutcomeRejectedPolicy, MsgAutoTurnedOff)
				break
			}
			last = s.craftOnce(ctx, settings, recipe, playerID, true)
		}

		if last.Success {
			crafted++
			continue
		}
		break
	}

	log.Info(LogMsgAutoCraftFinished, "playerID", playerID, "recipe", recipe.Name, "crafted", crafted, "lastOutcome", string(last.Kind))
	return crafted, last, nil
}

func (s *service) autoStillEnabled(ctx context.Context, playerID string, recipeID int) (bool, error) {
	state, err := s.repo.GetOrCreateRecipeState(ctx, playerID, recipeID)
	if err != nil {
		return false, fmt.Errorf(ErrMsgGetRecipeStateFailed, err)
	}
	return state.AutoEnabled, nil
}

func shouldRetryAfterCooldown(out Outcome) (bool, time.Duration) {
	if out.Success || out.Kind != OutcomeRejectedCooldown || out.RetryAfter == nil {
		return false, 0
	}
	if *out.RetryAfter > AutoCraftRetryThreshold {
		return false, 0
	}
	return true, *out.RetryAfter
}

// sleepContext waits for the duration or until the context is done,
// whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
