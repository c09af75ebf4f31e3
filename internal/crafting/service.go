package crafting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/concurrency"
	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/metrics"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
)

// RecipeSummary is a display-oriented view of a recipe definition.
type RecipeSummary struct {
	Name            string   `json:"name"`
	Enabled         bool     `json:"enabled"`
	CooldownSeconds int      `json:"cooldown_seconds"`
	AllowAuto       bool     `json:"allow_auto"`
	Ingredients     []string `json:"ingredients"`
	Result          string   `json:"result"`
}

// Service defines the interface for crafting operations
type Service interface {
	// Craft runs one manual craft attempt for the player.
	Craft(ctx context.Context, playerID, recipeName string) (Outcome, error)

	// CraftAuto runs the bounded auto-craft loop and returns the number
	// of successful crafts plus the last attempt's outcome.
	CraftAuto(ctx context.Context, playerID, recipeName string) (int, Outcome, error)

	// SetAutoCraft flips the per (player, recipe) auto-craft flag. The
	// auto loop observes a disable at its next iteration boundary.
	SetAutoCraft(ctx context.Context, playerID, recipeName string, enabled bool) error

	ListRecipes(ctx context.Context) ([]RecipeSummary, error)
}

type service struct {
	repo        repository.Crafting
	logRepo     repository.CraftLog
	lockManager *concurrency.LockManager

	// Injection points for tests; default to time.Now and a
	// context-aware sleep.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService creates a new crafting service
func NewService(repo repository.Crafting, logRepo repository.CraftLog, lockManager *concurrency.LockManager) Service {
	return &service{
		repo:        repo,
		logRepo:     logRepo,
		lockManager: lockManager,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Craft runs one manual craft attempt end to end: policy gate, cooldown
// check, advisory requirement check, atomic execution, attempt log.
func (s *service) Craft(ctx context.Context, playerID, recipeName string) (Outcome, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCraftCalled, "playerID", playerID, "recipe", recipeName)

	settings, recipe, out, err := s.resolve(ctx, recipeName)
	if err != nil {
		return Outcome{}, err
	}
	if recipe == nil {
		return out, nil
	}

	return s.craftOnce(ctx, settings, recipe, playerID, false), nil
}

// SetAutoCraft flips the auto-craft flag for a (player, recipe) pair.
func (s *service) SetAutoCraft(ctx context.Context, playerID, recipeName string, enabled bool) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgSetAutoCraftCalled, "playerID", playerID, "recipe", recipeName, "enabled", enabled)

	recipe, err := s.repo.GetRecipeByName(ctx, recipeName)
	if err != nil {
		return fmt.Errorf(ErrMsgGetRecipeFailed, err)
	}
	if recipe == nil {
		return fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, recipeName)
	}

	if _, err := s.repo.GetOrCreateRecipeState(ctx, playerID, recipe.ID); err != nil {
		return fmt.Errorf(ErrMsgGetRecipeStateFailed, err)
	}
	if err := s.repo.SetAutoEnabled(ctx, playerID, recipe.ID, enabled); err != nil {
		return fmt.Errorf(ErrMsgSetAutoEnabledFailed, err)
	}
	return nil
}

// ListRecipes returns display summaries for every recipe definition.
func (s *service) ListRecipes(ctx context.Context) ([]RecipeSummary, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgListRecipesCalled)

	recipes, err := s.repo.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgListRecipesFailed, err)
	}

	summaries := make([]RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, summarize(r))
	}
	return summaries, nil
}

func summarize(r domain.CraftingRecipe) RecipeSummary {
	ingredients := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, fmt.Sprintf("%d× %s", ing.Quantity, ing.Resource.Name))
	}
	return RecipeSummary{
		Name:            r.Name,
		Enabled:         r.Enabled,
		CooldownSeconds: r.CooldownSeconds,
		AllowAuto:       r.AllowAuto,
		Ingredients:     ingredients,
		Result:          formatResult(r.Result),
	}
}

func formatResult(res domain.RecipeResult) string {
	name := res.Resource.Name
	if res.Special != nil && *res.Special != "" {
		name = *res.Special + " " + name
	}
	return fmt.Sprintf("%d× %s", res.Quantity, name)
}

// resolve loads the settings and recipe for an attempt. A nil recipe
// with a populated Outcome means the recipe name did not match.
func (s *service) resolve(ctx context.Context, recipeName string) (*domain.CraftingSettings, *domain.CraftingRecipe, Outcome, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, nil, Outcome{}, fmt.Errorf(ErrMsgGetSettingsFailed, err)
	}

	recipe, err := s.repo.GetRecipeByName(ctx, recipeName)
	if err != nil {
		return nil, nil, Outcome{}, fmt.Errorf(ErrMsgGetRecipeFailed, err)
	}
	if recipe == nil {
		out := rejectedOutcome(OutcomeRecipeNotFound, fmt.Sprintf(MsgRecipeNotFoundFmt, recipeName))
		return settings, nil, out, nil
	}
	return settings, recipe, Outcome{}, nil
}

// craftOnce serializes the whole attempt on the player's lock, then
// appends the audit row and records metrics regardless of outcome.
func (s *service) craftOnce(ctx context.Context, settings *domain.CraftingSettings, recipe *domain.CraftingRecipe, playerID string, auto bool) Outcome {
	lock := s.lockManager.PlayerLock(playerID)
	lock.Lock()
	out := s.attempt(ctx, settings, recipe, playerID, auto)
	lock.Unlock()

	s.logAttempt(ctx, playerID, recipe, out)
	metrics.CraftAttempts.WithLabelValues(recipe.Name, string(out.Kind)).Inc()
	return out
}

func (s *service) attempt(ctx context.Context, settings *domain.CraftingSettings, recipe *domain.CraftingRecipe, playerID string, auto bool) Outcome {
	log := logger.FromContext(ctx)

	// Policy gate
	if err := CheckPolicy(*settings, *recipe, auto); err != nil {
		return rejectedOutcome(OutcomeRejectedPolicy, err.Error())
	}

	// Lazily created per-player and per-(player, recipe) state
	profile, err := s.repo.GetOrCreateProfile(ctx, playerID)
	if err != nil {
		log.Error("Failed to get crafting profile", "error", err, "playerID", playerID)
		return rejectedOutcome(OutcomeFailedInternal, MsgGenericFailure)
	}
	state, err := s.repo.GetOrCreateRecipeState(ctx, playerID, recipe.ID)
	if err != nil {
		log.Error("Failed to get recipe state", "error", err, "playerID", playerID, "recipeID", recipe.ID)
		return rejectedOutcome(OutcomeFailedInternal, MsgGenericFailure)
	}

	// Cooldown check; the executor re-validates under its transaction
	status := RemainingWait(s.now(), settings.GlobalCooldown(), profile.LastCraftedAt, recipe.Cooldown(), state.LastCraftedAt)
	if !status.Ready {
		return cooldownOutcome(status.Remaining, ErrOnCooldown{Remaining: status.Remaining}.Error())
	}

	// Advisory sufficiency check, read-only
	if err := checkRequirements(ctx, s.repo, playerID, recipe); err != nil {
		var ins *InsufficientIngredientError
		if errors.As(err, &ins) {
			return rejectedOutcome(OutcomeRejectedInsufficient, ins.Error())
		}
		log.Error("Requirement check failed", "error", err, "playerID", playerID, "recipe", recipe.Name)
		return rejectedOutcome(OutcomeFailedInternal, MsgGenericFailure)
	}

	// Atomic execution
	result, err := s.execute(ctx, settings, recipe, playerID)
	if err != nil {
		return s.classifyExecuteError(ctx, recipe, err)
	}

	log.Info(LogMsgCraftSucceeded, "playerID", playerID, "recipe", recipe.Name, "result", result)
	return successOutcome(fmt.Sprintf(MsgCraftedFmt, result), result)
}

// classifyExecuteError maps executor failures onto the outcome taxonomy.
// A consume race and a misconfigured recipe are both fatal for the
// attempt and presented generically; insufficiency discovered under the
// lock counts as a race, not an ordinary rejection.
func (s *service) classifyExecuteError(ctx context.Context, recipe *domain.CraftingRecipe, err error) Outcome {
	log := logger.FromContext(ctx)

	var cd ErrOnCooldown
	switch {
	case errors.As(err, &cd):
		return cooldownOutcome(cd.Remaining, cd.Error())
	case errors.Is(err, domain.ErrConsumptionRace):
		log.Warn(LogMsgConsumptionRaceLost, "error", err, "recipe", recipe.Name)
		metrics.ConsistencyViolations.Inc()
		return rejectedOutcome(OutcomeFailedConsistency, MsgGenericFailure)
	case errors.Is(err, domain.ErrInvalidRecipe):
		log.Error(LogMsgRecipeMisconfigured, "error", err, "recipe", recipe.Name)
		metrics.RecipeConfigErrors.Inc()
		return rejectedOutcome(OutcomeFailedConfig, MsgGenericFailure)
	default:
		log.Error("Craft execution failed", "error", err, "recipe", recipe.Name)
		return rejectedOutcome(OutcomeFailedInternal, MsgGenericFailure)
	}
}

// execute performs consumption, grant and cooldown advance as a single
// unit of work. Either every step is durable or none is; a partial
// failure rolls the whole transaction back.
func (s *service) execute(ctx context.Context, settings *domain.CraftingSettings, recipe *domain.CraftingRecipe, playerID string) (string, error) {
	// A malformed result descriptor is a configuration error; nothing is
	// consumed for a reward that cannot be constructed.
	if err := recipe.Result.Validate(); err != nil {
		return "", err
	}

	now := s.now()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf(ErrMsgBeginTxFailed, err)
	}
	defer safeRollback(ctx, tx)

	// Lock the cooldown rows and re-validate under the lock
	profile, err := tx.GetProfileForUpdate(ctx, playerID)
	if err != nil {
		return "", fmt.Errorf(ErrMsgGetProfileFailed, err)
	}
	state, err := tx.GetRecipeStateForUpdate(ctx, playerID, recipe.ID)
	if err != nil {
		return "", fmt.Errorf(ErrMsgGetRecipeStateFailed, err)
	}
	if status := RemainingWait(now, settings.GlobalCooldown(), profile.LastCraftedAt, recipe.Cooldown(), state.LastCraftedAt); !status.Ready {
		return "", ErrOnCooldown{Remaining: status.Remaining}
	}

	// Authoritative sufficiency check; a shortfall here means a race was
	// lost since the advisory check passed
	if err := checkRequirements(ctx, tx, playerID, recipe); err != nil {
		var ins *InsufficientIngredientError
		if errors.As(err, &ins) {
			return "", fmt.Errorf("%w: %s", domain.ErrConsumptionRace, ins.Error())
		}
		return "", err
	}

	// Consume every ingredient in definition order
	for _, ing := range recipe.Ingredients {
		switch ing.Resource.Kind {
		case domain.ResourceBall:
			consumed, err := tx.ConsumeOldestBalls(ctx, playerID, ing.Resource.ID, ing.Quantity)
			if err != nil {
				return "", fmt.Errorf("failed to consume %s: %w", ing.Resource.Name, err)
			}
			if consumed < ing.Quantity {
				return "", fmt.Errorf("%w: consumed %d of %d %s", domain.ErrConsumptionRace, consumed, ing.Quantity, ing.Resource.Name)
			}
		case domain.ResourceItem:
			if _, err := tx.AdjustItemBalance(ctx, playerID, ing.Resource.ID, -ing.Quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientQuantity) {
					return "", fmt.Errorf("%w: %s balance changed", domain.ErrConsumptionRace, ing.Resource.Name)
				}
				return "", fmt.Errorf("failed to consume %s: %w", ing.Resource.Name, err)
			}
		default:
			return "", fmt.Errorf("%w: ingredient %q has unknown kind %q", domain.ErrInvalidRecipe, ing.Resource.Name, ing.Resource.Kind)
		}
	}

	// Grant the reward
	switch recipe.Result.Resource.Kind {
	case domain.ResourceItem:
		if _, err := tx.AdjustItemBalance(ctx, playerID, recipe.Result.Resource.ID, recipe.Result.Quantity); err != nil {
			return "", fmt.Errorf("failed to grant %s: %w", recipe.Result.Resource.Name, err)
		}
	case domain.ResourceBall:
		if err := tx.CreateBallInstances(ctx, playerID, recipe.Result.Resource.ID, recipe.Result.Quantity, recipe.Result.Special, now); err != nil {
			return "", fmt.Errorf("failed to grant %s: %w", recipe.Result.Resource.Name, err)
		}
	}

	// Advance both cooldown timestamps
	if err := tx.SetLastCrafted(ctx, playerID, recipe.ID, now); err != nil {
		return "", fmt.Errorf("failed to advance cooldowns: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf(ErrMsgCommitTxFailed, err)
	}

	return formatResult(recipe.Result), nil
}

// logAttempt appends one audit row per attempt. Failures are non-fatal
// to the craft result but are surfaced via log and metric.
func (s *service) logAttempt(ctx context.Context, playerID string, recipe *domain.CraftingRecipe, out Outcome) {
	attempt := domain.CraftAttempt{
		PlayerID:   playerID,
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Success:    out.Success,
		Message:    out.Message,
		CreatedAt:  s.now(),
	}
	if err := s.logRepo.AppendAttempt(ctx, attempt); err != nil {
		logger.FromContext(ctx).Error(LogMsgAttemptLogWriteFailed, "error", err, "playerID", playerID, "recipe", recipe.Name)
		metrics.AttemptLogFailures.Inc()
	}
}

func safeRollback(ctx context.Context, tx repository.CraftingTx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.FromContext(ctx).Debug("Transaction rollback after completion", "error", err)
	}
}
