package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Player errors
	ErrMsgPlayerNotFound = "player not found"

	// Recipe errors
	ErrMsgRecipeNotFound = "recipe not found"
	ErrMsgInvalidRecipe  = "invalid recipe"

	// Policy rejections
	ErrMsgCraftingDisabled     = "crafting is currently disabled"
	ErrMsgRecipeDisabled       = "this recipe is disabled"
	ErrMsgAutoCraftingDisabled = "auto-crafting is currently disabled"
	ErrMsgRecipeAutoDisabled   = "auto-crafting is disabled for this recipe"

	// Resource errors
	ErrMsgBallNotFound         = "ball not found"
	ErrMsgItemNotFound         = "item not found"
	ErrMsgInsufficientQuantity = "insufficient quantity"

	// Consistency errors
	ErrMsgConsumptionRace = "ingredients changed during crafting"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Player errors
	ErrPlayerNotFound = errors.New(ErrMsgPlayerNotFound)

	// Recipe errors
	ErrRecipeNotFound = errors.New(ErrMsgRecipeNotFound)
	ErrInvalidRecipe  = errors.New(ErrMsgInvalidRecipe)

	// Policy rejections - recoverable, no state mutated
	ErrCraftingDisabled     = errors.New(ErrMsgCraftingDisabled)
	ErrRecipeDisabled       = errors.New(ErrMsgRecipeDisabled)
	ErrAutoCraftingDisabled = errors.New(ErrMsgAutoCraftingDisabled)
	ErrRecipeAutoDisabled   = errors.New(ErrMsgRecipeAutoDisabled)

	// Resource errors
	ErrBallNotFound         = errors.New(ErrMsgBallNotFound)
	ErrItemNotFound         = errors.New(ErrMsgItemNotFound)
	ErrInsufficientQuantity = errors.New(ErrMsgInsufficientQuantity)

	// ErrConsumptionRace marks a lost consume race: the executor found less
	// stock than the advisory check did. Fatal for the attempt.
	ErrConsumptionRace = errors.New(ErrMsgConsumptionRace)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
