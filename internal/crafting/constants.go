package crafting

import "time"

// ==================== Auto-Craft Policy ====================

const (
	// AutoCraftMaxAttempts bounds the auto-craft loop
	AutoCraftMaxAttempts = 5

	// AutoCraftRetryThreshold is the longest cooldown the auto-craft loop
	// will sleep through before retrying; longer waits terminate the loop
	AutoCraftRetryThreshold = 30 * time.Second
)

// ==================== User-Facing Messages ====================

const (
	// MsgGenericFailure is shown for fatal attempt failures; the detail
	// goes to logs and metrics, not to the player
	MsgGenericFailure = "Crafting failed, please try again later."

	MsgRecipeNotFoundFmt = "Recipe '%s' not found."
	MsgCraftedFmt        = "You crafted %s!"
	MsgAutoTurnedOff     = "Auto-crafting turned off."
)

// ==================== Error Messages ====================

const (
	ErrMsgGetSettingsFailed     = "failed to get crafting settings: %w"
	ErrMsgGetRecipeFailed       = "failed to get recipe: %w"
	ErrMsgListRecipesFailed     = "failed to list recipes: %w"
	ErrMsgGetProfileFailed      = "failed to get crafting profile: %w"
	ErrMsgGetRecipeStateFailed  = "failed to get recipe state: %w"
	ErrMsgSetAutoEnabledFailed  = "failed to set auto-craft flag: %w"
	ErrMsgBeginTxFailed         = "failed to begin transaction: %w"
	ErrMsgCommitTxFailed        = "failed to commit transaction: %w"
)

// ==================== Log Messages ====================

const (
	LogMsgCraftCalled           = "Craft called"
	LogMsgCraftAutoCalled       = "CraftAuto called"
	LogMsgSetAutoCraftCalled    = "SetAutoCraft called"
	LogMsgListRecipesCalled     = "ListRecipes called"
	LogMsgCraftSucceeded        = "Craft succeeded"
	LogMsgConsumptionRaceLost   = "Craft aborted: lost a consume race inside the transaction"
	LogMsgRecipeMisconfigured   = "Craft aborted: recipe result is misconfigured"
	LogMsgAttemptLogWriteFailed = "Failed to append craft attempt audit row"
	LogMsgAutoCraftSleeping     = "Auto-craft sleeping through cooldown"
	LogMsgAutoCraftDisabled     = "Auto-craft disable observed, stopping loop"
	LogMsgAutoCraftFinished     = "Auto-craft loop finished"
)
