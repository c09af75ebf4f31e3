package domain

import (
	"fmt"
	"time"
)

// ResourceKind discriminates the two kinds of craftable resources:
// individually owned ball instances and fungible item balances.
type ResourceKind string

const (
	ResourceBall ResourceKind = "BALL"
	ResourceItem ResourceKind = "ITEM"
)

// Valid reports whether the kind is one of the recognized variants.
func (k ResourceKind) Valid() bool {
	return k == ResourceBall || k == ResourceItem
}

// ResourceRef is a tagged reference to a resource type. Kind determines
// whether ID names a ball or an item; there is no nullable pair to get
// out of sync.
type ResourceRef struct {
	Kind ResourceKind `json:"kind"`
	ID   int          `json:"id"`
	Name string       `json:"name"`
}

// Validate checks the reference is well-formed.
func (r ResourceRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown resource kind %q", ErrInvalidRecipe, r.Kind)
	}
	if r.ID <= 0 {
		return fmt.Errorf("%w: resource reference has no id", ErrInvalidRecipe)
	}
	return nil
}

// CraftingIngredient is a single requirement of a recipe.
type CraftingIngredient struct {
	Resource ResourceRef `json:"resource"`
	Quantity int         `json:"quantity"`
}

// RecipeResult describes what a successful craft produces. Special is a
// variant tag applied to created ball instances and is only meaningful
// for BALL results.
type RecipeResult struct {
	Resource ResourceRef `json:"resource"`
	Quantity int         `json:"quantity"`
	Special  *string     `json:"special,omitempty"`
}

// Validate checks the result descriptor. An unrecognized kind is a
// configuration error, never a silent default.
func (r RecipeResult) Validate() error {
	if err := r.Resource.Validate(); err != nil {
		return err
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: result quantity must be positive (got %d)", ErrInvalidRecipe, r.Quantity)
	}
	if r.Special != nil && r.Resource.Kind != ResourceBall {
		return fmt.Errorf("%w: special tag is only valid for ball results", ErrInvalidRecipe)
	}
	return nil
}

// CraftingRecipe is an immutable-during-attempt recipe definition.
// Name is the unique case-insensitive lookup key.
type CraftingRecipe struct {
	ID              int                  `json:"recipe_id"`
	Name            string               `json:"name"`
	Enabled         bool                 `json:"enabled"`
	CooldownSeconds int                  `json:"cooldown_seconds"`
	AllowAuto       bool                 `json:"allow_auto"`
	Ingredients     []CraftingIngredient `json:"ingredients"`
	Result          RecipeResult         `json:"result"`
	CreatedAt       time.Time            `json:"created_at,omitempty"`
}

// Cooldown returns the recipe-specific cooldown as a duration.
func (r CraftingRecipe) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// CraftingSettings is the process-wide crafting policy. The engine only
// reads it; configuration is external.
type CraftingSettings struct {
	Enabled               bool `json:"enabled"`
	AllowAutoCrafting     bool `json:"allow_auto_crafting"`
	GlobalCooldownSeconds int  `json:"global_cooldown_seconds"`
}

// GlobalCooldown returns the global cooldown as a duration.
func (s CraftingSettings) GlobalCooldown() time.Duration {
	return time.Duration(s.GlobalCooldownSeconds) * time.Second
}

// CraftingProfile is per-player crafting state, created lazily on first
// craft. LastCraftedAt drives the global cooldown.
type CraftingProfile struct {
	PlayerID      string     `json:"player_id"`
	LastCraftedAt *time.Time `json:"last_crafted_at,omitempty"`
}

// CraftingRecipeState is per (player, recipe) state, created lazily.
// LastCraftedAt drives the recipe-specific cooldown; AutoEnabled gates
// the auto-craft loop.
type CraftingRecipeState struct {
	PlayerID      string     `json:"player_id"`
	RecipeID      int        `json:"recipe_id"`
	LastCraftedAt *time.Time `json:"last_crafted_at,omitempty"`
	AutoEnabled   bool       `json:"auto_enabled"`
}

// BallInstance is an individually identified, ownable ball. Deleted is
// the consumption marker; CaughtAt orders FIFO consumption.
type BallInstance struct {
	ID       string    `json:"instance_id"`
	PlayerID string    `json:"player_id"`
	BallID   int       `json:"ball_id"`
	Special  *string   `json:"special,omitempty"`
	CaughtAt time.Time `json:"caught_at"`
	Deleted  bool      `json:"deleted"`
}

// ItemBalance is a fungible per (player, item) quantity. Quantity never
// goes negative; any mutation that would violate this aborts.
type ItemBalance struct {
	PlayerID string `json:"player_id"`
	ItemID   int    `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CraftAttempt is one append-only audit row per craft attempt.
type CraftAttempt struct {
	ID         int64     `json:"id"`
	PlayerID   string    `json:"player_id"`
	RecipeID   int       `json:"recipe_id"`
	RecipeName string    `json:"recipe_name"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Ball is a catalog entry for a collectible ball type.
type Ball struct {
	ID      int    `json:"ball_id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Item is a catalog entry for a fungible item type.
type Item struct {
	ID   int    `json:"item_id"`
	Name string `json:"name"`
}
