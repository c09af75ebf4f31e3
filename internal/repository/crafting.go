package repository

import (
	"context"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// Crafting defines the storage interface for the crafting engine.
// Reads outside a transaction are advisory; the executor re-derives
// everything it mutates inside a CraftingTx.
type Crafting interface {
	GetSettings(ctx context.Context) (*domain.CraftingSettings, error)

	// GetRecipeByName looks a recipe up by its case-insensitive name,
	// with ingredients attached. Returns nil when no recipe matches.
	GetRecipeByName(ctx context.Context, name string) (*domain.CraftingRecipe, error)
	ListRecipes(ctx context.Context) ([]domain.CraftingRecipe, error)

	// GetOrCreateProfile and GetOrCreateRecipeState are idempotent under
	// concurrent first access; two simultaneous first crafts must not
	// create duplicate rows.
	GetOrCreateProfile(ctx context.Context, playerID string) (*domain.CraftingProfile, error)
	GetOrCreateRecipeState(ctx context.Context, playerID string, recipeID int) (*domain.CraftingRecipeState, error)
	SetAutoEnabled(ctx context.Context, playerID string, recipeID int, enabled bool) error

	// Advisory reads used by the requirement checker.
	CountOwnedBalls(ctx context.Context, playerID string, ballID int) (int, error)
	GetItemBalance(ctx context.Context, playerID string, itemID int) (int, error)

	BeginTx(ctx context.Context) (CraftingTx, error)
}

// CraftingTx is the unit of work for the atomic executor. Everything
// performed through it is durable together or not at all.
type CraftingTx interface {
	// GetProfileForUpdate and GetRecipeStateForUpdate lock the player's
	// cooldown rows for the duration of the transaction.
	GetProfileForUpdate(ctx context.Context, playerID string) (*domain.CraftingProfile, error)
	GetRecipeStateForUpdate(ctx context.Context, playerID string, recipeID int) (*domain.CraftingRecipeState, error)

	CountOwnedBalls(ctx context.Context, playerID string, ballID int) (int, error)
	GetItemBalance(ctx context.Context, playerID string, itemID int) (int, error)

	// ConsumeOldestBalls soft-deletes the player's oldest owned instances
	// of the ball type, FIFO by catch date, and returns how many rows it
	// actually marked. A short count means a lost race.
	ConsumeOldestBalls(ctx context.Context, playerID string, ballID, quantity int) (int, error)

	// AdjustItemBalance applies a signed delta to a player's item balance
	// and returns the new quantity. A decrement that would drive the
	// balance negative fails with domain.ErrInsufficientQuantity without
	// modifying the row.
	AdjustItemBalance(ctx context.Context, playerID string, itemID, delta int) (int, error)

	// CreateBallInstances grants quantity new instances of the ball type,
	// stamped with caughtAt and the optional special tag.
	CreateBallInstances(ctx context.Context, playerID string, ballID, quantity int, special *string, caughtAt time.Time) error

	// SetLastCrafted advances both the profile and the recipe-state
	// cooldown timestamps.
	SetLastCrafted(ctx context.Context, playerID string, recipeID int, at time.Time) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// RecipeSync persists recipe definitions loaded from the config file.
type RecipeSync interface {
	GetBallByName(ctx context.Context, name string) (*domain.Ball, error)
	GetItemByName(ctx context.Context, name string) (*domain.Item, error)
	GetSyncChecksum(ctx context.Context, name string) (string, error)
	SetSyncChecksum(ctx context.Context, name, checksum string) error
	UpsertRecipe(ctx context.Context, recipe domain.CraftingRecipe) error
}
