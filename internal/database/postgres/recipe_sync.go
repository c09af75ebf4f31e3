package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// RecipeSyncRepository implements repository.RecipeSync against
// PostgreSQL. It is only exercised at startup by the recipe loader.
type RecipeSyncRepository struct {
	pool *pgxpool.Pool
}

// NewRecipeSyncRepository creates a new recipe sync repository.
func NewRecipeSyncRepository(pool *pgxpool.Pool) *RecipeSyncRepository {
	return &RecipeSyncRepository{pool: pool}
}

func (r *RecipeSyncRepository) GetBallByName(ctx context.Context, name string) (*domain.Ball, error) {
	var b domain.Ball
	err := r.pool.QueryRow(ctx, sqlSelectBallByName, name).Scan(&b.ID, &b.Name, &b.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ball %q: %w", name, err)
	}
	return &b, nil
}

func (r *RecipeSyncRepository) GetItemByName(ctx context.Context, name string) (*domain.Item, error) {
	var i domain.Item
	err := r.pool.QueryRow(ctx, sqlSelectItemByName, name).Scan(&i.ID, &i.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %q: %w", name, err)
	}
	return &i, nil
}

func (r *RecipeSyncRepository) GetSyncChecksum(ctx context.Context, name string) (string, error) {
	var checksum string
	err := r.pool.QueryRow(ctx, sqlSelectSyncChecksum, name).Scan(&checksum)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get sync checksum: %w", err)
	}
	return checksum, nil
}

func (r *RecipeSyncRepository) SetSyncChecksum(ctx context.Context, name, checksum string) error {
	if _, err := r.pool.Exec(ctx, sqlUpsertSyncChecksum, name, checksum); err != nil {
		return fmt.Errorf("failed to set sync checksum: %w", err)
	}
	return nil
}

func (r *RecipeSyncRepository) UpsertRecipe(ctx context.Context, recipe domain.CraftingRecipe) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)

	var recipeID int
	err = tx.QueryRow(ctx, sqlUpsertRecipe,
		recipe.Name, recipe.Enabled, recipe.CooldownSeconds, recipe.AllowAuto,
		string(recipe.Result.Resource.Kind), recipe.Result.Resource.ID,
		recipe.Result.Quantity, recipe.Result.Special).Scan(&recipeID)
	if err != nil {
		return fmt.Errorf("failed to upsert recipe %q: %w", recipe.Name, err)
	}

	// Ingredients are replaced wholesale so removals in the config file
	// take effect.
	if _, err := tx.Exec(ctx, sqlDeleteIngredients, recipeID); err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}
	for i, ing := range recipe.Ingredients {
		_, err := tx.Exec(ctx, sqlInsertIngredient,
			recipeID, i, string(ing.Resource.Kind), ing.Resource.ID, ing.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recipe upsert: %w", err)
	}
	return nil
}
