package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
)

// querier is the subset of pgx shared by a pool and a transaction, so
// the same read queries can run inside and outside the executor.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CraftingRepository implements repository.Crafting against PostgreSQL.
type CraftingRepository struct {
	pool *pgxpool.Pool
}

// NewCraftingRepository creates a new crafting repository.
func NewCraftingRepository(pool *pgxpool.Pool) *CraftingRepository {
	return &CraftingRepository{pool: pool}
}

func (r *CraftingRepository) GetSettings(ctx context.Context) (*domain.CraftingSettings, error) {
	var s domain.CraftingSettings
	err := r.pool.QueryRow(ctx, sqlSelectSettings).Scan(&s.Enabled, &s.AllowAutoCrafting, &s.GlobalCooldownSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to get crafting settings: %w", err)
	}
	return &s, nil
}

func (r *CraftingRepository) GetRecipeByName(ctx context.Context, name string) (*domain.CraftingRecipe, error) {
	recipe, err := scanRecipe(r.pool.QueryRow(ctx, sqlSelectRecipeByName, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %q: %w", name, err)
	}
	recipe.Ingredients, err = loadIngredients(ctx, r.pool, recipe.ID)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *CraftingRepository) ListRecipes(ctx context.Context) ([]domain.CraftingRecipe, error) {
	rows, err := r.pool.Query(ctx, sqlSelectAllRecipes)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.CraftingRecipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, *recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	for i := range recipes {
		recipes[i].Ingredients, err = loadIngredients(ctx, r.pool, recipes[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (r *CraftingRepository) GetOrCreateProfile(ctx context.Context, playerID string) (*domain.CraftingProfile, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return nil, err
	}
	if _, err := r.pool.Exec(ctx, sqlInsertProfileIfAbsent, pid); err != nil {
		return nil, fmt.Errorf("failed to create crafting profile: %w", err)
	}
	profile := &domain.CraftingProfile{PlayerID: playerID}
	if err := r.pool.QueryRow(ctx, sqlSelectProfile, pid).Scan(&profile.LastCraftedAt); err != nil {
		return nil, fmt.Errorf("failed to get crafting profile: %w", err)
	}
	return profile, nil
}

func (r *CraftingRepository) GetOrCreateRecipeState(ctx context.Context, playerID string, recipeID int) (*domain.CraftingRecipeState, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return nil, err
	}
	if _, err := r.pool.Exec(ctx, sqlInsertStateIfAbsent, pid, recipeID); err != nil {
		return nil, fmt.Errorf("failed to create recipe state: %w", err)
	}
	state := &domain.CraftingRecipeState{PlayerID: playerID, RecipeID: recipeID}
	if err := r.pool.QueryRow(ctx, sqlSelectState, pid, recipeID).Scan(&state.LastCraftedAt, &state.AutoEnabled); err != nil {
		return nil, fmt.Errorf("failed to get recipe state: %w", err)
	}
	return state, nil
}

func (r *CraftingRepository) SetAutoEnabled(ctx context.Context, playerID string, recipeID int, enabled bool) error {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, sqlSetAutoEnabled, pid, recipeID, enabled); err != nil {
		return fmt.Errorf("failed to set auto craft flag: %w", err)
	}
	return nil
}

func (r *CraftingRepository) CountOwnedBalls(ctx context.Context, playerID string, ballID int) (int, error) {
	return countOwnedBalls(ctx, r.pool, playerID, ballID)
}

func (r *CraftingRepository) GetItemBalance(ctx context.Context, playerID string, itemID int) (int, error) {
	return getItemBalance(ctx, r.pool, playerID, itemID)
}

func (r *CraftingRepository) BeginTx(ctx context.Context) (repository.CraftingTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &craftingTx{tx: tx}, nil
}

// craftingTx implements repository.CraftingTx over a single pgx.Tx.
type craftingTx struct {
	tx pgx.Tx
}

func (t *craftingTx) GetProfileForUpdate(ctx context.Context, playerID string) (*domain.CraftingProfile, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return nil, err
	}
	profile := &domain.CraftingProfile{PlayerID: playerID}
	err = t.tx.QueryRow(ctx, sqlSelectProfileForUpdate, pid).Scan(&profile.LastCraftedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// First craft can race the get-or-create; insert and re-lock.
		if _, err := t.tx.Exec(ctx, sqlInsertProfileIfAbsent, pid); err != nil {
			return nil, fmt.Errorf("failed to create crafting profile: %w", err)
		}
		err = t.tx.QueryRow(ctx, sqlSelectProfileForUpdate, pid).Scan(&profile.LastCraftedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock crafting profile: %w", err)
	}
	return profile, nil
}

func (t *craftingTx) GetRecipeStateForUpdate(ctx context.Context, playerID string, recipeID int) (*domain.CraftingRecipeState, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return nil, err
	}
	state := &domain.CraftingRecipeState{PlayerID: playerID, RecipeID: recipeID}
	err = t.tx.QueryRow(ctx, sqlSelectStateForUpdate, pid, recipeID).Scan(&state.LastCraftedAt, &state.AutoEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := t.tx.Exec(ctx, sqlInsertStateIfAbsent, pid, recipeID); err != nil {
			return nil, fmt.Errorf("failed to create recipe state: %w", err)
		}
		err = t.tx.QueryRow(ctx, sqlSelectStateForUpdate, pid, recipeID).Scan(&state.LastCraftedAt, &state.AutoEnabled)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock recipe state: %w", err)
	}
	return state, nil
}

func (t *craftingTx) CountOwnedBalls(ctx context.Context, playerID string, ballID int) (int, error) {
	return countOwnedBalls(ctx, t.tx, playerID, ballID)
}

func (t *craftingTx) GetItemBalance(ctx context.Context, playerID string, itemID int) (int, error) {
	return getItemBalance(ctx, t.tx, playerID, itemID)
}

func (t *craftingTx) ConsumeOldestBalls(ctx context.Context, playerID string, ballID, quantity int) (int, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return 0, err
	}
	tag, err := t.tx.Exec(ctx, sqlConsumeOldestBalls, pid, ballID, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to consume ball instances: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (t *craftingTx) AdjustItemBalance(ctx context.Context, playerID string, itemID, delta int) (int, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return 0, err
	}
	var quantity int
	if delta < 0 {
		err = t.tx.QueryRow(ctx, sqlDecrementItemBalance, pid, itemID, -delta).Scan(&quantity)
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInsufficientQuantity
		}
	} else {
		err = t.tx.QueryRow(ctx, sqlIncrementItemBalance, pid, itemID, delta).Scan(&quantity)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust item balance: %w", err)
	}
	return quantity, nil
}

func (t *craftingTx) CreateBallInstances(ctx context.Context, playerID string, ballID, quantity int, special *string, caughtAt time.Time) error {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, sqlCreateBallInstances, pid, ballID, special, caughtAt, quantity); err != nil {
		return fmt.Errorf("failed to create ball instances: %w", err)
	}
	return nil
}

func (t *craftingTx) SetLastCrafted(ctx context.Context, playerID string, recipeID int, at time.Time) error {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, sqlSetProfileLastCrafted, pid, at); err != nil {
		return fmt.Errorf("failed to advance profile cooldown: %w", err)
	}
	if _, err := t.tx.Exec(ctx, sqlSetStateLastCrafted, pid, recipeID, at); err != nil {
		return fmt.Errorf("failed to advance recipe cooldown: %w", err)
	}
	return nil
}

func (t *craftingTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *craftingTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// ---- shared scan helpers ----

func scanRecipe(row pgx.Row) (*domain.CraftingRecipe, error) {
	var (
		recipe     domain.CraftingRecipe
		resultKind string
		resultName *string
	)
	err := row.Scan(&recipe.ID, &recipe.Name, &recipe.Enabled, &recipe.CooldownSeconds, &recipe.AllowAuto,
		&resultKind, &recipe.Result.Resource.ID, &recipe.Result.Quantity, &recipe.Result.Special,
		&recipe.CreatedAt, &resultName)
	if err != nil {
		return nil, err
	}
	recipe.Result.Resource.Kind = domain.ResourceKind(resultKind)
	if resultName != nil {
		recipe.Result.Resource.Name = *resultName
	}
	return &recipe, nil
}

func loadIngredients(ctx context.Context, q querier, recipeID int) ([]domain.CraftingIngredient, error) {
	rows, err := q.Query(ctx, sqlSelectIngredients, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []domain.CraftingIngredient
	for rows.Next() {
		var (
			ing  domain.CraftingIngredient
			kind string
			name *string
		)
		if err := rows.Scan(&kind, &ing.Resource.ID, &ing.Quantity, &name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ing.Resource.Kind = domain.ResourceKind(kind)
		if name != nil {
			ing.Resource.Name = *name
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ingredients: %w", err)
	}
	return ingredients, nil
}

func countOwnedBalls(ctx context.Context, q querier, playerID string, ballID int) (int, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return 0, err
	}
	var count int
	if err := q.QueryRow(ctx, sqlCountOwnedBalls, pid, ballID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count owned balls: %w", err)
	}
	return count, nil
}

func getItemBalance(ctx context.Context, q querier, playerID string, itemID int) (int, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return 0, err
	}
	var quantity int
	err = q.QueryRow(ctx, sqlSelectItemBalance, pid, itemID).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get item balance: %w", err)
	}
	return quantity, nil
}
