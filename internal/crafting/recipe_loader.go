package crafting

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
	"github.com/Haymooed/BallsDex-Event-Package/internal/validation"
)

// Sentinel errors for recipe loader
var (
	ErrDuplicateRecipeName = errors.New("duplicate recipe name")
	ErrUnknownResource     = errors.New("unknown resource reference")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// SyncMetadataName identifies the recipe config in the sync metadata table
const SyncMetadataName = "recipes_crafting.json"

// RecipeConfig represents the JSON recipe configuration file
type RecipeConfig struct {
	Version     string      `json:"version"`
	Description string      `json:"description"`
	Recipes     []RecipeDef `json:"recipes" validate:"required,dive"`
}

// RecipeDef is a single recipe definition in the JSON file
type RecipeDef struct {
	Name            string          `json:"name" validate:"required"`
	Enabled         bool            `json:"enabled"`
	CooldownSeconds int             `json:"cooldown_seconds" validate:"gte=0"`
	AllowAuto       bool            `json:"allow_auto"`
	Ingredients     []IngredientDef `json:"ingredients" validate:"required,min=1,dive"`
	Result          ResultDef       `json:"result" validate:"required"`
}

// IngredientDef is a single requirement in a recipe definition
type IngredientDef struct {
	Kind     string `json:"kind" validate:"required,oneof=BALL ITEM"`
	Ref      string `json:"ref" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// ResultDef is the produced resource of a recipe definition
type ResultDef struct {
	Kind     string `json:"kind" validate:"required,oneof=BALL ITEM"`
	Ref      string `json:"ref" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Special  string `json:"special,omitempty"`
}

// SyncResult contains the result of syncing recipes to the database
type SyncResult struct {
	Synced  int
	Skipped bool
}

// RecipeLoader loads recipe definitions from a JSON file, validates
// them, and syncs them into the store.
type RecipeLoader interface {
	Load(path string) (*RecipeConfig, error)
	Validate(ctx context.Context, config *RecipeConfig, repo repository.RecipeSync) error
	SyncToDatabase(ctx context.Context, path string, config *RecipeConfig, repo repository.RecipeSync) (*SyncResult, error)
}

type recipeLoader struct {
	validate *validator.Validate
}

// NewRecipeLoader creates a new RecipeLoader instance
func NewRecipeLoader() RecipeLoader {
	return &recipeLoader{validate: validator.New()}
}

// Load reads and parses the recipe JSON file. The raw bytes are checked
// against the config schema before decoding.
func (l *recipeLoader) Load(path string) (*RecipeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe config file: %w", err)
	}

	if err := validation.ValidateRecipeConfig(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var config RecipeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse recipe config: %w", err)
	}
	return &config, nil
}

// Validate checks the recipe configuration for structural errors and
// dangling resource references. An unrecognized result kind fails here
// rather than defaulting to anything.
func (l *recipeLoader) Validate(ctx context.Context, config *RecipeConfig, repo repository.RecipeSync) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := l.validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(config.Recipes))
	for _, def := range config.Recipes {
		key := strings.ToLower(def.Name)
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateRecipeName, def.Name)
		}
		seen[key] = true

		for _, ing := range def.Ingredients {
			if _, err := l.resolveRef(ctx, repo, ing.Kind, ing.Ref); err != nil {
				return fmt.Errorf("recipe %q ingredient: %w", def.Name, err)
			}
		}
		if _, err := l.resolveRef(ctx, repo, def.Result.Kind, def.Result.Ref); err != nil {
			return fmt.Errorf("recipe %q result: %w", def.Name, err)
		}
		if def.Result.Special != "" && def.Result.Kind != string(domain.ResourceBall) {
			return fmt.Errorf("%w: recipe %q sets a special tag on a non-ball result", ErrInvalidConfig, def.Name)
		}
	}
	return nil
}

// SyncToDatabase upserts the recipe definitions into the store. The
// sync is skipped entirely when the file checksum matches the last
// recorded one.
func (l *recipeLoader) SyncToDatabase(ctx context.Context, path string, config *RecipeConfig, repo repository.RecipeSync) (*SyncResult, error) {
	log := logger.FromContext(ctx)

	checksum, err := fileChecksum(path)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum recipe config: %w", err)
	}

	previous, err := repo.GetSyncChecksum(ctx, SyncMetadataName)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync metadata: %w", err)
	}
	if previous == checksum {
		log.Info("Recipe config unchanged, skipping sync")
		return &SyncResult{Skipped: true}, nil
	}

	synced := 0
	for _, def := range config.Recipes {
		recipe, err := l.toRecipe(ctx, repo, def)
		if err != nil {
			return nil, err
		}
		if err := repo.UpsertRecipe(ctx, *recipe); err != nil {
			return nil, fmt.Errorf("failed to upsert recipe %q: %w", def.Name, err)
		}
		synced++
	}

	if err := repo.SetSyncChecksum(ctx, SyncMetadataName, checksum); err != nil {
		// The sync itself succeeded; next startup repeats it
		log.Warn("Failed to update recipe sync metadata", "error", err)
	}

	log.Info("Recipe sync completed", "synced", synced)
	return &SyncResult{Synced: synced}, nil
}

func (l *recipeLoader) toRecipe(ctx context.Context, repo repository.RecipeSync, def RecipeDef) (*domain.CraftingRecipe, error) {
	ingredients := make([]domain.CraftingIngredient, 0, len(def.Ingredients))
	for _, ing := range def.Ingredients {
		ref, err := l.resolveRef(ctx, repo, ing.Kind, ing.Ref)
		if err != nil {
			return nil, fmt.Errorf("recipe %q ingredient: %w", def.Name, err)
		}
		ingredients = append(ingredients, domain.CraftingIngredient{
			Resource: *ref,
			Quantity: ing.Quantity,
		})
	}

	resultRef, err := l.resolveRef(ctx, repo, def.Result.Kind, def.Result.Ref)
	if err != nil {
		return nil, fmt.Errorf("recipe %q result: %w", def.Name, err)
	}

	result := domain.RecipeResult{
		Resource: *resultRef,
		Quantity: def.Result.Quantity,
	}
	if def.Result.Special != "" {
		special := def.Result.Special
		result.Special = &special
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("recipe %q: %w", def.Name, err)
	}

	return &domain.CraftingRecipe{
		Name:            def.Name,
		Enabled:         def.Enabled,
		CooldownSeconds: def.CooldownSeconds,
		AllowAuto:       def.AllowAuto,
		Ingredients:     ingredients,
		Result:          result,
	}, nil
}

func (l *recipeLoader) resolveRef(ctx context.Context, repo repository.RecipeSync, kind, ref string) (*domain.ResourceRef, error) {
	switch domain.ResourceKind(kind) {
	case domain.ResourceBall:
		ball, err := repo.GetBallByName(ctx, ref)
		if errors.Is(err, domain.ErrBallNotFound) || (err == nil && ball == nil) {
			return nil, fmt.Errorf("%w: ball %q", ErrUnknownResource, ref)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up ball %q: %w", ref, err)
		}
		return &domain.ResourceRef{Kind: domain.ResourceBall, ID: ball.ID, Name: ball.Name}, nil
	case domain.ResourceItem:
		item, err := repo.GetItemByName(ctx, ref)
		if errors.Is(err, domain.ErrItemNotFound) || (err == nil && item == nil) {
			return nil, fmt.Errorf("%w: item %q", ErrUnknownResource, ref)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up item %q: %w", ref, err)
		}
		return &domain.ResourceRef{Kind: domain.ResourceItem, ID: item.ID, Name: item.Name}, nil
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", ErrInvalidConfig, kind)
	}
}

func fileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
