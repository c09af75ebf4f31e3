package crafting

import (
	"context"
	"fmt"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// stockReader is the read surface the requirement checker needs. Both
// the repository and the executor's transaction satisfy it, so the same
// check runs advisorily up front and authoritatively under the lock.
type stockReader interface {
	CountOwnedBalls(ctx context.Context, playerID string, ballID int) (int, error)
	GetItemBalance(ctx context.Context, playerID string, itemID int) (int, error)
}

// checkRequirements verifies the player owns every ingredient of the
// recipe. Read-only; nothing is marked consumed. Short-circuits on the
// first failing ingredient in definition order and returns an
// *InsufficientIngredientError naming the shortfall.
func checkRequirements(ctx context.Context, reader stockReader, playerID string, recipe *domain.CraftingRecipe) error {
	for _, ing := range recipe.Ingredients {
		var owned int
		var err error

		switch ing.Resource.Kind {
		case domain.ResourceBall:
			owned, err = reader.CountOwnedBalls(ctx, playerID, ing.Resource.ID)
		case domain.ResourceItem:
			owned, err = reader.GetItemBalance(ctx, playerID, ing.Resource.ID)
		default:
			return fmt.Errorf("%w: ingredient %q has unknown kind %q", domain.ErrInvalidRecipe, ing.Resource.Name, ing.Resource.Kind)
		}
		if err != nil {
			return fmt.Errorf("failed to read owned quantity for %s: %w", ing.Resource.Name, err)
		}

		if owned < ing.Quantity {
			return &InsufficientIngredientError{
				Name:     ing.Resource.Name,
				Required: ing.Quantity,
				Owned:    owned,
			}
		}
	}
	return nil
}
