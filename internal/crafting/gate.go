package crafting

import (
	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// CheckPolicy decides whether an attempt may proceed under the current
// settings. Pure: no side effects, no I/O. Auto-only policy is checked
// only for automatic attempts.
func CheckPolicy(settings domain.CraftingSettings, recipe domain.CraftingRecipe, auto bool) error {
	if !settings.Enabled {
		return domain.ErrCraftingDisabled
	}
	if !recipe.Enabled {
		return domain.ErrRecipeDisabled
	}
	if auto {
		if !settings.AllowAutoCrafting {
			return domain.ErrAutoCraftingDisabled
		}
		if !recipe.AllowAuto {
			return domain.ErrRecipeAutoDisabled
		}
	}
	return nil
}
