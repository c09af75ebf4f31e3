package crafting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func goldCoinRecipe() domain.CraftingRecipe {
	return domain.CraftingRecipe{
		ID:              1,
		Name:            "Gold Coin",
		Enabled:         true,
		CooldownSeconds: 60,
		AllowAuto:       true,
		Ingredients: []domain.CraftingIngredient{
			{Resource: ballRef(1, "Fox"), Quantity: 1},
			{Resource: itemRef(10, "Ore"), Quantity: 3},
		},
		Result: domain.RecipeResult{Resource: itemRef(20, "Coin"), Quantity: 5},
	}
}

func ironSwordRecipe() domain.CraftingRecipe {
	return domain.CraftingRecipe{
		ID:              2,
		Name:            "Iron Sword",
		Enabled:         true,
		CooldownSeconds: 300,
		Ingredients: []domain.CraftingIngredient{
			{Resource: itemRef(10, "Ore"), Quantity: 2},
			{Resource: itemRef(11, "Wood"), Quantity: 1},
		},
		Result: domain.RecipeResult{Resource: itemRef(21, "Iron Sword"), Quantity: 1},
	}
}

func TestCraftSuccess(t *testing.T) {
	repo := NewMockRepository()
	logRepo := NewMockCraftLog()
	clock := newTestClock(testStart)
	svc := newTestService(repo, logRepo, clock)

	repo.AddRecipe(goldCoinRecipe())
	oldFox := repo.AddBallInstance("p1", 1, testStart.Add(-time.Hour))
	newFox := repo.AddBallInstance("p1", 1, testStart.Add(-time.Minute))
	repo.SetItemBalance("p1", 10, 3)

	out, err := svc.Craft(context.Background(), "p1", "gold coin")
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, "You crafted 5× Coin!", out.Message)
	assert.Equal(t, "5× Coin", out.Result)

	// Oldest Fox instance consumed, the newer one survives
	live := repo.LiveBallIDs("p1", 1)
	require.Len(t, live, 1)
	assert.Equal(t, newFox, live[0])
	assert.NotEqual(t, oldFox, live[0])

	// Ore spent, Coin granted
	assert.Equal(t, 0, repo.ItemBalance("p1", 10))
	assert.Equal(t, 5, repo.ItemBalance("p1", 20))

	// Both cooldown timestamps advanced to the craft instant
	require.NotNil(t, repo.Profile("p1").LastCraftedAt)
	assert.Equal(t, testStart, *repo.Profile("p1").LastCraftedAt)
	require.NotNil(t, repo.State("p1", 1).LastCraftedAt)
	assert.Equal(t, testStart, *repo.State("p1", 1).LastCraftedAt)

	// One audit row, success
	attempts := logRepo.Attempts()
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
	assert.Equal(t, "Gold Coin", attempts[0].RecipeName)
}

func TestCraftInsufficientLeavesStateUntouched(t *testing.T) {
	repo := NewMockRepository()
	logRepo := NewMockCraftLog()
	svc := newTestService(repo, logRepo, newTestClock(testStart))

	repo.AddRecipe(ironSwordRecipe())
	repo.SetItemBalance("p1", 10, 1)
	repo.SetItemBalance("p1", 11, 1)

	out, err := svc.Craft(context.Background(), "p1", "Iron Sword")
	require.NoError(t, err)

	assert.False(t, out.Success)
	assert.Equal(t, OutcomeRejectedInsufficient, out.Kind)
	assert.Equal(t, "not enough Ore: need 2, have 1", out.Message)

	// Nothing was consumed or granted
	assert.Equal(t, 1, repo.ItemBalance("p1", 10))
	assert.Equal(t, 1, repo.ItemBalance("p1", 11))
	assert.Equal(t, 0, repo.ItemBalance("p1", 21))

	// Cooldowns not advanced
	assert.Nil(t, repo.Profile("p1").LastCraftedAt)
	assert.Nil(t, repo.State("p1", 2).LastCraftedAt)

	// Failure still logged
	attempts := logRepo.Attempts()
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
}

func TestCraftRecipeNotFound(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(repo, NewMockCraftLog(), newTestClock(testStart))

	out, err := svc.Craft(context.Background(), "p1", "Mystery Meat")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRecipeNotFound, out.Kind)
	assert.Equal(t, "Recipe 'Mystery Meat' not found.", out.Message)
}

func TestCraftRejectedWhenCraftingDisabled(t *testing.T) {
	repo := NewMockRepository()
	repo.settings.Enabled = false
	logRepo := NewMockCraftLog()
	svc := newTestService(repo, logRepo, newTestClock(testStart))

	repo.AddRecipe(goldCoinRecipe())

	out, err := svc.Craft(context.Background(), "p1", "Gold Coin")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejectedPolicy, out.Kind)
	assert.Equal(t, domain.ErrCraftingDisabled.Error(), out.Message)

	// Policy rejections are logged too
	require.Len(t, logRepo.Attempts(), 1)
}

func TestCraftCooldownRejected(t *testing.T) {
	repo := NewMockRepository()
	clock := newTestClock(testStart)
	svc := newTestService(repo, NewMockCraftLog(), clock)

	repo.AddRecipe(goldCoinRecipe())
	repo.AddBallInstance("p1", 1, testStart.Add(-time.Hour))
	repo.SetItemBalance("p1", 10, 3)

	// Craft once, then immediately again
	out, err := svc.Craft(context.Background(), "p1", "Gold Coin")
	require.NoError(t, err)
	require.True(t, out.Success)

	clock.Advance(20 * time.Second)
	out, err = svc.Craft(context.Background(), "p1", "Gold Coin")
	require.NoError(t, err)

	assert.Equal(t, OutcomeRejectedCooldown, out.Kind)
	require.NotNil(t, out.RetryAfter)
	assert.Equal(t, 40*time.Second, *out.RetryAfter)
	assert.Equal(t, "on cooldown: 40s remaining", out.Message)
}

func TestCraftCommitFailureRollsBack(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(repo, NewMockCraftLog(), newTestClock(testStart))

	repo.AddRecipe(goldCoinRecipe())
	repo.AddBallInstance("p1", 1, testStart.Add(-time.Hour))
	repo.SetItemBalance("p1", 10, 3)
	repo.commitErr = errors.New("connection reset")

	out, err := svc.Craft(context.Background(), "p1", "Gold Coin")
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailedInternal, out.Kind)
	assert.Equal(t, MsgGenericFailure, out.Message)

	// All-or-nothing: the staged consumption never landed
	assert.Len(t, repo.LiveBallIDs("p1", 1), 1)
	assert.Equal(t, 3, repo.ItemBalance("p1", 10))
	assert.Equal(t, 0, repo.ItemBalance("p1", 20))
	assert.Nil(t, repo.Profile("p1").LastCraftedAt)
}

func TestCraftInvalidResultKindIsConfigError(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(repo, NewMockCraftLog(), newTestClock(testStart))

	recipe := goldCoinRecipe()
	recipe.Result.Resource.Kind = "TROPHY"
	repo.AddRecipe(recipe)
	repo.AddBallInstance("p1", 1, testStart.Add(-time.Hour))
	repo.SetItemBalance("p1", 10, 3)

	out, err := svc.Craft(context.Background(), "p1", "Gold Coin")
	require.NoError(t, err)

	// Never a silent fallback: the attempt fails and consumes nothing
	assert.Equal(t, OutcomeFailedConfig, out.Kind)
	assert.Equal(t, MsgGenericFailure, out.Message)
	assert.Len(t, repo.LiveBallIDs("p1", 1), 1)
	assert.Equal(t, 3, repo.ItemBalance("p1", 10))
}

func TestCraftBallRewardCarriesSpecial(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(repo, NewMockCraftLog(), newTestClock(testStart))

	shiny := "shiny"
	recipe := domain.CraftingRecipe{
		ID:      3,
		Name:    "Shiny Fox",
		Enabled: true,
		Ingredients: []domain.CraftingIngredient{
			{Resource: ballRef(1, "Fox"), Quantity: 3},
		},
		Result: domain.RecipeResult{Resource: ballRef(1, "Fox"), Quantity: 1, Special: &shiny},
	}
	repo.AddRecipe(recipe)
	for i := 0; i < 3; i++ {
		repo.AddBallInstance("p1", 1, testStart.Add(-time.Duration(i+1)*time.Hour))
	}

	out, err := svc.Craft(context.Background(), "p1", "Shiny Fox")
	require.NoError(t, err)
	require.True(t, out.Success)
	assert.Equal(t, "1× shiny Fox", out.Result)

	// Three consumed, one newly created
	live := repo.LiveBallIDs("p1", 1)
	require.Len(t, live, 1)
}

func TestCraftConcurrentDoubleSpend(t *testing.T) {
	repo := NewMockRepository()
	logRepo := NewMockCraftLog()
	svc := newTestService(repo, logRepo, newTestClock(testStart))

	repo.AddRecipe(goldCoinRecipe())
	// Enough for exactly one craft
	repo.AddBallInstance("p1", 1, testStart.Add(-time.Hour))
	repo.SetItemBalance("p1", 10, 3)

	const attempts = 8
	var wg sync.WaitGroup
	outcomes := make([]Outcome, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := svc.Craft(context.Background(), "p1", "Gold Coin")
			assert.NoError(t, err)
			outcomes[i] = out
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, out := range outcomes {
		if out.Success {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent attempt may succeed")

	// Balance never driven negative, reward granted exactly once
	assert.Equal(t, 0, repo.ItemBalance("p1", 10))
	assert.Equal(t, 5, repo.ItemBalance("p1", 20))
	assert.Empty(t, repo.LiveBallIDs("p1", 1))
	assert.Len(t, logRepo.Attempts(), attempts)
}

// raceRepo runs a hook just before the transaction opens, after the
// advisory check has already passed.
type raceRepo struct {
	*MockRepository
	beforeTx func()
}

func (r *raceRepo) BeginTx(ctx context.Context) (repository.CraftingTx, error) {
	if r.beforeTx != nil {
		r.beforeTx()
	}
	return r.MockRepository.BeginTx(ctx)
}

func TestCraftLostConsumeRaceIsConsistencyFailure(t *testing.T) {
	mock := NewMockRepository()
	logRepo := NewMockCraftLog()

	mock.AddRecipe(goldCoinRecipe())
	fox := mock.AddBallInstance("p1", 1, testStart.Add(-time.Hour))
	mock.SetItemBalance("p1", 10, 3)

	// The Ore vanishes between the advisory check and the executor's
	// authoritative re-check under the row locks
	repo := &raceRepo{MockRepository: mock, beforeTx: func() {
		mock.SetItemBalance("p1", 10, 0)
	}}
	svc := newTestService(repo, logRepo, newTestClock(testStart))

	out, err := svc.Craft(context.Background(), "p1", "Gold Coin")
	require.NoError(t, err)

	// A lost race is a consistency failure with a generic message, not
	// an ordinary insufficiency rejection
	assert.False(t, out.Success)
	assert.Equal(t, OutcomeFailedConsistency, out.Kind)
	assert.Equal(t, MsgGenericFailure, out.Message)

	// Nothing persisted: the Fox survives, no reward, no cooldowns
	assert.Equal(t, []int{fox}, mock.LiveBallIDs("p1", 1))
	assert.Equal(t, 0, mock.ItemBalance("p1", 20))
	assert.Nil(t, mock.Profile("p1").LastCraftedAt)
	assert.Nil(t, mock.State("p1", 1).LastCraftedAt)

	// Logged as a failed attempt
	attempts := logRepo.Attempts()
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Success)
}

func TestCraftLogFailureIsNonFatal(t *testing.T) {
	repo := NewMockRepository()
	logRepo := NewMockCraftLog()
	logRepo.appendErr = errors.New("disk full")
	svc := newTestService(repo, logRepo, newTestClock(testStart))

	repo.AddRecipe(goldCoinRecipe())
	repo.AddBallInstance("p1", 1, testStart.Add(-time.Hour))
	repo.SetItemBalance("p1", 10, 3)

	out, err := svc.Craft(context.Background(), "p1", "Gold Coin")
	require.NoError(t, err)
	assert.True(t, out.Success, "a failed audit write must not fail the craft")
}

func TestSetAutoCraft(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(repo, NewMockCraftLog(), newTestClock(testStart))

	repo.AddRecipe(goldCoinRecipe())

	require.NoError(t, svc.SetAutoCraft(context.Background(), "p1", "Gold Coin", true))
	assert.True(t, repo.State("p1", 1).AutoEnabled)

	require.NoError(t, svc.SetAutoCraft(context.Background(), "p1", "Gold Coin", false))
	assert.False(t, repo.State("p1", 1).AutoEnabled)
}

func TestSetAutoCraftUnknownRecipe(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(repo, NewMockCraftLog(), newTestClock(testStart))

	err := svc.SetAutoCraft(context.Background(), "p1", "Mystery Meat", true)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestListRecipes(t *testing.T) {
	repo := NewMockRepository()
	svc := newTestService(repo, NewMockCraftLog(), newTestClock(testStart))

	repo.AddRecipe(goldCoinRecipe())
	repo.AddRecipe(ironSwordRecipe())

	summaries, err := svc.ListRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Gold Coin", summaries[0].Name)
	assert.Equal(t, []string{"1× Fox", "3× Ore"}, summaries[0].Ingredients)
	assert.Equal(t, "5× Coin", summaries[0].Result)
	assert.Equal(t, "Iron Sword", summaries[1].Name)
}
