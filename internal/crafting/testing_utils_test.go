package crafting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/concurrency"
	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
)

// MockRepository for crafting tests with thread-safety and row locking
// simulation. Transactions stage their writes and apply them on Commit,
// so a rollback leaves the repository untouched.
type MockRepository struct {
	sync.RWMutex
	settings domain.CraftingSettings
	recipes  map[string]*domain.CraftingRecipe
	profiles map[string]*domain.CraftingProfile
	states   map[string]*domain.CraftingRecipeState
	balls    map[string][]*mockBallRow
	items    map[string]int

	nextInstanceID int

	// Player row locks for simulating SELECT ... FOR UPDATE
	rowLocks   map[string]*sync.Mutex
	rowLocksMu sync.Mutex

	// Error injection for testing
	beginTxErr error
	commitErr  error
}

type mockBallRow struct {
	id       int
	ballID   int
	special  *string
	caughtAt time.Time
	deleted  bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		settings: domain.CraftingSettings{Enabled: true, AllowAutoCrafting: true},
		recipes:  make(map[string]*domain.CraftingRecipe),
		profiles: make(map[string]*domain.CraftingProfile),
		states:   make(map[string]*domain.CraftingRecipeState),
		balls:    make(map[string][]*mockBallRow),
		items:    make(map[string]int),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

func stateKey(playerID string, recipeID int) string {
	return fmt.Sprintf("%s|%d", playerID, recipeID)
}

func itemKey(playerID string, itemID int) string {
	return fmt.Sprintf("%s|%d", playerID, itemID)
}

// ---- test setup helpers ----

func (m *MockRepository) AddRecipe(r domain.CraftingRecipe) {
	m.Lock()
	defer m.Unlock()
	cp := r
	m.recipes[lowerName(r.Name)] = &cp
}

func (m *MockRepository) AddBallInstance(playerID string, ballID int, caughtAt time.Time) int {
	m.Lock()
	defer m.Unlock()
	m.nextInstanceID++
	row := &mockBallRow{id: m.nextInstanceID, ballID: ballID, caughtAt: caughtAt}
	m.balls[playerID] = append(m.balls[playerID], row)
	return row.id
}

func (m *MockRepository) SetItemBalance(playerID string, itemID, quantity int) {
	m.Lock()
	defer m.Unlock()
	m.items[itemKey(playerID, itemID)] = quantity
}

func (m *MockRepository) ItemBalance(playerID string, itemID int) int {
	m.RLock()
	defer m.RUnlock()
	return m.items[itemKey(playerID, itemID)]
}

// LiveBallIDs returns the non-deleted instance ids for a player, oldest
// first.
func (m *MockRepository) LiveBallIDs(playerID string, ballID int) []int {
	m.RLock()
	defer m.RUnlock()
	rows := append([]*mockBallRow(nil), m.balls[playerID]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].caughtAt.Before(rows[j].caughtAt) })
	var ids []int
	for _, row := range rows {
		if row.ballID == ballID && !row.deleted {
			ids = append(ids, row.id)
		}
	}
	return ids
}

func (m *MockRepository) Profile(playerID string) *domain.CraftingProfile {
	m.RLock()
	defer m.RUnlock()
	return m.profiles[playerID]
}

func (m *MockRepository) State(playerID string, recipeID int) *domain.CraftingRecipeState {
	m.RLock()
	defer m.RUnlock()
	return m.states[stateKey(playerID, recipeID)]
}

func (m *MockRepository) rowLock(playerID string) *sync.Mutex {
	m.rowLocksMu.Lock()
	defer m.rowLocksMu.Unlock()
	if _, ok := m.rowLocks[playerID]; !ok {
		m.rowLocks[playerID] = &sync.Mutex{}
	}
	return m.rowLocks[playerID]
}

func lowerName(name string) string {
	return strings.ToLower(name)
}

// ---- repository.Crafting ----

func (m *MockRepository) GetSettings(ctx context.Context) (*domain.CraftingSettings, error) {
	m.RLock()
	defer m.RUnlock()
	cp := m.settings
	return &cp, nil
}

func (m *MockRepository) GetRecipeByName(ctx context.Context, name string) (*domain.CraftingRecipe, error) {
	m.RLock()
	defer m.RUnlock()
	r, ok := m.recipes[lowerName(name)]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MockRepository) ListRecipes(ctx context.Context) ([]domain.CraftingRecipe, error) {
	m.RLock()
	defer m.RUnlock()
	var out []domain.CraftingRecipe
	for _, r := range m.recipes {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) GetOrCreateProfile(ctx context.Context, playerID string) (*domain.CraftingProfile, error) {
	m.Lock()
	defer m.Unlock()
	if p, ok := m.profiles[playerID]; ok {
		cp := *p
		return &cp, nil
	}
	p := &domain.CraftingProfile{PlayerID: playerID}
	m.profiles[playerID] = p
	cp := *p
	return &cp, nil
}

func (m *MockRepository) GetOrCreateRecipeState(ctx context.Context, playerID string, recipeID int) (*domain.CraftingRecipeState, error) {
	m.Lock()
	defer m.Unlock()
	key := stateKey(playerID, recipeID)
	if s, ok := m.states[key]; ok {
		cp := *s
		return &cp, nil
	}
	s := &domain.CraftingRecipeState{PlayerID: playerID, RecipeID: recipeID}
	m.states[key] = s
	cp := *s
	return &cp, nil
}

func (m *MockRepository) SetAutoEnabled(ctx context.Context, playerID string, recipeID int, enabled bool) error {
	m.Lock()
	defer m.Unlock()
	key := stateKey(playerID, recipeID)
	if _, ok := m.states[key]; !ok {
		m.states[key] = &domain.CraftingRecipeState{PlayerID: playerID, RecipeID: recipeID}
	}
	m.states[key].AutoEnabled = enabled
	return nil
}

func (m *MockRepository) CountOwnedBalls(ctx context.Context, playerID string, ballID int) (int, error) {
	m.RLock()
	defer m.RUnlock()
	return m.countBallsLocked(playerID, ballID, nil), nil
}

func (m *MockRepository) GetItemBalance(ctx context.Context, playerID string, itemID int) (int, error) {
	m.RLock()
	defer m.RUnlock()
	return m.items[itemKey(playerID, itemID)], nil
}

// Caller must hold at least the read lock. staged maps instance id to
// consumed-in-tx.
func (m *MockRepository) countBallsLocked(playerID string, ballID int, staged map[int]bool) int {
	count := 0
	for _, row := range m.balls[playerID] {
		if row.ballID == ballID && !row.deleted && !staged[row.id] {
			count++
		}
	}
	return count
}

func (m *MockRepository) BeginTx(ctx context.Context) (repository.CraftingTx, error) {
	if m.beginTxErr != nil {
		return nil, m.beginTxErr
	}
	return &mockTx{
		repo:       m,
		itemDeltas: make(map[int]int),
		consumed:   make(map[int]bool),
	}, nil
}

// mockTx stages mutations and applies them atomically on Commit. The
// first locking read takes the player's row lock and holds it until the
// transaction ends.
type mockTx struct {
	repo     *MockRepository
	playerID string
	lock     *sync.Mutex
	done     bool

	itemDeltas  map[int]int
	consumed    map[int]bool
	created     []*mockBallRow
	lastCrafted *time.Time
	recipeID    int
	setCooldown bool
}

func (t *mockTx) acquireRow(playerID string) {
	if t.lock == nil {
		t.playerID = playerID
		t.lock = t.repo.rowLock(playerID)
		t.lock.Lock()
	}
}

func (t *mockTx) release() {
	if t.lock != nil && !t.done {
		t.lock.Unlock()
	}
	t.done = true
}

func (t *mockTx) GetProfileForUpdate(ctx context.Context, playerID string) (*domain.CraftingProfile, error) {
	t.acquireRow(playerID)
	return t.repo.GetOrCreateProfile(ctx, playerID)
}

func (t *mockTx) GetRecipeStateForUpdate(ctx context.Context, playerID string, recipeID int) (*domain.CraftingRecipeState, error) {
	t.acquireRow(playerID)
	return t.repo.GetOrCreateRecipeState(ctx, playerID, recipeID)
}

func (t *mockTx) CountOwnedBalls(ctx context.Context, playerID string, ballID int) (int, error) {
	t.repo.RLock()
	defer t.repo.RUnlock()
	return t.repo.countBallsLocked(playerID, ballID, t.consumed), nil
}

func (t *mockTx) GetItemBalance(ctx context.Context, playerID string, itemID int) (int, error) {
	t.repo.RLock()
	defer t.repo.RUnlock()
	return t.repo.items[itemKey(playerID, itemID)] + t.itemDeltas[itemID], nil
}

func (t *mockTx) ConsumeOldestBalls(ctx context.Context, playerID string, ballID, quantity int) (int, error) {
	t.repo.RLock()
	defer t.repo.RUnlock()

	rows := append([]*mockBallRow(nil), t.repo.balls[playerID]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].caughtAt.Before(rows[j].caughtAt) })

	consumed := 0
	for _, row := range rows {
		if consumed == quantity {
			break
		}
		if row.ballID == ballID && !row.deleted && !t.consumed[row.id] {
			t.consumed[row.id] = true
			consumed++
		}
	}
	return consumed, nil
}

func (t *mockTx) AdjustItemBalance(ctx context.Context, playerID string, itemID, delta int) (int, error) {
	t.repo.RLock()
	defer t.repo.RUnlock()

	current := t.repo.items[itemKey(playerID, itemID)] + t.itemDeltas[itemID]
	next := current + delta
	if next < 0 {
		return 0, domain.ErrInsufficientQuantity
	}
	t.itemDeltas[itemID] += delta
	return next, nil
}

func (t *mockTx) CreateBallInstances(ctx context.Context, playerID string, ballID, quantity int, special *string, caughtAt time.Time) error {
	for i := 0; i < quantity; i++ {
		t.created = append(t.created, &mockBallRow{ballID: ballID, special: special, caughtAt: caughtAt})
	}
	return nil
}

func (t *mockTx) SetLastCrafted(ctx context.Context, playerID string, recipeID int, at time.Time) error {
	cp := at
	t.lastCrafted = &cp
	t.recipeID = recipeID
	t.setCooldown = true
	return nil
}

func (t *mockTx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already closed")
	}
	if t.repo.commitErr != nil {
		t.release()
		return t.repo.commitErr
	}

	t.repo.Lock()
	for _, row := range t.repo.balls[t.playerID] {
		if t.consumed[row.id] {
			row.deleted = true
		}
	}
	for itemID, delta := range t.itemDeltas {
		t.repo.items[itemKey(t.playerID, itemID)] += delta
	}
	for _, row := range t.created {
		t.repo.nextInstanceID++
		row.id = t.repo.nextInstanceID
		t.repo.balls[t.playerID] = append(t.repo.balls[t.playerID], row)
	}
	if t.setCooldown {
		if p, ok := t.repo.profiles[t.playerID]; ok {
			p.LastCraftedAt = t.lastCrafted
		}
		if s, ok := t.repo.states[stateKey(t.playerID, t.recipeID)]; ok {
			s.LastCraftedAt = t.lastCrafted
		}
	}
	t.repo.Unlock()

	t.release()
	return nil
}

func (t *mockTx) Rollback(ctx context.Context) error {
	t.release()
	return nil
}

// MockCraftLog records appended attempts in memory.
type MockCraftLog struct {
	mu        sync.Mutex
	attempts  []domain.CraftAttempt
	appendErr error
}

func NewMockCraftLog() *MockCraftLog {
	return &MockCraftLog{}
}

func (m *MockCraftLog) AppendAttempt(ctx context.Context, attempt domain.CraftAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *MockCraftLog) GetAttemptsByPlayer(ctx context.Context, playerID string, limit int) ([]domain.CraftAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CraftAttempt
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.attempts[i].PlayerID == playerID {
			out = append(out, m.attempts[i])
		}
	}
	return out, nil
}

func (m *MockCraftLog) CleanupOldAttempts(ctx context.Context, retentionDays int) (int64, error) {
	return 0, nil
}

func (m *MockCraftLog) Attempts() []domain.CraftAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CraftAttempt(nil), m.attempts...)
}

// testClock provides a mutable now plus a fake sleep that advances it.
type testClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	// onSleep, when set, runs after the clock advances.
	onSleep func(d time.Duration)
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *testClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	hook := c.onSleep
	c.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return nil
}

func (c *testClock) SleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

// newTestService builds a service wired to the mock repositories and a
// deterministic clock.
func newTestService(repo repository.Crafting, logRepo *MockCraftLog, clock *testClock) *service {
	return &service{
		repo:        repo,
		logRepo:     logRepo,
		lockManager: concurrency.NewLockManager(),
		now:         clock.Now,
		sleep:       clock.Sleep,
	}
}
