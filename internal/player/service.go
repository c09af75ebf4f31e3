package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
)

// Cache sizing; entries are small and identity lookups are hot.
const (
	defaultCacheSize = 2048
	defaultCacheTTL  = 5 * time.Minute
)

// Service resolves external users into stable player identities,
// creating one on first contact.
type Service interface {
	// Resolve returns the player for a Discord user, creating the row if
	// this is the first contact. Idempotent under concurrent first
	// access: the store upsert guarantees a single row per discord ID.
	Resolve(ctx context.Context, discordID, username string) (*domain.Player, error)

	// Lookup returns the player if one exists, nil otherwise.
	Lookup(ctx context.Context, discordID string) (*domain.Player, error)
}

type service struct {
	repo  repository.Player
	cache *playerCache
}

// NewService creates a new player identity service
func NewService(repo repository.Player) Service {
	return &service{
		repo:  repo,
		cache: newPlayerCache(defaultCacheSize, defaultCacheTTL),
	}
}

func (s *service) Resolve(ctx context.Context, discordID, username string) (*domain.Player, error) {
	log := logger.FromContext(ctx)

	if discordID == "" {
		return nil, fmt.Errorf("%w: discord id is empty", domain.ErrInvalidInput)
	}

	if p, ok := s.cache.Get(discordID); ok {
		return p, nil
	}

	p, err := s.repo.UpsertPlayer(ctx, discordID, username)
	if err != nil {
		log.Error("Failed to upsert player", "error", err, "discordID", discordID)
		return nil, fmt.Errorf("failed to resolve player: %w", err)
	}

	s.cache.Set(discordID, p)
	log.Debug("Player resolved", "playerID", p.ID, "discordID", discordID)
	return p, nil
}

func (s *service) Lookup(ctx context.Context, discordID string) (*domain.Player, error) {
	if p, ok := s.cache.Get(discordID); ok {
		return p, nil
	}

	p, err := s.repo.GetPlayerByDiscordID(ctx, discordID)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if p != nil {
		s.cache.Set(discordID, p)
	}
	return p, nil
}
