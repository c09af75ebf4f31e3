package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// PlayerRepository implements repository.Player against PostgreSQL.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

func (r *PlayerRepository) GetPlayerByDiscordID(ctx context.Context, discordID string) (*domain.Player, error) {
	var p domain.Player
	err := r.pool.QueryRow(ctx, sqlSelectPlayerByDiscordID, discordID).
		Scan(&p.ID, &p.DiscordID, &p.Username, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

func (r *PlayerRepository) UpsertPlayer(ctx context.Context, discordID, username string) (*domain.Player, error) {
	var p domain.Player
	err := r.pool.QueryRow(ctx, sqlUpsertPlayer, discordID, username).
		Scan(&p.ID, &p.DiscordID, &p.Username, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}
	return &p, nil
}
