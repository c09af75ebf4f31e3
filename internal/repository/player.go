package repository

import (
	"context"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// Player resolves external identities to stable players.
type Player interface {
	GetPlayerByDiscordID(ctx context.Context, discordID string) (*domain.Player, error)

	// UpsertPlayer creates the player on first contact. Idempotent under
	// concurrent first access for the same discord ID.
	UpsertPlayer(ctx context.Context, discordID, username string) (*domain.Player, error)
}
