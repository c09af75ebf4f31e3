package repository

import (
	"context"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// CraftLog is the append-only audit log of craft attempts. Rows are
// never mutated after creation.
type CraftLog interface {
	AppendAttempt(ctx context.Context, attempt domain.CraftAttempt) error
	GetAttemptsByPlayer(ctx context.Context, playerID string, limit int) ([]domain.CraftAttempt, error)
	CleanupOldAttempts(ctx context.Context, retentionDays int) (int64, error)
}
