package craftlog

import (
	"context"
	"fmt"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
)

// DefaultHistoryLimit caps history queries that pass no explicit limit
const DefaultHistoryLimit = 25

// Service exposes the append-only craft attempt log for operational
// queries and retention cleanup. Writing rows happens inside the
// crafting pipeline; this service never mutates existing rows.
type Service interface {
	History(ctx context.Context, playerID string, limit int) ([]domain.CraftAttempt, error)
	CleanupOldAttempts(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo repository.CraftLog
}

// NewService creates a new craft log service
func NewService(repo repository.CraftLog) Service {
	return &service{repo: repo}
}

// History returns the most recent attempts for a player, newest first.
func (s *service) History(ctx context.Context, playerID string, limit int) ([]domain.CraftAttempt, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	attempts, err := s.repo.GetAttemptsByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get craft attempts: %w", err)
	}
	return attempts, nil
}

// CleanupOldAttempts removes attempts older than the retention period.
func (s *service) CleanupOldAttempts(ctx context.Context, retentionDays int) (int64, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	deleted, err := s.repo.CleanupOldAttempts(ctx, retentionDays)
	if err != nil {
		log.Error("Craft log cleanup failed", "error", err, "retentionDays", retentionDays)
		return 0, fmt.Errorf("failed to clean up craft attempts: %w", err)
	}

	log.Info("Craft log cleanup completed", "retentionDays", retentionDays, "deleted", deleted, "duration", time.Since(start))
	return deleted, nil
}
