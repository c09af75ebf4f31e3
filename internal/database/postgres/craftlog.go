package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// CraftLogRepository implements repository.CraftLog against PostgreSQL.
type CraftLogRepository struct {
	pool *pgxpool.Pool
}

// NewCraftLogRepository creates a new craft log repository.
func NewCraftLogRepository(pool *pgxpool.Pool) *CraftLogRepository {
	return &CraftLogRepository{pool: pool}
}

func (r *CraftLogRepository) AppendAttempt(ctx context.Context, attempt domain.CraftAttempt) error {
	pid, err := parsePlayerUUID(attempt.PlayerID)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sqlInsertAttempt,
		pid, attempt.RecipeID, attempt.RecipeName, attempt.Success, attempt.Message, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append craft attempt: %w", err)
	}
	return nil
}

func (r *CraftLogRepository) GetAttemptsByPlayer(ctx context.Context, playerID string, limit int) ([]domain.CraftAttempt, error) {
	pid, err := parsePlayerUUID(playerID)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sqlSelectAttemptsByPlayer, pid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query craft attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.CraftAttempt
	for rows.Next() {
		var a domain.CraftAttempt
		if err := rows.Scan(&a.ID, &a.PlayerID, &a.RecipeID, &a.RecipeName, &a.Success, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan craft attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read craft attempts: %w", err)
	}
	return attempts, nil
}

func (r *CraftLogRepository) CleanupOldAttempts(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := r.pool.Exec(ctx, sqlDeleteOldAttempts, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up craft attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}
