package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// EventRepository implements repository.Event against PostgreSQL.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) GetEventByName(ctx context.Context, name string) (*domain.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, sqlSelectEventByName, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %q: %w", name, err)
	}
	if err := r.attachBalls(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, sqlSelectAllEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) attachBalls(ctx context.Context, event *domain.Event) error {
	rows, err := r.pool.Query(ctx, sqlSelectEventBalls, event.ID)
	if err != nil {
		return fmt.Errorf("failed to load event balls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ball     domain.Ball
			featured bool
		)
		if err := rows.Scan(&ball.ID, &ball.Name, &ball.Enabled, &featured); err != nil {
			return fmt.Errorf("failed to scan event ball: %w", err)
		}
		event.IncludedBalls = append(event.IncludedBalls, ball)
		if featured {
			event.FeaturedBalls = append(event.FeaturedBalls, ball)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read event balls: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Enabled, &e.IsPermanent,
		&e.StartDate, &e.EndDate, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
