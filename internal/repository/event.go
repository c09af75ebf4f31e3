package repository

import (
	"context"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// Event is the read-only store of collectible events.
type Event interface {
	// GetEventByName looks up an enabled event by case-insensitive name,
	// with included and featured balls attached. Returns nil when no
	// enabled event matches.
	GetEventByName(ctx context.Context, name string) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}
