package event

import (
	"context"
	"fmt"
	"time"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/repository"
)

// Summary is a display-oriented view of an event.
type Summary struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Status        domain.EventStatus `json:"status"`
	IsPermanent   bool               `json:"is_permanent"`
	StartDate     *time.Time         `json:"start_date,omitempty"`
	EndDate       *time.Time         `json:"end_date,omitempty"`
	IncludedBalls []string           `json:"included_balls"`
	FeaturedBalls []string           `json:"featured_balls"`
}

// Service provides read-only access to collectible events.
type Service interface {
	// GetEvent looks up an enabled event by case-insensitive name.
	GetEvent(ctx context.Context, name string) (*Summary, error)

	// ListActiveEvents returns summaries of events currently running.
	ListActiveEvents(ctx context.Context) ([]Summary, error)
}

type service struct {
	repo repository.Event
	now  func() time.Time
}

// NewService creates a new event service
func NewService(repo repository.Event) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) GetEvent(ctx context.Context, name string) (*Summary, error) {
	log := logger.FromContext(ctx)
	log.Info("GetEvent called", "name", name)

	evt, err := s.repo.GetEventByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if evt == nil {
		return nil, nil
	}

	summary := s.summarize(*evt)
	return &summary, nil
}

func (s *service) ListActiveEvents(ctx context.Context) ([]Summary, error) {
	log := logger.FromContext(ctx)
	log.Info("ListActiveEvents called")

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	now := s.now()
	summaries := make([]Summary, 0, len(events))
	for _, evt := range events {
		if !evt.Enabled || !evt.IsActive(now) {
			continue
		}
		summaries = append(summaries, s.summarize(evt))
	}
	return summaries, nil
}

func (s *service) summarize(evt domain.Event) Summary {
	included := make([]string, 0, len(evt.IncludedBalls))
	for _, b := range evt.IncludedBalls {
		included = append(included, b.Name)
	}
	featured := make([]string, 0, len(evt.FeaturedBalls))
	for _, b := range evt.FeaturedBalls {
		featured = append(featured, b.Name)
	}

	return Summary{
		Name:          evt.Name,
		Description:   evt.Description,
		Status:        evt.Status(s.now()),
		IsPermanent:   evt.IsPermanent,
		StartDate:     evt.StartDate,
		EndDate:       evt.EndDate,
		IncludedBalls: included,
		FeaturedBalls: featured,
	}
}
