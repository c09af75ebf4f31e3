package domain

import "time"

// EventStatus is the lifecycle state of a collectible event.
type EventStatus string

const (
	EventStatusPermanent EventStatus = "permanent"
	EventStatusActive    EventStatus = "active"
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusEnded     EventStatus = "ended"
)

// Event groups balls together for informational purposes. Events are
// either permanent or bounded by StartDate/EndDate.
type Event struct {
	ID            int        `json:"event_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Enabled       bool       `json:"enabled"`
	IsPermanent   bool       `json:"is_permanent"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	IncludedBalls []Ball     `json:"included_balls,omitempty"`
	FeaturedBalls []Ball     `json:"featured_balls,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
}

// Status returns the lifecycle state of the event at the given time.
func (e Event) Status(now time.Time) EventStatus {
	if e.IsPermanent {
		return EventStatusPermanent
	}
	if e.StartDate != nil && now.Before(*e.StartDate) {
		return EventStatusUpcoming
	}
	if e.EndDate != nil && now.After(*e.EndDate) {
		return EventStatusEnded
	}
	return EventStatusActive
}

// IsActive reports whether the event is currently running. Permanent
// events are always active; otherwise the date window binds.
func (e Event) IsActive(now time.Time) bool {
	if e.IsPermanent {
		return true
	}
	if e.StartDate != nil && now.Before(*e.StartDate) {
		return false
	}
	if e.EndDate != nil && now.After(*e.EndDate) {
		return false
	}
	return true
}
