package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pelita-edu/pelita/internal/shared"
)

// RepositoryPort defines data access methods for calendar events.
type RepositoryPort interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	CreateEvent(ctx context.Context, e Event) (Event, error)
	UpdateEvent(ctx context.Context, id int64, title, description string, startsAt, endsAt time.Time) (Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// Announcer receives announcement-grade events for fan-out delivery. Delivery
// failures must not block event creation.
type Announcer interface {
	AnnouncementPublished(eventID int64, title string)
}

// Service handles calendar business logic.
type Service struct {
	repo      RepositoryPort
	announcer Announcer
}

// NewService builds a Service instance. The announcer may be nil.
func NewService(repo RepositoryPort, announcer Announcer) *Service {
	return &Service{repo: repo, announcer: announcer}
}

// ListEvents returns events overlapping the window. A zero window defaults to
// the next 90 days.
func (s *Service) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	if from.IsZero() {
		from = time.Now().UTC()
	}
	if to.IsZero() {
		to = from.AddDate(0, 3, 0)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: window end must be after start", shared.ErrValidation)
	}
	return s.repo.ListEvents(ctx, from, to)
}

// GetEvent fetches an event by ID.
func (s *Service) GetEvent(ctx context.Context, id int64) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// CreateEvent stores a new event and notifies the announcer for
// announcement-grade events.
func (s *Service) CreateEvent(ctx context.Context, e Event) (Event, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return Event{}, fmt.Errorf("%w: title required", shared.ErrValidation)
	}
	if err := validateWindow(e.StartsAt, e.EndsAt); err != nil {
		return Event{}, err
	}
	created, err := s.repo.CreateEvent(ctx, e)
	if err != nil {
		return Event{}, err
	}
	if created.IsAnnouncement && s.announcer != nil {
		s.announcer.AnnouncementPublished(created.ID, created.Title)
	}
	return created, nil
}

// UpdateEvent updates an event's title, description and schedule.
func (s *Service) UpdateEvent(ctx context.Context, id int64, title, description string, startsAt, endsAt time.Time) (Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Event{}, fmt.Errorf("%w: title required", shared.ErrValidation)
	}
	if err := validateWindow(startsAt, endsAt); err != nil {
		return Event{}, err
	}
	return s.repo.UpdateEvent(ctx, id, title, description, startsAt, endsAt)
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(ctx context.Context, id int64) error {
	return s.repo.DeleteEvent(ctx, id)
}

func validateWindow(startsAt, endsAt time.Time) error {
	if startsAt.IsZero() || endsAt.IsZero() {
		return fmt.Errorf("%w: schedule required", shared.ErrValidation)
	}
	if !endsAt.After(startsAt) {
		return fmt.Errorf("%w: event must end after it starts", shared.ErrValidation)
	}
	return nil
}
