package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pelita-edu/pelita/internal/shared"
)

type stubRepo struct {
	nextID int64
	events map[int64]Event
}

func newStubRepo() *stubRepo {
	return &stubRepo{events: map[int64]Event{}}
}

func (s *stubRepo) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	var out []Event
	for _, e := range s.events {
		if e.StartsAt.Before(to) && e.EndsAt.After(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubRepo) GetEvent(ctx context.Context, id int64) (Event, error) {
	e, ok := s.events[id]
	if !ok {
		return Event{}, shared.ErrNotFound
	}
	return e, nil
}

func (s *stubRepo) CreateEvent(ctx context.Context, e Event) (Event, error) {
	s.nextID++
	e.ID = s.nextID
	s.events[e.ID] = e
	return e, nil
}

func (s *stubRepo) UpdateEvent(ctx context.Context, id int64, title, description string, startsAt, endsAt time.Time) (Event, error) {
	e, ok := s.events[id]
	if !ok {
		return Event{}, shared.ErrNotFound
	}
	e.Title, e.Description, e.StartsAt, e.EndsAt = title, description, startsAt, endsAt
	s.events[id] = e
	return e, nil
}

func (s *stubRepo) DeleteEvent(ctx context.Context, id int64) error {
	if _, ok := s.events[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

type recordingAnnouncer struct {
	eventIDs []int64
	titles   []string
}

func (r *recordingAnnouncer) AnnouncementPublished(eventID int64, title string) {
	r.eventIDs = append(r.eventIDs, eventID)
	r.titles = append(r.titles, title)
}

func TestCreateEventNotifiesAnnouncer(t *testing.T) {
	announcer := &recordingAnnouncer{}
	svc := NewService(newStubRepo(), announcer)
	now := time.Now()

	created, err := svc.CreateEvent(context.Background(), Event{
		Title:          "Libur Semester",
		StartsAt:       now,
		EndsAt:         now.Add(24 * time.Hour),
		IsAnnouncement: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(announcer.eventIDs) != 1 || announcer.eventIDs[0] != created.ID {
		t.Fatalf("expected announcement for event %d, got %v", created.ID, announcer.eventIDs)
	}
	if announcer.titles[0] != "Libur Semester" {
		t.Fatalf("unexpected title: %q", announcer.titles[0])
	}
}

func TestCreateEventSkipsAnnouncerForPlainEvents(t *testing.T) {
	announcer := &recordingAnnouncer{}
	svc := NewService(newStubRepo(), announcer)
	now := time.Now()

	if _, err := svc.CreateEvent(context.Background(), Event{
		Title:    "Rapat Guru",
		StartsAt: now,
		EndsAt:   now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(announcer.eventIDs) != 0 {
		t.Fatalf("expected no announcements, got %v", announcer.eventIDs)
	}
}

func TestCreateEventRejectsInvertedSchedule(t *testing.T) {
	svc := NewService(newStubRepo(), nil)
	now := time.Now()

	_, err := svc.CreateEvent(context.Background(), Event{
		Title:    "Ujian",
		StartsAt: now.Add(time.Hour),
		EndsAt:   now,
	})
	if !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListEventsDefaultsWindow(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)
	now := time.Now()

	if _, err := svc.CreateEvent(context.Background(), Event{
		Title:    "Penerimaan Rapor",
		StartsAt: now.Add(48 * time.Hour),
		EndsAt:   now.Add(50 * time.Hour),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := svc.ListEvents(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event in default window, got %d", len(events))
	}
}
