package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pelita-edu/pelita/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListEvents returns events overlapping the given window, ordered by start time.
func (r *Repository) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, COALESCE(description, ''), starts_at, ends_at, is_announcement, created_by, created_at, updated_at
		 FROM calendar_events
		 WHERE starts_at < $2 AND ends_at > $1
		 ORDER BY starts_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.IsAnnouncement, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEvent fetches an event by ID.
func (r *Repository) GetEvent(ctx context.Context, id int64) (Event, error) {
	var e Event
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, COALESCE(description, ''), starts_at, ends_at, is_announcement, created_by, created_at, updated_at
		 FROM calendar_events WHERE id = $1`, id).
		Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.IsAnnouncement, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.ErrNotFound
		}
		return Event{}, err
	}
	return e, nil
}

// CreateEvent inserts a new event.
func (r *Repository) CreateEvent(ctx context.Context, e Event) (Event, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO calendar_events (title, description, starts_at, ends_at, is_announcement, created_by, created_at, updated_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, now(), now())
		 RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.StartsAt, e.EndsAt, e.IsAnnouncement, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Event{}, err
	}
	return e, nil
}

// UpdateEvent updates mutable fields of an event.
func (r *Repository) UpdateEvent(ctx context.Context, id int64, title, description string, startsAt, endsAt time.Time) (Event, error) {
	var e Event
	err := r.pool.QueryRow(ctx,
		`UPDATE calendar_events SET title = $2, description = NULLIF($3, ''), starts_at = $4, ends_at = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING id, title, COALESCE(description, ''), starts_at, ends_at, is_announcement, created_by, created_at, updated_at`,
		id, title, description, startsAt, endsAt).
		Scan(&e.ID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt, &e.IsAnnouncement, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.ErrNotFound
		}
		return Event{}, err
	}
	return e, nil
}

// DeleteEvent removes an event.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
