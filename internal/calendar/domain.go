package calendar

import "time"

// Event represents an academic-calendar entry. Announcement events are pushed
// to the notification queue when created.
type Event struct {
	ID             int64
	Title          string
	Description    string
	StartsAt       time.Time
	EndsAt         time.Time
	IsAnnouncement bool
	CreatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
