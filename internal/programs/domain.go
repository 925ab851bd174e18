package programs

import "time"

// Program represents a study program offered by the school.
type Program struct {
	ID          int64
	Code        string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
