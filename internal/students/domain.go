package students

import "time"

// Student represents a student record.
type Student struct {
	ID          int64
	Number      string
	FullName    string
	ProgramID   int64
	GuardianTel string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
