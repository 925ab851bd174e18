package rbac

import "time"

// Role represents a named bundle of permissions assignable to users.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleWithPermissions pairs a role with its current permission set.
type RoleWithPermissions struct {
	Role
	Permissions []Permission
}

// Assignment records that a user holds a role. A given (user, role) pair
// appears at most once.
type Assignment struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}
