package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pelita-edu/pelita/internal/shared"
)

// PrincipalResolver computes the roles and flattened permissions for a user.
// Satisfied by rbac.Service.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID int64) (shared.Principal, error)
}

// dummyHash keeps bcrypt work constant when the email is unknown, so response
// timing does not reveal whether an account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	resolver PrincipalResolver
}

// NewService constructs a new Service.
func NewService(repo Repository, resolver PrincipalResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// Authenticate validates credentials and resolves the session principal. The
// permission snapshot is computed server-side here, at login time, and is the
// only path through which permissions enter a session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, shared.Principal, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, shared.Principal{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.Principal{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.Principal{}, shared.ErrAccountInactive
	}
	principal, err := s.resolver.ResolvePrincipal(ctx, user.ID)
	if err != nil {
		// Fail closed: an indeterminate permission lookup never yields a
		// partially-privileged session.
		return nil, shared.Principal{}, err
	}
	return user, principal, nil
}

// RegisterSession persists the session metadata for auditing.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
