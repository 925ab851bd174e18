package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pelita-edu/pelita/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, email, name, passwordHash string) (User, error)
	UpdateUser(ctx context.Context, id int64, name string, isActive bool) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// RoleAssigner grants roles during provisioning. Satisfied by rbac.Service.
type RoleAssigner interface {
	AssignRole(ctx context.Context, userID, roleID int64) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	assigner RoleAssigner
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, assigner RoleAssigner) *Service {
	return &Service{repo: repo, assigner: assigner}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser provisions an account and grants the initial roles.
func (s *Service) CreateUser(ctx context.Context, email, name, password string, roleIDs []int64) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return User{}, fmt.Errorf("%w: email required", shared.ErrValidation)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.CreateUser(ctx, email, strings.TrimSpace(name), string(hashed))
	if err != nil {
		return User{}, err
	}
	for _, roleID := range roleIDs {
		if err := s.assigner.AssignRole(ctx, user.ID, roleID); err != nil {
			return User{}, fmt.Errorf("assign initial role %d: %w", roleID, err)
		}
	}
	return user, nil
}

// UpdateUser updates profile fields.
func (s *Service) UpdateUser(ctx context.Context, id int64, name string, isActive bool) (User, error) {
	return s.repo.UpdateUser(ctx, id, strings.TrimSpace(name), isActive)
}

// DeleteUser removes an account and, via cascade, its role assignments.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
