package programs

import (
	"context"
	"fmt"
	"strings"

	"github.com/pelita-edu/pelita/internal/shared"
)

// RepositoryPort defines data access methods for programs.
type RepositoryPort interface {
	ListPrograms(ctx context.Context) ([]Program, error)
	GetProgram(ctx context.Context, id int64) (Program, error)
	CreateProgram(ctx context.Context, code, name, description string) (Program, error)
	UpdateProgram(ctx context.Context, id int64, name, description string) (Program, error)
	DeleteProgram(ctx context.Context, id int64) error
}

// Service handles program business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListPrograms returns all programs.
func (s *Service) ListPrograms(ctx context.Context) ([]Program, error) {
	return s.repo.ListPrograms(ctx)
}

// GetProgram fetches a program by ID.
func (s *Service) GetProgram(ctx context.Context, id int64) (Program, error) {
	return s.repo.GetProgram(ctx, id)
}

// CreateProgram creates a program. Codes are upper-cased for uniqueness.
func (s *Service) CreateProgram(ctx context.Context, code, name, description string) (Program, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Program{}, fmt.Errorf("%w: program code required", shared.ErrValidation)
	}
	return s.repo.CreateProgram(ctx, code, strings.TrimSpace(name), strings.TrimSpace(description))
}

// UpdateProgram updates name and description. The code is immutable.
func (s *Service) UpdateProgram(ctx context.Context, id int64, name, description string) (Program, error) {
	return s.repo.UpdateProgram(ctx, id, strings.TrimSpace(name), strings.TrimSpace(description))
}

// DeleteProgram removes a program.
func (s *Service) DeleteProgram(ctx context.Context, id int64) error {
	return s.repo.DeleteProgram(ctx, id)
}
