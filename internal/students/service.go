package students

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pelita-edu/pelita/internal/shared"
)

// RepositoryPort defines data access methods for students.
type RepositoryPort interface {
	ListStudents(ctx context.Context, programID int64) ([]Student, error)
	GetStudent(ctx context.Context, id int64) (Student, error)
	CreateStudent(ctx context.Context, s Student) (Student, error)
	UpdateStudent(ctx context.Context, id int64, fullName string, programID int64, guardianTel string) (Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

// Service handles student business logic.
type Service struct {
	repo  RepositoryPort
	caser cases.Caser
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, caser: cases.Title(language.Indonesian)}
}

// ListStudents returns students, optionally filtered by program.
func (s *Service) ListStudents(ctx context.Context, programID int64) ([]Student, error) {
	return s.repo.ListStudents(ctx, programID)
}

// GetStudent fetches a student by ID.
func (s *Service) GetStudent(ctx context.Context, id int64) (Student, error) {
	return s.repo.GetStudent(ctx, id)
}

// CreateStudent registers a student. Display names arrive from paper forms in
// inconsistent casing, so they are title-cased before storage.
func (s *Service) CreateStudent(ctx context.Context, number, fullName string, programID int64, guardianTel string) (Student, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return Student{}, fmt.Errorf("%w: student number required", shared.ErrValidation)
	}
	if programID <= 0 {
		return Student{}, fmt.Errorf("%w: program required", shared.ErrValidation)
	}
	return s.repo.CreateStudent(ctx, Student{
		Number:      number,
		FullName:    s.normalizeName(fullName),
		ProgramID:   programID,
		GuardianTel: strings.TrimSpace(guardianTel),
	})
}

// UpdateStudent updates mutable fields of a student record.
func (s *Service) UpdateStudent(ctx context.Context, id int64, fullName string, programID int64, guardianTel string) (Student, error) {
	if programID <= 0 {
		return Student{}, fmt.Errorf("%w: program required", shared.ErrValidation)
	}
	return s.repo.UpdateStudent(ctx, id, s.normalizeName(fullName), programID, strings.TrimSpace(guardianTel))
}

// DeleteStudent removes a student record.
func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	return s.repo.DeleteStudent(ctx, id)
}

func (s *Service) normalizeName(name string) string {
	return s.caser.String(strings.Join(strings.Fields(name), " "))
}
