package students

import (
	"context"
	"errors"
	"testing"

	"github.com/pelita-edu/pelita/internal/shared"
)

type stubRepo struct {
	created []Student
}

func (s *stubRepo) ListStudents(ctx context.Context, programID int64) ([]Student, error) {
	return nil, nil
}

func (s *stubRepo) GetStudent(ctx context.Context, id int64) (Student, error) {
	return Student{}, shared.ErrNotFound
}

func (s *stubRepo) CreateStudent(ctx context.Context, st Student) (Student, error) {
	st.ID = int64(len(s.created) + 1)
	s.created = append(s.created, st)
	return st, nil
}

func (s *stubRepo) UpdateStudent(ctx context.Context, id int64, fullName string, programID int64, guardianTel string) (Student, error) {
	return Student{ID: id, FullName: fullName, ProgramID: programID, GuardianTel: guardianTel}, nil
}

func (s *stubRepo) DeleteStudent(ctx context.Context, id int64) error {
	return nil
}

func TestCreateStudentNormalizesName(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	cases := []struct {
		in   string
		want string
	}{
		{"budi santoso", "Budi Santoso"},
		{"  SITI   rahayu  ", "Siti Rahayu"},
		{"dewi", "Dewi"},
	}
	for _, tc := range cases {
		created, err := svc.CreateStudent(context.Background(), "S-"+tc.want, tc.in, 1, "")
		if err != nil {
			t.Fatalf("create %q: %v", tc.in, err)
		}
		if created.FullName != tc.want {
			t.Fatalf("normalize %q: got %q, want %q", tc.in, created.FullName, tc.want)
		}
	}
}

func TestCreateStudentRequiresNumberAndProgram(t *testing.T) {
	svc := NewService(&stubRepo{})

	if _, err := svc.CreateStudent(context.Background(), "  ", "Budi", 1, ""); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("expected validation error for blank number, got %v", err)
	}
	if _, err := svc.CreateStudent(context.Background(), "S-1", "Budi", 0, ""); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("expected validation error for missing program, got %v", err)
	}
}

func TestUpdateStudentTrimsGuardianTel(t *testing.T) {
	svc := NewService(&stubRepo{})

	updated, err := svc.UpdateStudent(context.Background(), 3, "ani lestari", 2, " 0812-3456-789 ")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FullName != "Ani Lestari" {
		t.Fatalf("unexpected name: %q", updated.FullName)
	}
	if updated.GuardianTel != "0812-3456-789" {
		t.Fatalf("unexpected guardian tel: %q", updated.GuardianTel)
	}
}
