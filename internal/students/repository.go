package students

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

// ListStudents returns students, optionally filtered by program.
func (r *Repository) ListStudents(ctx context.Context, programID int64) ([]Student, error) {
	query := `SELECT id, number, full_name, program_id, COALESCE(guardian_tel, ''), created_at, updated_at
	          FROM students`
	args := []any{}
	if programID > 0 {
		query += ` WHERE program_id = $1`
		args = append(args, programID)
	}
	query += ` ORDER BY number`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.Number, &s.FullName, &s.ProgramID, &s.GuardianTel, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// GetStudent fetches a student by ID.
func (r *Repository) GetStudent(ctx context.Context, id int64) (Student, error) {
	var s Student
	err := r.pool.QueryRow(ctx,
		`SELECT id, number, full_name, program_id, COALESCE(guardian_tel, ''), created_at, updated_at
		 FROM students WHERE id = $1`, id).
		Scan(&s.ID, &s.Number, &s.FullName, &s.ProgramID, &s.GuardianTel, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, err
	}
	return s, nil
}

// CreateStudent inserts a new student record.
func (r *Repository) CreateStudent(ctx context.Context, s Student) (Student, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (number, full_name, program_id, guardian_tel, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), now(), now())
		 RETURNING id, created_at, updated_at`,
		s.Number, s.FullName, s.ProgramID, s.GuardianTel).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Student{}, shared.ErrConflict
			case "23503":
				return Student{}, shared.ErrNotFound
			}
		}
		return Student{}, err
	}
	return s, nil
}

// UpdateStudent updates mutable fields of a student record.
func (r *Repository) UpdateStudent(ctx context.Context, id int64, fullName string, programID int64, guardianTel string) (Student, error) {
	var s Student
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET full_name = $2, program_id = $3, guardian_tel = NULLIF($4, ''), updated_at = now()
		 WHERE id = $1
		 RETURNING id, number, full_name, program_id, COALESCE(guardian_tel, ''), created_at, updated_at`,
		id, fullName, programID, guardianTel).
		Scan(&s.ID, &s.Number, &s.FullName, &s.ProgramID, &s.GuardianTel, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, err
	}
	return s, nil
}

// DeleteStudent removes a student record.
func (r *Repository) DeleteStudent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
