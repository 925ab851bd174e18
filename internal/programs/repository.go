package programs

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

// ListPrograms returns all programs ordered by code.
func (r *Repository) ListPrograms(ctx context.Context) ([]Program, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, description, created_at, updated_at FROM programs ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var programs []Program
	for rows.Next() {
		var p Program
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// GetProgram fetches a program by ID.
func (r *Repository) GetProgram(ctx context.Context, id int64) (Program, error) {
	var p Program
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, description, created_at, updated_at FROM programs WHERE id = $1`, id).
		Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Program{}, shared.ErrNotFound
		}
		return Program{}, err
	}
	return p, nil
}

// CreateProgram inserts a new program.
func (r *Repository) CreateProgram(ctx context.Context, code, name, description string) (Program, error) {
	var p Program
	err := r.pool.QueryRow(ctx,
		`INSERT INTO programs (code, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING id, code, name, description, created_at, updated_at`,
		code, name, description).
		Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Program{}, shared.ErrConflict
		}
		return Program{}, err
	}
	return p, nil
}

// UpdateProgram updates a program.
func (r *Repository) UpdateProgram(ctx context.Context, id int64, name, description string) (Program, error) {
	var p Program
	err := r.pool.QueryRow(ctx,
		`UPDATE programs SET name = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, code, name, description, created_at, updated_at`,
		id, name, description).
		Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Program{}, shared.ErrNotFound
		}
		return Program{}, err
	}
	return p, nil
}

// DeleteProgram removes a program.
func (r *Repository) DeleteProgram(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
