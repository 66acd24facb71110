package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/pkg/database"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// SchoolRepository implements repository.SchoolRepository using PostgreSQL.
type SchoolRepository struct {
	db database.DBTX
}

// NewSchoolRepository creates a new PostgreSQL-backed school repository.
func NewSchoolRepository(db database.DBTX) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = `id, name, address, subscription_start, subscription_end, max_teachers, created_at, updated_at`

// Create inserts a new school.
func (r *SchoolRepository) Create(ctx context.Context, s *domain.School) error {
	query := `
		INSERT INTO schools (id, name, address, subscription_start, subscription_end, max_teachers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		s.ID, s.Name, s.Address, s.SubscriptionStart, s.SubscriptionEnd, s.MaxTeachers, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("school", "name", s.Name)
		}
		return fmt.Errorf("insert school: %w", err)
	}

	return nil
}

// GetByID retrieves a school by ID.
func (r *SchoolRepository) GetByID(ctx context.Context, id string) (*domain.School, error) {
	query := `SELECT ` + schoolColumns + ` FROM schools WHERE id = $1`

	var s domain.School
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Address, &s.SubscriptionStart, &s.SubscriptionEnd, &s.MaxTeachers, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan school: %w", err)
	}

	return &s, nil
}

// List returns schools ordered by name.
func (r *SchoolRepository) List(ctx context.Context, p pagination.Params) ([]domain.School, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schools`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count schools: %w", err)
	}

	query := `SELECT ` + schoolColumns + ` FROM schools ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, p.PerPage, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list schools: %w", err)
	}
	defer rows.Close()

	var schools []domain.School
	for rows.Next() {
		var s domain.School
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Address, &s.SubscriptionStart, &s.SubscriptionEnd, &s.MaxTeachers, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan school row: %w", err)
		}
		schools = append(schools, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate school rows: %w", err)
	}

	return schools, total, nil
}

// Update modifies an existing school.
func (r *SchoolRepository) Update(ctx context.Context, s *domain.School) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE schools
		SET name = $1, address = $2, subscription_start = $3, subscription_end = $4, max_teachers = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		s.Name, s.Address, s.SubscriptionStart, s.SubscriptionEnd, s.MaxTeachers, s.UpdatedAt, s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("school", "name", s.Name)
		}
		return fmt.Errorf("update school: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("school", s.ID)
	}

	return nil
}

// Delete removes a school.
func (r *SchoolRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM schools WHERE id = $1`

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete school: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("school", id)
	}

	return nil
}
