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
)

// MaterialRepository implements repository.MaterialRepository using PostgreSQL.
type MaterialRepository struct {
	db database.DBTX
}

// NewMaterialRepository creates a new PostgreSQL-backed material repository.
func NewMaterialRepository(db database.DBTX) *MaterialRepository {
	return &MaterialRepository{db: db}
}

const materialColumns = `id, course_id, title, material_type, content_url, description, assignment_type, total_marks, due_date, max_attempts, created_by, is_deleted, created_at, updated_at`

// Create inserts a new learning material.
func (r *MaterialRepository) Create(ctx context.Context, m *domain.LearningMaterial) error {
	query := `
		INSERT INTO learning_materials (id, course_id, title, material_type, content_url, description, assignment_type, total_marks, due_date, max_attempts, created_by, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.CourseID,
		m.Title,
		m.Type,
		m.ContentURL,
		m.Description,
		m.AssignmentType,
		m.TotalMarks,
		m.DueDate,
		m.MaxAttempts,
		m.CreatedBy,
		m.IsDeleted,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert learning material: %w", err)
	}

	return nil
}

// GetByID retrieves a material by ID.
func (r *MaterialRepository) GetByID(ctx context.Context, id string) (*domain.LearningMaterial, error) {
	query := `SELECT ` + materialColumns + ` FROM learning_materials WHERE id = $1`

	m, err := scanMaterial(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return m, nil
}

// ListByCourse returns materials of a course, newest first.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID string, includeDeleted bool) ([]domain.LearningMaterial, error) {
	query := `SELECT ` + materialColumns + ` FROM learning_materials WHERE course_id = $1`
	if !includeDeleted {
		query += ` AND is_deleted = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list learning materials: %w", err)
	}
	defer rows.Close()

	var materials []domain.LearningMaterial
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learning material rows: %w", err)
	}

	return materials, nil
}

// UpdateTitle renames a material.
func (r *MaterialRepository) UpdateTitle(ctx context.Context, id, title string) error {
	query := `UPDATE learning_materials SET title = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, title, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update learning material title: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("learning material", id)
	}

	return nil
}

// SetDeleted soft-deletes or restores a material.
func (r *MaterialRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	query := `UPDATE learning_materials SET is_deleted = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, deleted, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set learning material deleted: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("learning material", id)
	}

	return nil
}

func scanMaterial(row pgx.Row) (*domain.LearningMaterial, error) {
	var m domain.LearningMaterial

	err := row.Scan(
		&m.ID,
		&m.CourseID,
		&m.Title,
		&m.Type,
		&m.ContentURL,
		&m.Description,
		&m.AssignmentType,
		&m.TotalMarks,
		&m.DueDate,
		&m.MaxAttempts,
		&m.CreatedBy,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan learning material: %w", err)
	}

	return &m, nil
}
