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

// CourseRepository implements repository.CourseRepository using PostgreSQL.
type CourseRepository struct {
	db database.DBTX
}

// NewCourseRepository creates a new PostgreSQL-backed course repository.
func NewCourseRepository(db database.DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, school_id, title, description, is_deleted, created_at, updated_at`

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	query := `
		INSERT INTO courses (id, school_id, title, description, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query, c.ID, c.SchoolID, c.Title, c.Description, c.IsDeleted, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by ID, including soft-deleted rows.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	var c domain.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.SchoolID, &c.Title, &c.Description, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}

	return &c, nil
}

// ListBySchool returns non-deleted courses of a school.
func (r *CourseRepository) ListBySchool(ctx context.Context, schoolID string, p pagination.Params) ([]domain.Course, int, error) {
	countQuery := `SELECT COUNT(*) FROM courses WHERE school_id = $1 AND is_deleted = FALSE`
	listQuery := `SELECT ` + courseColumns + ` FROM courses
		WHERE school_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	return r.listCourses(ctx, countQuery, listQuery, schoolID, p)
}

// ListByTeacher returns non-deleted courses the teacher is assigned to.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string, p pagination.Params) ([]domain.Course, int, error) {
	countQuery := `
		SELECT COUNT(*) FROM courses c
		JOIN teacher_courses tc ON tc.course_id = c.id
		WHERE tc.teacher_id = $1 AND c.is_deleted = FALSE`
	listQuery := `
		SELECT c.id, c.school_id, c.title, c.description, c.is_deleted, c.created_at, c.updated_at
		FROM courses c
		JOIN teacher_courses tc ON tc.course_id = c.id
		WHERE tc.teacher_id = $1 AND c.is_deleted = FALSE
		ORDER BY c.created_at DESC LIMIT $2 OFFSET $3`

	return r.listCourses(ctx, countQuery, listQuery, teacherID, p)
}

// ListByStudent returns non-deleted courses the student is enrolled in.
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID string, p pagination.Params) ([]domain.Course, int, error) {
	countQuery := `
		SELECT COUNT(*) FROM courses c
		JOIN student_courses sc ON sc.course_id = c.id
		WHERE sc.student_id = $1 AND c.is_deleted = FALSE`
	listQuery := `
		SELECT c.id, c.school_id, c.title, c.description, c.is_deleted, c.created_at, c.updated_at
		FROM courses c
		JOIN student_courses sc ON sc.course_id = c.id
		WHERE sc.student_id = $1 AND c.is_deleted = FALSE
		ORDER BY c.created_at DESC LIMIT $2 OFFSET $3`

	return r.listCourses(ctx, countQuery, listQuery, studentID, p)
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, c *domain.Course) error {
	c.UpdatedAt = time.Now().UTC()

	query := `UPDATE courses SET title = $1, description = $2, updated_at = $3 WHERE id = $4`

	ct, err := r.db.Exec(ctx, query, c.Title, c.Description, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("course", c.ID)
	}

	return nil
}

// SetDeleted soft-deletes or restores a course.
func (r *CourseRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	query := `UPDATE courses SET is_deleted = $1, updated_at = $2 WHERE id = $3`

	ct, err := r.db.Exec(ctx, query, deleted, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set course deleted: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("course", id)
	}

	return nil
}

func (r *CourseRepository) listCourses(ctx context.Context, countQuery, listQuery, id string, p pagination.Params) ([]domain.Course, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	rows, err := r.db.Query(ctx, listQuery, id, p.PerPage, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(
			&c.ID, &c.SchoolID, &c.Title, &c.Description, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate course rows: %w", err)
	}

	return courses, total, nil
}
