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

// SubmissionRepository implements repository.SubmissionRepository using PostgreSQL.
type SubmissionRepository struct {
	db database.DBTX
}

// NewSubmissionRepository creates a new PostgreSQL-backed submission repository.
func NewSubmissionRepository(db database.DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, assignment_id, student_id, file_key, grade, feedback, graded_by, graded_at, submitted_at`

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	query := `
		INSERT INTO submissions (id, assignment_id, student_id, file_key, submitted_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, s.ID, s.AssignmentID, s.StudentID, s.FileKey, s.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.InvalidInput("assignment has already been submitted")
		}
		return fmt.Errorf("insert submission: %w", err)
	}

	return nil
}

// GetByID retrieves a submission by ID.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	s, err := scanSubmission(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return s, nil
}

// Exists reports whether the student has already submitted to the assignment.
func (r *SubmissionRepository) Exists(ctx context.Context, assignmentID, studentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM submissions WHERE assignment_id = $1 AND student_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, assignmentID, studentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}

	return exists, nil
}

// ListByAssignment returns all submissions to an assignment, newest first.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE assignment_id = $1 ORDER BY submitted_at DESC`
	return r.listSubmissions(ctx, query, assignmentID)
}

// ListByStudent returns all submissions made by a student, newest first.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE student_id = $1 ORDER BY submitted_at DESC`
	return r.listSubmissions(ctx, query, studentID)
}

// Grade records a grade and feedback on a submission.
func (r *SubmissionRepository) Grade(ctx context.Context, id string, grade int, feedback, gradedBy string, gradedAt time.Time) error {
	query := `UPDATE submissions SET grade = $1, feedback = $2, graded_by = $3, graded_at = $4 WHERE id = $5`

	ct, err := r.db.Exec(ctx, query, grade, feedback, gradedBy, gradedAt, id)
	if err != nil {
		return fmt.Errorf("grade submission: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("submission", id)
	}

	return nil
}

func (r *SubmissionRepository) listSubmissions(ctx context.Context, query, id string) ([]domain.Submission, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}

	return subs, nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission

	err := row.Scan(
		&s.ID,
		&s.AssignmentID,
		&s.StudentID,
		&s.FileKey,
		&s.Grade,
		&s.Feedback,
		&s.GradedBy,
		&s.GradedAt,
		&s.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	return &s, nil
}
