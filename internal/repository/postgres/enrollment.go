package postgres

import (
	"context"
	"fmt"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/pkg/database"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

// EnrollmentRepository implements repository.EnrollmentRepository using PostgreSQL.
type EnrollmentRepository struct {
	db database.DBTX
}

// NewEnrollmentRepository creates a new PostgreSQL-backed enrollment repository.
func NewEnrollmentRepository(db database.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// AssignTeacher links a teacher to a course.
func (r *EnrollmentRepository) AssignTeacher(ctx context.Context, a *domain.TeacherAssignment) error {
	query := `INSERT INTO teacher_courses (id, teacher_id, course_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, a.ID, a.TeacherID, a.CourseID, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("teacher is already assigned to this course")
		}
		return fmt.Errorf("assign teacher: %w", err)
	}

	return nil
}

// UnassignTeacher removes a teacher-course link.
func (r *EnrollmentRepository) UnassignTeacher(ctx context.Context, teacherID, courseID string) error {
	query := `DELETE FROM teacher_courses WHERE teacher_id = $1 AND course_id = $2`

	ct, err := r.db.Exec(ctx, query, teacherID, courseID)
	if err != nil {
		return fmt.Errorf("unassign teacher: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("teacher assignment", teacherID)
	}

	return nil
}

// IsTeacherAssigned reports whether the teacher teaches the course.
func (r *EnrollmentRepository) IsTeacherAssigned(ctx context.Context, teacherID, courseID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM teacher_courses WHERE teacher_id = $1 AND course_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, teacherID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check teacher assignment: %w", err)
	}

	return exists, nil
}

// ListTeachers returns the teachers assigned to a course with their names.
func (r *EnrollmentRepository) ListTeachers(ctx context.Context, courseID string) ([]domain.CourseMember, error) {
	query := `
		SELECT tc.id, tc.teacher_id, u.name, tc.course_id, tc.created_at
		FROM teacher_courses tc
		JOIN users u ON u.id = tc.teacher_id
		WHERE tc.course_id = $1
		ORDER BY tc.created_at`

	return r.listMembers(ctx, query, courseID, "list course teachers")
}

// EnrollStudent links a student to a course.
func (r *EnrollmentRepository) EnrollStudent(ctx context.Context, e *domain.Enrollment) error {
	query := `INSERT INTO student_courses (id, student_id, course_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, e.ID, e.StudentID, e.CourseID, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("student is already enrolled in this course")
		}
		return fmt.Errorf("enroll student: %w", err)
	}

	return nil
}

// UnenrollStudent removes a student-course link.
func (r *EnrollmentRepository) UnenrollStudent(ctx context.Context, studentID, courseID string) error {
	query := `DELETE FROM student_courses WHERE student_id = $1 AND course_id = $2`

	ct, err := r.db.Exec(ctx, query, studentID, courseID)
	if err != nil {
		return fmt.Errorf("unenroll student: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("enrollment", studentID)
	}

	return nil
}

// IsStudentEnrolled reports whether the student is enrolled in the course.
func (r *EnrollmentRepository) IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM student_courses WHERE student_id = $1 AND course_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, studentID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}

	return exists, nil
}

// ListStudents returns the students enrolled in a course with their names.
func (r *EnrollmentRepository) ListStudents(ctx context.Context, courseID string) ([]domain.CourseMember, error) {
	query := `
		SELECT sc.id, sc.student_id, u.name, sc.course_id, sc.created_at
		FROM student_courses sc
		JOIN users u ON u.id = sc.student_id
		WHERE sc.course_id = $1
		ORDER BY sc.created_at`

	return r.listMembers(ctx, query, courseID, "list course students")
}

// ListStudentIDs returns the IDs of all students enrolled in the course.
func (r *EnrollmentRepository) ListStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	query := `SELECT student_id FROM student_courses WHERE course_id = $1`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled student ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan student id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student id rows: %w", err)
	}

	return ids, nil
}

func (r *EnrollmentRepository) listMembers(ctx context.Context, query, courseID, op string) ([]domain.CourseMember, error) {
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var members []domain.CourseMember
	for rows.Next() {
		var m domain.CourseMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.UserName, &m.CourseID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan course member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course member rows: %w", err)
	}

	return members, nil
}
