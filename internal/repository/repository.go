package repository

import (
	"context"
	"time"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, including soft-deleted rows.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a non-deleted user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users, optionally filtered by school and deletion state.
	// schoolID == "" means all schools; includeDeleted includes soft-deleted rows.
	List(ctx context.Context, schoolID string, includeDeleted bool, p pagination.Params) ([]domain.User, int, error)

	// ListByRole returns non-deleted users of a role, school-scoped when
	// schoolID != "". Used for approver notification fan-out.
	ListByRole(ctx context.Context, schoolID string, role domain.Role) ([]domain.User, error)

	// Update modifies an existing user's profile fields.
	Update(ctx context.Context, user *domain.User) error

	// UpdatePasswordHash replaces the user's credential.
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error

	// SetDeleted soft-deletes or restores a user.
	SetDeleted(ctx context.Context, id string, deleted bool) error

	// CountByRole counts non-deleted users of a role within a school.
	CountByRole(ctx context.Context, schoolID string, role domain.Role) (int, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence.
type RefreshTokenRepository interface {
	// Create stores a new refresh token row.
	Create(ctx context.Context, token *domain.RefreshToken) error

	// ListByUser returns all token rows for a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error)

	// RevokeActive marks the token revoked only if it is still active.
	// Returns false when the row was already revoked (lost race or reuse).
	RevokeActive(ctx context.Context, id string) (bool, error)

	// Revoke marks the token revoked unconditionally.
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUser revokes every active token owned by the user.
	RevokeAllByUser(ctx context.Context, userID string) error

	// SetReplacedBy links a rotated-out token to its successor.
	SetReplacedBy(ctx context.Context, id, replacedBy string) error

	// DeleteExpired hard-deletes rows whose expiry is before the cutoff.
	// Returns the number of rows removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PasswordRequestRepository defines persistence for password change requests.
type PasswordRequestRepository interface {
	// Create stages a new request.
	Create(ctx context.Context, req *domain.PasswordChangeRequest) error

	// GetByID retrieves a request by ID.
	GetByID(ctx context.Context, id string) (*domain.PasswordChangeRequest, error)

	// HasPending reports whether the user already has a pending request.
	HasPending(ctx context.Context, userID string) (bool, error)

	// ListPending returns pending requests from users of targetRole,
	// school-scoped when schoolID != "".
	ListPending(ctx context.Context, schoolID string, targetRole domain.Role, p pagination.Params) ([]domain.PasswordChangeRequest, int, error)

	// Resolve transitions a pending request to approved or rejected. Returns
	// false when the request was no longer pending.
	Resolve(ctx context.Context, id string, status domain.PasswordRequestStatus, resolvedBy string, resolvedAt time.Time) (bool, error)
}

// SignupRequestRepository defines persistence for public signup requests.
type SignupRequestRepository interface {
	// Create stores a new request.
	Create(ctx context.Context, req *domain.SignupRequest) error

	// GetByID retrieves a request by ID.
	GetByID(ctx context.Context, id string) (*domain.SignupRequest, error)

	// GetByEmail retrieves the request holding an email, whatever its status.
	GetByEmail(ctx context.Context, email string) (*domain.SignupRequest, error)

	// Update rewrites the application fields of a request. Used when a
	// rejected applicant re-applies with the same email.
	Update(ctx context.Context, req *domain.SignupRequest) error

	// ListPending returns pending requests for requestedRole, school-scoped
	// when schoolID != "".
	ListPending(ctx context.Context, schoolID string, requestedRole domain.Role, p pagination.Params) ([]domain.SignupRequest, int, error)

	// Resolve transitions a pending request to approved or rejected. Returns
	// false when the request was no longer pending. approvedRole is recorded
	// on approval and nil on rejection.
	Resolve(ctx context.Context, id string, status domain.SignupRequestStatus, approvedRole *domain.Role, resolvedBy string, resolvedAt time.Time) (bool, error)
}

// SchoolRepository defines the interface for school persistence operations.
type SchoolRepository interface {
	Create(ctx context.Context, school *domain.School) error
	GetByID(ctx context.Context, id string) (*domain.School, error)
	List(ctx context.Context, p pagination.Params) ([]domain.School, int, error)
	Update(ctx context.Context, school *domain.School) error
	Delete(ctx context.Context, id string) error
}

// CourseRepository defines the interface for course persistence operations.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error

	// GetByID retrieves a course by ID, including soft-deleted rows.
	GetByID(ctx context.Context, id string) (*domain.Course, error)

	// ListBySchool returns non-deleted courses of a school.
	ListBySchool(ctx context.Context, schoolID string, p pagination.Params) ([]domain.Course, int, error)

	// ListByTeacher returns non-deleted courses the teacher is assigned to.
	ListByTeacher(ctx context.Context, teacherID string, p pagination.Params) ([]domain.Course, int, error)

	// ListByStudent returns non-deleted courses the student is enrolled in.
	ListByStudent(ctx context.Context, studentID string, p pagination.Params) ([]domain.Course, int, error)

	Update(ctx context.Context, course *domain.Course) error

	// SetDeleted soft-deletes or restores a course.
	SetDeleted(ctx context.Context, id string, deleted bool) error
}

// MaterialRepository defines persistence for learning materials.
type MaterialRepository interface {
	Create(ctx context.Context, m *domain.LearningMaterial) error
	GetByID(ctx context.Context, id string) (*domain.LearningMaterial, error)

	// ListByCourse returns materials of a course; includeDeleted controls
	// whether soft-deleted rows are visible.
	ListByCourse(ctx context.Context, courseID string, includeDeleted bool) ([]domain.LearningMaterial, error)

	UpdateTitle(ctx context.Context, id, title string) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
}

// EnrollmentRepository defines persistence for teacher assignments and
// student enrollments.
type EnrollmentRepository interface {
	AssignTeacher(ctx context.Context, a *domain.TeacherAssignment) error
	UnassignTeacher(ctx context.Context, teacherID, courseID string) error
	IsTeacherAssigned(ctx context.Context, teacherID, courseID string) (bool, error)
	ListTeachers(ctx context.Context, courseID string) ([]domain.CourseMember, error)

	EnrollStudent(ctx context.Context, e *domain.Enrollment) error
	UnenrollStudent(ctx context.Context, studentID, courseID string) error
	IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
	ListStudents(ctx context.Context, courseID string) ([]domain.CourseMember, error)

	// ListStudentIDs returns the IDs of all students enrolled in the course,
	// used for notification fan-out.
	ListStudentIDs(ctx context.Context, courseID string) ([]string, error)
}

// SubmissionRepository defines persistence for assignment submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, s *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	Exists(ctx context.Context, assignmentID, studentID string) (bool, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]domain.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.Submission, error)
	Grade(ctx context.Context, id string, grade int, feedback, gradedBy string, gradedAt time.Time) error
}

// NotificationRepository defines persistence for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, p pagination.Params) ([]domain.Notification, int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// ActivityLogRepository defines persistence for the append-only activity log.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, schoolID string, filter domain.ActivityLogFilter, p pagination.Params) ([]domain.ActivityLog, int, error)
}

// StatsRepository aggregates school-scoped dashboard counts.
type StatsRepository interface {
	SchoolStats(ctx context.Context, schoolID string) (*domain.SchoolStats, error)
}
