package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/SpyBeast07/lms-system/internal/auth"
	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/event"
	pkgkafka "github.com/SpyBeast07/lms-system/pkg/kafka"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, schoolID string, includeDeleted bool, p pagination.Params) ([]domain.User, int, error) {
	args := m.Called(ctx, schoolID, includeDeleted, p)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) ListByRole(ctx context.Context, schoolID string, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, schoolID, role)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	args := m.Called(ctx, id, deleted)
	return args.Error(0)
}

func (m *mockUserRepository) CountByRole(ctx context.Context, schoolID string, role domain.Role) (int, error) {
	args := m.Called(ctx, schoolID, role)
	return args.Int(0), args.Error(1)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) ListByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) RevokeActive(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) SetReplacedBy(ctx context.Context, id, replacedBy string) error {
	args := m.Called(ctx, id, replacedBy)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Password Request Repository ---

type mockPasswordRequestRepository struct {
	mock.Mock
}

func (m *mockPasswordRequestRepository) Create(ctx context.Context, req *domain.PasswordChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockPasswordRequestRepository) GetByID(ctx context.Context, id string) (*domain.PasswordChangeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordChangeRequest), args.Error(1)
}

func (m *mockPasswordRequestRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPasswordRequestRepository) ListPending(ctx context.Context, schoolID string, targetRole domain.Role, p pagination.Params) ([]domain.PasswordChangeRequest, int, error) {
	args := m.Called(ctx, schoolID, targetRole, p)
	return args.Get(0).([]domain.PasswordChangeRequest), args.Int(1), args.Error(2)
}

func (m *mockPasswordRequestRepository) Resolve(ctx context.Context, id string, status domain.PasswordRequestStatus, resolvedBy string, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, resolvedBy, resolvedAt)
	return args.Bool(0), args.Error(1)
}

// --- Mock Signup Request Repository ---

type mockSignupRequestRepository struct {
	mock.Mock
}

func (m *mockSignupRequestRepository) Create(ctx context.Context, req *domain.SignupRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockSignupRequestRepository) GetByID(ctx context.Context, id string) (*domain.SignupRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignupRequest), args.Error(1)
}

func (m *mockSignupRequestRepository) GetByEmail(ctx context.Context, email string) (*domain.SignupRequest, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SignupRequest), args.Error(1)
}

func (m *mockSignupRequestRepository) Update(ctx context.Context, req *domain.SignupRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockSignupRequestRepository) ListPending(ctx context.Context, schoolID string, requestedRole domain.Role, p pagination.Params) ([]domain.SignupRequest, int, error) {
	args := m.Called(ctx, schoolID, requestedRole, p)
	return args.Get(0).([]domain.SignupRequest), args.Int(1), args.Error(2)
}

func (m *mockSignupRequestRepository) Resolve(ctx context.Context, id string, status domain.SignupRequestStatus, approvedRole *domain.Role, resolvedBy string, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, approvedRole, resolvedBy, resolvedAt)
	return args.Bool(0), args.Error(1)
}

// --- Mock Notification Repository ---

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *mockNotificationRepository) ListByUser(ctx context.Context, userID string, p pagination.Params) ([]domain.Notification, int, error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).([]domain.Notification), args.Int(1), args.Error(2)
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock Activity Log Repository ---

type mockActivityLogRepository struct {
	mock.Mock
}

func (m *mockActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockActivityLogRepository) List(ctx context.Context, schoolID string, filter domain.ActivityLogFilter, p pagination.Params) ([]domain.ActivityLog, int, error) {
	args := m.Called(ctx, schoolID, filter, p)
	return args.Get(0).([]domain.ActivityLog), args.Int(1), args.Error(2)
}

// --- Mock School Repository ---

type mockSchoolRepository struct {
	mock.Mock
}

func (m *mockSchoolRepository) Create(ctx context.Context, school *domain.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *mockSchoolRepository) GetByID(ctx context.Context, id string) (*domain.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.School), args.Error(1)
}

func (m *mockSchoolRepository) List(ctx context.Context, p pagination.Params) ([]domain.School, int, error) {
	args := m.Called(ctx, p)
	return args.Get(0).([]domain.School), args.Int(1), args.Error(2)
}

func (m *mockSchoolRepository) Update(ctx context.Context, school *domain.School) error {
	args := m.Called(ctx, school)
	return args.Error(0)
}

func (m *mockSchoolRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Course Repository ---

type mockCourseRepository struct {
	mock.Mock
}

func (m *mockCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *mockCourseRepository) ListBySchool(ctx context.Context, schoolID string, p pagination.Params) ([]domain.Course, int, error) {
	args := m.Called(ctx, schoolID, p)
	return args.Get(0).([]domain.Course), args.Int(1), args.Error(2)
}

func (m *mockCourseRepository) ListByTeacher(ctx context.Context, teacherID string, p pagination.Params) ([]domain.Course, int, error) {
	args := m.Called(ctx, teacherID, p)
	return args.Get(0).([]domain.Course), args.Int(1), args.Error(2)
}

func (m *mockCourseRepository) ListByStudent(ctx context.Context, studentID string, p pagination.Params) ([]domain.Course, int, error) {
	args := m.Called(ctx, studentID, p)
	return args.Get(0).([]domain.Course), args.Int(1), args.Error(2)
}

func (m *mockCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *mockCourseRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	args := m.Called(ctx, id, deleted)
	return args.Error(0)
}

// --- Mock Material Repository ---

type mockMaterialRepository struct {
	mock.Mock
}

func (m *mockMaterialRepository) Create(ctx context.Context, material *domain.LearningMaterial) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *mockMaterialRepository) GetByID(ctx context.Context, id string) (*domain.LearningMaterial, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningMaterial), args.Error(1)
}

func (m *mockMaterialRepository) ListByCourse(ctx context.Context, courseID string, includeDeleted bool) ([]domain.LearningMaterial, error) {
	args := m.Called(ctx, courseID, includeDeleted)
	return args.Get(0).([]domain.LearningMaterial), args.Error(1)
}

func (m *mockMaterialRepository) UpdateTitle(ctx context.Context, id, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *mockMaterialRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	args := m.Called(ctx, id, deleted)
	return args.Error(0)
}

// --- Mock Enrollment Repository ---

type mockEnrollmentRepository struct {
	mock.Mock
}

func (m *mockEnrollmentRepository) AssignTeacher(ctx context.Context, a *domain.TeacherAssignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockEnrollmentRepository) UnassignTeacher(ctx context.Context, teacherID, courseID string) error {
	args := m.Called(ctx, teacherID, courseID)
	return args.Error(0)
}

func (m *mockEnrollmentRepository) IsTeacherAssigned(ctx context.Context, teacherID, courseID string) (bool, error) {
	args := m.Called(ctx, teacherID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnrollmentRepository) ListTeachers(ctx context.Context, courseID string) ([]domain.CourseMember, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]domain.CourseMember), args.Error(1)
}

func (m *mockEnrollmentRepository) EnrollStudent(ctx context.Context, e *domain.Enrollment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEnrollmentRepository) UnenrollStudent(ctx context.Context, studentID, courseID string) error {
	args := m.Called(ctx, studentID, courseID)
	return args.Error(0)
}

func (m *mockEnrollmentRepository) IsStudentEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	args := m.Called(ctx, studentID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnrollmentRepository) ListStudents(ctx context.Context, courseID string) ([]domain.CourseMember, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]domain.CourseMember), args.Error(1)
}

func (m *mockEnrollmentRepository) ListStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock Submission Repository ---

type mockSubmissionRepository struct {
	mock.Mock
}

func (m *mockSubmissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *mockSubmissionRepository) Exists(ctx context.Context, assignmentID, studentID string) (bool, error) {
	args := m.Called(ctx, assignmentID, studentID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]domain.Submission, error) {
	args := m.Called(ctx, assignmentID)
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *mockSubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Submission, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *mockSubmissionRepository) Grade(ctx context.Context, id string, grade int, feedback, gradedBy string, gradedAt time.Time) error {
	args := m.Called(ctx, id, grade, feedback, gradedBy, gradedAt)
	return args.Error(0)
}

// --- Mock Stats Repository ---

type mockStatsRepository struct {
	mock.Mock
}

func (m *mockStatsRepository) SchoolStats(ctx context.Context, schoolID string) (*domain.SchoolStats, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchoolStats), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute)
}

func newTestHasher() *auth.Hasher {
	return auth.NewHasher()
}

// newTestActivityService builds an activity service whose Kafka publishes
// fail fast against an unreachable broker; Record is best effort, so tests
// only see a logged error.
func newTestActivityService(activityRepo *mockActivityLogRepository) *ActivityService {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	return NewActivityService(activityRepo, event.NewProducer(producer, logger), logger)
}

func newTestNotificationService(notificationRepo *mockNotificationRepository) *NotificationService {
	return NewNotificationService(notificationRepo, newTestLogger())
}

func pagedParams() pagination.Params {
	return pagination.DefaultParams()
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(secret string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), 4)
	if err != nil {
		panic(err)
	}
	return string(h)
}
