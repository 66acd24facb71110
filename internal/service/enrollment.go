package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

// EnrollmentService manages teacher assignments and student enrollments.
type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	userRepo       repository.UserRepository
	notifications  *NotificationService
	activity       *ActivityService
	logger         *slog.Logger
}

// NewEnrollmentService creates a new enrollment service.
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	activity *ActivityService,
	logger *slog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		notifications:  notifications,
		activity:       activity,
		logger:         logger,
	}
}

// AssignTeacher links a teacher to a course in the actor's school.
func (s *EnrollmentService) AssignTeacher(ctx context.Context, actor Actor, courseID, teacherID string) (*domain.TeacherAssignment, error) {
	course, err := s.getCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	teacher, err := s.getMember(ctx, teacherID, domain.RoleTeacher, course.SchoolID)
	if err != nil {
		return nil, err
	}

	assignment := &domain.TeacherAssignment{
		ID:        uuid.New().String(),
		TeacherID: teacher.ID,
		CourseID:  course.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.enrollmentRepo.AssignTeacher(ctx, assignment); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("you have been assigned to teach %s", course.Title)
	if err := s.notifications.Notify(ctx, teacher.ID, domain.NotificationTeacherAssigned, message, &course.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to notify assigned teacher",
			slog.String("teacher_id", teacher.ID),
			slog.String("error", err.Error()),
		)
	}

	s.activity.Record(ctx, actor.ID, course.SchoolID, domain.ActionTeacherAssigned, "course", &course.ID,
		fmt.Sprintf("teacher %s", teacher.Email))

	return assignment, nil
}

// UnassignTeacher removes a teacher from a course.
func (s *EnrollmentService) UnassignTeacher(ctx context.Context, actor Actor, courseID, teacherID string) error {
	if _, err := s.getCourse(ctx, actor, courseID); err != nil {
		return err
	}

	return s.enrollmentRepo.UnassignTeacher(ctx, teacherID, courseID)
}

// ListTeachers returns the teachers assigned to a course.
func (s *EnrollmentService) ListTeachers(ctx context.Context, actor Actor, courseID string) ([]domain.CourseMember, error) {
	if _, err := s.getCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}

	return s.enrollmentRepo.ListTeachers(ctx, courseID)
}

// EnrollStudent enrolls a student in a course in the actor's school.
func (s *EnrollmentService) EnrollStudent(ctx context.Context, actor Actor, courseID, studentID string) (*domain.Enrollment, error) {
	course, err := s.getCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	student, err := s.getMember(ctx, studentID, domain.RoleStudent, course.SchoolID)
	if err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		ID:        uuid.New().String(),
		StudentID: student.ID,
		CourseID:  course.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.enrollmentRepo.EnrollStudent(ctx, enrollment); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("you have been enrolled in %s", course.Title)
	if err := s.notifications.Notify(ctx, student.ID, domain.NotificationEnrolled, message, &course.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to notify enrolled student",
			slog.String("student_id", student.ID),
			slog.String("error", err.Error()),
		)
	}

	s.activity.Record(ctx, actor.ID, course.SchoolID, domain.ActionStudentEnrolled, "course", &course.ID,
		fmt.Sprintf("student %s", student.Email))

	return enrollment, nil
}

// UnenrollStudent removes a student from a course.
func (s *EnrollmentService) UnenrollStudent(ctx context.Context, actor Actor, courseID, studentID string) error {
	if _, err := s.getCourse(ctx, actor, courseID); err != nil {
		return err
	}

	return s.enrollmentRepo.UnenrollStudent(ctx, studentID, courseID)
}

// ListStudents returns the students enrolled in a course.
func (s *EnrollmentService) ListStudents(ctx context.Context, actor Actor, courseID string) ([]domain.CourseMember, error) {
	if _, err := s.getCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}

	return s.enrollmentRepo.ListStudents(ctx, courseID)
}

// getCourse loads a non-deleted course and checks the actor manages its
// school.
func (s *EnrollmentService) getCourse(ctx context.Context, actor Actor, courseID string) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("course", courseID)
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.IsDeleted {
		return nil, apperrors.NotFound("course", courseID)
	}

	if actor.Role != domain.RoleSuperAdmin && actor.SchoolID != course.SchoolID {
		return nil, apperrors.Forbidden("course belongs to a different school")
	}

	return course, nil
}

// getMember loads a non-deleted user and checks role and school membership.
func (s *EnrollmentService) getMember(ctx context.Context, userID string, role domain.Role, schoolID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.IsDeleted {
		return nil, apperrors.NotFound("user", userID)
	}

	if user.Role != role {
		return nil, apperrors.InvalidInput(fmt.Sprintf("user %s is not a %s", userID, role))
	}
	if user.SchoolID != schoolID {
		return nil, apperrors.InvalidInput("user belongs to a different school")
	}

	return user, nil
}
