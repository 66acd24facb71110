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
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// CourseService implements course management with role-based visibility.
type CourseService struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	activity       *ActivityService
	logger         *slog.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	activity *ActivityService,
	logger *slog.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		activity:       activity,
		logger:         logger,
	}
}

// CourseInput contains the fields for creating or updating a course.
type CourseInput struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// Create adds a course to the actor's school.
func (s *CourseService) Create(ctx context.Context, actor Actor, input CourseInput) (*domain.Course, error) {
	now := time.Now().UTC()
	course := &domain.Course{
		ID:          uuid.New().String(),
		SchoolID:    actor.SchoolID,
		Title:       input.Title,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor.ID, actor.SchoolID, domain.ActionCourseCreated, "course", &course.ID, course.Title)

	s.logger.InfoContext(ctx, "course created",
		slog.String("course_id", course.ID),
		slog.String("school_id", course.SchoolID),
	)

	return course, nil
}

// Get retrieves a course the actor may see.
func (s *CourseService) Get(ctx context.Context, actor Actor, id string) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("course", id)
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.IsDeleted {
		return nil, apperrors.NotFound("course", id)
	}

	if err := s.checkAccess(ctx, actor, course); err != nil {
		return nil, err
	}

	return course, nil
}

// List returns courses visible to the actor: principals see their school,
// teachers their assignments, students their enrollments. Super admins pass
// an explicit school filter.
func (s *CourseService) List(ctx context.Context, actor Actor, schoolID string, p pagination.Params) ([]domain.Course, int, error) {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return s.courseRepo.ListBySchool(ctx, schoolID, p)
	case domain.RolePrincipal:
		return s.courseRepo.ListBySchool(ctx, actor.SchoolID, p)
	case domain.RoleTeacher:
		return s.courseRepo.ListByTeacher(ctx, actor.ID, p)
	case domain.RoleStudent:
		return s.courseRepo.ListByStudent(ctx, actor.ID, p)
	default:
		return nil, 0, apperrors.Forbidden("unknown role")
	}
}

// Update modifies a course in the actor's school.
func (s *CourseService) Update(ctx context.Context, actor Actor, id string, input CourseInput) (*domain.Course, error) {
	course, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	course.Title = input.Title
	course.Description = input.Description

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

// Delete soft-deletes a course. Enrollments and materials stay in place so a
// restore brings the course back whole.
func (s *CourseService) Delete(ctx context.Context, actor Actor, id string) error {
	course, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.courseRepo.SetDeleted(ctx, id, true); err != nil {
		return err
	}

	s.activity.Record(ctx, actor.ID, course.SchoolID, domain.ActionCourseDeleted, "course", &course.ID, course.Title)

	return nil
}

// Restore reverses a soft delete. Memberships and materials were never
// removed, so the course comes back whole.
func (s *CourseService) Restore(ctx context.Context, actor Actor, id string) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("course", id)
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if !course.IsDeleted {
		return nil, apperrors.Conflict("course is not deleted")
	}

	if err := s.checkAccess(ctx, actor, course); err != nil {
		return nil, err
	}

	if err := s.courseRepo.SetDeleted(ctx, id, false); err != nil {
		return nil, err
	}
	course.IsDeleted = false

	s.activity.Record(ctx, actor.ID, course.SchoolID, domain.ActionCourseRestored, "course", &course.ID, course.Title)

	return course, nil
}

// checkAccess verifies the actor may see the course: same school for staff,
// assignment for teachers, enrollment for students.
func (s *CourseService) checkAccess(ctx context.Context, actor Actor, course *domain.Course) error {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RolePrincipal:
		if actor.SchoolID == course.SchoolID {
			return nil
		}
	case domain.RoleTeacher:
		assigned, err := s.enrollmentRepo.IsTeacherAssigned(ctx, actor.ID, course.ID)
		if err != nil {
			return fmt.Errorf("check teacher assignment: %w", err)
		}
		if assigned {
			return nil
		}
	case domain.RoleStudent:
		enrolled, err := s.enrollmentRepo.IsStudentEnrolled(ctx, actor.ID, course.ID)
		if err != nil {
			return fmt.Errorf("check student enrollment: %w", err)
		}
		if enrolled {
			return nil
		}
	}

	return apperrors.Forbidden("you do not have access to this course")
}
