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

// MaterialService manages notes and assignments attached to courses.
type MaterialService struct {
	materialRepo   repository.MaterialRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	notifications  *NotificationService
	activity       *ActivityService
	logger         *slog.Logger
}

// NewMaterialService creates a new material service.
func NewMaterialService(
	materialRepo repository.MaterialRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	notifications *NotificationService,
	activity *ActivityService,
	logger *slog.Logger,
) *MaterialService {
	return &MaterialService{
		materialRepo:   materialRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		notifications:  notifications,
		activity:       activity,
		logger:         logger,
	}
}

// CreateMaterialInput contains the fields for a new note or assignment.
type CreateMaterialInput struct {
	Title          string                 `json:"title" validate:"required,min=2,max=200"`
	Type           domain.MaterialType    `json:"material_type" validate:"required"`
	ContentURL     *string                `json:"content_url,omitempty" validate:"omitempty,url"`
	Description    *string                `json:"description,omitempty"`
	AssignmentType *domain.AssignmentType `json:"assignment_type,omitempty"`
	TotalMarks     *int                   `json:"total_marks,omitempty" validate:"omitempty,min=1"`
	DueDate        *time.Time             `json:"due_date,omitempty"`
	MaxAttempts    *int                   `json:"max_attempts,omitempty" validate:"omitempty,min=1"`
}

// Create attaches a material to a course and notifies every enrolled student.
func (s *MaterialService) Create(ctx context.Context, actor Actor, courseID string, input CreateMaterialInput) (*domain.LearningMaterial, error) {
	course, err := s.modifiableCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	if err := validateMaterialInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	material := &domain.LearningMaterial{
		ID:             uuid.New().String(),
		CourseID:       course.ID,
		Title:          input.Title,
		Type:           input.Type,
		ContentURL:     input.ContentURL,
		Description:    input.Description,
		AssignmentType: input.AssignmentType,
		TotalMarks:     input.TotalMarks,
		DueDate:        input.DueDate,
		MaxAttempts:    input.MaxAttempts,
		CreatedBy:      actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, err
	}

	s.notifyStudents(ctx, course, material)

	s.activity.Record(ctx, actor.ID, course.SchoolID, domain.ActionMaterialCreated, "material", &material.ID,
		fmt.Sprintf("%s %s", material.Type, material.Title))

	s.logger.InfoContext(ctx, "material created",
		slog.String("material_id", material.ID),
		slog.String("course_id", course.ID),
		slog.String("type", string(material.Type)),
	)

	return material, nil
}

// Get retrieves a material the actor may see.
func (s *MaterialService) Get(ctx context.Context, actor Actor, id string) (*domain.LearningMaterial, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("material", id)
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	if material.IsDeleted {
		return nil, apperrors.NotFound("material", id)
	}

	if err := s.checkCourseAccess(ctx, actor, material.CourseID); err != nil {
		return nil, err
	}

	return material, nil
}

// ListByCourse returns a course's materials. Soft-deleted rows are visible
// only to principals and super admins.
func (s *MaterialService) ListByCourse(ctx context.Context, actor Actor, courseID string) ([]domain.LearningMaterial, error) {
	if err := s.checkCourseAccess(ctx, actor, courseID); err != nil {
		return nil, err
	}

	includeDeleted := actor.Role == domain.RoleSuperAdmin || actor.Role == domain.RolePrincipal

	return s.materialRepo.ListByCourse(ctx, courseID, includeDeleted)
}

// UpdateTitle renames a material.
func (s *MaterialService) UpdateTitle(ctx context.Context, actor Actor, id, title string) (*domain.LearningMaterial, error) {
	material, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.modifiableCourse(ctx, actor, material.CourseID); err != nil {
		return nil, err
	}

	if err := s.materialRepo.UpdateTitle(ctx, id, title); err != nil {
		return nil, err
	}
	material.Title = title

	return material, nil
}

// Delete soft-deletes a material. Existing submissions to a deleted
// assignment stay readable.
func (s *MaterialService) Delete(ctx context.Context, actor Actor, id string) error {
	material, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	if _, err := s.modifiableCourse(ctx, actor, material.CourseID); err != nil {
		return err
	}

	return s.materialRepo.SetDeleted(ctx, id, true)
}

// modifiableCourse loads a non-deleted course and checks write authority:
// assigned teachers, school principals, and super admins.
func (s *MaterialService) modifiableCourse(ctx context.Context, actor Actor, courseID string) (*domain.Course, error) {
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

	switch actor.Role {
	case domain.RoleSuperAdmin:
		return course, nil
	case domain.RolePrincipal:
		if actor.SchoolID == course.SchoolID {
			return course, nil
		}
	case domain.RoleTeacher:
		assigned, err := s.enrollmentRepo.IsTeacherAssigned(ctx, actor.ID, courseID)
		if err != nil {
			return nil, fmt.Errorf("check teacher assignment: %w", err)
		}
		if assigned {
			return course, nil
		}
	}

	return nil, apperrors.Forbidden("you cannot modify materials of this course")
}

// checkCourseAccess verifies read access to the material's course.
func (s *MaterialService) checkCourseAccess(ctx context.Context, actor Actor, courseID string) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("course", courseID)
		}
		return fmt.Errorf("get course: %w", err)
	}

	switch actor.Role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RolePrincipal:
		if actor.SchoolID == course.SchoolID {
			return nil
		}
	case domain.RoleTeacher:
		assigned, err := s.enrollmentRepo.IsTeacherAssigned(ctx, actor.ID, courseID)
		if err != nil {
			return fmt.Errorf("check teacher assignment: %w", err)
		}
		if assigned {
			return nil
		}
	case domain.RoleStudent:
		enrolled, err := s.enrollmentRepo.IsStudentEnrolled(ctx, actor.ID, courseID)
		if err != nil {
			return fmt.Errorf("check student enrollment: %w", err)
		}
		if enrolled {
			return nil
		}
	}

	return apperrors.Forbidden("you do not have access to this course")
}

// notifyStudents fans the new-material notification out to enrolled students.
func (s *MaterialService) notifyStudents(ctx context.Context, course *domain.Course, material *domain.LearningMaterial) {
	studentIDs, err := s.enrollmentRepo.ListStudentIDs(ctx, course.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list students for material fan-out",
			slog.String("course_id", course.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	kind := "note"
	if material.Type == domain.MaterialAssignment {
		kind = "assignment"
	}
	message := fmt.Sprintf("new %s %q in %s", kind, material.Title, course.Title)

	s.notifications.NotifyEach(ctx, studentIDs, domain.NotificationMaterialAdded, message, &material.ID)
}

// validateMaterialInput enforces the note/assignment field split.
func validateMaterialInput(input CreateMaterialInput) error {
	switch input.Type {
	case domain.MaterialNote:
		if input.ContentURL == nil || *input.ContentURL == "" {
			return apperrors.InvalidInput("content_url is required for notes")
		}
		if input.AssignmentType != nil || input.TotalMarks != nil || input.DueDate != nil || input.MaxAttempts != nil {
			return apperrors.InvalidInput("assignment fields are not allowed on notes")
		}
	case domain.MaterialAssignment:
		if input.AssignmentType == nil {
			return apperrors.InvalidInput("assignment_type is required for assignments")
		}
		if *input.AssignmentType != domain.AssignmentMCQ && *input.AssignmentType != domain.AssignmentLong {
			return apperrors.InvalidInput(fmt.Sprintf("unknown assignment type %q", *input.AssignmentType))
		}
		if input.TotalMarks == nil || *input.TotalMarks <= 0 {
			return apperrors.InvalidInput("total_marks must be a positive number")
		}
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown material type %q", input.Type))
	}

	return nil
}
