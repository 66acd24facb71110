package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	"github.com/SpyBeast07/lms-system/internal/storage"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

// Presigned URL lifetimes. Uploads are short so abandoned URLs die quickly;
// downloads live long enough for a grading session.
const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = time.Hour
)

// SubmissionService manages assignment submissions and grading. Files live in
// object storage; the service only ever hands out presigned URLs.
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	materialRepo   repository.MaterialRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	notifications  *NotificationService
	activity       *ActivityService
	storage        storage.Storage
	logger         *slog.Logger
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	materialRepo repository.MaterialRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	notifications *NotificationService,
	activity *ActivityService,
	store storage.Storage,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		materialRepo:   materialRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		notifications:  notifications,
		activity:       activity,
		storage:        store,
		logger:         logger,
	}
}

// UploadTicket is a presigned upload grant. The client PUTs the file to URL
// and then submits with Key.
type UploadTicket struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// RequestUpload issues a presigned upload URL for a submission file.
func (s *SubmissionService) RequestUpload(ctx context.Context, actor Actor, assignmentID, filename string) (*UploadTicket, error) {
	if _, err := s.submittableAssignment(ctx, actor, assignmentID); err != nil {
		return nil, err
	}

	filename = path.Base(filename)
	if filename == "" || filename == "." || filename == "/" {
		return nil, apperrors.InvalidInput("filename is required")
	}

	key := fmt.Sprintf("submissions/%s/%s/%s", assignmentID, actor.ID, filename)

	url, err := s.storage.PresignUpload(ctx, key, uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &UploadTicket{Key: key, URL: url}, nil
}

// SubmitInput references a previously uploaded file.
type SubmitInput struct {
	FileKey string `json:"file_key" validate:"required,max=512"`
}

// Submit records a student's submission to an assignment.
func (s *SubmissionService) Submit(ctx context.Context, actor Actor, assignmentID string, input SubmitInput) (*domain.Submission, error) {
	assignment, err := s.submittableAssignment(ctx, actor, assignmentID)
	if err != nil {
		return nil, err
	}

	exists, err := s.submissionRepo.Exists(ctx, assignmentID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing submission: %w", err)
	}
	if exists {
		return nil, apperrors.InvalidInput("assignment has already been submitted")
	}

	submission := &domain.Submission{
		ID:           uuid.New().String(),
		AssignmentID: assignmentID,
		StudentID:    actor.ID,
		FileKey:      input.FileKey,
		SubmittedAt:  time.Now().UTC(),
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor.ID, actor.SchoolID, domain.ActionSubmissionMade, "submission", &submission.ID,
		fmt.Sprintf("assignment %s", assignment.Title))

	s.logger.InfoContext(ctx, "submission recorded",
		slog.String("submission_id", submission.ID),
		slog.String("assignment_id", assignmentID),
		slog.String("student_id", actor.ID),
	)

	return submission, nil
}

// Get retrieves a submission visible to the actor and resolves its file URL.
func (s *SubmissionService) Get(ctx context.Context, actor Actor, id string) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("submission", id)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	if err := s.checkSubmissionAccess(ctx, actor, submission); err != nil {
		return nil, err
	}

	s.resolveFileURL(ctx, submission)

	return submission, nil
}

// ListByAssignment returns all submissions to an assignment, for grading.
func (s *SubmissionService) ListByAssignment(ctx context.Context, actor Actor, assignmentID string) ([]domain.Submission, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkGradingAccess(ctx, actor, assignment.CourseID); err != nil {
		return nil, err
	}

	submissions, err := s.submissionRepo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	for i := range submissions {
		s.resolveFileURL(ctx, &submissions[i])
	}

	return submissions, nil
}

// ListMine returns the actor's own submissions.
func (s *SubmissionService) ListMine(ctx context.Context, actor Actor) ([]domain.Submission, error) {
	submissions, err := s.submissionRepo.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	for i := range submissions {
		s.resolveFileURL(ctx, &submissions[i])
	}

	return submissions, nil
}

// GradeInput carries a grading decision.
type GradeInput struct {
	Grade    int    `json:"grade" validate:"min=0"`
	Feedback string `json:"feedback,omitempty" validate:"max=2000"`
}

// Grade scores a submission and notifies the student. Regrading overwrites
// the previous grade.
func (s *SubmissionService) Grade(ctx context.Context, actor Actor, submissionID string, input GradeInput) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("submission", submissionID)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	assignment, err := s.getAssignment(ctx, submission.AssignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkGradingAccess(ctx, actor, assignment.CourseID); err != nil {
		return nil, err
	}

	if assignment.TotalMarks != nil && input.Grade > *assignment.TotalMarks {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("grade cannot exceed total marks of %d", *assignment.TotalMarks))
	}

	now := time.Now().UTC()
	if err := s.submissionRepo.Grade(ctx, submissionID, input.Grade, input.Feedback, actor.ID, now); err != nil {
		return nil, err
	}

	submission.Grade = &input.Grade
	submission.Feedback = &input.Feedback
	submission.GradedBy = &actor.ID
	submission.GradedAt = &now

	message := fmt.Sprintf("your submission to %q has been graded: %d", assignment.Title, input.Grade)
	if err := s.notifications.Notify(ctx, submission.StudentID, domain.NotificationSubmissionGraded, message, &submission.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to notify graded student",
			slog.String("submission_id", submission.ID),
			slog.String("error", err.Error()),
		)
	}

	s.activity.Record(ctx, actor.ID, actor.SchoolID, domain.ActionSubmissionGraded, "submission", &submission.ID,
		fmt.Sprintf("grade %d", input.Grade))

	return submission, nil
}

// submittableAssignment checks the actor may submit: the material is a live
// assignment, the actor is enrolled, and the deadline has not passed.
func (s *SubmissionService) submittableAssignment(ctx context.Context, actor Actor, assignmentID string) (*domain.LearningMaterial, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.IsStudentEnrolled(ctx, actor.ID, assignment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check student enrollment: %w", err)
	}
	if !enrolled {
		return nil, apperrors.Forbidden("you are not enrolled in this course")
	}

	if assignment.DueDate != nil && time.Now().UTC().After(*assignment.DueDate) {
		return nil, apperrors.InvalidInput("assignment deadline has passed")
	}

	return assignment, nil
}

// getAssignment loads a non-deleted material and checks it is an assignment.
func (s *SubmissionService) getAssignment(ctx context.Context, id string) (*domain.LearningMaterial, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("assignment", id)
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	if material.IsDeleted {
		return nil, apperrors.NotFound("assignment", id)
	}
	if material.Type != domain.MaterialAssignment {
		return nil, apperrors.InvalidInput("material is not an assignment")
	}

	return material, nil
}

// checkGradingAccess verifies the actor may grade work in the course.
func (s *SubmissionService) checkGradingAccess(ctx context.Context, actor Actor, courseID string) error {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RolePrincipal:
		course, err := s.courseRepo.GetByID(ctx, courseID)
		if err != nil {
			return fmt.Errorf("get course: %w", err)
		}
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
	}

	return apperrors.Forbidden("you cannot grade submissions of this course")
}

// checkSubmissionAccess verifies read access: the owning student or anyone
// with grading access.
func (s *SubmissionService) checkSubmissionAccess(ctx context.Context, actor Actor, submission *domain.Submission) error {
	if actor.ID == submission.StudentID {
		return nil
	}

	assignment, err := s.getAssignment(ctx, submission.AssignmentID)
	if err != nil {
		return err
	}

	return s.checkGradingAccess(ctx, actor, assignment.CourseID)
}

// resolveFileURL fills in a presigned download URL. Failures are logged; the
// submission stays readable without a URL.
func (s *SubmissionService) resolveFileURL(ctx context.Context, submission *domain.Submission) {
	url, err := s.storage.PresignDownload(ctx, submission.FileKey, downloadURLExpiry)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to presign submission file",
			slog.String("submission_id", submission.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	submission.FileURL = url
}
