package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// ErrSubscriptionExpired rejects writes into a school whose subscription
// window does not cover the current time.
var ErrSubscriptionExpired = apperrors.New("SUBSCRIPTION_EXPIRED",
	"the school's subscription is not active", http.StatusForbidden)

// SchoolService implements tenant management. All operations are reserved for
// super admins at the routing layer.
type SchoolService struct {
	schoolRepo repository.SchoolRepository
	userRepo   repository.UserRepository
	logger     *slog.Logger
}

// NewSchoolService creates a new school service.
func NewSchoolService(schoolRepo repository.SchoolRepository, userRepo repository.UserRepository, logger *slog.Logger) *SchoolService {
	return &SchoolService{
		schoolRepo: schoolRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// SchoolInput contains the fields for creating or updating a school.
type SchoolInput struct {
	Name              string    `json:"name" validate:"required,min=2,max=200"`
	Address           string    `json:"address,omitempty" validate:"max=500"`
	SubscriptionStart time.Time `json:"subscription_start" validate:"required"`
	SubscriptionEnd   time.Time `json:"subscription_end" validate:"required"`
	MaxTeachers       int       `json:"max_teachers" validate:"required,min=1"`
}

// Create registers a new school tenant.
func (s *SchoolService) Create(ctx context.Context, input SchoolInput) (*domain.School, error) {
	if !input.SubscriptionEnd.After(input.SubscriptionStart) {
		return nil, apperrors.InvalidInput("subscription_end must be after subscription_start")
	}

	now := time.Now().UTC()
	school := &domain.School{
		ID:                uuid.New().String(),
		Name:              input.Name,
		Address:           input.Address,
		SubscriptionStart: input.SubscriptionStart,
		SubscriptionEnd:   input.SubscriptionEnd,
		MaxTeachers:       input.MaxTeachers,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.schoolRepo.Create(ctx, school); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "school created",
		slog.String("school_id", school.ID),
		slog.String("name", school.Name),
	)

	return school, nil
}

// Get retrieves a school by ID.
func (s *SchoolService) Get(ctx context.Context, id string) (*domain.School, error) {
	school, err := s.schoolRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("school", id)
		}
		return nil, fmt.Errorf("get school: %w", err)
	}
	return school, nil
}

// List returns all schools with their principal attached.
func (s *SchoolService) List(ctx context.Context, p pagination.Params) ([]domain.School, int, error) {
	schools, total, err := s.schoolRepo.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}

	for i := range schools {
		s.attachPrincipal(ctx, &schools[i])
	}

	return schools, total, nil
}

// attachPrincipal fills in the school's principal summary. Lookup failures
// are logged; the listing stays usable without it.
func (s *SchoolService) attachPrincipal(ctx context.Context, school *domain.School) {
	principals, err := s.userRepo.ListByRole(ctx, school.ID, domain.RolePrincipal)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load school principal",
			slog.String("school_id", school.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if len(principals) == 0 {
		return
	}

	p := principals[0]
	school.Principal = &domain.SchoolPrincipal{ID: p.ID, Name: p.Name, Email: p.Email}
}

// Update modifies a school, including its subscription window and teacher
// quota. Shrinking the quota below the current teacher count is allowed; it
// only blocks further additions.
func (s *SchoolService) Update(ctx context.Context, id string, input SchoolInput) (*domain.School, error) {
	if !input.SubscriptionEnd.After(input.SubscriptionStart) {
		return nil, apperrors.InvalidInput("subscription_end must be after subscription_start")
	}

	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	school.Name = input.Name
	school.Address = input.Address
	school.SubscriptionStart = input.SubscriptionStart
	school.SubscriptionEnd = input.SubscriptionEnd
	school.MaxTeachers = input.MaxTeachers

	if err := s.schoolRepo.Update(ctx, school); err != nil {
		return nil, err
	}

	return school, nil
}

// Delete removes a school.
func (s *SchoolService) Delete(ctx context.Context, id string) error {
	if err := s.schoolRepo.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("school", id)
		}
		return err
	}

	s.logger.InfoContext(ctx, "school deleted", slog.String("school_id", id))

	return nil
}

// CheckSubscription returns ErrSubscriptionExpired when the school's
// subscription does not cover the current time. Used by the subscription
// guard middleware on school-scoped writes.
func (s *SchoolService) CheckSubscription(ctx context.Context, schoolID string) error {
	school, err := s.Get(ctx, schoolID)
	if err != nil {
		return err
	}

	if !school.SubscriptionActive(time.Now().UTC()) {
		return ErrSubscriptionExpired
	}

	return nil
}
