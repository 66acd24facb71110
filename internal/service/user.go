package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/auth"
	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// Actor identifies the authenticated caller of a service operation. Role is
// the acting role from the access token; BaseRole is the role actually held.
type Actor struct {
	ID       string
	Role     domain.Role
	BaseRole domain.Role
	SchoolID string
}

// UserService implements user management with role-hierarchy checks.
type UserService struct {
	userRepo   repository.UserRepository
	schoolRepo repository.SchoolRepository
	tokenRepo  repository.RefreshTokenRepository
	hasher     *auth.Hasher
	activity   *ActivityService
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	schoolRepo repository.SchoolRepository,
	tokenRepo repository.RefreshTokenRepository,
	hasher *auth.Hasher,
	activity *ActivityService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		schoolRepo: schoolRepo,
		tokenRepo:  tokenRepo,
		hasher:     hasher,
		activity:   activity,
		logger:     logger,
	}
}

// CreateUserInput contains the data needed to create a user.
type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     domain.Role `json:"role" validate:"required"`
	SchoolID string      `json:"school_id,omitempty" validate:"omitempty,uuid"`
}

// Create registers a new user. Super admins may create any role in any
// school; principals create teachers and students in their own school.
func (s *UserService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", input.Role))
	}
	if !actor.Role.CanCreate(input.Role) {
		return nil, apperrors.Forbidden(fmt.Sprintf("%s cannot create %s accounts", actor.Role, input.Role))
	}

	schoolID := input.SchoolID
	if actor.Role == domain.RolePrincipal {
		schoolID = actor.SchoolID
	}

	if input.Role == domain.RoleSuperAdmin {
		schoolID = ""
	} else {
		if schoolID == "" {
			return nil, apperrors.InvalidInput("school_id is required for this role")
		}
		if err := s.checkSchool(ctx, schoolID, input.Role); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		SchoolID:     schoolID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor.ID, schoolID, domain.ActionUserCreated, "user", &user.ID,
		fmt.Sprintf("created %s %s", user.Role, user.Email))

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.String("created_by", actor.ID),
	)

	return user, nil
}

// Get retrieves a user visible to the actor. Students see only themselves;
// school staff see users of their own school; super admins see everyone.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.IsDeleted && actor.Role != domain.RoleSuperAdmin {
		return nil, apperrors.NotFound("user", id)
	}

	if !canViewUser(actor, user) {
		return nil, apperrors.Forbidden("you cannot view this user")
	}

	return user, nil
}

// List returns users visible to the actor. Super admins pass a schoolID
// filter ("" for all schools); everyone else is scoped to their own school.
// Soft-deleted rows are included only for super admins and principals.
func (s *UserService) List(ctx context.Context, actor Actor, schoolID string, includeDeleted bool, p pagination.Params) ([]domain.User, int, error) {
	if actor.Role != domain.RoleSuperAdmin {
		schoolID = actor.SchoolID
	}
	if actor.Role != domain.RoleSuperAdmin && actor.Role != domain.RolePrincipal {
		includeDeleted = false
	}

	return s.userRepo.List(ctx, schoolID, includeDeleted, p)
}

// UpdateUserInput contains mutable profile fields.
type UpdateUserInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// Update modifies a user's profile. Users edit themselves; managers edit
// accounts they could have created.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.IsDeleted {
		return nil, apperrors.NotFound("user", id)
	}

	if actor.ID != user.ID && !canManageUser(actor, user) {
		return nil, apperrors.Forbidden("you cannot edit this user")
	}

	user.Name = input.Name
	user.Email = input.Email

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete soft-deletes a user and revokes their sessions.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("user", id)
		}
		return fmt.Errorf("get user: %w", err)
	}
	if user.IsDeleted {
		return apperrors.NotFound("user", id)
	}

	if !canManageUser(actor, user) {
		return apperrors.Forbidden("you cannot delete this user")
	}

	if err := s.userRepo.SetDeleted(ctx, id, true); err != nil {
		return err
	}

	if err := s.tokenRepo.RevokeAllByUser(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions of deleted user",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.activity.Record(ctx, actor.ID, user.SchoolID, domain.ActionUserDeleted, "user", &user.ID, "")

	return nil
}

// Restore reverses a soft delete.
func (s *UserService) Restore(ctx context.Context, actor Actor, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsDeleted {
		return nil, apperrors.Conflict("user is not deleted")
	}

	if !canManageUser(actor, user) {
		return nil, apperrors.Forbidden("you cannot restore this user")
	}

	if err := s.userRepo.SetDeleted(ctx, id, false); err != nil {
		return nil, err
	}
	user.IsDeleted = false

	s.activity.Record(ctx, actor.ID, user.SchoolID, domain.ActionUserRestored, "user", &user.ID, "")

	return user, nil
}

// checkSchool verifies the school exists, its subscription is active, and the
// teacher quota has room when a teacher is being added.
func (s *UserService) checkSchool(ctx context.Context, schoolID string, role domain.Role) error {
	school, err := s.schoolRepo.GetByID(ctx, schoolID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("school", schoolID)
		}
		return fmt.Errorf("get school: %w", err)
	}

	if !school.SubscriptionActive(time.Now().UTC()) {
		return ErrSubscriptionExpired
	}

	if role == domain.RoleTeacher {
		count, err := s.userRepo.CountByRole(ctx, schoolID, domain.RoleTeacher)
		if err != nil {
			return fmt.Errorf("count teachers: %w", err)
		}
		if count >= school.MaxTeachers {
			return apperrors.Conflict(
				fmt.Sprintf("school has reached its limit of %d teachers", school.MaxTeachers))
		}
	}

	return nil
}

// canManageUser reports whether the actor holds creation authority over the
// target, which also gates edit, delete, and restore.
func canManageUser(actor Actor, target *domain.User) bool {
	if !actor.Role.CanCreate(target.Role) {
		return false
	}
	if actor.Role == domain.RoleSuperAdmin {
		return true
	}
	return actor.SchoolID == target.SchoolID
}

// canViewUser is looser than canManageUser: any staff member sees users of
// their own school, students see only themselves.
func canViewUser(actor Actor, target *domain.User) bool {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RolePrincipal, domain.RoleTeacher:
		return actor.SchoolID == target.SchoolID || actor.ID == target.ID
	default:
		return actor.ID == target.ID
	}
}
