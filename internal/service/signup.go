package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/auth"
	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/repository"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// SignupService implements the public signup workflow: applicants submit a
// request with their desired role, and a user one tier up approves it into a
// real account.
type SignupService struct {
	signupRepo repository.SignupRequestRepository
	userRepo   repository.UserRepository
	schoolRepo repository.SchoolRepository

	hasher        *auth.Hasher
	notifications *NotificationService
	activity      *ActivityService
	logger        *slog.Logger
}

// NewSignupService creates a new signup service.
func NewSignupService(
	signupRepo repository.SignupRequestRepository,
	userRepo repository.UserRepository,
	schoolRepo repository.SchoolRepository,
	hasher *auth.Hasher,
	notifications *NotificationService,
	activity *ActivityService,
	logger *slog.Logger,
) *SignupService {
	return &SignupService{
		signupRepo:    signupRepo,
		userRepo:      userRepo,
		schoolRepo:    schoolRepo,
		hasher:        hasher,
		notifications: notifications,
		activity:      activity,
		logger:        logger,
	}
}

// SignupInput carries a public account application.
type SignupInput struct {
	Name          string `json:"name" validate:"required,min=2,max=200"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	RequestedRole string `json:"requested_role" validate:"required"`
	SchoolID      string `json:"school_id,omitempty" validate:"omitempty,uuid"`
}

// Submit stages a signup request. An email whose previous request was
// rejected may apply again; the rejected row is rewritten in place so the
// unique email constraint holds.
func (s *SignupService) Submit(ctx context.Context, input SignupInput) (*domain.SignupRequest, error) {
	role := domain.Role(input.RequestedRole)
	if !role.Requestable() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("role %q cannot be requested", input.RequestedRole))
	}
	if role == domain.RolePrincipal && input.SchoolID == "" {
		return nil, apperrors.InvalidInput("principal signups must name the school they will manage")
	}

	if input.SchoolID != "" {
		if _, err := s.schoolRepo.GetByID(ctx, input.SchoolID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NotFound("school", input.SchoolID)
			}
			return nil, fmt.Errorf("get school: %w", err)
		}
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.AlreadyExists("user", "email", input.Email)
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	existing, err := s.signupRepo.GetByEmail(ctx, input.Email)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("check existing signup request: %w", err)
	}
	if err == nil {
		if existing.Status != domain.SignupRequestRejected {
			return nil, apperrors.Conflict(
				fmt.Sprintf("a signup request for this email is already %s", existing.Status))
		}

		// Rejected applicants get a fresh shot with the same row.
		existing.Name = input.Name
		existing.PasswordHash = hash
		existing.RequestedRole = role
		existing.ApprovedRole = nil
		existing.SchoolID = input.SchoolID
		existing.Status = domain.SignupRequestPending
		existing.ResolvedBy = nil
		existing.ResolvedAt = nil
		existing.CreatedAt = time.Now().UTC()

		if err := s.signupRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("reopen signup request: %w", err)
		}

		s.notifyReviewers(ctx, existing)

		s.logger.InfoContext(ctx, "signup request reopened",
			slog.String("request_id", existing.ID),
			slog.String("requested_role", string(role)),
		)

		return existing, nil
	}

	req := &domain.SignupRequest{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  hash,
		RequestedRole: role,
		SchoolID:      input.SchoolID,
		Status:        domain.SignupRequestPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.signupRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create signup request: %w", err)
	}

	s.notifyReviewers(ctx, req)

	s.logger.InfoContext(ctx, "signup request staged",
		slog.String("request_id", req.ID),
		slog.String("requested_role", string(role)),
	)

	return req, nil
}

// ListSignupRequests returns the pending requests the reviewer is responsible
// for: applicants one tier down, within their own school.
func (s *SignupService) ListSignupRequests(ctx context.Context, reviewerID string, p pagination.Params) ([]domain.SignupRequest, int, error) {
	reviewer, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, 0, apperrors.NotFound("user", reviewerID)
		}
		return nil, 0, fmt.Errorf("get reviewer: %w", err)
	}
	if reviewer.IsDeleted {
		return nil, 0, apperrors.NotFound("user", reviewerID)
	}

	targetRole, scope, err := approvalScope(reviewer)
	if err != nil {
		return nil, 0, err
	}

	return s.signupRepo.ListPending(ctx, scope, targetRole, p)
}

// ResolveSignupRequestInput carries a signup approval decision. ApprovedRole
// optionally overrides the requested role on approval.
type ResolveSignupRequestInput struct {
	RequestID    string
	ApproverID   string
	Approve      bool
	ApprovedRole string
}

// ResolveSignupRequest approves or rejects a pending request. Approval
// creates the user account from the staged application.
func (s *SignupService) ResolveSignupRequest(ctx context.Context, input ResolveSignupRequestInput) (*domain.SignupRequest, error) {
	req, err := s.signupRepo.GetByID(ctx, input.RequestID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("signup request", input.RequestID)
		}
		return nil, fmt.Errorf("get signup request: %w", err)
	}

	if req.Status != domain.SignupRequestPending {
		return nil, signupAlreadyResolved(req.Status)
	}

	finalRole := req.RequestedRole
	if input.ApprovedRole != "" {
		override := domain.Role(input.ApprovedRole)
		if !override.Requestable() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("role %q cannot be granted through signup", input.ApprovedRole))
		}
		finalRole = override
	}

	requiredRole, ok := finalRole.ApproverRole()
	if !ok {
		return nil, apperrors.Forbidden("this request cannot be approved")
	}

	approver, err := s.userRepo.GetByID(ctx, input.ApproverID)
	if err != nil {
		return nil, fmt.Errorf("get approver: %w", err)
	}
	if approver.IsDeleted {
		return nil, apperrors.NotFound("user", input.ApproverID)
	}

	if approver.Role != requiredRole {
		return nil, ErrInsufficientApprovalTier
	}
	if requiredRole != domain.RoleSuperAdmin && approver.SchoolID != req.SchoolID {
		return nil, apperrors.Forbidden("request belongs to a different school")
	}

	if !input.Approve {
		won, err := s.signupRepo.Resolve(ctx, req.ID, domain.SignupRequestRejected, nil, approver.ID, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("reject signup request: %w", err)
		}
		if !won {
			return nil, s.lostResolveRace(ctx, req.ID)
		}

		s.activity.Record(ctx, approver.ID, approver.SchoolID, domain.ActionSignupRejected,
			"signup_request", &req.ID, fmt.Sprintf("rejected signup of %s", req.Email))

		return s.reload(ctx, req.ID)
	}

	// The applicant may have been provisioned an account since submitting.
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.AlreadyExists("user", "email", req.Email)
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	won, err := s.signupRepo.Resolve(ctx, req.ID, domain.SignupRequestApproved, &finalRole, approver.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("approve signup request: %w", err)
	}
	if !won {
		return nil, s.lostResolveRace(ctx, req.ID)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		SchoolID:     req.SchoolID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Role:         finalRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user from signup request: %w", err)
	}

	s.activity.Record(ctx, approver.ID, approver.SchoolID, domain.ActionSignupApproved,
		"signup_request", &req.ID, fmt.Sprintf("approved %s as %s", req.Email, finalRole))

	s.logger.InfoContext(ctx, "signup request approved",
		slog.String("request_id", req.ID),
		slog.String("user_id", user.ID),
		slog.String("role", string(finalRole)),
	)

	return s.reload(ctx, req.ID)
}

// lostResolveRace reports the status set by the approver who won.
func (s *SignupService) lostResolveRace(ctx context.Context, requestID string) error {
	current, err := s.signupRepo.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("reload signup request: %w", err)
	}
	return signupAlreadyResolved(current.Status)
}

func (s *SignupService) reload(ctx context.Context, requestID string) (*domain.SignupRequest, error) {
	req, err := s.signupRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("reload signup request: %w", err)
	}
	return req, nil
}

// notifyReviewers fans a new-application notification out to every user of
// the reviewing role, school-scoped unless the reviewer is a super admin.
func (s *SignupService) notifyReviewers(ctx context.Context, req *domain.SignupRequest) {
	reviewerRole, ok := req.RequestedRole.ApproverRole()
	if !ok {
		return
	}

	scope := req.SchoolID
	if reviewerRole == domain.RoleSuperAdmin {
		scope = ""
	}

	reviewers, err := s.userRepo.ListByRole(ctx, scope, reviewerRole)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list signup reviewers",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	ids := make([]string, 0, len(reviewers))
	for _, r := range reviewers {
		ids = append(ids, r.ID)
	}

	message := fmt.Sprintf("%s applied to join as %s", req.Name, req.RequestedRole)
	s.notifications.NotifyEach(ctx, ids, domain.NotificationSignupRequested, message, &req.ID)
}

func signupAlreadyResolved(status domain.SignupRequestStatus) error {
	return apperrors.New("REQUEST_ALREADY_RESOLVED",
		fmt.Sprintf("request has already been %s", status), http.StatusConflict)
}
