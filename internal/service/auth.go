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

// Client-facing auth errors. Codes are part of the API contract.
var (
	ErrInvalidCredentials = apperrors.New("INVALID_CREDENTIALS",
		"invalid email or password", http.StatusUnauthorized)
	ErrInvalidRefreshToken = apperrors.New("INVALID_REFRESH_TOKEN",
		"refresh token is not recognized", http.StatusUnauthorized)
	ErrReuseDetected = apperrors.New("REUSE_DETECTED",
		"refresh token reuse detected; all sessions have been revoked", http.StatusUnauthorized)
	ErrRefreshTokenExpired = apperrors.New("REFRESH_TOKEN_EXPIRED",
		"refresh token has expired", http.StatusUnauthorized)
	ErrTokenUserNotFound = apperrors.New("USER_NOT_FOUND",
		"user account no longer exists", http.StatusUnauthorized)
	ErrIncorrectCurrentPassword = apperrors.New("INCORRECT_CURRENT_PASSWORD",
		"current password is incorrect", http.StatusBadRequest)
	ErrInsufficientApprovalTier = apperrors.New("INSUFFICIENT_APPROVAL_TIER",
		"your role cannot approve this request", http.StatusForbidden)
)

// AuthService implements login, refresh token rotation with reuse detection,
// the password change approval workflow, and role switching.
type AuthService struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.RefreshTokenRepository
	requestRepo repository.PasswordRequestRepository

	jwtManager    *auth.JWTManager
	hasher        *auth.Hasher
	notifications *NotificationService
	activity      *ActivityService
	refreshTTL    time.Duration
	logger        *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	requestRepo repository.PasswordRequestRepository,
	jwtManager *auth.JWTManager,
	hasher *auth.Hasher,
	notifications *NotificationService,
	activity *ActivityService,
	refreshTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		requestRepo:   requestRepo,
		jwtManager:    jwtManager,
		hasher:        hasher,
		notifications: notifications,
		activity:      activity,
		refreshTTL:    refreshTTL,
		logger:        logger,
	}
}

// LoginInput contains login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user by email: %w", err)
	}

	if !s.hasher.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, _, err := s.issueTokens(ctx, user, user.Role)
	if err != nil {
		return nil, nil, err
	}

	s.activity.Record(ctx, user.ID, user.SchoolID, domain.ActionLogin, "user", nil, "")

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, pair, nil
}

// Refresh rotates a refresh token. Presenting a revoked token is treated as
// theft and revokes every session of the owner.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*domain.TokenPair, error) {
	ownerID, secret, ok := auth.SplitRefreshToken(rawToken)
	if !ok {
		return nil, ErrInvalidRefreshToken
	}

	match, err := s.findToken(ctx, ownerID, secret)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("get token owner: %w", err)
	}
	if err != nil || user.IsDeleted {
		if revokeErr := s.tokenRepo.RevokeAllByUser(ctx, ownerID); revokeErr != nil {
			return nil, fmt.Errorf("revoke tokens of missing user: %w", revokeErr)
		}
		return nil, ErrTokenUserNotFound
	}

	if match.Revoked {
		return nil, s.handleReuse(ctx, ownerID, match.ID)
	}

	if match.Expired(time.Now().UTC()) {
		if err := s.tokenRepo.Revoke(ctx, match.ID); err != nil {
			return nil, fmt.Errorf("revoke expired token: %w", err)
		}
		return nil, ErrRefreshTokenExpired
	}

	// The conditional revoke decides concurrent rotations of the same token:
	// losing the race means another request already rotated it, which is
	// indistinguishable from reuse.
	won, err := s.tokenRepo.RevokeActive(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !won {
		return nil, s.handleReuse(ctx, ownerID, match.ID)
	}

	pair, newID, err := s.issueTokens(ctx, user, user.Role)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.SetReplacedBy(ctx, match.ID, newID); err != nil {
		s.logger.ErrorContext(ctx, "failed to link rotated token to successor",
			slog.String("token_id", match.ID),
			slog.String("error", err.Error()),
		)
	}

	return pair, nil
}

// Logout revokes the presented refresh token. Unknown or malformed tokens are
// ignored so repeated logouts succeed.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	ownerID, secret, ok := auth.SplitRefreshToken(rawToken)
	if !ok {
		return nil
	}

	match, err := s.findToken(ctx, ownerID, secret)
	if err != nil {
		return err
	}
	if match == nil {
		return nil
	}

	if err := s.tokenRepo.Revoke(ctx, match.ID); err != nil {
		return fmt.Errorf("revoke token on logout: %w", err)
	}

	return nil
}

// LogoutAll revokes every session of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.tokenRepo.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "all sessions revoked", slog.String("user_id", userID))

	return nil
}

// ChangePasswordInput carries a password change attempt.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// ChangePassword verifies the current password and either applies the change
// immediately (super admins) or stages a request for tier approval. The
// returned request is nil when the change was applied directly.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) (*domain.PasswordChangeRequest, error) {
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

	if !s.hasher.VerifyPassword(input.CurrentPassword, user.PasswordHash) {
		return nil, ErrIncorrectCurrentPassword
	}

	newHash, err := s.hasher.HashPassword(input.NewPassword)
	if err != nil {
		return nil, err
	}

	approverRole, needsApproval := user.Role.ApproverRole()
	if !needsApproval {
		if err := s.applyPasswordChange(ctx, user.ID, user.SchoolID, newHash); err != nil {
			return nil, err
		}
		return nil, nil
	}

	pending, err := s.requestRepo.HasPending(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("check pending request: %w", err)
	}
	if pending {
		return nil, apperrors.Conflict("a password change request is already pending for this user")
	}

	req := &domain.PasswordChangeRequest{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		SchoolID:        user.SchoolID,
		NewPasswordHash: newHash,
		Status:          domain.PasswordRequestPending,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create password change request: %w", err)
	}

	s.notifyApprovers(ctx, user, approverRole, req.ID)

	s.logger.InfoContext(ctx, "password change request staged",
		slog.String("user_id", user.ID),
		slog.String("request_id", req.ID),
		slog.String("approver_role", string(approverRole)),
	)

	return req, nil
}

// ListPasswordRequests returns the pending requests the approver is
// responsible for: one tier down, within their own school.
func (s *AuthService) ListPasswordRequests(ctx context.Context, approverID string, p pagination.Params) ([]domain.PasswordChangeRequest, int, error) {
	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, 0, apperrors.NotFound("user", approverID)
		}
		return nil, 0, fmt.Errorf("get approver: %w", err)
	}

	targetRole, scope, err := approvalScope(approver)
	if err != nil {
		return nil, 0, err
	}

	return s.requestRepo.ListPending(ctx, scope, targetRole, p)
}

// ResolvePasswordRequestInput carries an approval decision.
type ResolvePasswordRequestInput struct {
	RequestID  string
	ApproverID string
	Approve    bool
}

// ResolvePasswordRequest approves or rejects a pending request. Approval
// applies the staged hash and revokes every session of the requester.
func (s *AuthService) ResolvePasswordRequest(ctx context.Context, input ResolvePasswordRequestInput) error {
	req, err := s.requestRepo.GetByID(ctx, input.RequestID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("password change request", input.RequestID)
		}
		return fmt.Errorf("get password change request: %w", err)
	}

	if req.Status != domain.PasswordRequestPending {
		return requestAlreadyResolved(req.Status)
	}

	target, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("get request target: %w", err)
	}

	requiredRole, needsApproval := target.Role.ApproverRole()
	if !needsApproval {
		return apperrors.Forbidden("this request does not require approval")
	}

	approver, err := s.userRepo.GetByID(ctx, input.ApproverID)
	if err != nil {
		return fmt.Errorf("get approver: %w", err)
	}
	if approver.IsDeleted {
		return apperrors.NotFound("user", input.ApproverID)
	}

	if approver.Role != requiredRole {
		return ErrInsufficientApprovalTier
	}
	if requiredRole != domain.RoleSuperAdmin && approver.SchoolID != req.SchoolID {
		return apperrors.Forbidden("request belongs to a different school")
	}

	status := domain.PasswordRequestRejected
	if input.Approve {
		status = domain.PasswordRequestApproved
	}

	won, err := s.requestRepo.Resolve(ctx, req.ID, status, approver.ID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("resolve password change request: %w", err)
	}
	if !won {
		// Lost the race to another approver; report the status they set.
		current, err := s.requestRepo.GetByID(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("reload password change request: %w", err)
		}
		return requestAlreadyResolved(current.Status)
	}

	if input.Approve {
		if err := s.applyPasswordChange(ctx, req.UserID, req.SchoolID, req.NewPasswordHash); err != nil {
			return err
		}
	}

	message := fmt.Sprintf("your password change request was %s", status)
	if err := s.notifications.Notify(ctx, req.UserID, domain.NotificationPasswordResolved, message, &req.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to notify requester",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password change request resolved",
		slog.String("request_id", req.ID),
		slog.String("status", string(status)),
		slog.String("approver_id", approver.ID),
	)

	return nil
}

// SwitchRole issues a token pair acting as a role below the user's own.
func (s *AuthService) SwitchRole(ctx context.Context, userID string, target domain.Role) (*domain.TokenPair, error) {
	if !target.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", target))
	}

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

	if !user.Role.CanSwitchTo(target) {
		return nil, apperrors.Forbidden(fmt.Sprintf("cannot switch from %s to %s", user.Role, target))
	}

	pair, _, err := s.issueTokens(ctx, user, target)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, user.ID, user.SchoolID, domain.ActionRoleSwitched, "user", nil,
		fmt.Sprintf("acting as %s", target))

	return pair, nil
}

// SweepExpiredTokens deletes token rows past their expiry. Run periodically.
func (s *AuthService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	deleted, err := s.tokenRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep expired tokens: %w", err)
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "swept expired refresh tokens", slog.Int64("deleted", deleted))
	}

	return deleted, nil
}

// issueTokens mints an access token acting as role and a fresh refresh token.
// Returns the pair and the ID of the stored refresh token row.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User, role domain.Role) (*domain.TokenPair, string, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(
		user.ID, user.Name, string(role), string(user.Role), user.SchoolID)
	if err != nil {
		return nil, "", err
	}

	rawToken, secret, err := auth.NewRefreshToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.HashToken(secret)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	row := &domain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}

	if err := s.tokenRepo.Create(ctx, row); err != nil {
		return nil, "", fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawToken,
		TokenType:    "Bearer",
	}, row.ID, nil
}

// findToken locates the stored row matching the presented secret among the
// owner's tokens. Returns nil when no row matches.
func (s *AuthService) findToken(ctx context.Context, ownerID, secret string) (*domain.RefreshToken, error) {
	tokens, err := s.tokenRepo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list refresh tokens: %w", err)
	}

	for i := range tokens {
		if s.hasher.VerifyToken(secret, tokens[i].TokenHash) {
			return &tokens[i], nil
		}
	}

	return nil, nil
}

// handleReuse revokes every session of the owner and returns the reuse error.
func (s *AuthService) handleReuse(ctx context.Context, ownerID, tokenID string) error {
	s.logger.WarnContext(ctx, "refresh token reuse detected",
		slog.String("user_id", ownerID),
		slog.String("token_id", tokenID),
	)

	if err := s.tokenRepo.RevokeAllByUser(ctx, ownerID); err != nil {
		return fmt.Errorf("revoke tokens after reuse: %w", err)
	}

	return ErrReuseDetected
}

// applyPasswordChange installs the new hash and kills every session.
func (s *AuthService) applyPasswordChange(ctx context.Context, userID, schoolID, newHash string) error {
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	if err := s.tokenRepo.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions after password change: %w", err)
	}

	s.activity.Record(ctx, userID, schoolID, domain.ActionPasswordChanged, "user", nil, "")

	return nil
}

// notifyApprovers fans a staged-request notification out to every user of the
// approver role, school-scoped unless the approver is a super admin.
func (s *AuthService) notifyApprovers(ctx context.Context, requester *domain.User, approverRole domain.Role, requestID string) {
	scope := requester.SchoolID
	if approverRole == domain.RoleSuperAdmin {
		scope = ""
	}

	approvers, err := s.userRepo.ListByRole(ctx, scope, approverRole)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list approvers",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return
	}

	ids := make([]string, 0, len(approvers))
	for _, a := range approvers {
		ids = append(ids, a.ID)
	}

	message := fmt.Sprintf("%s requested a password change", requester.Name)
	s.notifications.NotifyEach(ctx, ids, domain.NotificationPasswordRequested, message, &requestID)
}

// approvalScope maps an approver to the role and school whose requests they
// resolve.
func approvalScope(approver *domain.User) (domain.Role, string, error) {
	switch approver.Role {
	case domain.RoleSuperAdmin:
		return domain.RolePrincipal, "", nil
	case domain.RolePrincipal:
		return domain.RoleTeacher, approver.SchoolID, nil
	case domain.RoleTeacher:
		return domain.RoleStudent, approver.SchoolID, nil
	default:
		return "", "", apperrors.Forbidden("your role cannot approve password changes")
	}
}

func requestAlreadyResolved(status domain.PasswordRequestStatus) error {
	return apperrors.New("REQUEST_ALREADY_RESOLVED",
		fmt.Sprintf("request has already been %s", status), http.StatusConflict)
}
