package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// AuthHandler handles authentication, session, and password change endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// RefreshRequest carries the opaque refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SwitchRoleRequest names the role to act as.
type SwitchRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ResolveRequest carries an approval decision.
type ResolveRequest struct {
	Approve bool `json:"approve"`
}

// loginResponse pairs the authenticated user with their tokens.
type loginResponse struct {
	User   *domain.User      `json:"user"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.service.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: loginResponse{User: user, Tokens: tokens}})
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tokens})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "logged_out"}})
}

// LogoutAll handles POST /api/v1/auth/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	if err := h.service.LogoutAll(r.Context(), actor.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "logged_out"}})
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var req service.ChangePasswordInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pending, err := h.service.ChangePassword(r.Context(), actor.ID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if pending == nil {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "changed"}})
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: pending})
}

// ListPasswordRequests handles GET /api/v1/auth/password-requests
func (h *AuthHandler) ListPasswordRequests(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	p := pagination.FromRequest(r)

	requests, total, err := h.service.ListPasswordRequests(r.Context(), actor.ID, p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(requests, total, p))
}

// ResolvePasswordRequest handles POST /api/v1/auth/password-requests/{id}
func (h *AuthHandler) ResolvePasswordRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ResolveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.ResolvePasswordRequestInput{
		RequestID:  id.String(),
		ApproverID: actor.ID,
		Approve:    req.Approve,
	}

	if err := h.service.ResolvePasswordRequest(r.Context(), input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := "rejected"
	if req.Approve {
		status = "approved"
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": status}})
}

// SwitchRole handles POST /api/v1/auth/switch-role
func (h *AuthHandler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var req SwitchRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// Switches always start from the base role, so switching back up to the
	// own role works while acting as a lower one.
	tokens, err := h.service.SwitchRole(r.Context(), actor.ID, domain.Role(req.Role))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: tokens})
}
