package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// SignupHandler handles public signup and signup approval endpoints.
type SignupHandler struct {
	service *service.SignupService
	logger  *slog.Logger
}

// NewSignupHandler creates a new signup HTTP handler.
func NewSignupHandler(svc *service.SignupService, logger *slog.Logger) *SignupHandler {
	return &SignupHandler{service: svc, logger: logger}
}

// ResolveSignupRequest carries a signup approval decision. ApprovedRole
// optionally overrides the requested role.
type ResolveSignupRequest struct {
	Approve      bool   `json:"approve"`
	ApprovedRole string `json:"approved_role,omitempty" validate:"omitempty,oneof=principal teacher student"`
}

// Submit handles POST /api/v1/auth/signup
func (h *SignupHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	request, err := h.service.Submit(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: request})
}

// List handles GET /api/v1/auth/signup-requests
func (h *SignupHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	p := pagination.FromRequest(r)

	requests, total, err := h.service.ListSignupRequests(r.Context(), actor.ID, p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(requests, total, p))
}

// Resolve handles POST /api/v1/auth/signup-requests/{id}
func (h *SignupHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ResolveSignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.ResolveSignupRequestInput{
		RequestID:    id.String(),
		ApproverID:   actor.ID,
		Approve:      req.Approve,
		ApprovedRole: req.ApprovedRole,
	}

	request, err := h.service.ResolveSignupRequest(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: request})
}
