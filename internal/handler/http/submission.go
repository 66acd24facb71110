package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
)

// SubmissionHandler handles submission and grading endpoints.
type SubmissionHandler struct {
	service *service.SubmissionService
	logger  *slog.Logger
}

// NewSubmissionHandler creates a new submission HTTP handler.
func NewSubmissionHandler(svc *service.SubmissionService, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{service: svc, logger: logger}
}

// UploadRequest names the file about to be uploaded.
type UploadRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
}

// RequestUpload handles POST /api/v1/assignments/{id}/upload-url
func (h *SubmissionHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	assignmentID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UploadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.service.RequestUpload(r.Context(), actor, assignmentID.String(), req.Filename)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ticket})
}

// Submit handles POST /api/v1/assignments/{id}/submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	assignmentID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.SubmitInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	submission, err := h.service.Submit(r.Context(), actor, assignmentID.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: submission})
}

// ListByAssignment handles GET /api/v1/assignments/{id}/submissions
func (h *SubmissionHandler) ListByAssignment(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	assignmentID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	submissions, err := h.service.ListByAssignment(r.Context(), actor, assignmentID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: submissions})
}

// ListMine handles GET /api/v1/submissions/mine
func (h *SubmissionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	submissions, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: submissions})
}

// Get handles GET /api/v1/submissions/{id}
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	submission, err := h.service.Get(r.Context(), actor, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: submission})
}

// Grade handles POST /api/v1/submissions/{id}/grade
func (h *SubmissionHandler) Grade(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.GradeInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	submission, err := h.service.Grade(r.Context(), actor, id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: submission})
}
