package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
)

// MaterialHandler handles note and assignment endpoints.
type MaterialHandler struct {
	service *service.MaterialService
	logger  *slog.Logger
}

// NewMaterialHandler creates a new material HTTP handler.
func NewMaterialHandler(svc *service.MaterialService, logger *slog.Logger) *MaterialHandler {
	return &MaterialHandler{service: svc, logger: logger}
}

// RenameRequest carries a new material title.
type RenameRequest struct {
	Title string `json:"title" validate:"required,min=2,max=200"`
}

// Create handles POST /api/v1/courses/{id}/materials
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.CreateMaterialInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.service.Create(r.Context(), actor, courseID.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: material})
}

// ListByCourse handles GET /api/v1/courses/{id}/materials
func (h *MaterialHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	materials, err := h.service.ListByCourse(r.Context(), actor, courseID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: materials})
}

// Get handles GET /api/v1/materials/{id}
func (h *MaterialHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	material, err := h.service.Get(r.Context(), actor, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: material})
}

// Rename handles PUT /api/v1/materials/{id}
func (h *MaterialHandler) Rename(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req RenameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	material, err := h.service.UpdateTitle(r.Context(), actor, id.String(), req.Title)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: material})
}

// Delete handles DELETE /api/v1/materials/{id}
func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
