package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// SchoolHandler handles school tenant endpoints. All routes behind it are
// restricted to super admins.
type SchoolHandler struct {
	service *service.SchoolService
	logger  *slog.Logger
}

// NewSchoolHandler creates a new school HTTP handler.
func NewSchoolHandler(svc *service.SchoolService, logger *slog.Logger) *SchoolHandler {
	return &SchoolHandler{service: svc, logger: logger}
}

// Create handles POST /api/v1/schools
func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.SchoolInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	school, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: school})
}

// Get handles GET /api/v1/schools/{id}
func (h *SchoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	school, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: school})
}

// List handles GET /api/v1/schools
func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	schools, total, err := h.service.List(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(schools, total, p))
}

// Update handles PUT /api/v1/schools/{id}
func (h *SchoolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.SchoolInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	school, err := h.service.Update(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: school})
}

// Delete handles DELETE /api/v1/schools/{id}
func (h *SchoolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
