package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// CourseHandler handles course endpoints.
type CourseHandler struct {
	service *service.CourseService
	logger  *slog.Logger
}

// NewCourseHandler creates a new course HTTP handler.
func NewCourseHandler(svc *service.CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{service: svc, logger: logger}
}

// Create handles POST /api/v1/courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var req service.CourseInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: course})
}

// Get handles GET /api/v1/courses/{id}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	course, err := h.service.Get(r.Context(), actor, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: course})
}

// List handles GET /api/v1/courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	p := pagination.FromRequest(r)

	courses, total, err := h.service.List(r.Context(), actor, r.URL.Query().Get("school_id"), p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(courses, total, p))
}

// Update handles PUT /api/v1/courses/{id}
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.CourseInput
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.service.Update(r.Context(), actor, id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: course})
}

// Delete handles DELETE /api/v1/courses/{id}
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Restore handles POST /api/v1/courses/{id}/restore
func (h *CourseHandler) Restore(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	course, err := h.service.Restore(r.Context(), actor, id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: course})
}
