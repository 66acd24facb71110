package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
)

// EnrollmentHandler handles teacher assignment and student enrollment
// endpoints, nested under a course.
type EnrollmentHandler struct {
	service *service.EnrollmentService
	logger  *slog.Logger
}

// NewEnrollmentHandler creates a new enrollment HTTP handler.
func NewEnrollmentHandler(svc *service.EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, logger: logger}
}

// MemberRequest names the user being assigned or enrolled.
type MemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// AssignTeacher handles POST /api/v1/courses/{id}/teachers
func (h *EnrollmentHandler) AssignTeacher(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req MemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := h.service.AssignTeacher(r.Context(), actor, courseID.String(), req.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: assignment})
}

// UnassignTeacher handles DELETE /api/v1/courses/{id}/teachers/{userID}
func (h *EnrollmentHandler) UnassignTeacher(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	if err := h.service.UnassignTeacher(r.Context(), actor, courseID.String(), userID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "unassigned"}})
}

// ListTeachers handles GET /api/v1/courses/{id}/teachers
func (h *EnrollmentHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	teachers, err := h.service.ListTeachers(r.Context(), actor, courseID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: teachers})
}

// EnrollStudent handles POST /api/v1/courses/{id}/students
func (h *EnrollmentHandler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req MemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	enrollment, err := h.service.EnrollStudent(r.Context(), actor, courseID.String(), req.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: enrollment})
}

// UnenrollStudent handles DELETE /api/v1/courses/{id}/students/{userID}
func (h *EnrollmentHandler) UnenrollStudent(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	if err := h.service.UnenrollStudent(r.Context(), actor, courseID.String(), userID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "unenrolled"}})
}

// ListStudents handles GET /api/v1/courses/{id}/students
func (h *EnrollmentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	courseID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	students, err := h.service.ListStudents(r.Context(), actor, courseID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: students})
}
