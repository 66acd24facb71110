package http

import (
	"log/slog"
	"net/http"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
	"github.com/SpyBeast07/lms-system/pkg/pagination"
)

// ActivityHandler serves the activity log to school staff.
type ActivityHandler struct {
	service *service.ActivityService
	logger  *slog.Logger
}

// NewActivityHandler creates a new activity HTTP handler.
func NewActivityHandler(svc *service.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/activity
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	p := pagination.FromRequest(r)

	schoolID := actor.SchoolID
	if actor.Role == domain.RoleSuperAdmin {
		schoolID = r.URL.Query().Get("school_id")
	}

	filter := domain.ActivityLogFilter{
		UserID: r.URL.Query().Get("user_id"),
		Action: r.URL.Query().Get("action"),
	}

	entries, total, err := h.service.List(r.Context(), schoolID, filter, p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(entries, total, p))
}
