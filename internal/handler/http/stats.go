package http

import (
	"log/slog"
	"net/http"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
)

// StatsHandler serves school dashboard stats.
type StatsHandler struct {
	service *service.StatsService
	logger  *slog.Logger
}

// NewStatsHandler creates a new stats HTTP handler.
func NewStatsHandler(svc *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{service: svc, logger: logger}
}

// SchoolStats handles GET /api/v1/stats
func (h *StatsHandler) SchoolStats(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	stats, err := h.service.SchoolStats(r.Context(), actor, r.URL.Query().Get("school_id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
