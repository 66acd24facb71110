package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
	"github.com/SpyBeast07/lms-system/pkg/middleware"
)

// ContentTypeJSON rejects write requests that do not declare a JSON body.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSubscription blocks school-scoped writes when the caller's school
// subscription has lapsed. Super admins carry no school and pass through.
func RequireSubscription(schools *service.SchoolService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			schoolID := middleware.SchoolIDFromContext(r.Context())
			if schoolID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if err := schools.CheckSubscription(r.Context(), schoolID); err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
