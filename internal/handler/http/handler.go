package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SpyBeast07/lms-system/internal/domain"
	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
	"github.com/SpyBeast07/lms-system/pkg/middleware"
	"github.com/SpyBeast07/lms-system/pkg/validator"
)

// actorFromContext builds the service-layer actor from the claims the auth
// middleware put in context.
func actorFromContext(ctx context.Context) service.Actor {
	return service.Actor{
		ID:       middleware.UserIDFromContext(ctx),
		Role:     domain.Role(middleware.RoleFromContext(ctx)),
		BaseRole: domain.Role(middleware.BaseRoleFromContext(ctx)),
		SchoolID: middleware.SchoolIDFromContext(ctx),
	}
}

// decodeAndValidate decodes the JSON body into dst and validates it, writing
// the error response itself. Returns false when the caller should stop.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}

	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}

	return true
}
