package http

import (
	"log/slog"
	"net/http"

	"github.com/SpyBeast07/lms-system/internal/service"
	"github.com/SpyBeast07/lms-system/pkg/httputil"
)

// FileHandler handles presigned URL endpoints for ad-hoc files.
type FileHandler struct {
	service *service.FileService
	logger  *slog.Logger
}

// NewFileHandler creates a new file HTTP handler.
func NewFileHandler(svc *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{service: svc, logger: logger}
}

// UploadURL handles POST /api/v1/files/upload-url
func (h *FileHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	var req UploadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.service.UploadURL(r.Context(), actor, req.Filename)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ticket})
}

// DownloadURL handles GET /api/v1/files/download-url?key=
func (h *FileHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")

	url, err := h.service.DownloadURL(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"key": key, "url": url}})
}
