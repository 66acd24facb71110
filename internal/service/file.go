package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/SpyBeast07/lms-system/internal/storage"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

// FileService issues presigned URLs for ad-hoc files outside the material and
// submission flows.
type FileService struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewFileService creates a new file service.
func NewFileService(store storage.Storage, logger *slog.Logger) *FileService {
	return &FileService{storage: store, logger: logger}
}

// UploadURL issues a presigned upload URL. The key is namespaced under the
// actor's school with a random segment so uploads never collide.
func (s *FileService) UploadURL(ctx context.Context, actor Actor, filename string) (*UploadTicket, error) {
	filename = path.Base(filename)
	if filename == "" || filename == "." || filename == "/" {
		return nil, apperrors.InvalidInput("filename is required")
	}

	scope := actor.SchoolID
	if scope == "" {
		scope = "shared"
	}
	key := fmt.Sprintf("files/%s/%s/%s", scope, uuid.New().String(), filename)

	url, err := s.storage.PresignUpload(ctx, key, uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &UploadTicket{Key: key, URL: url}, nil
}

// DownloadURL issues a presigned download URL for a stored object.
func (s *FileService) DownloadURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", apperrors.InvalidInput("key is required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", apperrors.InvalidInput("invalid key")
	}

	url, err := s.storage.PresignDownload(ctx, key, downloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	return url, nil
}
