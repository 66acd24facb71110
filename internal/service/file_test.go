package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SpyBeast07/lms-system/internal/storage"
	apperrors "github.com/SpyBeast07/lms-system/pkg/errors"
)

func newTestFileService() (*FileService, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	return NewFileService(store, newTestLogger()), store
}

func TestFileUploadURL_ScopedToSchool(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestFileService()

	ticket, err := svc.UploadURL(ctx, principalActor("school-1"), "syllabus.pdf")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.Key, "files/school-1/"))
	assert.True(t, strings.HasSuffix(ticket.Key, "/syllabus.pdf"))
	assert.Equal(t, "memory://upload/"+ticket.Key, ticket.URL)
	assert.True(t, store.Has(ticket.Key))
}

func TestFileUploadURL_SuperAdminUsesSharedScope(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService()

	ticket, err := svc.UploadURL(ctx, superAdminActor(), "policy.pdf")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.Key, "files/shared/"))
}

func TestFileUploadURL_StripsDirectories(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService()

	ticket, err := svc.UploadURL(ctx, principalActor("school-1"), "../../etc/passwd")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ticket.Key, "/passwd"))
	assert.NotContains(t, ticket.Key, "..")
}

func TestFileUploadURL_EmptyFilename(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService()

	_, err := svc.UploadURL(ctx, principalActor("school-1"), "")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}

func TestFileDownloadURL_Success(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService()

	url, err := svc.DownloadURL(ctx, "materials/course-1/notes.pdf")

	require.NoError(t, err)
	assert.Equal(t, "memory://download/materials/course-1/notes.pdf", url)
}

func TestFileDownloadURL_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestFileService()

	for _, key := range []string{"", "  ", "/etc/passwd", "files/../secrets"} {
		_, err := svc.DownloadURL(ctx, key)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr, "key %q", key)
		assert.Equal(t, "INVALID_INPUT", appErr.Code)
	}
}
