package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	uploadURL, err := store.PresignUpload(ctx, "submissions/a1/s1/answer.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://upload/submissions/a1/s1/answer.pdf", uploadURL)
	assert.True(t, store.Has("submissions/a1/s1/answer.pdf"))

	downloadURL, err := store.PresignDownload(ctx, "submissions/a1/s1/answer.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "memory://download/submissions/a1/s1/answer.pdf", downloadURL)

	require.NoError(t, store.Delete(ctx, "submissions/a1/s1/answer.pdf"))
	assert.False(t, store.Has("submissions/a1/s1/answer.pdf"))
}

func TestMemoryStorage_HasUnknownKey(t *testing.T) {
	store := NewMemoryStorage()
	assert.False(t, store.Has("never-uploaded"))
}

var _ Storage = (*MemoryStorage)(nil)
