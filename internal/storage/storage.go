// Package storage abstracts the object store holding material and submission
// files. Implementations are injected into the services that need them; there
// is no package-level client.
package storage

import (
	"context"
	"time"
)

// Storage generates presigned URLs for direct client uploads and downloads.
type Storage interface {
	// PresignUpload returns a URL the client can PUT the object to.
	PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error)

	// PresignDownload returns a URL the client can GET the object from.
	PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Delete removes the object.
	Delete(ctx context.Context, key string) error
}
