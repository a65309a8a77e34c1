package storage

import (
	"context"
	"io"
)

// ObjectStorage is the interface archived transcripts are written
// through.
type ObjectStorage interface {
	// Upload writes an object to storage.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download reads an object back from storage.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object from storage.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureBucket creates the backing bucket if it doesn't exist.
	EnsureBucket(ctx context.Context) error
}
