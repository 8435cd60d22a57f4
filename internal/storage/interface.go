package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Download when the object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL for accessing an object
	GetURL(key string) string

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}

// GetBytes downloads an object fully into memory.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - store: storage backend.
//   - key: object key.
// Returns:
//   - []byte: object contents.
//   - error: ErrNotFound when absent, otherwise the transport error.
func GetBytes(ctx context.Context, store ObjectStorage, key string) ([]byte, error) {
	rc, err := store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// PutBytes uploads an in-memory payload as one object.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - store: storage backend.
//   - key: object key.
//   - data: payload.
//   - contentType: MIME type stored with the object.
// Returns:
//   - error: non-nil if the upload fails.
func PutBytes(ctx context.Context, store ObjectStorage, key string, data []byte, contentType string) error {
	return store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}
