// Package storage contains file/object storage abstractions used for uploaded
// documents and generated reports. Backends are S3-compatible (MinIO) or the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"archivesys/internal/config"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("storage: object not found")

// ErrPresignUnsupported is returned by backends that cannot hand out direct URLs.
// Callers fall back to streaming the object through the API.
var ErrPresignUnsupported = errors.New("storage: presigned urls not supported")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the file store interface shared by documents and reports.
// Methods use context and streaming readers.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New builds the backend selected by cfg.Driver.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinIO(cfg.MinIO)
	case "local":
		return NewLocal(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
