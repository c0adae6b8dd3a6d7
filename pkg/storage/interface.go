package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Read when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// Storage is a flat key/value object store used for small durable records.
type Storage interface {
	// Write stores content from the reader under key, replacing any
	// previous object. size is the content length, or -1 if unknown.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read returns the content stored under key. The caller closes it.
	Read(ctx context.Context, key string) (io.ReadCloser, error)
}
