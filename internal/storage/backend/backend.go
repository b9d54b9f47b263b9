package backend

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupportedBackend is returned when a local-only operation is
	// invoked on a remote backend.
	ErrUnsupportedBackend = errors.New("operation requires a local-disk backend")

	// ErrMisconfiguredBackend is returned at construction time when no
	// usable backend was configured.
	ErrMisconfiguredBackend = errors.New("storage backend is not configured")
)

// Backend is a path-addressable object store. Paths are always
// slash-delimited and relative to the backend root, on every driver.
type Backend interface {
	Write(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, paths ...string) error
	ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error)
	LastModified(ctx context.Context, path string) (time.Time, error)
	URL(path string) string
}

// LocalPathResolver is the capability interface implemented by backends
// that can map a stored path to an absolute filesystem path. Remote
// backends do not implement it; callers assert for it and treat a failed
// assertion as ErrUnsupportedBackend.
type LocalPathResolver interface {
	LocalPath(path string) (string, error)
}
