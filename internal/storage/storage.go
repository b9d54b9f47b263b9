package storage

import (
	"context"
	"errors"

	"github.com/messicms/media-service/internal/types"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write loses the race against the
// store's uniqueness constraints. The pre-insert collision checks are
// best-effort; the constraint is the final arbiter.
var ErrConflict = errors.New("record conflicts with an existing one")

// FileRepository is the record store for media files.
type FileRepository interface {
	CreateOrUpdate(ctx context.Context, file *types.MediaFile) (*types.MediaFile, error)
	GetByID(ctx context.Context, id int64) (*types.MediaFile, error)
	GetFirstBy(ctx context.Context, filter map[string]interface{}) (*types.MediaFile, error)
	ListByFolder(ctx context.Context, folderID int64) ([]types.MediaFile, error)
	// CreateName returns a display name unique within the folder,
	// probing numeric suffixes until no record collides.
	CreateName(ctx context.Context, name string, folderID int64) (string, error)
	Delete(ctx context.Context, id int64) error
}

// FolderRepository is the record store for media folders.
type FolderRepository interface {
	CreateOrUpdate(ctx context.Context, folder *types.MediaFolder) (*types.MediaFolder, error)
	GetFirstBy(ctx context.Context, filter map[string]interface{}) (*types.MediaFolder, error)
	// GetFullPath returns the slash-delimited slug path from the root
	// to the folder; empty string for the root itself.
	GetFullPath(ctx context.Context, id int64) (string, error)
	CreateName(ctx context.Context, name string, parentID int64) (string, error)
	// CreateSlug returns a slug unique among the folder's siblings.
	CreateSlug(ctx context.Context, slug string, parentID int64) (string, error)
}
