package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/messicms/media-service/internal/storage"
	"github.com/messicms/media-service/internal/types"
)

// Folders exposes the folder repository over the same connection pool.
type Folders struct {
	Db *sql.DB
}

func (p *Postgres) Folders() *Folders {
	return &Folders{Db: p.Db}
}

func (f *Folders) CreateOrUpdate(ctx context.Context, folder *types.MediaFolder) (*types.MediaFolder, error) {
	if folder.ID == 0 {
		err := f.Db.QueryRowContext(ctx, `
			INSERT INTO media_folders (name, slug, parent_id, user_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			folder.Name, folder.Slug, folder.ParentID, folder.UserID,
		).Scan(&folder.ID, &folder.CreatedAt)
		if err != nil {
			return nil, wrapConstraintError(err)
		}
		return folder, nil
	}

	_, err := f.Db.ExecContext(ctx, `
		UPDATE media_folders SET name = $1, slug = $2, parent_id = $3, user_id = $4
		WHERE id = $5`,
		folder.Name, folder.Slug, folder.ParentID, folder.UserID, folder.ID)
	if err != nil {
		return nil, wrapConstraintError(err)
	}

	return folder, nil
}

func (f *Folders) GetFirstBy(ctx context.Context, filter map[string]interface{}) (*types.MediaFolder, error) {
	where, args := buildWhere(filter)

	var folder types.MediaFolder
	err := f.Db.QueryRowContext(ctx,
		`SELECT id, name, slug, parent_id, user_id, created_at
		 FROM media_folders`+where+` ORDER BY id LIMIT 1`, args...,
	).Scan(&folder.ID, &folder.Name, &folder.Slug, &folder.ParentID, &folder.UserID, &folder.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &folder, nil
}

// GetFullPath walks the parent chain up to the root. Folders are only
// created with an already-resolved parent, so the chain is acyclic; the
// depth guard is against corrupted data.
func (f *Folders) GetFullPath(ctx context.Context, id int64) (string, error) {
	var segments []string

	for depth := 0; id != 0; depth++ {
		if depth > 64 {
			return "", fmt.Errorf("folder %d: parent chain too deep", id)
		}

		folder, err := f.GetFirstBy(ctx, map[string]interface{}{"id": id})
		if errors.Is(err, storage.ErrNotFound) {
			break
		}
		if err != nil {
			return "", err
		}

		segments = append([]string{folder.Slug}, segments...)
		id = folder.ParentID
	}

	return strings.Join(segments, "/"), nil
}

func (f *Folders) CreateName(ctx context.Context, name string, parentID int64) (string, error) {
	candidate := name
	for i := 1; ; i++ {
		_, err := f.GetFirstBy(ctx, map[string]interface{}{
			"name":      candidate,
			"parent_id": parentID,
		})
		if errors.Is(err, storage.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
}

func (f *Folders) CreateSlug(ctx context.Context, slug string, parentID int64) (string, error) {
	candidate := slug
	for i := 1; ; i++ {
		_, err := f.GetFirstBy(ctx, map[string]interface{}{
			"slug":      candidate,
			"parent_id": parentID,
		})
		if errors.Is(err, storage.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
}
