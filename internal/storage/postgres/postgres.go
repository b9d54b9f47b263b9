package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/storage"
	"github.com/messicms/media-service/internal/types"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS media_folders (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL,
			parent_id INTEGER NOT NULL DEFAULT 0,
			user_id INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (parent_id, slug)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS media_files (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			url TEXT UNIQUE NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			mime_type VARCHAR(255) NOT NULL DEFAULT '',
			folder_id INTEGER NOT NULL DEFAULT 0,
			user_id INTEGER NOT NULL DEFAULT 0,
			options JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_media_files_folder ON media_files (folder_id);`,
	}

	for _, query := range queries {
		if _, err := p.Db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// wrapConstraintError maps postgres unique violations to storage.ErrConflict
func wrapConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", storage.ErrConflict, pqErr.Detail)
	}
	return err
}

// buildWhere turns a filter map into a WHERE clause with ordered
// placeholders. Keys are sorted so the generated SQL is deterministic.
func buildWhere(filter map[string]interface{}) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conditions []string
	var args []interface{}
	for i, k := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, filter[k])
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (p *Postgres) CreateOrUpdate(ctx context.Context, file *types.MediaFile) (*types.MediaFile, error) {
	options, err := json.Marshal(file.Options)
	if err != nil {
		return nil, err
	}
	if file.Options == nil {
		options = []byte("{}")
	}

	if file.ID == 0 {
		err = p.Db.QueryRowContext(ctx, `
			INSERT INTO media_files (name, url, size, mime_type, folder_id, user_id, options)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at`,
			file.Name, file.URL, file.Size, file.MimeType, file.FolderID, file.UserID, options,
		).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)
		if err != nil {
			return nil, wrapConstraintError(err)
		}
		return file, nil
	}

	_, err = p.Db.ExecContext(ctx, `
		UPDATE media_files
		SET name = $1, url = $2, size = $3, mime_type = $4, folder_id = $5, user_id = $6,
		    options = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $8`,
		file.Name, file.URL, file.Size, file.MimeType, file.FolderID, file.UserID, options, file.ID)
	if err != nil {
		return nil, wrapConstraintError(err)
	}

	return file, nil
}

func (p *Postgres) GetByID(ctx context.Context, id int64) (*types.MediaFile, error) {
	return p.GetFirstBy(ctx, map[string]interface{}{"id": id})
}

func (p *Postgres) GetFirstBy(ctx context.Context, filter map[string]interface{}) (*types.MediaFile, error) {
	where, args := buildWhere(filter)

	row := p.Db.QueryRowContext(ctx,
		`SELECT id, name, url, size, mime_type, folder_id, user_id, options, created_at, updated_at
		 FROM media_files`+where+` ORDER BY id LIMIT 1`, args...)

	return scanFile(row)
}

func (p *Postgres) ListByFolder(ctx context.Context, folderID int64) ([]types.MediaFile, error) {
	rows, err := p.Db.QueryContext(ctx,
		`SELECT id, name, url, size, mime_type, folder_id, user_id, options, created_at, updated_at
		 FROM media_files WHERE folder_id = $1 ORDER BY name`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []types.MediaFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}

	return files, rows.Err()
}

func (p *Postgres) CreateName(ctx context.Context, name string, folderID int64) (string, error) {
	candidate := name
	for i := 1; ; i++ {
		_, err := p.GetFirstBy(ctx, map[string]interface{}{
			"name":      candidate,
			"folder_id": folderID,
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

func (p *Postgres) Delete(ctx context.Context, id int64) error {
	_, err := p.Db.ExecContext(ctx, `DELETE FROM media_files WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row rowScanner) (*types.MediaFile, error) {
	var file types.MediaFile
	var options []byte

	err := row.Scan(&file.ID, &file.Name, &file.URL, &file.Size, &file.MimeType,
		&file.FolderID, &file.UserID, &options, &file.CreatedAt, &file.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(options) > 0 {
		if err := json.Unmarshal(options, &file.Options); err != nil {
			return nil, err
		}
	}

	return &file, nil
}
