package backend

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Local stores files under a root directory on the local disk and serves
// them from a public base URL.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a local-disk backend rooted at root.
func NewLocal(root, baseURL string) (*Local, error) {
	if root == "" {
		return nil, ErrMisconfiguredBackend
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	return &Local{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (l *Local) Write(ctx context.Context, p string, content []byte) error {
	full := l.fullPath(p)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	return os.WriteFile(full, content, 0o644)
}

func (l *Local) Read(ctx context.Context, p string) ([]byte, error) {
	return os.ReadFile(l.fullPath(p))
}

func (l *Local) Delete(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		err := os.Remove(l.fullPath(p))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (l *Local) ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error) {
	base := l.fullPath(dir)

	if !recursive {
		entries, err := os.ReadDir(base)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		var files []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			files = append(files, path.Join(dir, entry.Name()))
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (l *Local) LastModified(ctx context.Context, p string) (time.Time, error) {
	info, err := os.Stat(l.fullPath(p))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (l *Local) URL(p string) string {
	return l.baseURL + "/" + strings.TrimPrefix(p, "/")
}

// LocalPath implements the LocalPathResolver capability.
func (l *Local) LocalPath(p string) (string, error) {
	return l.fullPath(p), nil
}

func (l *Local) fullPath(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(p))
}
