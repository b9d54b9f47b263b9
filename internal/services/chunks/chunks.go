package chunks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/storage/backend"
)

// ChunkExtension marks in-flight upload fragments, distinguishing them
// from reassembled or unrelated files in the same directory.
const ChunkExtension = ".part"

// Store manages the directory of in-flight chunk fragments on a storage
// backend. The chunked-upload reassembly protocol itself is driven by an
// external assembler; the store only enumerates and expires fragments.
type Store struct {
	backend   backend.Backend
	directory string
	olderThan time.Duration
}

// ChunkFile is one fragment discovered in the chunk directory.
type ChunkFile struct {
	Path         string
	LastModified time.Time

	store *Store
}

// Delete removes the fragment through the owning store's backend.
func (c ChunkFile) Delete(ctx context.Context) error {
	return c.store.backend.Delete(ctx, c.Path)
}

// New creates a chunk store. A nil backend is a startup-time
// misconfiguration, not a per-call error.
func New(b backend.Backend, cfg config.Chunk) (*Store, error) {
	if b == nil {
		return nil, backend.ErrMisconfiguredBackend
	}

	olderThan, err := time.ParseDuration(cfg.OlderThan)
	if err != nil {
		return nil, fmt.Errorf("invalid chunk retention threshold %q: %w", cfg.OlderThan, err)
	}

	return &Store{
		backend:   b,
		directory: strings.Trim(cfg.Directory, "/"),
		olderThan: olderThan,
	}, nil
}

// Directory returns the chunk directory relative to the backend root.
func (s *Store) Directory() string {
	return s.directory
}

// ListChunkFiles lists the fragments directly under the chunk directory.
// Entries without the chunk extension are skipped, as is any entry the
// caller-supplied reject predicate returns true for (the reassembly
// protocol uses it to protect chunks it is currently consuming).
// Ordering follows the backend listing and is not guaranteed stable.
func (s *Store) ListChunkFiles(ctx context.Context, reject func(path string) bool) ([]string, error) {
	entries, err := s.backend.ListFiles(ctx, s.directory, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !strings.HasSuffix(entry, ChunkExtension) {
			continue
		}
		if reject != nil && reject(entry) {
			continue
		}
		files = append(files, entry)
	}

	return files, nil
}

// ListExpiredChunkFiles returns the fragments last modified strictly
// before now minus the retention threshold. An empty sweep returns an
// empty slice, not an error.
func (s *Store) ListExpiredChunkFiles(ctx context.Context) ([]ChunkFile, error) {
	files, err := s.ListChunkFiles(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	cutoff := time.Now().Add(-s.olderThan)

	var expired []ChunkFile
	for _, file := range files {
		modified, err := s.backend.LastModified(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to stat chunk %s: %w", file, err)
		}

		if modified.Before(cutoff) {
			expired = append(expired, ChunkFile{Path: file, LastModified: modified, store: s})
		}
	}

	return expired, nil
}

// SweepExpired deletes every expired fragment and reports how many were
// removed.
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.ListExpiredChunkFiles(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, chunk := range expired {
		if err := chunk.Delete(ctx); err != nil {
			return deleted, fmt.Errorf("failed to delete chunk %s: %w", chunk.Path, err)
		}
		deleted++
	}

	return deleted, nil
}

// LocalAbsolutePath returns the absolute filesystem path of the chunk
// directory. Only local-disk backends can answer; remote backends expose
// no filesystem path.
func (s *Store) LocalAbsolutePath() (string, error) {
	resolver, ok := s.backend.(backend.LocalPathResolver)
	if !ok {
		return "", backend.ErrUnsupportedBackend
	}

	return resolver.LocalPath(s.directory)
}
