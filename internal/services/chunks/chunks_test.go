package chunks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/storage/backend"
)

func testStore(t *testing.T, olderThan string) (*Store, string) {
	t.Helper()

	root := t.TempDir()
	b, err := backend.NewLocal(root, "/storage")
	if err != nil {
		t.Fatalf("Failed to create local backend: %v", err)
	}

	store, err := New(b, config.Chunk{Directory: "chunks", OlderThan: olderThan})
	if err != nil {
		t.Fatalf("Failed to create chunk store: %v", err)
	}

	return store, filepath.Join(root, "chunks")
}

func writeChunk(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, []byte("fragment"), 0o644); err != nil {
		t.Fatal(err)
	}

	if age > 0 {
		old := time.Now().Add(-age)
		if err := os.Chtimes(full, old, old); err != nil {
			t.Fatal(err)
		}
	}

	return full
}

func TestNew_NilBackend(t *testing.T) {
	_, err := New(nil, config.Chunk{Directory: "chunks", OlderThan: "3h"})
	if !errors.Is(err, backend.ErrMisconfiguredBackend) {
		t.Fatalf("Expected ErrMisconfiguredBackend, got %v", err)
	}
}

func TestNew_BadRetention(t *testing.T) {
	root := t.TempDir()
	b, err := backend.NewLocal(root, "/storage")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := New(b, config.Chunk{Directory: "chunks", OlderThan: "sometime"}); err == nil {
		t.Fatal("Expected an error for an unparsable retention threshold")
	}
}

func TestListChunkFiles(t *testing.T) {
	store, dir := testStore(t, "3h")
	ctx := context.Background()

	writeChunk(t, dir, "upload-1.part", 0)
	writeChunk(t, dir, "upload-2.part", 0)
	writeChunk(t, dir, "assembled.mp4", 0)
	writeChunk(t, dir, "notes.txt", 0)

	files, err := store.ListChunkFiles(ctx, nil)
	if err != nil {
		t.Fatalf("ListChunkFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Expected only the 2 .part fragments, got %v", files)
	}
	for _, f := range files {
		if !strings.HasSuffix(f, ChunkExtension) {
			t.Errorf("Non-fragment %s in listing", f)
		}
	}
}

func TestListChunkFiles_RejectPredicate(t *testing.T) {
	store, dir := testStore(t, "3h")
	ctx := context.Background()

	writeChunk(t, dir, "keep.part", 0)
	writeChunk(t, dir, "in-use.part", 0)

	files, err := store.ListChunkFiles(ctx, func(path string) bool {
		return strings.Contains(path, "in-use")
	})
	if err != nil {
		t.Fatalf("ListChunkFiles failed: %v", err)
	}

	if len(files) != 1 || !strings.HasSuffix(files[0], "keep.part") {
		t.Fatalf("Expected only keep.part, got %v", files)
	}
}

func TestListChunkFiles_EmptyDirectory(t *testing.T) {
	store, _ := testStore(t, "3h")

	files, err := store.ListChunkFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("A missing chunk directory must not be an error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("Expected no files, got %v", files)
	}
}

func TestListExpiredChunkFiles(t *testing.T) {
	store, dir := testStore(t, "1h")
	ctx := context.Background()

	writeChunk(t, dir, "old.part", 2*time.Hour)
	writeChunk(t, dir, "fresh.part", 0)

	expired, err := store.ListExpiredChunkFiles(ctx)
	if err != nil {
		t.Fatalf("ListExpiredChunkFiles failed: %v", err)
	}

	if len(expired) != 1 {
		t.Fatalf("Expected 1 expired fragment, got %d", len(expired))
	}
	if !strings.HasSuffix(expired[0].Path, "old.part") {
		t.Errorf("Expected old.part, got %s", expired[0].Path)
	}
	if expired[0].LastModified.IsZero() {
		t.Error("Expected the fragment's modification time to be recorded")
	}
}

func TestSweepExpired(t *testing.T) {
	store, dir := testStore(t, "1h")
	ctx := context.Background()

	oldPath := writeChunk(t, dir, "old-1.part", 3*time.Hour)
	writeChunk(t, dir, "old-2.part", 2*time.Hour)
	freshPath := writeChunk(t, dir, "fresh.part", 0)
	keptPath := writeChunk(t, dir, "assembled.mp4", 5*time.Hour)

	deleted, err := store.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deletions, got %d", deleted)
	}

	if _, err := os.Stat(oldPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected the expired fragment to be deleted")
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Error("The fresh fragment must survive the sweep")
	}
	if _, err := os.Stat(keptPath); err != nil {
		t.Error("Files without the chunk extension must survive the sweep")
	}
}

func TestSweepExpired_Empty(t *testing.T) {
	store, _ := testStore(t, "1h")

	deleted, err := store.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("An empty sweep must not be an error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected 0 deletions, got %d", deleted)
	}
}

func TestChunkFileDelete(t *testing.T) {
	store, dir := testStore(t, "1h")
	ctx := context.Background()

	full := writeChunk(t, dir, "gone.part", 2*time.Hour)

	expired, err := store.ListExpiredChunkFiles(ctx)
	if err != nil || len(expired) != 1 {
		t.Fatalf("Expected 1 expired fragment: %v", err)
	}

	if err := expired[0].Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(full); !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected the fragment to be removed")
	}
}

func TestLocalAbsolutePath(t *testing.T) {
	store, dir := testStore(t, "1h")

	path, err := store.LocalAbsolutePath()
	if err != nil {
		t.Fatalf("LocalAbsolutePath failed: %v", err)
	}
	if path != dir {
		t.Errorf("Expected %s, got %s", dir, path)
	}
}

// remoteBackend has no filesystem paths to resolve.
type remoteBackend struct{}

func (remoteBackend) Write(ctx context.Context, path string, content []byte) error { return nil }
func (remoteBackend) Read(ctx context.Context, path string) ([]byte, error)        { return nil, nil }
func (remoteBackend) Delete(ctx context.Context, paths ...string) error            { return nil }
func (remoteBackend) ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return nil, nil
}
func (remoteBackend) LastModified(ctx context.Context, path string) (time.Time, error) {
	return time.Time{}, nil
}
func (remoteBackend) URL(path string) string { return "https://example.com/" + path }

func TestLocalAbsolutePath_RemoteBackend(t *testing.T) {
	store, err := New(remoteBackend{}, config.Chunk{Directory: "chunks", OlderThan: "1h"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.LocalAbsolutePath(); !errors.Is(err, backend.ErrUnsupportedBackend) {
		t.Fatalf("Expected ErrUnsupportedBackend, got %v", err)
	}
}
