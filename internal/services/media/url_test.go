package media

import (
	"context"
	"testing"
	"time"
)

// spacesBackend mimics an object-store backend serving a
// DigitalOcean Spaces bucket.
type spacesBackend struct{}

func (spacesBackend) Write(ctx context.Context, path string, content []byte) error { return nil }
func (spacesBackend) Read(ctx context.Context, path string) ([]byte, error)        { return nil, nil }
func (spacesBackend) Delete(ctx context.Context, paths ...string) error            { return nil }
func (spacesBackend) ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error) {
	return nil, nil
}
func (spacesBackend) LastModified(ctx context.Context, path string) (time.Time, error) {
	return time.Time{}, nil
}
func (spacesBackend) URL(path string) string {
	return "https://bucket.nyc3.digitaloceanspaces.com/" + path
}

func TestImageURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("empty path resolves to the default", func(t *testing.T) {
		if got := env.svc.ImageURL(ctx, "", "thumb", false, "fallback.png"); got != "fallback.png" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("no size returns the raw url", func(t *testing.T) {
		if got := env.svc.ImageURL(ctx, "a/b.jpg", "", false, ""); got != "/storage/a/b.jpg" {
			t.Errorf("got %q", got)
		}
		if got := env.svc.ImageURL(ctx, "a/b.jpg", "", true, ""); got != "a/b.jpg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("size substitution follows derivative naming", func(t *testing.T) {
		if got := env.svc.ImageURL(ctx, "a/b.jpg", "thumb", true, ""); got != "a/b-100x100.jpg" {
			t.Errorf("got %q", got)
		}
		if got := env.svc.ImageURL(ctx, "a/b.jpg", "thumb", false, ""); got != "/storage/a/b-100x100.jpg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("unknown size leaves the path alone", func(t *testing.T) {
		if got := env.svc.ImageURL(ctx, "a/b.jpg", "huge", true, ""); got != "a/b.jpg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("non-image types are never substituted", func(t *testing.T) {
		if got := env.svc.ImageURL(ctx, "a/b.pdf", "thumb", true, ""); got != "a/b.pdf" {
			t.Errorf("got %q", got)
		}
		if got := env.svc.ImageURL(ctx, "a/b.svg", "thumb", true, ""); got != "a/b.svg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("verbatim sentinel bypasses substitution", func(t *testing.T) {
		if got := env.svc.ImageURL(ctx, "__value__", "thumb", true, ""); got != "__value__" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("placeholder image is never substituted", func(t *testing.T) {
		env.svc.cfg.Media.DefaultImage = "placeholder.png"
		defer func() { env.svc.cfg.Media.DefaultImage = "" }()

		if got := env.svc.ImageURL(ctx, "placeholder.png", "thumb", false, ""); got != "/storage/placeholder.png" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("absolute urls pass through", func(t *testing.T) {
		raw := "https://example.com/a/b.jpg"
		if got := env.svc.ImageURL(ctx, raw, "", false, ""); got != raw {
			t.Errorf("got %q", got)
		}
	})
}

func TestURL_CDNSubstitution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.svc.backend = spacesBackend{}
	env.svc.cfg.Storage.Driver = "minio"

	t.Run("cdn disabled keeps the origin url", func(t *testing.T) {
		if got := env.svc.URL(ctx, "a/b.jpg"); got != "https://bucket.nyc3.digitaloceanspaces.com/a/b.jpg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("cdn enabled rewrites the spaces host", func(t *testing.T) {
		env.svc.cfg.CDN.Enabled = true
		defer func() { env.svc.cfg.CDN.Enabled = false }()

		want := "https://bucket.nyc3.cdn.digitaloceanspaces.com/a/b.jpg"
		if got := env.svc.URL(ctx, "a/b.jpg"); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("custom domain wins over host rewrite", func(t *testing.T) {
		env.svc.cfg.CDN.Enabled = true
		env.svc.cfg.CDN.CustomDomain = "https://cdn.example.com/"
		defer func() {
			env.svc.cfg.CDN.Enabled = false
			env.svc.cfg.CDN.CustomDomain = ""
		}()

		if got := env.svc.URL(ctx, "/a/b.jpg"); got != "https://cdn.example.com/a/b.jpg" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("local driver ignores cdn settings", func(t *testing.T) {
		env.svc.cfg.Storage.Driver = "local"
		env.svc.cfg.CDN.Enabled = true
		defer func() {
			env.svc.cfg.Storage.Driver = "minio"
			env.svc.cfg.CDN.Enabled = false
		}()

		if got := env.svc.URL(ctx, "a/b.jpg"); got != "https://bucket.nyc3.digitaloceanspaces.com/a/b.jpg" {
			t.Errorf("got %q", got)
		}
	})
}

func TestDefaultImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if got := env.svc.DefaultImage(ctx, true); got != "" {
		t.Errorf("Expected empty default, got %q", got)
	}

	env.svc.cfg.Media.DefaultImage = "placeholder.png"
	if got := env.svc.DefaultImage(ctx, true); got != "placeholder.png" {
		t.Errorf("got %q", got)
	}
	if got := env.svc.DefaultImage(ctx, false); got != "/storage/placeholder.png" {
		t.Errorf("got %q", got)
	}
}

func TestAllImageSizes(t *testing.T) {
	env := newTestEnv(t)

	sizes := env.svc.AllImageSizes(context.Background(), "a/b.png")
	if len(sizes) != 1 {
		t.Fatalf("Expected 1 size, got %d", len(sizes))
	}
	if sizes["thumb"] != "/storage/a/b-100x100.png" {
		t.Errorf("got %q", sizes["thumb"])
	}
}
