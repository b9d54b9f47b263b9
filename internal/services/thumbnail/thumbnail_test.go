package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/settings"
	"github.com/messicms/media-service/internal/storage/backend"
)

func testGenerator(t *testing.T, cfg *config.Config) (*Generator, string) {
	t.Helper()

	root := t.TempDir()
	b, err := backend.NewLocal(root, "/storage")
	if err != nil {
		t.Fatalf("Failed to create local backend: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGenerator(b, settings.NewStore(nil), cfg, logger), root
}

func encodePNG(t *testing.T, width, height int, fill color.Color) []byte {
	t.Helper()

	img := imaging.New(width, height, fill)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestGenerate(t *testing.T) {
	cfg := &config.Config{
		Media: config.Media{
			Sizes: map[string]string{"thumb": "50x50", "wide": "80x40"},
		},
	}
	gen, root := testGenerator(t, cfg)
	ctx := context.Background()

	source := encodePNG(t, 200, 100, color.NRGBA{R: 200, A: 255})
	if err := os.WriteFile(filepath.Join(root, "photo.png"), source, 0o644); err != nil {
		t.Fatal(err)
	}

	generated, err := gen.Generate(ctx, "photo.png")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(generated) != 2 {
		t.Fatalf("Expected 2 generated sizes, got %v", generated)
	}

	for _, name := range []string{"photo-50x50.png", "photo-80x40.png"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			t.Fatalf("Expected derivative %s: %v", name, err)
		}

		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Derivative %s does not decode: %v", name, err)
		}
		if name == "photo-50x50.png" && (img.Bounds().Dx() != 50 || img.Bounds().Dy() != 50) {
			t.Errorf("Expected 50x50, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
		}
	}

	// The original stays untouched without a watermark.
	after, err := os.ReadFile(filepath.Join(root, "photo.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(after, source) {
		t.Error("The original must not change when no watermark is configured")
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	cfg := &config.Config{
		Media: config.Media{Sizes: map[string]string{"thumb": "50x50"}},
	}
	gen, root := testGenerator(t, cfg)
	ctx := context.Background()

	source := encodePNG(t, 120, 120, color.NRGBA{G: 180, A: 255})
	if err := os.WriteFile(filepath.Join(root, "img.png"), source, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := gen.Generate(ctx, "img.png"); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(root, "img-50x50.png"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := gen.Generate(ctx, "img.png"); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(root, "img-50x50.png"))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("Re-running generation must produce identical derivatives")
	}
}

func TestGenerate_MissingSource(t *testing.T) {
	cfg := &config.Config{
		Media: config.Media{Sizes: map[string]string{"thumb": "50x50"}},
	}
	gen, _ := testGenerator(t, cfg)

	if _, err := gen.Generate(context.Background(), "does-not-exist.png"); err == nil {
		t.Fatal("Expected an error for a missing source image")
	}
}

func TestGenerate_Watermark(t *testing.T) {
	cfg := &config.Config{
		Media: config.Media{Sizes: map[string]string{"thumb": "50x50"}},
		Watermark: config.Watermark{
			Enabled:  true,
			Source:   "watermark.png",
			Size:     25,
			Opacity:  70,
			Position: "bottom-right",
			X:        5,
			Y:        5,
		},
	}
	gen, root := testGenerator(t, cfg)
	ctx := context.Background()

	source := encodePNG(t, 200, 200, color.NRGBA{B: 220, A: 255})
	if err := os.WriteFile(filepath.Join(root, "photo.png"), source, 0o644); err != nil {
		t.Fatal(err)
	}
	wm := encodePNG(t, 40, 40, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if err := os.WriteFile(filepath.Join(root, "watermark.png"), wm, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := gen.Generate(ctx, "photo.png"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// The watermark overwrites the original in place.
	after, err := os.ReadFile(filepath.Join(root, "photo.png"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(after, source) {
		t.Error("Expected the original to be overwritten with the watermarked version")
	}

	img, err := imaging.Decode(bytes.NewReader(after))
	if err != nil {
		t.Fatalf("Watermarked image does not decode: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 200 {
		t.Errorf("Watermarking must not resize the original, got %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy())
	}

	// The derivatives were generated from the un-watermarked source
	// before compositing.
	if _, err := os.Stat(filepath.Join(root, "photo-50x50.png")); err != nil {
		t.Errorf("Expected the derivative to exist: %v", err)
	}
}

func TestGenerate_WatermarkMissingSourceImage(t *testing.T) {
	cfg := &config.Config{
		Media: config.Media{Sizes: map[string]string{"thumb": "50x50"}},
		Watermark: config.Watermark{
			Enabled: true,
			Source:  "missing-watermark.png",
			Size:    10,
			Opacity: 70,
		},
	}
	gen, root := testGenerator(t, cfg)
	ctx := context.Background()

	source := encodePNG(t, 100, 100, color.NRGBA{A: 255})
	if err := os.WriteFile(filepath.Join(root, "photo.png"), source, 0o644); err != nil {
		t.Fatal(err)
	}

	generated, err := gen.Generate(ctx, "photo.png")
	if err == nil {
		t.Fatal("Expected an error when the watermark image is missing")
	}
	// The sizes generated before the failure are still reported.
	if len(generated) != 1 {
		t.Errorf("Expected 1 generated size before the failure, got %v", generated)
	}
}

func TestAnchorPoint(t *testing.T) {
	src := image.Rect(0, 0, 200, 100)
	wm := image.Rect(0, 0, 20, 10)

	tests := []struct {
		position string
		wantX    int
		wantY    int
	}{
		{"top-left", 5, 5},
		{"top-right", 175, 5},
		{"bottom-left", 5, 85},
		{"center", 95, 50},
		{"bottom-right", 175, 85},
		{"unknown", 175, 85},
	}

	for _, tt := range tests {
		got := anchorPoint(tt.position, src, wm, 5, 5)
		if got.X != tt.wantX || got.Y != tt.wantY {
			t.Errorf("anchorPoint(%q) = (%d,%d), want (%d,%d)",
				tt.position, got.X, got.Y, tt.wantX, tt.wantY)
		}
	}
}
