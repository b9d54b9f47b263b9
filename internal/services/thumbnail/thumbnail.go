package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/settings"
	"github.com/messicms/media-service/internal/storage/backend"
)

// Generator produces the resized derivatives of a stored image and,
// when enabled, composites a watermark onto the full-size original.
type Generator struct {
	backend   backend.Backend
	settings  *settings.Store
	media     config.Media
	watermark config.Watermark
	logger    *slog.Logger
}

// NewGenerator creates a derivative generator.
func NewGenerator(b backend.Backend, st *settings.Store, cfg *config.Config, logger *slog.Logger) *Generator {
	return &Generator{
		backend:   b,
		settings:  st,
		media:     cfg.Media,
		watermark: cfg.Watermark,
		logger:    logger.With(slog.String("component", "thumbnail")),
	}
}

// Generate resizes the stored image at url to every configured size,
// writing each result to the derivative sibling path, then applies the
// watermark when enabled. Re-running overwrites the derivative files, so
// the operation is idempotent. Returns the size names generated.
func (g *Generator) Generate(ctx context.Context, url string) ([]string, error) {
	content, err := g.backend.Read(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image %s: %w", url, err)
	}

	src, err := imaging.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}

	format, err := imaging.FormatFromFilename(url)
	if err != nil {
		return nil, fmt.Errorf("unsupported image format for %s: %w", url, err)
	}

	var generated []string
	for _, spec := range ParseSizes(g.media.Sizes) {
		thumb := imaging.Fill(src, spec.Width, spec.Height, imaging.Center, imaging.Lanczos)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, thumb, format); err != nil {
			return generated, fmt.Errorf("failed to encode %s derivative of %s: %w", spec.Name, url, err)
		}

		target := DerivativePath(url, spec.Literal)
		if err := g.backend.Write(ctx, target, buf.Bytes()); err != nil {
			return generated, fmt.Errorf("failed to write derivative %s: %w", target, err)
		}

		generated = append(generated, spec.Name)

		g.logger.Debug("generated derivative",
			slog.String("source", url),
			slog.String("target", target))
	}

	if g.settings.GetBool(ctx, settings.WatermarkEnabled, g.watermark.Enabled) {
		if err := g.applyWatermark(ctx, url, src, format); err != nil {
			return generated, err
		}
	}

	return generated, nil
}

// applyWatermark composites the configured watermark onto a copy of the
// full-size source and writes it back to the original path. The
// per-size derivatives written beforehand are left untouched.
func (g *Generator) applyWatermark(ctx context.Context, url string, src image.Image, format imaging.Format) error {
	sourcePath := g.settings.Get(ctx, settings.WatermarkSource, g.watermark.Source)
	if sourcePath == "" {
		return nil
	}

	wmContent, err := g.backend.Read(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read watermark image %s: %w", sourcePath, err)
	}

	wm, err := imaging.Decode(bytes.NewReader(wmContent))
	if err != nil {
		return fmt.Errorf("failed to decode watermark image %s: %w", sourcePath, err)
	}

	// Watermark width is a percentage of the source width, rounded to
	// two decimal places before truncation; height follows the aspect
	// ratio.
	percent := g.settings.GetFloat(ctx, settings.WatermarkSize, g.watermark.Size)
	wmWidth := math.Round(float64(src.Bounds().Dx())*percent) / 100
	wm = imaging.Resize(wm, int(wmWidth), 0, imaging.Lanczos)

	opacity := g.settings.GetFloat(ctx, settings.WatermarkOpacity, g.watermark.Opacity) / 100
	position := g.settings.Get(ctx, settings.WatermarkPosition, g.watermark.Position)
	offsetX := g.settings.GetInt(ctx, settings.WatermarkPositionX, g.watermark.X)
	offsetY := g.settings.GetInt(ctx, settings.WatermarkPositionY, g.watermark.Y)

	anchor := anchorPoint(position, src.Bounds(), wm.Bounds(), offsetX, offsetY)
	composite := imaging.Overlay(imaging.Clone(src), wm, anchor, opacity)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, composite, format); err != nil {
		return fmt.Errorf("failed to encode watermarked image: %w", err)
	}

	// Overwrites the un-watermarked original in place.
	if err := g.backend.Write(ctx, url, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write watermarked image %s: %w", url, err)
	}

	return nil
}

func anchorPoint(position string, src, wm image.Rectangle, offsetX, offsetY int) image.Point {
	srcW, srcH := src.Dx(), src.Dy()
	wmW, wmH := wm.Dx(), wm.Dy()

	switch position {
	case "top-left":
		return image.Pt(offsetX, offsetY)
	case "top-right":
		return image.Pt(srcW-wmW-offsetX, offsetY)
	case "bottom-left":
		return image.Pt(offsetX, srcH-wmH-offsetY)
	case "center":
		return image.Pt((srcW-wmW)/2+offsetX, (srcH-wmH)/2+offsetY)
	default: // bottom-right
		return image.Pt(srcW-wmW-offsetX, srcH-wmH-offsetY)
	}
}
