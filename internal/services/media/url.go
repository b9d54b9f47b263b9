package media

import (
	"context"
	"strings"

	"github.com/messicms/media-service/internal/services/thumbnail"
	"github.com/messicms/media-service/internal/settings"
)

// sizeVerbatim is the sentinel a template passes when the stored value
// must be returned untouched instead of size-substituted.
const sizeVerbatim = "__value__"

// urlDefaultImage marks a path that must resolve to the caller-supplied
// default.
const urlDefaultImage = "__image__"

// ImageURL resolves a stored path to a display URL for the requested
// size. Derivative substitution only happens when the size exists in
// configuration and the file's type is derivative-eligible; the
// substituted path follows the generator's naming byte-for-byte.
func (s *Service) ImageURL(ctx context.Context, storedPath, size string, relative bool, defaultValue string) string {
	if storedPath == "" {
		return defaultValue
	}

	if size == "" || storedPath == sizeVerbatim {
		if relative {
			return storedPath
		}
		return s.URL(ctx, storedPath)
	}

	// Placeholder images are never size-substituted.
	if storedPath == s.DefaultImage(ctx, true) {
		return s.URL(ctx, storedPath)
	}

	if literal, ok := s.cfg.Media.Sizes[size]; ok && CanGenerateThumbnails(MimeTypeByExtension(storedPath)) {
		storedPath = thumbnail.DerivativePath(storedPath, literal)
	}

	if relative {
		return storedPath
	}

	if storedPath == urlDefaultImage {
		return s.URL(ctx, defaultValue)
	}

	return s.URL(ctx, storedPath)
}

// URL turns a storage-relative path into an absolute public URL,
// applying the CDN substitution rules for object-store backends.
func (s *Service) URL(ctx context.Context, path string) string {
	if strings.Contains(path, "https://") || strings.Contains(path, "http://") {
		return path
	}

	if s.cfg.Storage.Driver == "minio" && s.settings.GetBool(ctx, settings.CDNEnabled, s.cfg.CDN.Enabled) {
		customDomain := s.settings.Get(ctx, settings.CDNCustomDomain, s.cfg.CDN.CustomDomain)
		if customDomain != "" {
			return strings.TrimSuffix(customDomain, "/") + "/" + strings.TrimPrefix(path, "/")
		}

		return strings.Replace(s.backend.URL(path),
			".digitaloceanspaces.com", ".cdn.digitaloceanspaces.com", 1)
	}

	return s.backend.URL(path)
}

// DefaultImage returns the configured placeholder image, preferring the
// runtime setting over static config.
func (s *Service) DefaultImage(ctx context.Context, relative bool) string {
	defaultImage := s.cfg.Media.DefaultImage
	if override := s.settings.Get(ctx, settings.DefaultPlaceholderImage, ""); override != "" {
		defaultImage = override
	}

	if relative || defaultImage == "" {
		return defaultImage
	}

	return s.URL(ctx, defaultImage)
}

// AllImageSizes maps every configured size name to its resolved URL.
func (s *Service) AllImageSizes(ctx context.Context, storedPath string) map[string]string {
	sizes := make(map[string]string, len(s.cfg.Media.Sizes))
	for name := range s.cfg.Media.Sizes {
		sizes[name] = s.ImageURL(ctx, storedPath, name, false, "")
	}
	return sizes
}

// SizeString returns the configured "WxH" literal for a size name.
func (s *Service) SizeString(name string) string {
	return s.cfg.Media.Sizes[name]
}
