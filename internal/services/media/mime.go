package media

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// mimeByExtension is the extension-to-MIME lookup used before any bytes
// exist (pre-write checks, URL uploads). Kept explicit so resolution
// does not depend on the host's mime.types database.
var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mpeg": "video/mpeg",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"pdf":  "application/pdf",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"zip":  "application/zip",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// MimeTypeByExtension infers a MIME type from a path's extension.
// Returns an empty string when the extension is unknown.
func MimeTypeByExtension(path string) string {
	ext := strings.ToLower(fileExtension(path))
	if ext == "" {
		return ""
	}

	if mimeType, ok := mimeByExtension[ext]; ok {
		return mimeType
	}

	if mimeType := mime.TypeByExtension("." + ext); mimeType != "" {
		if base, _, ok := strings.Cut(mimeType, ";"); ok {
			return strings.TrimSpace(base)
		}
		return mimeType
	}

	return ""
}

// ExtensionByMimeType picks a file extension for a MIME type, used when
// a URL-sourced upload has no extension of its own.
func ExtensionByMimeType(mimeType string) string {
	if mimeType == "" {
		return ""
	}

	for ext, mt := range mimeByExtension {
		if mt == mimeType {
			// Prefer the canonical spelling for jpeg.
			if mt == "image/jpeg" {
				return "jpg"
			}
			return ext
		}
	}

	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}

	return ""
}

// DetectMimeType sniffs the MIME type of persisted bytes. An empty
// result means the content is undetectable; the pipeline rejects such
// uploads unless validation is skipped.
func DetectMimeType(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	detected := mimetype.Detect(content).String()
	if base, _, ok := strings.Cut(detected, ";"); ok {
		detected = strings.TrimSpace(base)
	}

	if detected == "" || detected == "application/octet-stream" {
		return ""
	}

	return detected
}

// IsImage reports whether a MIME type is any image type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// CanGenerateThumbnails reports whether a MIME type is eligible for
// derivative generation: raster images only, vectors and icons are not
// resized.
func CanGenerateThumbnails(mimeType string) bool {
	return IsImage(mimeType) &&
		mimeType != "image/svg+xml" &&
		mimeType != "image/x-icon"
}
