package media

import (
	"io"
	"os"
	"path"
	"strings"
)

// UploadedSource is one incoming file handed to the pipeline: a
// multipart upload, a downloaded remote file, or an existing local path.
type UploadedSource struct {
	// FileName is the original client-side file name, extension included.
	FileName string
	// MimeType is the declared type; it is advisory only, the pipeline
	// re-detects the type from the persisted bytes.
	MimeType string
	// Size in bytes, used by the pre-write limit check.
	Size int64

	open func() (io.ReadCloser, error)
}

// NewSource wraps an arbitrary byte source, e.g. a multipart file header.
func NewSource(fileName, mimeType string, size int64, open func() (io.ReadCloser, error)) *UploadedSource {
	return &UploadedSource{
		FileName: fileName,
		MimeType: mimeType,
		Size:     size,
		open:     open,
	}
}

// NewSourceFromPath wraps an existing local file. fileName overrides the
// name recorded for the upload; empty means the path's base name.
func NewSourceFromPath(filePath, fileName, mimeType string) (*UploadedSource, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}

	if fileName == "" {
		fileName = path.Base(strings.ReplaceAll(filePath, "\\", "/"))
	}

	return &UploadedSource{
		FileName: fileName,
		MimeType: mimeType,
		Size:     info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(filePath)
		},
	}, nil
}

// Content reads the full file content into memory.
func (s *UploadedSource) Content() ([]byte, error) {
	r, err := s.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// fileBaseName returns a file name without its extension.
func fileBaseName(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

// fileExtension returns the extension without the leading dot.
func fileExtension(fileName string) string {
	return strings.TrimPrefix(path.Ext(fileName), ".")
}
