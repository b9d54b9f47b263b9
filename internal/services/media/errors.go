package media

import "errors"

var (
	// ErrNoFile means no file source was supplied to the pipeline.
	ErrNoFile = errors.New("no file was supplied")

	// ErrUnsupportedType means the extension or the detected MIME type
	// of the persisted bytes was rejected.
	ErrUnsupportedType = errors.New("file type is not allowed")

	// ErrFileTooLarge means the upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")
)
