package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/events"
	"github.com/messicms/media-service/internal/services/thumbnail"
	"github.com/messicms/media-service/internal/settings"
	"github.com/messicms/media-service/internal/storage"
	"github.com/messicms/media-service/internal/storage/backend"
	"github.com/messicms/media-service/internal/types"
)

// ThumbnailGenerator produces the resized derivatives of a stored image
// and returns the size names generated.
type ThumbnailGenerator interface {
	Generate(ctx context.Context, url string) ([]string, error)
}

// Service is the media ingestion pipeline: it turns an incoming file
// source into a durable MediaFile record plus derivatives, with the
// backend write always preceding record persistence.
type Service struct {
	cfg        *config.Config
	backend    backend.Backend
	files      storage.FileRepository
	folders    storage.FolderRepository
	thumbnails ThumbnailGenerator
	settings   *settings.Store
	publisher  events.Publisher
	logger     *slog.Logger
}

// UploadOptions carries the per-upload parameters beside the file source.
type UploadOptions struct {
	// Path is an optional slash-delimited target path; every segment
	// except the final file name is resolved or created as a folder.
	Path string
	// Options is an opaque key-value bag stored with the record.
	Options map[string]string
	// UserID is the owner; zero means anonymous.
	UserID int64
	// SkipValidation bypasses the type and size checks for trusted
	// internal callers.
	SkipValidation bool
}

// NewService creates the ingestion pipeline. publisher may be nil when
// no event hub is attached (batch jobs).
func NewService(
	cfg *config.Config,
	b backend.Backend,
	files storage.FileRepository,
	folders storage.FolderRepository,
	thumbnails ThumbnailGenerator,
	st *settings.Store,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		backend:    b,
		files:      files,
		folders:    folders,
		thumbnails: thumbnails,
		settings:   st,
		publisher:  publisher,
		logger:     logger.With(slog.String("component", "media")),
	}
}

// HandleUpload runs the full ingestion pipeline for one file source and
// returns the outcome envelope. Failures never leave a record behind for
// an unwritten file: persistence only runs after the backend write
// succeeded. The one accepted inconsistency is the reverse - a persisted
// record whose derivative generation failed stays committed, and the
// missing derivatives are a degraded state that a re-run repairs.
func (s *Service) HandleUpload(
	ctx context.Context,
	fileUpload *UploadedSource,
	folderID int64,
	folderSlug string,
	opts UploadOptions,
) *Result {
	if opts.Path != "" {
		id, err := s.HandleTargetFolder(ctx, folderID, opts.Path, opts.UserID)
		if err != nil {
			return errorResult(err.Error())
		}
		folderID = id
	}

	if fileUpload == nil {
		return errorResult(ErrNoFile.Error())
	}

	fileExt := strings.ToLower(fileExtension(fileUpload.FileName))

	if !opts.SkipValidation {
		if !s.extensionAllowed(fileExt) {
			return errorResult(ErrUnsupportedType.Error())
		}

		maxSize := s.MaxUploadSize()
		if maxSize > 0 && fileUpload.Size > maxSize {
			return errorResult(fmt.Sprintf("%s (limit %s)",
				ErrFileTooLarge.Error(), humanize.IBytes(uint64(maxSize))))
		}
	}

	if folderID == 0 && folderSlug != "" {
		id, err := s.CreateFolder(ctx, folderSlug, 0, opts.UserID)
		if err != nil {
			return errorResult(err.Error())
		}
		folderID = id
	}

	name, err := s.files.CreateName(ctx, fileBaseName(fileUpload.FileName), folderID)
	if err != nil {
		return errorResult(err.Error())
	}

	folderPath, err := s.folders.GetFullPath(ctx, folderID)
	if err != nil {
		return errorResult(err.Error())
	}

	// Slug uniqueness consults the physical directory, not only the
	// record store: orphaned files can exist without records.
	fileName, err := s.createFileSlug(ctx, name, fileExt, folderPath)
	if err != nil {
		return errorResult(err.Error())
	}

	filePath := fileName
	if folderPath != "" {
		filePath = folderPath + "/" + fileName
	}

	content, err := fileUpload.Content()
	if err != nil {
		return errorResult(err.Error())
	}

	if err := s.backend.Write(ctx, filePath, content); err != nil {
		return errorResult(fmt.Sprintf("failed to store file: %v", err))
	}

	// Second type check, on the persisted bytes. The extension check
	// above is spoofable; this one is not.
	mimeType := DetectMimeType(content)
	if !opts.SkipValidation && mimeType == "" {
		return errorResult(ErrUnsupportedType.Error())
	}
	if mimeType == "" {
		mimeType = fileUpload.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
	}

	file := &types.MediaFile{
		Name:     name,
		URL:      filePath,
		Size:     int64(len(content)),
		MimeType: mimeType,
		FolderID: folderID,
		UserID:   opts.UserID,
		Options:  opts.Options,
	}

	file, err = s.files.CreateOrUpdate(ctx, file)
	if err != nil {
		return errorResult(err.Error())
	}

	if s.publisher != nil {
		s.publisher.PublishMediaUploaded(file.UserID, file)
	}

	if CanGenerateThumbnails(file.MimeType) {
		sizes, err := s.thumbnails.Generate(ctx, file.URL)
		if err != nil {
			// The base record stays committed; missing derivatives
			// are repaired by re-running generation.
			s.logger.Error("derivative generation failed",
				slog.String("url", file.URL),
				slog.String("error", err.Error()))
			return errorResult(err.Error())
		}

		if s.publisher != nil {
			s.publisher.PublishThumbnailsGenerated(file.UserID, file, sizes)
		}
	}

	return successResult(s.fileResource(ctx, file))
}

// UploadFromURL fetches remote content into a temporary file and runs it
// through HandleUpload. The temporary file is removed on every exit
// path. A reachable URL with an empty body returns nil - there is
// nothing to upload, which is distinct from a fetch failure.
func (s *Service) UploadFromURL(ctx context.Context, rawURL string, folderID int64, folderSlug, defaultMimeType string, userID int64) *Result {
	if rawURL == "" {
		return errorResult("url is not valid")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errorResult(err.Error())
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errorResult(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return errorResult(fmt.Sprintf("failed to fetch %s: %s", rawURL, resp.Status))
	}

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(err.Error())
	}

	if len(contents) == 0 {
		return nil
	}

	baseName := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		baseName = path.Base(parsed.Path)
	}

	mimeType := MimeTypeByExtension(baseName)
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	fileName := fileBaseName(baseName)
	fileExt := fileExtension(baseName)
	if fileExt == "" {
		fileExt = ExtensionByMimeType(mimeType)
	}
	if fileExt != "" {
		fileName += "." + fileExt
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String())
	if err := os.WriteFile(tmpPath, contents, 0o600); err != nil {
		return errorResult(err.Error())
	}
	defer os.Remove(tmpPath)

	src, err := NewSourceFromPath(tmpPath, fileName, mimeType)
	if err != nil {
		return errorResult(err.Error())
	}

	return s.HandleUpload(ctx, src, folderID, folderSlug, UploadOptions{UserID: userID})
}

// UploadFromPath ingests an existing local file; the source file itself
// is left in place.
func (s *Service) UploadFromPath(ctx context.Context, filePath string, folderID int64, folderSlug, defaultMimeType string, userID int64) *Result {
	if filePath == "" {
		return errorResult("path is not valid")
	}

	mimeType := MimeTypeByExtension(filePath)
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	fileName := fileBaseName(path.Base(filepath.ToSlash(filePath)))
	fileExt := fileExtension(filePath)
	if fileExt == "" {
		fileExt = ExtensionByMimeType(mimeType)
	}
	if fileExt != "" {
		fileName += "." + fileExt
	}

	src, err := NewSourceFromPath(filePath, fileName, mimeType)
	if err != nil {
		return errorResult(err.Error())
	}

	return s.HandleUpload(ctx, src, folderID, folderSlug, UploadOptions{UserID: userID})
}

// HandleTargetFolder resolves a slash-delimited file path to its target
// folder, creating every missing segment. The final segment is the file
// name and never becomes a folder.
func (s *Service) HandleTargetFolder(ctx context.Context, folderID int64, filePath string, userID int64) (int64, error) {
	if !strings.Contains(filePath, "/") {
		return folderID, nil
	}

	segments := strings.Split(filePath, "/")
	segments = segments[:len(segments)-1]

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		id, err := s.CreateFolder(ctx, segment, folderID, userID)
		if err != nil {
			return 0, err
		}
		folderID = id
	}

	return folderID, nil
}

// CreateFolder finds or creates a folder with the given slug under
// parentID and returns its id.
func (s *Service) CreateFolder(ctx context.Context, folderSlug string, parentID, userID int64) (int64, error) {
	folder, err := s.folders.GetFirstBy(ctx, map[string]interface{}{
		"slug":      Slugify(folderSlug),
		"parent_id": parentID,
	})
	if err == nil {
		return folder.ID, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	name, err := s.folders.CreateName(ctx, folderSlug, parentID)
	if err != nil {
		return 0, err
	}

	slug, err := s.folders.CreateSlug(ctx, Slugify(folderSlug), parentID)
	if err != nil {
		return 0, err
	}

	folder, err = s.folders.CreateOrUpdate(ctx, &types.MediaFolder{
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
		UserID:   userID,
	})
	if err != nil {
		return 0, err
	}

	return folder.ID, nil
}

// DeleteFile removes a file's derivatives, its stored content and its
// record, in that order.
func (s *Service) DeleteFile(ctx context.Context, file *types.MediaFile) error {
	if err := s.DeleteThumbnails(ctx, file); err != nil {
		return err
	}

	if err := s.backend.Delete(ctx, file.URL); err != nil {
		return err
	}

	return s.files.Delete(ctx, file.ID)
}

// DeleteThumbnails removes every configured derivative of a file.
func (s *Service) DeleteThumbnails(ctx context.Context, file *types.MediaFile) error {
	if !CanGenerateThumbnails(file.MimeType) {
		return nil
	}

	var paths []string
	for _, spec := range thumbnail.ParseSizes(s.cfg.Media.Sizes) {
		paths = append(paths, thumbnail.DerivativePath(file.URL, spec.Literal))
	}
	if len(paths) == 0 {
		return nil
	}

	return s.backend.Delete(ctx, paths...)
}

// RegenerateThumbnails re-runs derivative generation for a persisted
// file. Safe to call on files with missing derivatives.
func (s *Service) RegenerateThumbnails(ctx context.Context, file *types.MediaFile) error {
	if !CanGenerateThumbnails(file.MimeType) {
		return nil
	}

	_, err := s.thumbnails.Generate(ctx, file.URL)
	return err
}

func (s *Service) extensionAllowed(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range strings.Split(s.cfg.Media.AllowedMimeTypes, ",") {
		if strings.EqualFold(strings.TrimSpace(allowed), ext) {
			return true
		}
	}
	return false
}

// createFileSlug picks a file name unique within the physical target
// directory, probing numeric suffixes against the backend listing.
func (s *Service) createFileSlug(ctx context.Context, name, ext, folderPath string) (string, error) {
	existing, err := s.backend.ListFiles(ctx, folderPath, false)
	if err != nil {
		return "", err
	}

	taken := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		taken[strings.ToLower(path.Base(f))] = struct{}{}
	}

	base := Slugify(name)
	candidate := base
	for i := 1; ; i++ {
		fileName := candidate
		if ext != "" {
			fileName = candidate + "." + ext
		}
		if _, ok := taken[strings.ToLower(fileName)]; !ok {
			return fileName, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Service) fileResource(ctx context.Context, file *types.MediaFile) *types.FileResource {
	resource := &types.FileResource{
		ID:       file.ID,
		Name:     file.Name,
		URL:      file.URL,
		FullURL:  s.URL(ctx, file.URL),
		Size:     file.Size,
		MimeType: file.MimeType,
		FolderID: file.FolderID,
		Options:  file.Options,
	}

	if CanGenerateThumbnails(file.MimeType) {
		resource.Thumbnails = s.AllImageSizes(ctx, file.URL)
	}

	return resource
}
