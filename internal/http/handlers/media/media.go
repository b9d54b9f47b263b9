package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/messicms/media-service/internal/events"
	"github.com/messicms/media-service/internal/http/middleware"
	"github.com/messicms/media-service/internal/services/chunks"
	mediaService "github.com/messicms/media-service/internal/services/media"
	"github.com/messicms/media-service/internal/storage"
	"github.com/messicms/media-service/internal/utils/response"
)

type MediaHandlers struct {
	media  *mediaService.Service
	files  storage.FileRepository
	chunks *chunks.Store
}

type UploadFromURLRequest struct {
	URL             string `json:"url" validate:"required,url"`
	FolderID        int64  `json:"folder_id"`
	FolderSlug      string `json:"folder_slug"`
	DefaultMimeType string `json:"default_mime_type"`
}

type CreateFolderRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	ParentID int64  `json:"parent_id"`
}

// NewMediaHandlers creates a new media handlers instance
func NewMediaHandlers(media *mediaService.Service, files storage.FileRepository, chunkStore *chunks.Store) *MediaHandlers {
	return &MediaHandlers{
		media:  media,
		files:  files,
		chunks: chunkStore,
	}
}

// Upload ingests one multipart file
// @Summary Upload a media file
// @Description Upload a file into the media library, optionally into a target folder or path
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param folder_id formData int false "Target folder id"
// @Param folder_slug formData string false "Target root folder slug"
// @Param path formData string false "Target path; missing folders are created"
// @Success 200 {object} response.Response "Upload outcome envelope"
// @Failure 400 {object} response.Response "Bad request"
// @Router /media/files/upload [post]
func (h *MediaHandlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserIDFromContext(r.Context())

		if err := r.ParseMultipartForm(64 << 20); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("invalid multipart request")))
			return
		}

		var source *mediaService.UploadedSource
		if file, header, err := r.FormFile("file"); err == nil {
			file.Close()
			source = mediaService.NewSource(
				header.Filename,
				header.Header.Get("Content-Type"),
				header.Size,
				func() (io.ReadCloser, error) { return header.Open() },
			)
		}

		var folderID int64
		if v := r.FormValue("folder_id"); v != "" {
			folderID, _ = strconv.ParseInt(v, 10, 64)
		}

		var options map[string]string
		if v := r.FormValue("options"); v != "" {
			if err := json.Unmarshal([]byte(v), &options); err != nil {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
					errors.New("options must be a JSON object of strings")))
				return
			}
		}

		result := h.media.HandleUpload(r.Context(), source, folderID, r.FormValue("folder_slug"),
			mediaService.UploadOptions{
				Path:    r.FormValue("path"),
				Options: options,
				UserID:  userID,
			})

		response.WriteJSON(w, http.StatusOK, result)
	}
}

// UploadFromURL ingests a remote file
// @Summary Upload a media file from a URL
// @Description Fetch a remote file and ingest it into the media library
// @Tags media
// @Accept json
// @Produce json
// @Param request body UploadFromURLRequest true "Upload request"
// @Success 200 {object} response.Response "Upload outcome envelope"
// @Failure 400 {object} response.Response "Bad request"
// @Router /media/files/upload-from-url [post]
func (h *MediaHandlers) UploadFromURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserIDFromContext(r.Context())

		var req UploadFromURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("invalid request body")))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return
		}

		result := h.media.UploadFromURL(r.Context(), req.URL, req.FolderID, req.FolderSlug, req.DefaultMimeType, userID)
		if result == nil {
			// The URL was reachable but returned no content.
			response.WriteJSON(w, http.StatusOK, response.Success(nil, "remote file was empty"))
			return
		}

		response.WriteJSON(w, http.StatusOK, result)
	}
}

// List returns the files in a folder
// @Summary List media files
// @Description List the files stored in one folder (0 = root)
// @Tags media
// @Produce json
// @Param folder_id query int false "Folder id"
// @Success 200 {object} response.Response "File list"
// @Router /media/files [get]
func (h *MediaHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var folderID int64
		if v := r.URL.Query().Get("folder_id"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
					errors.New("folder_id must be an integer")))
				return
			}
			folderID = parsed
		}

		files, err := h.files.ListByFolder(r.Context(), folderID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
				errors.New("failed to list media files")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Success(files, ""))
	}
}

// Delete removes a file, its derivatives and its record
// @Summary Delete a media file
// @Description Delete a file together with its generated derivatives
// @Tags media
// @Produce json
// @Param id path int true "File id"
// @Success 200 {object} response.Response "Deletion confirmation"
// @Failure 404 {object} response.Response "File not found"
// @Security BearerAuth
// @Router /media/files/{id} [delete]
func (h *MediaHandlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("id must be an integer")))
			return
		}

		file, err := h.files.GetByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(
				errors.New("media file not found")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if err := h.media.DeleteFile(r.Context(), file); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
				errors.New("failed to delete media file")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Success(nil, "media file deleted"))
	}
}

// CreateFolder creates or reuses a media folder
// @Summary Create a media folder
// @Description Create a folder under a parent; an existing folder with the same slug is reused
// @Tags media
// @Accept json
// @Produce json
// @Param request body CreateFolderRequest true "Folder request"
// @Success 200 {object} response.Response "Folder id"
// @Failure 400 {object} response.Response "Bad request"
// @Router /media/folders [post]
func (h *MediaHandlers) CreateFolder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserIDFromContext(r.Context())

		var req CreateFolderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(
				errors.New("invalid request body")))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return
		}

		id, err := h.media.CreateFolder(r.Context(), req.Name, req.ParentID, userID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
				errors.New("failed to create folder")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Success(map[string]int64{"id": id}, ""))
	}
}

// ResolveURL resolves a stored path to a display URL
// @Summary Resolve a media URL
// @Description Resolve a storage-relative path to a public URL, optionally for a configured size
// @Tags media
// @Produce json
// @Param path query string true "Stored path"
// @Param size query string false "Configured size name"
// @Param relative query bool false "Return the relative path instead of an absolute URL"
// @Param default query string false "Fallback for empty paths"
// @Success 200 {object} response.Response "Resolved URL"
// @Router /media/url [get]
func (h *MediaHandlers) ResolveURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		relative, _ := strconv.ParseBool(q.Get("relative"))

		resolved := h.media.ImageURL(r.Context(), q.Get("path"), q.Get("size"), relative, q.Get("default"))

		response.WriteJSON(w, http.StatusOK, response.Success(map[string]string{"url": resolved}, ""))
	}
}

// SweepChunks triggers an immediate chunk cleanup sweep
// @Summary Sweep expired upload chunks
// @Description Delete chunk fragments older than the retention threshold
// @Tags media
// @Produce json
// @Success 200 {object} response.Response "Sweep summary"
// @Security BearerAuth
// @Router /media/chunks/sweep [post]
func (h *MediaHandlers) SweepChunks(publisher events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := h.chunks.SweepExpired(r.Context())
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if publisher != nil {
			publisher.PublishChunksCleaned(deleted, time.Now().UTC().Format(time.RFC3339))
		}

		response.WriteJSON(w, http.StatusOK, response.Success(map[string]int{"deleted": deleted}, ""))
	}
}
