package types

import "time"

// MediaFile represents a stored media file record in the database.
// URL is the storage-relative path and is stable once written; a record
// is only ever persisted after the backend write succeeded.
type MediaFile struct {
	ID        int64             `json:"id" db:"id"`
	Name      string            `json:"name" db:"name"`
	URL       string            `json:"url" db:"url"`
	Size      int64             `json:"size" db:"size"`
	MimeType  string            `json:"mime_type" db:"mime_type"`
	FolderID  int64             `json:"folder_id" db:"folder_id"`
	UserID    int64             `json:"user_id" db:"user_id"`
	Options   map[string]string `json:"options" db:"options"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// MediaFolder represents a folder in the media library tree.
// ParentID 0 means the folder sits at the root.
type MediaFolder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	ParentID  int64     `json:"parent_id" db:"parent_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FileResource is the read-only view of a MediaFile returned inside
// success envelopes.
type FileResource struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	URL        string            `json:"url"`
	FullURL    string            `json:"full_url"`
	Size       int64             `json:"size"`
	MimeType   string            `json:"mime_type"`
	FolderID   int64             `json:"folder_id"`
	Options    map[string]string `json:"options,omitempty"`
	Thumbnails map[string]string `json:"thumbnails,omitempty"`
}
