package types

import "time"

// EventType represents the type of real-time event
type EventType string

const (
	EventMediaUploaded       EventType = "media.uploaded"
	EventThumbnailsGenerated EventType = "media.thumbnails_generated"
	EventChunksCleaned       EventType = "chunks.cleaned"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// MediaUploadedEvent is sent to the owner when an upload completes
type MediaUploadedEvent struct {
	FileID   int64  `json:"file_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FolderID int64  `json:"folder_id"`
}

// ThumbnailsGeneratedEvent is sent after derivative generation finishes
type ThumbnailsGeneratedEvent struct {
	FileID int64    `json:"file_id"`
	URL    string   `json:"url"`
	Sizes  []string `json:"sizes"`
}

// ChunksCleanedEvent is broadcast after a chunk cleanup sweep
type ChunksCleanedEvent struct {
	Deleted int    `json:"deleted"`
	SweptAt string `json:"swept_at"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
