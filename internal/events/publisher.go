package events

import (
	"strconv"

	"github.com/messicms/media-service/internal/types"
)

// Publisher interface for publishing media events
type Publisher interface {
	PublishMediaUploaded(userID int64, file *types.MediaFile)
	PublishThumbnailsGenerated(userID int64, file *types.MediaFile, sizes []string)
	PublishChunksCleaned(deleted int, sweptAt string)
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastToUser(userID string, event *types.Event)
	BroadcastToUsers(userIDs []string, event *types.Event)
	GetConnectedUsers() []string
	IsUserConnected(userID string) bool
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishMediaUploaded notifies the owner that an upload completed.
// Anonymous uploads have no session to notify.
func (p *EventPublisher) PublishMediaUploaded(userID int64, file *types.MediaFile) {
	if userID == 0 {
		return
	}

	target := strconv.FormatInt(userID, 10)
	if !p.hub.IsUserConnected(target) {
		return
	}

	event := types.NewEvent(types.EventMediaUploaded, &types.MediaUploadedEvent{
		FileID:   file.ID,
		Name:     file.Name,
		URL:      file.URL,
		MimeType: file.MimeType,
		FolderID: file.FolderID,
	})
	p.hub.BroadcastToUser(target, event)
}

// PublishThumbnailsGenerated notifies the owner that derivative
// generation finished for a file.
func (p *EventPublisher) PublishThumbnailsGenerated(userID int64, file *types.MediaFile, sizes []string) {
	if userID == 0 {
		return
	}

	target := strconv.FormatInt(userID, 10)
	if !p.hub.IsUserConnected(target) {
		return
	}

	event := types.NewEvent(types.EventThumbnailsGenerated, &types.ThumbnailsGeneratedEvent{
		FileID: file.ID,
		URL:    file.URL,
		Sizes:  sizes,
	})
	p.hub.BroadcastToUser(target, event)
}

// PublishChunksCleaned broadcasts a cleanup sweep summary to every
// connected session.
func (p *EventPublisher) PublishChunksCleaned(deleted int, sweptAt string) {
	event := types.NewEvent(types.EventChunksCleaned, &types.ChunksCleanedEvent{
		Deleted: deleted,
		SweptAt: sweptAt,
	})
	p.hub.BroadcastToUsers(p.hub.GetConnectedUsers(), event)
}
