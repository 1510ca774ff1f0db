package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamDatasetReload   = "stream:postcode:reload"
	StreamDatasetReloaded = "stream:postcode:reloaded"
)

// DatasetReloadEvent - request to reload the postcode dataset
type DatasetReloadEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// DatasetReloadedEvent - result of a reload
type DatasetReloadedEvent struct {
	RequestID  uuid.UUID `json:"request_id"`
	Source     string    `json:"source,omitempty"`
	ShapeCount int       `json:"shape_count"`
	Skipped    int       `json:"skipped"`
	LoadedAt   time.Time `json:"loaded_at"`
	Error      string    `json:"error,omitempty"`
}

// StreamMessage - message read from a Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
