package vault

import "time"

// Event actions published to the media topic.
const (
	EventMediaIngested = "media.ingested"
	EventMediaDeleted  = "media.deleted"
)

// MediaEvent is emitted whenever the catalog changes.
type MediaEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename,omitempty"`
	Type      MediaType `json:"type,omitempty"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
