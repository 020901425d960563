package document

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document tracks one ingested text document through the embedding pipeline.
// ChunksEmbedded climbs toward ChunksTotal as the worker lands chunks; the
// status flips to completed when they meet, or to failed if a chunk is parked.
type Document struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Scope          string                 `json:"scope"`
	ContentType    string                 `json:"content_type"`
	RecordID       string                 `json:"record_id,omitempty"`
	OwnerID        string                 `json:"owner_id,omitempty"`
	Title          string                 `json:"title,omitempty"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`
	Status         string                 `json:"status"`
	FailReason     string                 `json:"fail_reason,omitempty"`
	ChunksTotal    int                    `json:"chunks_total"`
	ChunksEmbedded int                    `json:"chunks_embedded"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
