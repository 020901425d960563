package worker

// EmbedTaskPayload is one chunk's embedding task as published to NSQ by the
// document feature and consumed by the EmbedConsumer.
type EmbedTaskPayload struct {
	DocumentID  string                 `json:"document_id"`
	Scope       string                 `json:"scope"`
	ContentType string                 `json:"content_type"`
	RecordID    string                 `json:"record_id,omitempty"`
	OwnerID     string                 `json:"owner_id,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`

	// Chunk Data
	Content     string `json:"content"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`

	CorrelationID string `json:"correlation_id"`
}
