package worker

import (
	"context"
)

// Chunk is one embedded document chunk ready for the vector store.
type Chunk struct {
	Class       string
	DocumentID  string
	RecordID    string
	OwnerID     string
	ContentType string
	Title       string
	Content     string
	ChunkIndex  int
	TotalChunks int
	Attributes  map[string]interface{}
	Vector      []float32
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	StoreChunk(ctx context.Context, chunk Chunk) error
}

// DocumentTracker reports per-chunk progress back to the document row.
type DocumentTracker interface {
	MarkChunkEmbedded(ctx context.Context, documentID string) (done bool, err error)
	MarkFailed(ctx context.Context, documentID, reason string) error
}
