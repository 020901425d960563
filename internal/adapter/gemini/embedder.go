package gemini

import "errors"

// EmbeddingDim is the dimensionality the vector store expects. Searches and
// stored vectors both use it; anything else is treated as malformed.
const EmbeddingDim = 768

const embeddingModel = "gemini-embedding-001"

var (
	// ErrUnavailable means no API key or model is configured. Callers decide
	// whether that aborts the request or degrades it.
	ErrUnavailable = errors.New("gemini: model not configured")

	// ErrEmbedFailed wraps any upstream error or malformed response shape.
	ErrEmbedFailed = errors.New("gemini: embedding failed")
)
