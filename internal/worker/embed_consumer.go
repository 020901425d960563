package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"merchflow/backend/features/job"
	"merchflow/backend/internal/adapter/gemini"
	"merchflow/backend/internal/middleware"
	"merchflow/backend/internal/retrieval"
)

// EmbedConsumer consumes per-chunk embedding tasks: embed the chunk text,
// store the vector, and report progress on the source document. Transient
// failures are retried by NSQ; a chunk that keeps failing (or an unconfigured
// embedding model) lands in the failed-jobs table instead of looping forever.
type EmbedConsumer struct {
	embedder    Embedder
	store       VectorStore
	tracker     DocumentTracker
	jobs        job.Repository
	maxAttempts uint16
}

func NewEmbedConsumer(e Embedder, s VectorStore, t DocumentTracker, j job.Repository, maxAttempts uint16) *EmbedConsumer {
	return &EmbedConsumer{
		embedder:    e,
		store:       s,
		tracker:     t,
		jobs:        j,
		maxAttempts: maxAttempts,
	}
}

func (h *EmbedConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload EmbedTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	class := retrieval.ClassFor(retrieval.Scope(payload.Scope))
	if class == "" || payload.DocumentID == "" {
		slog.ErrorContext(ctx, "dropping embed task with bad scope or document", "scope", payload.Scope, "document_id", payload.DocumentID)
		return nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	vector, err := h.embedder.Embed(embedCtx, payload.Content)
	if err != nil {
		// An unconfigured model won't fix itself by retrying.
		if errors.Is(err, gemini.ErrUnavailable) || m.Attempts >= h.maxAttempts {
			h.park(ctx, m.Body, payload, err)
			return nil
		}
		slog.ErrorContext(ctx, "embedding failed, will retry", "error", err, "document_id", payload.DocumentID, "attempts", m.Attempts)
		return err
	}

	// Whitespace-only chunk content embeds to nothing; count it done rather
	// than storing a record with no vector.
	if len(vector) > 0 {
		chunk := Chunk{
			Class:       class,
			DocumentID:  payload.DocumentID,
			RecordID:    payload.RecordID,
			OwnerID:     payload.OwnerID,
			ContentType: payload.ContentType,
			Title:       payload.Title,
			Content:     payload.Content,
			ChunkIndex:  payload.ChunkIndex,
			TotalChunks: payload.TotalChunks,
			Attributes:  payload.Attributes,
			Vector:      vector,
		}

		if err := h.store.StoreChunk(embedCtx, chunk); err != nil {
			if m.Attempts >= h.maxAttempts {
				h.park(ctx, m.Body, payload, err)
				return nil
			}
			slog.ErrorContext(ctx, "store chunk failed, will retry", "error", err, "document_id", payload.DocumentID)
			return err
		}
	}

	done, err := h.tracker.MarkChunkEmbedded(ctx, payload.DocumentID)
	if err != nil {
		slog.WarnContext(ctx, "failed to update document progress", "error", err, "document_id", payload.DocumentID)
	} else if done {
		slog.InfoContext(ctx, "document ingestion completed", "document_id", payload.DocumentID)
	}

	slog.InfoContext(ctx, "chunk stored", "document_id", payload.DocumentID, "chunk_index", payload.ChunkIndex)
	return nil
}

// park saves the task as a failed job for manual retry and marks the
// document failed.
func (h *EmbedConsumer) park(ctx context.Context, body []byte, payload EmbedTaskPayload, cause error) {
	slog.ErrorContext(ctx, "parking embed task", "document_id", payload.DocumentID, "chunk_index", payload.ChunkIndex, "error", cause)

	failed := &job.Job{
		DocumentID: payload.DocumentID,
		Handler:    "embed-worker",
		Payload:    json.RawMessage(body),
		Error:      cause.Error(),
	}
	if err := h.jobs.Save(ctx, failed); err != nil {
		slog.ErrorContext(ctx, "failed to save failed job", "error", err)
	}

	if err := h.tracker.MarkFailed(ctx, payload.DocumentID, cause.Error()); err != nil {
		slog.WarnContext(ctx, "failed to mark document failed", "error", err, "document_id", payload.DocumentID)
	}
}
