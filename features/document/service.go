package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"merchflow/backend/internal/config"
	"merchflow/backend/internal/middleware"
	"merchflow/backend/internal/retrieval"
	"merchflow/backend/internal/text"
	"merchflow/backend/internal/worker"
)

var ErrInvalidScope = errors.New("invalid document scope")

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// VectorDeleter removes a document's chunks from the vector store.
type VectorDeleter interface {
	DeleteByDocument(ctx context.Context, class, documentID string) error
}

type IngestRequest struct {
	Name        string                 `json:"name"`
	Scope       string                 `json:"scope"`
	ContentType string                 `json:"content_type"`
	RecordID    string                 `json:"record_id,omitempty"`
	OwnerID     string                 `json:"owner_id,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Content     string                 `json:"content"`
}

type Service struct {
	repo    Repository
	chunker *text.Chunker
	pub     EventPublisher
	vectors VectorDeleter
}

func NewService(repo Repository, chunker *text.Chunker, pub EventPublisher, vectors VectorDeleter) *Service {
	return &Service{repo: repo, chunker: chunker, pub: pub, vectors: vectors}
}

// Ingest persists the document, chunks its content and publishes one embed
// task per chunk. The document row is the progress ledger the worker updates
// as chunks land.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*Document, error) {
	if retrieval.ClassFor(retrieval.Scope(req.Scope)) == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, req.Scope)
	}

	doc := &Document{
		Name:        req.Name,
		Scope:       req.Scope,
		ContentType: req.ContentType,
		RecordID:    req.RecordID,
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Attributes:  req.Attributes,
		Status:      StatusPending,
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}

	chunks := s.chunker.Chunk(strings.TrimSpace(req.Content), nil)
	if err := s.repo.SetProcessing(ctx, doc.ID, len(chunks)); err != nil {
		return nil, err
	}
	doc.ChunksTotal = len(chunks)
	if len(chunks) == 0 {
		doc.Status = StatusCompleted
		return doc, nil
	}
	doc.Status = StatusProcessing

	correlationID := middleware.GetCorrelationID(ctx)
	for _, chunk := range chunks {
		payload := worker.EmbedTaskPayload{
			DocumentID:    doc.ID,
			Scope:         doc.Scope,
			ContentType:   doc.ContentType,
			RecordID:      doc.RecordID,
			OwnerID:       doc.OwnerID,
			Title:         doc.Title,
			Attributes:    doc.Attributes,
			Content:       chunk.Text,
			ChunkIndex:    chunk.Index,
			TotalChunks:   len(chunks),
			CorrelationID: correlationID,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := s.pub.Publish(config.TopicEmbed, body); err != nil {
			slog.ErrorContext(ctx, "failed to publish embed task", "error", err, "document_id", doc.ID, "chunk_index", chunk.Index)
			if markErr := s.repo.MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
				slog.ErrorContext(ctx, "failed to mark document failed", "error", markErr, "document_id", doc.ID)
			}
			return nil, err
		}
	}

	slog.InfoContext(ctx, "document queued for embedding", "document_id", doc.ID, "chunks", len(chunks), "correlationId", correlationID)
	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes the document row and its vectors. Vector cleanup runs first
// so a failure leaves the row behind for a retried delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	class := retrieval.ClassFor(retrieval.Scope(doc.Scope))
	if class != "" {
		if err := s.vectors.DeleteByDocument(ctx, class, id); err != nil {
			return fmt.Errorf("delete vectors: %w", err)
		}
	}

	return s.repo.Delete(ctx, id)
}
