package chat

import (
	"context"
	"log/slog"
	"strings"

	"merchflow/backend/internal/retrieval"
)

// Grounder assembles the RAG grounding context for a user message.
type Grounder interface {
	GroundingContext(ctx context.Context, customerID, message string) (string, []retrieval.Record)
}

// ProgressProvider renders a folder's task/stage summary for the prompt.
type ProgressProvider interface {
	Summary(ctx context.Context, folderID string) (string, error)
}

// ModelClient is the generative chat model.
type ModelClient interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type Request struct {
	FolderID   string `json:"folder_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	Message    string `json:"message"`
}

type Response struct {
	Reply     string             `json:"reply"`
	Grounding []retrieval.Record `json:"grounding"`
}

const systemPrompt = `You are a support assistant for a promotional products company.
Answer using the reference context and order status below when relevant.
If the context does not cover the question, say so instead of guessing.`

type Service struct {
	grounder Grounder
	progress ProgressProvider
	model    ModelClient
}

func NewService(grounder Grounder, progress ProgressProvider, model ModelClient) *Service {
	return &Service{grounder: grounder, progress: progress, model: model}
}

// Respond answers a customer message. Grounding and order-summary failures
// degrade to an ungrounded reply; only the model call itself can fail the
// request.
func (s *Service) Respond(ctx context.Context, req Request) (*Response, error) {
	grounding, records := s.grounder.GroundingContext(ctx, req.CustomerID, req.Message)

	var summary string
	if req.FolderID != "" {
		var err error
		summary, err = s.progress.Summary(ctx, req.FolderID)
		if err != nil {
			slog.WarnContext(ctx, "failed to load order summary for chat", "error", err, "folder_id", req.FolderID)
			summary = ""
		}
	}

	reply, err := s.model.Generate(ctx, buildSystemPrompt(grounding, summary), req.Message)
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []retrieval.Record{}
	}
	return &Response{Reply: reply, Grounding: records}, nil
}

func buildSystemPrompt(grounding, summary string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	if grounding != "" {
		b.WriteString("\n\nReference context:\n")
		b.WriteString(grounding)
	}
	if summary != "" {
		b.WriteString("\n\nOrder status:\n")
		b.WriteString(summary)
	}
	return b.String()
}
