package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"merchflow/backend/internal/middleware"
	"merchflow/backend/internal/vector"
)

type DocumentRepo interface {
	Count(ctx context.Context) (int, error)
}

type JobRepo interface {
	Count(ctx context.Context) (int, error)
}

type VectorStore interface {
	Count(ctx context.Context, class string) (int, error)
}

type Handler struct {
	documentRepo DocumentRepo
	jobRepo      JobRepo
	vectorStore  VectorStore
}

func NewHandler(d DocumentRepo, j JobRepo, v VectorStore) *Handler {
	return &Handler{documentRepo: d, jobRepo: j, vectorStore: v}
}

type StatsResponse struct {
	Documents  int            `json:"documents"`
	FailedJobs int            `json:"failed_jobs"`
	Chunks     map[string]int `json:"chunks"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	dCount, err := h.documentRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count documents", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count documents", http.StatusInternalServerError)
		return
	}

	jCount, err := h.jobRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	chunks := make(map[string]int, len(vector.Classes))
	for _, c := range vector.Classes {
		count, err := h.vectorStore.Count(ctx, c.Name)
		if err != nil {
			slog.ErrorContext(ctx, "failed to count chunks", "class", c.Name, "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count chunks", http.StatusInternalServerError)
			return
		}
		chunks[c.Name] = count
	}

	resp := StatsResponse{
		Documents:  dCount,
		FailedJobs: jCount,
		Chunks:     chunks,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
