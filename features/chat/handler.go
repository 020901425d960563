package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"merchflow/backend/internal/adapter/gemini"
	"merchflow/backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "INVALID_REQUEST", "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeError(ctx, w, "INVALID_REQUEST", "message is required", http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "chat request", "folder_id", req.FolderID, "correlationId", correlationID)

	resp, err := h.service.Respond(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "chat failed", "error", err, "correlationId", correlationID)
		if errors.Is(err, gemini.ErrUnavailable) {
			h.writeError(ctx, w, "MODEL_UNAVAILABLE", "Chat model is not configured", http.StatusServiceUnavailable)
			return
		}
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
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
