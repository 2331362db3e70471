package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type documentCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler reports service readiness and corpus size.
type HealthHandler struct {
	store  documentCounter
	logger *slog.Logger
}

func NewHealthHandler(store documentCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

// Health handles GET /health. The vector store is the only hard
// dependency probed; the LLM endpoints are external and only observed
// per request.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := h.store.Count(ctx)
	if err != nil {
		h.logger.Error("Health check failed, vector store unreachable",
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"error":  "vector store unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"documents_indexed": count,
	})
}
