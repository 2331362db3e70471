package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caseforge/caseforge/rag_service"
)

const (
	defaultSearchResults = 5
	maxSearchResults     = 20
)

type nearestSearcher interface {
	QueryNearest(ctx context.Context, vector []float32, k int) ([]rag_service.Match, error)
}

// SearchHandler exposes nearest-neighbor lookup over the indexed corpus.
type SearchHandler struct {
	embedder rag_service.Embedder
	store    nearestSearcher
	logger   *slog.Logger
}

func NewSearchHandler(embedder rag_service.Embedder, store nearestSearcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{embedder: embedder, store: store, logger: logger}
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResult struct {
	DocumentID      string  `json:"document_id"`
	Content         string  `json:"content"`
	SimilarityScore float64 `json:"similarity_score"`
}

type searchResponse struct {
	Documents []searchResult `json:"documents"`
	Count     int            `json:"count"`
}

// Search handles POST /documents/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, "Query must not be empty", http.StatusBadRequest)
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultSearchResults
	}
	if req.MaxResults > maxSearchResults {
		req.MaxResults = maxSearchResults
	}

	vector, err := h.embedder.EmbedText(r.Context(), req.Query)
	if err != nil {
		h.logger.Error("Failed to embed search query",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to embed query", http.StatusBadGateway)
		return
	}

	matches, err := h.store.QueryNearest(r.Context(), vector, req.MaxResults)
	if err != nil {
		h.logger.Error("Vector search failed",
			slog.String("error", err.Error()))
		writeJSONError(w, "Search failed", http.StatusInternalServerError)
		return
	}

	results := make([]searchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, searchResult{
			DocumentID:      m.ID,
			Content:         m.Content,
			SimilarityScore: m.Score,
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Documents: results,
		Count:     len(results),
	})
}
