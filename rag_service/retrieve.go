package rag_service

import (
	"context"
	"fmt"
	"log/slog"
)

// nearestQuerier is the slice of the vector store the retriever needs.
type nearestQuerier interface {
	QueryNearest(ctx context.Context, vector []float32, k int) ([]Match, error)
}

// Retriever turns a natural-language intent into the single best
// reference document. Deterministic for a fixed store state and
// embedding model.
type Retriever struct {
	embedder Embedder
	store    nearestQuerier
	logger   *slog.Logger
}

func NewRetriever(embedder Embedder, store nearestQuerier, logger *slog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// RetrieveReference embeds the intent and returns the nearest stored
// document's text. ok is false when the store has nothing to offer;
// that is a signal, not an error, and the caller decides whether an
// empty reference is fatal.
func (r *Retriever) RetrieveReference(ctx context.Context, intent string) (string, bool, error) {
	vector, err := r.embedder.EmbedText(ctx, intent)
	if err != nil {
		return "", false, fmt.Errorf("failed to embed retrieval intent: %w", err)
	}

	matches, err := r.store.QueryNearest(ctx, vector, 1)
	if err != nil {
		return "", false, err
	}

	if len(matches) == 0 {
		r.logger.Warn("No reference document found for intent",
			slog.String("intent", intent))
		return "", false, nil
	}

	r.logger.Debug("Retrieved reference document",
		slog.String("document_id", matches[0].ID),
		slog.Float64("score", matches[0].Score))
	return matches[0].Content, true, nil
}
