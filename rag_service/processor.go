package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// inserter is the slice of the vector store the processor needs.
type inserter interface {
	Insert(ctx context.Context, id, content string, vector []float32) error
}

// DocumentMetadata describes an ingested document for API responses.
type DocumentMetadata struct {
	ContentType     string          `json:"content_type,omitempty"`
	WordCount       int             `json:"word_count"`
	ContentPreview  string          `json:"content_preview"`
	ProcessingStats ProcessingStats `json:"processing_stats"`
}

type ProcessingStats struct {
	ExtractionTime float64 `json:"extraction_time"`
	EmbeddingTime  float64 `json:"embedding_time"`
}

// IngestResult is returned for every processed document.
type IngestResult struct {
	DocumentID string           `json:"document_id"`
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Error      string           `json:"error,omitempty"`
	Metadata   DocumentMetadata `json:"metadata"`
}

// Processor turns raw document bytes into stored, embedded documents.
type Processor struct {
	store     inserter
	embedder  Embedder
	extractor *DocumentExtractor
	logger    *slog.Logger
}

func NewProcessor(store inserter, embedder Embedder, logger *slog.Logger) *Processor {
	return &Processor{
		store:     store,
		embedder:  embedder,
		extractor: NewDocumentExtractor(logger),
		logger:    logger,
	}
}

// ProcessDocument extracts text, embeds it and stores the result under
// the given id. Ids are caller-chosen: uploads use fresh uuids, corpus
// files use their filename so a rescan overwrites instead of
// duplicating.
func (p *Processor) ProcessDocument(ctx context.Context, id, filename string, content []byte) (*IngestResult, error) {
	metadata := DocumentMetadata{}

	extractStart := time.Now()
	text, err := p.extractor.ExtractText(filename, content)
	if err != nil {
		p.logger.Error("Text extraction failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return &IngestResult{
			DocumentID: id,
			Status:     "failed",
			Message:    "Failed to extract text from document",
			Error:      err.Error(),
			Metadata:   metadata,
		}, err
	}
	metadata.ProcessingStats.ExtractionTime = time.Since(extractStart).Seconds()
	metadata.WordCount = len(strings.Fields(text))
	if len(text) > 250 {
		metadata.ContentPreview = text[:250] + "..."
	} else {
		metadata.ContentPreview = text
	}

	embedStart := time.Now()
	vector, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding for %s: %w", filename, err)
	}
	metadata.ProcessingStats.EmbeddingTime = time.Since(embedStart).Seconds()

	if err := p.store.Insert(ctx, id, text, vector); err != nil {
		return nil, err
	}

	p.logger.Info("Document processed",
		slog.String("document_id", id),
		slog.String("filename", filename),
		slog.Int("word_count", metadata.WordCount))

	return &IngestResult{
		DocumentID: id,
		Status:     "indexed",
		Message:    "Document processed successfully",
		Metadata:   metadata,
	}, nil
}
