package rag_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// querier is the subset of pgxpool.Pool the store uses, so tests can
// substitute a fake connection.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Match is one nearest-neighbor result, scored by cosine similarity.
type Match struct {
	ID      string
	Content string
	Score   float64
}

// VectorStore persists documents and their embeddings in Postgres via
// pgvector. All vectors share the dimensionality fixed at construction.
type VectorStore struct {
	db         querier
	dimensions int
	logger     *slog.Logger
}

func NewVectorStore(db querier, dimensions int, logger *slog.Logger) *VectorStore {
	return &VectorStore{
		db:         db,
		dimensions: dimensions,
		logger:     logger,
	}
}

// Init attaches to the backing table, creating it if missing. Safe to
// call any number of times at startup: it never drops or duplicates
// existing state.
func (s *VectorStore) Init(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS case_documents (
            id        text PRIMARY KEY,
            content   text NOT NULL,
            embedding vector(%d) NOT NULL
        )
    `, s.dimensions)

	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("%w: failed to create documents table: %v", ErrStoreWrite, err)
	}

	createIndexSQL := `
        CREATE INDEX IF NOT EXISTS idx_case_documents_embedding
        ON case_documents
        USING ivfflat (embedding vector_cosine_ops)
        WITH (lists = 100)
    `
	if _, err := s.db.Exec(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("%w: failed to create vector index: %v", ErrStoreWrite, err)
	}

	s.logger.Info("Vector store initialized",
		slog.Int("dimensions", s.dimensions))
	return nil
}

// Insert adds one document. Re-inserting an existing id overwrites its
// content and embedding: ingestion rescans the corpus directory, so
// idempotent overwrite is what keeps re-runs safe.
func (s *VectorStore) Insert(ctx context.Context, id, content string, vector []float32) error {
	if len(vector) != s.dimensions {
		return fmt.Errorf("%w: expected %d dimensions, got %d", ErrDimensionMismatch, s.dimensions, len(vector))
	}

	query := `
        INSERT INTO case_documents (id, content, embedding)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE
        SET content = EXCLUDED.content, embedding = EXCLUDED.embedding
    `
	_, err := s.db.Exec(ctx, query, id, content, pgvector.NewVector(vector))
	if err != nil {
		return fmt.Errorf("%w: failed to store document %s: %v", ErrStoreWrite, id, err)
	}

	s.logger.Debug("Stored document",
		slog.String("document_id", id),
		slog.Int("content_length", len(content)))
	return nil
}

// QueryNearest returns up to k documents closest to the query vector,
// highest similarity first. An empty store yields an empty slice, not
// an error.
func (s *VectorStore) QueryNearest(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrDimensionMismatch, s.dimensions, len(vector))
	}
	if k < 1 {
		k = 1
	}

	query := `
        SELECT id, content, 1 - (embedding <=> $1) AS score
        FROM case_documents
        ORDER BY embedding <=> $1
        LIMIT $2
    `
	rows, err := s.db.Query(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute similarity query: %v", ErrStoreRead, err)
	}
	defer rows.Close()

	matches := make([]Match, 0, k)
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Content, &m.Score); err != nil {
			return nil, fmt.Errorf("%w: failed to scan result row: %v", ErrStoreRead, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read result rows: %v", ErrStoreRead, err)
	}

	return matches, nil
}

// Count reports how many documents the store holds.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM case_documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count documents: %v", ErrStoreRead, err)
	}
	return count, nil
}
