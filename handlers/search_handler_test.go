package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caseforge/caseforge/rag_service"
)

type fakeSearcher struct {
	lastK   int
	matches []rag_service.Match
	err     error
}

func (f *fakeSearcher) QueryNearest(ctx context.Context, vector []float32, k int) ([]rag_service.Match, error) {
	f.lastK = k
	return f.matches, f.err
}

func postSearch(t *testing.T, h *SearchHandler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/documents/search", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestSearchReturnsMatches(t *testing.T) {
	searcher := &fakeSearcher{
		matches: []rag_service.Match{
			{ID: "doc-1", Content: "First document.", Score: 0.91},
			{ID: "doc-2", Content: "Second document.", Score: 0.74},
		},
	}
	h := NewSearchHandler(&rag_service.FakeEmbedder{Dim: 8}, searcher, testLogger())

	rec := postSearch(t, h, searchRequest{Query: "payment disputes", MaxResults: 2})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Documents) != 2 {
		t.Fatalf("Expected two results, got count=%d len=%d", resp.Count, len(resp.Documents))
	}
	if resp.Documents[0].DocumentID != "doc-1" || resp.Documents[0].SimilarityScore != 0.91 {
		t.Errorf("Unexpected first result: %+v", resp.Documents[0])
	}
}

func TestSearchDefaultsAndCapsResultCount(t *testing.T) {
	searcher := &fakeSearcher{}
	h := NewSearchHandler(&rag_service.FakeEmbedder{Dim: 8}, searcher, testLogger())

	postSearch(t, h, searchRequest{Query: "anything"})
	if searcher.lastK != defaultSearchResults {
		t.Errorf("Expected default k=%d, got %d", defaultSearchResults, searcher.lastK)
	}

	postSearch(t, h, searchRequest{Query: "anything", MaxResults: 500})
	if searcher.lastK != maxSearchResults {
		t.Errorf("Expected capped k=%d, got %d", maxSearchResults, searcher.lastK)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	h := NewSearchHandler(&rag_service.FakeEmbedder{Dim: 8}, &fakeSearcher{}, testLogger())

	rec := postSearch(t, h, searchRequest{Query: "   "})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestSearchEmbeddingFailure(t *testing.T) {
	embedder := &rag_service.FakeEmbedder{Dim: 8, Err: errors.New("model offline")}
	h := NewSearchHandler(embedder, &fakeSearcher{}, testLogger())

	rec := postSearch(t, h, searchRequest{Query: "anything"})

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", rec.Code)
	}
}

func TestSearchStoreFailure(t *testing.T) {
	searcher := &fakeSearcher{err: rag_service.ErrStoreRead}
	h := NewSearchHandler(&rag_service.FakeEmbedder{Dim: 8}, searcher, testLogger())

	rec := postSearch(t, h, searchRequest{Query: "anything"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}
}
