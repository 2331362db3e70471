package rag_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Embedder maps text to a fixed-dimension vector. Implementations must
// be deterministic for identical input and safe for concurrent use.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// Dimensions reports the vector length every embedding has.
	Dimensions() int
}

const openAIEmbeddingURL = "https://api.openai.com/v1/embeddings"

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIEmbedder generates embeddings via the OpenAI embeddings API.
type OpenAIEmbedder struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	dimensions int
}

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     openAIEmbeddingURL,
		apiKey:     apiKey,
		model:      model,
		// text-embedding-ada-002 output size; every stored vector must
		// share this length.
		dimensions: 1536,
	}
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrEmbedding)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: input text is empty", ErrEmbedding)
	}

	requestBody := embeddingRequest{
		Input: text,
		Model: e.model,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal embedding request: %v", ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create HTTP request: %v", ErrEmbedding, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send HTTP request: %v", ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: embedding service returned status %d: %s", ErrEmbedding, resp.StatusCode, string(body))
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode embedding response: %v", ErrEmbedding, err)
	}

	if len(embeddingResp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding data received", ErrEmbedding)
	}

	vector := embeddingResp.Data[0].Embedding
	if len(vector) != e.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrEmbedding, e.dimensions, len(vector))
	}

	return vector, nil
}
