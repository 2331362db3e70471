package rag_service

import (
	"context"
	"fmt"
	"hash/fnv"
)

// FakeEmbedder is a deterministic in-process Embedder for tests. The
// vector is derived from a hash of the input, so identical text always
// embeds identically and distinct texts almost never collide.
type FakeEmbedder struct {
	Dim   int
	Err   error
	Calls int
}

func NewFakeEmbedder(dim int) *FakeEmbedder {
	return &FakeEmbedder{Dim: dim}
}

func (f *FakeEmbedder) Dimensions() int {
	return f.Dim
}

func (f *FakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: input text is empty", ErrEmbedding)
	}

	vector := make([]float32, f.Dim)
	for i := range vector {
		h := fnv.New32a()
		fmt.Fprintf(h, "%s|%d", text, i)
		// Map the hash onto [-1, 1).
		vector[i] = float32(int32(h.Sum32())) / float32(1<<31)
	}
	return vector, nil
}
