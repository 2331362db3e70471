package rag_service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbedding indicates the embedding model could not process the
	// input. Deterministic failures are reported, never retried.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreWrite indicates the vector store rejected a write or was
	// unreachable.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrStoreRead indicates the vector store was unreachable during a
	// query. An empty store is not a read error.
	ErrStoreRead = errors.New("vector store read failed")

	// ErrEmptyDocument indicates extraction produced no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrDimensionMismatch indicates a vector whose length differs from
	// the store's fixed dimensionality. It is a rejected write, so it
	// also satisfies ErrStoreWrite.
	ErrDimensionMismatch = fmt.Errorf("%w: vector dimension mismatch", ErrStoreWrite)

	// ErrUnsupportedType indicates a document extension no extractor
	// handles.
	ErrUnsupportedType = errors.New("unsupported document type")
)
