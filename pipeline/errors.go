package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/caseforge/caseforge/llm_service"
	"github.com/caseforge/caseforge/pipeline_type"
	"github.com/caseforge/caseforge/rag_service"
)

// ErrorKind identifies which stage of a run failed. Parsing is absent
// on purpose: parse imperfection degrades inside the run and is never
// an error at this level.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindResourceUnavailable ErrorKind = "resource_unavailable"
	KindEmbedding           ErrorKind = "embedding_error"
	KindStoreRead           ErrorKind = "store_read_error"
	KindStoreWrite          ErrorKind = "store_write_error"
	KindGenerationTimeout   ErrorKind = "generation_timeout"
	KindGenerationService   ErrorKind = "generation_service_error"
)

// Error is the structured failure every pipeline path returns: a kind
// callers can branch on plus a human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Descriptor converts the error to the wire shape embedded in partial
// results and error responses.
func (e *Error) Descriptor() *pipeline_type.ErrorDescriptor {
	return &pipeline_type.ErrorDescriptor{
		Kind:    string(e.Kind),
		Message: e.Message,
	}
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// classifyRetrieval maps embedding and store failures onto kinds.
func classifyRetrieval(err error) *Error {
	switch {
	case errors.Is(err, rag_service.ErrEmbedding):
		return newError(KindEmbedding, err)
	case errors.Is(err, rag_service.ErrStoreWrite):
		return newError(KindStoreWrite, err)
	default:
		return newError(KindStoreRead, err)
	}
}

// classifyGeneration distinguishes a timed-out call from a service
// failure so callers see which one happened.
func classifyGeneration(err error) *Error {
	var svcErr *llm_service.ServiceError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(KindGenerationTimeout, err)
	case errors.As(err, &svcErr):
		return newError(KindGenerationService, err)
	default:
		return newError(KindGenerationService, err)
	}
}
