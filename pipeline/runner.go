package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caseforge/caseforge/pipeline_type"
	"github.com/caseforge/caseforge/qa_parser"
)

// Retriever selects the reference document for a run.
type Retriever interface {
	RetrieveReference(ctx context.Context, intent string) (string, bool, error)
}

// Orchestrator performs the two generative calls.
type Orchestrator interface {
	GenerateContent(ctx context.Context, reference string, params pipeline_type.GenerationParameters) (string, error)
	GenerateQA(ctx context.Context, content string, params pipeline_type.GenerationParameters) ([]pipeline_type.QAPair, qa_parser.Mode, error)
}

// Runner executes one full pipeline run: retrieve, generate content,
// generate Q&A, assemble the result. Every collaborator is injected so
// tests substitute fakes without global state.
type Runner struct {
	retriever    Retriever
	orchestrator Orchestrator
	// RequireReference aborts the run when the store is empty instead
	// of generating without a style reference. Off by default: an
	// un-referenced case study is worth more to the caller than a
	// failed run.
	requireReference bool
	timeProvider     TimeProvider
	logger           *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRequireReference makes an empty store fatal to the run.
func WithRequireReference() RunnerOption {
	return func(r *Runner) { r.requireReference = true }
}

// WithTimeProvider substitutes the clock, for tests.
func WithTimeProvider(tp TimeProvider) RunnerOption {
	return func(r *Runner) { r.timeProvider = tp }
}

func NewRunner(retriever Retriever, orchestrator Orchestrator, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		retriever:    retriever,
		orchestrator: orchestrator,
		timeProvider: &realTimeProvider{},
		logger:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline. Failure semantics:
//   - validation and retrieval failures abort before any generative call
//   - a content-generation failure aborts the run; Q&A is never attempted
//   - a Q&A service failure returns a partial result carrying the
//     already-generated content and an error descriptor
//   - Q&A parse imperfection is absorbed; worst case the pair list is short
//     or empty
func (r *Runner) Run(ctx context.Context, intent string, params pipeline_type.GenerationParameters) (*pipeline_type.PipelineResult, error) {
	if err := params.Validate(); err != nil {
		return nil, newError(KindValidation, err)
	}

	reference, found, err := r.retriever.RetrieveReference(ctx, intent)
	if err != nil {
		return nil, classifyRetrieval(err)
	}
	if !found {
		if r.requireReference {
			return nil, newError(KindResourceUnavailable, fmt.Errorf("no reference document available for intent %q", intent))
		}
		r.logger.Warn("Proceeding without reference document",
			slog.String("intent", intent))
	}

	content, err := r.orchestrator.GenerateContent(ctx, reference, params)
	if err != nil {
		return nil, classifyGeneration(err)
	}

	result := &pipeline_type.PipelineResult{
		GeneratedContent: content,
		QAPairs:          []pipeline_type.QAPair{},
		GeneratedAt:      r.timeProvider.Now(),
		Parameters:       params,
		ContentLength:    len(content),
	}

	pairs, mode, err := r.orchestrator.GenerateQA(ctx, content, params)
	if err != nil {
		// Partial success: the content survived, only the Q&A call
		// failed. Keep what we have and attach the failure.
		genErr := classifyGeneration(err)
		r.logger.Error("Q&A generation failed, returning partial result",
			slog.String("kind", string(genErr.Kind)),
			slog.String("error", err.Error()))
		result.Error = genErr.Descriptor()
		return result, nil
	}

	if pairs != nil {
		result.QAPairs = pairs
	}
	result.QACount = len(result.QAPairs)

	r.logger.Info("Pipeline run completed",
		slog.Int("content_length", result.ContentLength),
		slog.Int("qa_count", result.QACount),
		slog.String("qa_mode", string(mode)))
	return result, nil
}
