package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/caseforge/caseforge/llm_service"
	"github.com/caseforge/caseforge/pipeline_type"
	"github.com/caseforge/caseforge/qa_parser"
)

// Options carries the generation budgets and service configuration.
type Options struct {
	// ServiceConfig is passed through to the LLM service (api_url,
	// api_key, decoding parameters).
	ServiceConfig map[string]interface{}
	// ContentTimeout bounds the case-study call.
	ContentTimeout time.Duration
	// QATimeout bounds the Q&A call; the two budgets are independent.
	QATimeout time.Duration
	// QACount is how many question/answer pairs to request.
	QACount int
}

func (o *Options) withDefaults() {
	if o.ContentTimeout <= 0 {
		o.ContentTimeout = 30 * time.Second
	}
	if o.QATimeout <= 0 {
		o.QATimeout = 30 * time.Second
	}
	if o.QACount <= 0 {
		o.QACount = 5
	}
}

// Orchestrator drives the two sequential generative calls of a run:
// case-study content first, then the Q&A derived from it.
type Orchestrator struct {
	llm    llm_service.LLMService
	opts   Options
	logger *slog.Logger
}

func NewOrchestrator(llm llm_service.LLMService, opts Options, logger *slog.Logger) *Orchestrator {
	opts.withDefaults()
	return &Orchestrator{
		llm:    llm,
		opts:   opts,
		logger: logger,
	}
}

// GenerateContent builds the case-study prompt and returns the model
// output verbatim. Timeouts and service failures surface to the caller
// unchanged; there is no retry here.
func (o *Orchestrator) GenerateContent(ctx context.Context, reference string, params pipeline_type.GenerationParameters) (string, error) {
	prompt := buildContentPrompt(reference, params)

	callCtx, cancel := context.WithTimeout(ctx, o.opts.ContentTimeout)
	defer cancel()

	o.logger.Info("Generating case study",
		slog.String("industry", params.Industry),
		slog.String("difficulty", params.Difficulty))

	content, err := o.llm.CallLLM(callCtx, o.opts.ServiceConfig, prompt)
	if err != nil {
		return "", fmt.Errorf("case study generation failed: %w", err)
	}

	o.logger.Info("Case study generated",
		slog.Int("content_length", len(content)))
	return content, nil
}

// GenerateQA builds the Q&A prompt, calls the model and extracts the
// pairs. Only the service call can fail; imperfect formatting degrades
// through the parser and is reported via the returned mode.
func (o *Orchestrator) GenerateQA(ctx context.Context, content string, params pipeline_type.GenerationParameters) ([]pipeline_type.QAPair, qa_parser.Mode, error) {
	prompt := buildQAPrompt(content, params, o.opts.QACount)

	callCtx, cancel := context.WithTimeout(ctx, o.opts.QATimeout)
	defer cancel()

	raw, err := o.llm.CallLLM(callCtx, o.opts.ServiceConfig, prompt)
	if err != nil {
		return nil, qa_parser.ModeEmpty, fmt.Errorf("Q&A generation failed: %w", err)
	}

	pairs, mode := qa_parser.ExtractQA(raw)
	if mode != qa_parser.ModeStructured {
		o.logger.Warn("Q&A output was not valid JSON, used degraded extraction",
			slog.String("mode", string(mode)),
			slog.Int("pairs", len(pairs)))
	} else {
		o.logger.Info("Q&A generated",
			slog.Int("pairs", len(pairs)))
	}

	return pairs, mode, nil
}
