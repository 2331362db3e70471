package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/caseforge/caseforge/llm_service"
	"github.com/caseforge/caseforge/pipeline_type"
	"github.com/caseforge/caseforge/qa_parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testParams() pipeline_type.GenerationParameters {
	return pipeline_type.GenerationParameters{
		Industry:   "Healthcare",
		Role:       "Product Manager",
		Difficulty: pipeline_type.DifficultyHard,
		FocusArea:  "Growth Strategy",
	}
}

func TestGenerateContentPromptIncludesParameters(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "generated case study", nil
		},
	}
	orch := NewOrchestrator(mock, Options{}, testLogger())

	content, err := orch.GenerateContent(context.Background(), "reference text", testParams())
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if content != "generated case study" {
		t.Errorf("Expected verbatim model output, got %q", content)
	}

	prompt := mock.Prompts[0]
	for _, want := range []string{"Healthcare", "Product Manager", "Hard", "Growth Strategy", "reference text"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestGenerateContentOmitsEmptyReference(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "ok", nil
		},
	}
	orch := NewOrchestrator(mock, Options{}, testLogger())

	if _, err := orch.GenerateContent(context.Background(), "", testParams()); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if strings.Contains(mock.Prompts[0], "Reference case study") {
		t.Errorf("Prompt must omit the reference block when no reference exists")
	}
}

func TestGenerateContentIncludesTimeConstraint(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "ok", nil
		},
	}
	orch := NewOrchestrator(mock, Options{}, testLogger())

	params := testParams()
	params.TimeConstraint = "90 days"
	if _, err := orch.GenerateContent(context.Background(), "", params); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if !strings.Contains(mock.Prompts[0], "90 days") {
		t.Errorf("Prompt missing time constraint")
	}
}

func TestGenerateContentPropagatesServiceError(t *testing.T) {
	svcErr := &llm_service.ServiceError{StatusCode: 500, Body: "upstream down"}
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "", svcErr
		},
	}
	orch := NewOrchestrator(mock, Options{}, testLogger())

	_, err := orch.GenerateContent(context.Background(), "", testParams())
	var got *llm_service.ServiceError
	if !errors.As(err, &got) {
		t.Fatalf("Expected the ServiceError to surface, got %v", err)
	}
}

func TestGenerateQAStructuredOutput(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return `[{"question": "Why?", "answer": "Because."}]`, nil
		},
	}
	orch := NewOrchestrator(mock, Options{QACount: 1}, testLogger())

	pairs, mode, err := orch.GenerateQA(context.Background(), "the case study", testParams())
	if err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if mode != qa_parser.ModeStructured {
		t.Errorf("Expected structured mode, got %q", mode)
	}
	if len(pairs) != 1 || pairs[0].Question != "Why?" {
		t.Errorf("Unexpected pairs: %v", pairs)
	}

	prompt := mock.Prompts[0]
	if !strings.Contains(prompt, "the case study") {
		t.Errorf("Q&A prompt must embed the generated content")
	}
	if !strings.Contains(prompt, "exactly 1 Q&A pairs") {
		t.Errorf("Q&A prompt must request the configured count, got: %s", prompt)
	}
}

func TestGenerateQAMalformedOutputDegrades(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "Q: One?\nA: Yes.", nil
		},
	}
	orch := NewOrchestrator(mock, Options{}, testLogger())

	pairs, mode, err := orch.GenerateQA(context.Background(), "content", testParams())
	if err != nil {
		t.Fatalf("Formatting slips must not error, got: %v", err)
	}
	if mode != qa_parser.ModeFallback {
		t.Errorf("Expected fallback mode, got %q", mode)
	}
	if len(pairs) != 1 {
		t.Errorf("Expected 1 recovered pair, got %d", len(pairs))
	}
}

func TestGenerateQAServiceFailure(t *testing.T) {
	mock := &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	orch := NewOrchestrator(mock, Options{}, testLogger())

	_, _, err := orch.GenerateQA(context.Background(), "content", testParams())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected the timeout to surface, got %v", err)
	}
}
