package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"

	"github.com/caseforge/caseforge/pipeline"
	"github.com/caseforge/caseforge/pipeline_type"
)

// DefaultIntent is the synthetic retrieval query used when the caller
// does not supply one.
const DefaultIntent = "Generate a product management case study"

type pipelineRunner interface {
	Run(ctx context.Context, intent string, params pipeline_type.GenerationParameters) (*pipeline_type.PipelineResult, error)
}

// GenerateRequest is the request body for both sync and async runs.
type GenerateRequest struct {
	Intent     string                              `json:"intent,omitempty"`
	Parameters *pipeline_type.GenerationParameters `json:"parameters"`
}

// GenerateResponse mirrors the shape the original web client consumes.
type GenerateResponse struct {
	CaseStudy           string                         `json:"case_study"`
	QuestionsAndAnswers []pipeline_type.QAPair         `json:"questions_and_answers"`
	Metadata            GenerateMetadata               `json:"metadata"`
	Error               *pipeline_type.ErrorDescriptor `json:"error,omitempty"`
}

type GenerateMetadata struct {
	GeneratedAt     time.Time                          `json:"generated_at"`
	Parameters      pipeline_type.GenerationParameters `json:"parameters"`
	CaseStudyLength int                                `json:"case_study_length"`
	NumQAPairs      int                                `json:"num_qa_pairs"`
}

// GenerateHandler serves synchronous and asynchronous pipeline runs.
type GenerateHandler struct {
	runner     pipelineRunner
	executions *pipeline.ExecutionStore
	pool       *ants.Pool
	logger     *slog.Logger
}

// NewGenerateHandler builds the handler. pool bounds concurrent async
// runs so abandoned requests cannot pile up unbounded background work.
func NewGenerateHandler(runner pipelineRunner, executions *pipeline.ExecutionStore, pool *ants.Pool, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		runner:     runner,
		executions: executions,
		pool:       pool,
		logger:     logger,
	}
}

func (h *GenerateHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*GenerateRequest, bool) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body",
			slog.String("error", err.Error()))
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if req.Parameters == nil {
		writeJSONError(w, "No parameters provided", http.StatusBadRequest)
		return nil, false
	}
	if req.Intent == "" {
		req.Intent = DefaultIntent
	}
	return &req, true
}

// Generate handles POST /generate: one full pipeline run in the request
// lifetime. Partial results come back 200 with an embedded error
// descriptor so callers handle full and partial shapes uniformly.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.runner.Run(r.Context(), req.Intent, *req.Parameters)
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGenerateResponse(result))
}

// GenerateAsync handles POST /generate/async: validates up front,
// submits the run to the worker pool and returns an execution id the
// caller polls.
func (h *GenerateHandler) GenerateAsync(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	// Fail fast on bad parameters; no execution record for those.
	if err := req.Parameters.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	execID := uuid.New().String()
	h.executions.Add(&pipeline.ExecutionRecord{
		ExecutionID: execID,
		Status:      pipeline.StatusStarted,
		SubmittedAt: time.Now().Format(time.RFC3339),
	})

	intent := req.Intent
	params := *req.Parameters
	err := h.pool.Submit(func() {
		// The HTTP request is long gone by the time this runs.
		result, runErr := h.runner.Run(context.Background(), intent, params)
		var pipeErr *pipeline.Error
		if runErr != nil && !errors.As(runErr, &pipeErr) {
			pipeErr = &pipeline.Error{Kind: pipeline.KindGenerationService, Message: runErr.Error()}
		}
		h.executions.Complete(execID, result, pipeErr)
	})
	if err != nil {
		// The run never started; keeping the record would leave a
		// forever-"started" entry the cleanup pass never expires.
		h.executions.Remove(execID)
		h.logger.Warn("Async generation rejected, worker pool saturated",
			slog.String("error", err.Error()))
		writeJSONError(w, "Server is at capacity, try again later", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"execution_id": execID,
		"status":       string(pipeline.StatusStarted),
	})
}

// GetExecution handles GET /generate/executions/{execution_id}.
func (h *GenerateHandler) GetExecution(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	record, exists := h.executions.Get(vars["execution_id"])
	if !exists {
		writeJSONError(w, "Execution not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *GenerateHandler) writeRunError(w http.ResponseWriter, err error) {
	var pipeErr *pipeline.Error
	if !errors.As(err, &pipeErr) {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch pipeErr.Kind {
	case pipeline.KindValidation:
		status = http.StatusBadRequest
	case pipeline.KindResourceUnavailable:
		status = http.StatusServiceUnavailable
	case pipeline.KindGenerationTimeout:
		status = http.StatusGatewayTimeout
	case pipeline.KindGenerationService:
		status = http.StatusBadGateway
	}

	h.logger.Error("Pipeline run failed",
		slog.String("kind", string(pipeErr.Kind)),
		slog.String("message", pipeErr.Message))

	writeJSON(w, status, map[string]interface{}{
		"error": pipeErr.Descriptor(),
	})
}

func toGenerateResponse(result *pipeline_type.PipelineResult) GenerateResponse {
	return GenerateResponse{
		CaseStudy:           result.GeneratedContent,
		QuestionsAndAnswers: result.QAPairs,
		Metadata: GenerateMetadata{
			GeneratedAt:     result.GeneratedAt,
			Parameters:      result.Parameters,
			CaseStudyLength: result.ContentLength,
			NumQAPairs:      result.QACount,
		},
		Error: result.Error,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
