package pipeline_type

import (
	"fmt"
	"time"
)

// Difficulty levels accepted for a generation run.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

var allowedDifficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// GenerationParameters shape the prompts for one pipeline run. They are
// supplied by the caller per request and never persisted.
type GenerationParameters struct {
	Industry       string `json:"industry"`
	Role           string `json:"role"`
	Difficulty     string `json:"difficulty"`
	FocusArea      string `json:"focus_area"`
	TimeConstraint string `json:"time_constraint,omitempty"`
}

// Validate checks that all required parameters are present and that the
// difficulty is one of the allowed levels. It returns the first problem
// found so callers can surface it verbatim.
func (p GenerationParameters) Validate() error {
	required := map[string]string{
		"industry":   p.Industry,
		"role":       p.Role,
		"difficulty": p.Difficulty,
		"focus_area": p.FocusArea,
	}
	// Check in a fixed order so error messages are stable.
	for _, name := range []string{"industry", "role", "difficulty", "focus_area"} {
		if required[name] == "" {
			return fmt.Errorf("missing required parameter: %s", name)
		}
	}

	for _, d := range allowedDifficulties {
		if p.Difficulty == d {
			return nil
		}
	}
	return fmt.Errorf("invalid difficulty level %q, allowed values: %v", p.Difficulty, allowedDifficulties)
}

// QAPair is a single question/answer record derived from generated content.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ErrorDescriptor is the structured error shape attached to partial
// results and error responses.
type ErrorDescriptor struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PipelineResult is the outcome of one generation run. A partial result
// keeps GeneratedContent and carries a non-nil Error describing the
// stage that failed; callers distinguish the two by checking Error.
type PipelineResult struct {
	GeneratedContent string               `json:"generated_content"`
	QAPairs          []QAPair             `json:"qa_pairs"`
	GeneratedAt      time.Time            `json:"generated_at"`
	Parameters       GenerationParameters `json:"parameters"`
	ContentLength    int                  `json:"content_length"`
	QACount          int                  `json:"qa_count"`
	Error            *ErrorDescriptor     `json:"error,omitempty"`
}

// Document is one ingested reference text with its embedding, as stored
// by the vector store. Vectors share a single dimensionality fixed by
// the embedding model.
type Document struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Vector  []float32 `json:"-"`
}
