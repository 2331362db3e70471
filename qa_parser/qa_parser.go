package qa_parser

import (
	"encoding/json"
	"strings"

	"github.com/caseforge/caseforge/pipeline_type"
)

// Mode reports which extraction stage produced the result.
type Mode string

const (
	// ModeStructured means the JSON array embedded in the raw text parsed cleanly.
	ModeStructured Mode = "structured"
	// ModeFallback means JSON parsing failed and pairs were recovered line by line.
	ModeFallback Mode = "fallback"
	// ModeEmpty means neither stage found any recognizable pairs.
	ModeEmpty Mode = "empty"
)

// ExtractQA pulls question/answer records out of generated text. The
// prompt asks the model for a JSON array, but that is a request, not a
// guarantee: models wrap arrays in prose, code fences and commentary.
// ExtractQA therefore tries strict JSON first and degrades to a line
// scanner. It never returns an error; the worst outcome is an empty
// slice with ModeEmpty.
func ExtractQA(raw string) ([]pipeline_type.QAPair, Mode) {
	if pairs, ok := extractJSONArray(raw); ok {
		return pairs, ModeStructured
	}

	pairs := extractLinePairs(raw)
	if len(pairs) == 0 {
		return nil, ModeEmpty
	}
	return pairs, ModeFallback
}

// extractJSONArray locates the widest bracketed span in the text,
// newlines flattened first, and attempts a strict decode. Records with
// missing fields decode to empty strings and are returned as-is; a
// missing answer is a data-shape problem for the caller to see, not a
// parse failure to hide.
func extractJSONArray(raw string) ([]pipeline_type.QAPair, bool) {
	flattened := strings.ReplaceAll(raw, "\n", " ")

	start := strings.Index(flattened, "[")
	end := strings.LastIndex(flattened, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}

	span := flattened[start : end+1]

	var pairs []pipeline_type.QAPair
	if err := json.Unmarshal([]byte(span), &pairs); err != nil {
		return nil, false
	}
	return pairs, true
}

// extractLinePairs scans the text line by line. A line starting with
// "Q:" or "Question:" opens a new pending question, committing any
// previous pair. "A:"/"Answer:" lines and any other non-empty lines
// while a question is pending accumulate into the answer buffer, which
// is joined with single spaces in encounter order.
func extractLinePairs(raw string) []pipeline_type.QAPair {
	var pairs []pipeline_type.QAPair
	var currentQuestion string
	var hasQuestion bool
	var currentAnswer []string

	commit := func() {
		if hasQuestion {
			pairs = append(pairs, pipeline_type.QAPair{
				Question: currentQuestion,
				Answer:   strings.Join(currentAnswer, " "),
			})
		}
		hasQuestion = false
		currentQuestion = ""
		currentAnswer = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		if rest, ok := stripPrefix(line, "Q:", "Question:"); ok {
			commit()
			currentQuestion = rest
			hasQuestion = true
			continue
		}

		if rest, ok := stripPrefix(line, "A:", "Answer:"); ok && hasQuestion {
			currentAnswer = append(currentAnswer, rest)
			continue
		}

		if line != "" && hasQuestion {
			currentAnswer = append(currentAnswer, line)
		}
	}
	commit()

	return pairs
}

func stripPrefix(line string, prefixes ...string) (string, bool) {
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}
