package llm_service

import (
	"context"
	"fmt"
)

// LLMService is the narrow contract around the external generative
// capability. Config carries provider-specific settings such as the API
// endpoint, key and decoding options.
type LLMService interface {
	CallLLM(ctx context.Context, config map[string]interface{}, prompt string) (string, error)
}

// ServiceError is returned when the provider responds with a
// non-success status. Callers use it to tell a service failure apart
// from a timeout (which surfaces as a context deadline error).
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("llm service returned status %d: %s", e.StatusCode, e.Body)
}

// MockLLMService is a configurable test double.
type MockLLMService struct {
	CallLLMFunc func(ctx context.Context, config map[string]interface{}, prompt string) (string, error)
	CallCount   int
	Prompts     []string
}

func (m *MockLLMService) CallLLM(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
	m.CallCount++
	m.Prompts = append(m.Prompts, prompt)
	if m.CallLLMFunc != nil {
		return m.CallLLMFunc(ctx, config, prompt)
	}
	return "", nil
}
