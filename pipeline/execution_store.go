package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/caseforge/caseforge/pipeline_type"
)

type ExecutionStatus string

const (
	StatusStarted   ExecutionStatus = "started"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// ExecutionRecord tracks one asynchronous pipeline run.
type ExecutionRecord struct {
	ExecutionID string                         `json:"execution_id"`
	Status      ExecutionStatus                `json:"status"`
	Result      *pipeline_type.PipelineResult  `json:"result,omitempty"`
	Error       *pipeline_type.ErrorDescriptor `json:"error,omitempty"`
	SubmittedAt string                         `json:"submitted_at"`
	CompletedAt string                         `json:"completed_at,omitempty"`
}

// ExecutionStore holds async run records in memory and expires
// completed ones after a threshold.
type ExecutionStore struct {
	mu         sync.RWMutex
	executions map[string]*ExecutionRecord

	timeProvider  TimeProvider
	logger        *slog.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

func NewExecutionStore(logger *slog.Logger) *ExecutionStore {
	return &ExecutionStore{
		executions:   make(map[string]*ExecutionRecord),
		timeProvider: &realTimeProvider{},
		logger:       logger,
	}
}

// StartCleanup expires completed executions older than threshold,
// checking every cleanupInterval.
func (s *ExecutionStore) StartCleanup(threshold, cleanupInterval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.performCleanup(threshold)
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (s *ExecutionStore) StopCleanup() {
	if s.stopCleanup != nil {
		s.stopOnce.Do(func() { close(s.stopCleanup) })
	}
}

func (s *ExecutionStore) performCleanup(threshold time.Duration) {
	now := s.timeProvider.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for execID, record := range s.executions {
		if record.CompletedAt == "" {
			continue
		}
		completedAt, err := time.Parse(time.RFC3339, record.CompletedAt)
		if err == nil && now.Sub(completedAt) > threshold {
			delete(s.executions, execID)
			s.logger.Debug("Expired execution record",
				slog.String("execution_id", execID))
		}
	}
}

func (s *ExecutionStore) Add(record *ExecutionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions[record.ExecutionID] = record
}

// Get returns a copy of the record. Callers read and encode it without
// holding the lock, so handing out the live pointer would race with
// Complete mutating it from the worker goroutine.
func (s *ExecutionStore) Get(execID string) (*ExecutionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.executions[execID]
	if !exists {
		return nil, false
	}
	snapshot := *record
	return &snapshot, true
}

// Remove discards a record, for submissions that never started.
func (s *ExecutionStore) Remove(execID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.executions, execID)
}

// Len reports how many records the store currently holds.
func (s *ExecutionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.executions)
}

// Complete marks a run finished, attaching either the result or the
// failure.
func (s *ExecutionStore) Complete(execID string, result *pipeline_type.PipelineResult, runErr *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.executions[execID]
	if !exists {
		return
	}
	record.CompletedAt = s.timeProvider.Now().Format(time.RFC3339)
	if runErr != nil {
		record.Status = StatusFailed
		record.Error = runErr.Descriptor()
		return
	}
	record.Status = StatusCompleted
	record.Result = result
}
