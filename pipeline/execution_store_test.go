package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/caseforge/caseforge/pipeline_type"
)

func TestExecutionStoreLifecycle(t *testing.T) {
	store := NewExecutionStore(testLogger())

	record := &ExecutionRecord{
		ExecutionID: "exec-1",
		Status:      StatusStarted,
		SubmittedAt: time.Now().Format(time.RFC3339),
	}
	store.Add(record)

	got, exists := store.Get("exec-1")
	if !exists {
		t.Fatal("Expected the execution to be stored")
	}
	if got.Status != StatusStarted {
		t.Errorf("Expected status started, got %q", got.Status)
	}

	result := &pipeline_type.PipelineResult{GeneratedContent: "done"}
	store.Complete("exec-1", result, nil)

	got, _ = store.Get("exec-1")
	if got.Status != StatusCompleted {
		t.Errorf("Expected status completed, got %q", got.Status)
	}
	if got.Result == nil || got.Result.GeneratedContent != "done" {
		t.Errorf("Expected the result to be attached, got %+v", got.Result)
	}
	if got.CompletedAt == "" {
		t.Error("Expected a completion timestamp")
	}
}

func TestExecutionStoreGetReturnsDetachedRecord(t *testing.T) {
	store := NewExecutionStore(testLogger())
	store.Add(&ExecutionRecord{ExecutionID: "exec-1", Status: StatusStarted})

	// A record handed out before completion must stay untouched when
	// the worker goroutine completes the run: callers encode it
	// without holding the store lock.
	before, _ := store.Get("exec-1")
	store.Complete("exec-1", &pipeline_type.PipelineResult{GeneratedContent: "done"}, nil)

	if before.Status != StatusStarted {
		t.Errorf("Expected the earlier snapshot to keep status started, got %q", before.Status)
	}
	if before.Result != nil {
		t.Errorf("Expected the earlier snapshot to carry no result, got %+v", before.Result)
	}

	// Mutating a returned record must not write through to the store.
	after, _ := store.Get("exec-1")
	after.Status = StatusFailed
	again, _ := store.Get("exec-1")
	if again.Status != StatusCompleted {
		t.Errorf("Expected the stored record to stay completed, got %q", again.Status)
	}
}

func TestExecutionStoreRemove(t *testing.T) {
	store := NewExecutionStore(testLogger())
	store.Add(&ExecutionRecord{ExecutionID: "exec-1", Status: StatusStarted})

	store.Remove("exec-1")

	if _, exists := store.Get("exec-1"); exists {
		t.Error("Expected the record to be gone after Remove")
	}
	if store.Len() != 0 {
		t.Errorf("Expected an empty store, got %d records", store.Len())
	}
}

func TestExecutionStoreCompleteWithFailure(t *testing.T) {
	store := NewExecutionStore(testLogger())
	store.Add(&ExecutionRecord{ExecutionID: "exec-2", Status: StatusStarted})

	runErr := newError(KindGenerationTimeout, errors.New("deadline exceeded"))
	store.Complete("exec-2", nil, runErr)

	got, _ := store.Get("exec-2")
	if got.Status != StatusFailed {
		t.Errorf("Expected status failed, got %q", got.Status)
	}
	if got.Error == nil || got.Error.Kind != string(KindGenerationTimeout) {
		t.Errorf("Expected a timeout error descriptor, got %+v", got.Error)
	}
}

func TestExecutionStoreCleanupExpiresCompleted(t *testing.T) {
	store := NewExecutionStore(testLogger())
	old := time.Now().Add(-2 * time.Hour)

	store.Add(&ExecutionRecord{
		ExecutionID: "old",
		Status:      StatusCompleted,
		CompletedAt: old.Format(time.RFC3339),
	})
	store.Add(&ExecutionRecord{
		ExecutionID: "running",
		Status:      StatusStarted,
	})

	store.performCleanup(time.Hour)

	if _, exists := store.Get("old"); exists {
		t.Error("Expected the old completed execution to be expired")
	}
	if _, exists := store.Get("running"); !exists {
		t.Error("In-flight executions must never be expired")
	}
}
