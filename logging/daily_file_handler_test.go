package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readDailyLog(t *testing.T, dir string) string {
	t.Helper()
	name := fmt.Sprintf("caseforge-%s.log", time.Now().Format("2006-01-02"))
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(data)
}

func TestDailyFileHandlerWritesToDatedFile(t *testing.T) {
	dir := t.TempDir()
	h, err := NewDailyFileHandler(dir, &slog.HandlerOptions{Level: slog.LevelDebug})
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "pipeline started", 0)
	record.AddAttrs(slog.String("run", "r-1"))
	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	content := readDailyLog(t, dir)
	if !strings.Contains(content, "pipeline started") {
		t.Errorf("Expected the message in the log file, got %q", content)
	}
	if !strings.Contains(content, "run=r-1") {
		t.Errorf("Expected the attribute in the log file, got %q", content)
	}
}

func TestDailyFileHandlerDerivedHandlersShareRotationState(t *testing.T) {
	dir := t.TempDir()
	h, err := NewDailyFileHandler(dir, &slog.HandlerOptions{Level: slog.LevelDebug})
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}

	withAttrs := h.WithAttrs([]slog.Attr{slog.String("component", "ingest")}).(*DailyFileHandler)
	withGroup := h.WithGroup("watcher").(*DailyFileHandler)

	// All derived handlers must write through the same file and mutex,
	// otherwise their writes race the parent's.
	if withAttrs.out != h.out || withGroup.out != h.out {
		t.Fatal("Expected derived handlers to share the parent's output state")
	}

	if err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "from parent", 0)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if err := withAttrs.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "from child", 0)); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	content := readDailyLog(t, dir)
	if !strings.Contains(content, "from parent") || !strings.Contains(content, "from child") {
		t.Errorf("Expected both handlers to write to the same file, got %q", content)
	}
}
