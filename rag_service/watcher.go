package rag_service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".md":   true,
}

// CorpusWatcher rescans a directory of reference documents on an
// interval and ingests every supported file through a bounded worker
// pool. Files are keyed by their name, so an unchanged rescan is an
// idempotent overwrite.
type CorpusWatcher struct {
	processor *Processor
	dir       string
	interval  time.Duration
	pool      *ants.Pool
	logger    *slog.Logger

	// Prevent the same file being ingested twice concurrently when a
	// scan overlaps a slow embedding call.
	inflight sync.Map
	stop     chan struct{}
	stopOnce sync.Once
}

func NewCorpusWatcher(processor *Processor, dir string, interval time.Duration, poolSize int, logger *slog.Logger) (*CorpusWatcher, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &CorpusWatcher{
		processor: processor,
		dir:       dir,
		interval:  interval,
		pool:      pool,
		logger:    logger,
		stop:      make(chan struct{}),
	}, nil
}

// Start scans immediately, then on every tick until Stop is called.
// Run it in its own goroutine.
func (w *CorpusWatcher) Start() {
	w.logger.Info("Starting corpus watcher",
		slog.String("dir", w.dir),
		slog.Duration("interval", w.interval))

	w.ScanOnce()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.ScanOnce()
		case <-w.stop:
			return
		}
	}
}

// Stop halts scanning and releases the worker pool. In-flight
// ingestions finish; no new ones start.
func (w *CorpusWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.pool.Release()
	})
}

// ScanOnce walks the corpus directory and submits every supported file
// to the pool.
func (w *CorpusWatcher) ScanOnce() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Error("Failed to read corpus directory",
			slog.String("dir", w.dir),
			slog.String("error", err.Error()))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !supportedExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		if _, loaded := w.inflight.LoadOrStore(name, struct{}{}); loaded {
			continue
		}

		fileName := name
		err := w.pool.Submit(func() {
			defer w.inflight.Delete(fileName)
			w.ingestFile(fileName)
		})
		if err != nil {
			w.inflight.Delete(fileName)
			w.logger.Error("Failed to submit ingest task",
				slog.String("file", fileName),
				slog.String("error", err.Error()))
		}
	}
}

func (w *CorpusWatcher) ingestFile(name string) {
	path := filepath.Join(w.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("Failed to read corpus file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return
	}

	// The filename is the document id: rescans overwrite in place.
	if _, err := w.processor.ProcessDocument(context.Background(), name, name, data); err != nil {
		w.logger.Error("Failed to ingest corpus file",
			slog.String("file", path),
			slog.String("error", err.Error()))
	}
}
