package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"
	"github.com/urfave/negroni"

	"github.com/caseforge/caseforge/config"
	"github.com/caseforge/caseforge/db"
	"github.com/caseforge/caseforge/generation"
	"github.com/caseforge/caseforge/handlers"
	"github.com/caseforge/caseforge/llm_service"
	"github.com/caseforge/caseforge/logging"
	"github.com/caseforge/caseforge/pipeline"
	"github.com/caseforge/caseforge/rag_service"
	"github.com/caseforge/caseforge/server"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	pool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	embedder := rag_service.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)

	store := rag_service.NewVectorStore(pool, embedder.Dimensions(), logger)
	if err := store.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}

	retriever := rag_service.NewRetriever(embedder, store, logger)

	gemini := llm_service.NewGeminiService(logger)
	orchestrator := generation.NewOrchestrator(gemini, generation.Options{
		ServiceConfig: map[string]interface{}{
			"api_url": cfg.GeminiAPIURL,
			"api_key": cfg.GeminiAPIKey,
			"parameters": map[string]interface{}{
				"temperature": "0.7",
				"top_k":       "40",
				"top_p":       "0.95",
				"max_tokens":  "2048",
			},
		},
		ContentTimeout: cfg.ContentTimeout,
		QATimeout:      cfg.QATimeout,
		QACount:        cfg.QACount,
	}, logger)

	runner := pipeline.NewRunner(retriever, orchestrator, logger)

	executions := pipeline.NewExecutionStore(logger)
	executions.StartCleanup(24*time.Hour, 1*time.Hour)
	defer executions.StopCleanup()

	processor := rag_service.NewProcessor(store, embedder, logger)

	watcher, err := rag_service.NewCorpusWatcher(processor, cfg.CorpusDir, cfg.CorpusScanInterval, cfg.IngestPoolSize, logger)
	if err != nil {
		log.Fatalf("Failed to create corpus watcher: %v", err)
	}
	go watcher.Start()
	defer watcher.Stop()

	// Async runs share a bounded pool so abandoned requests cannot pile
	// up unbounded background work.
	asyncPool, err := ants.NewPool(cfg.IngestPoolSize, ants.WithNonblocking(true))
	if err != nil {
		log.Fatalf("Failed to create async worker pool: %v", err)
	}
	defer asyncPool.Release()

	r := server.SetupRoutes(server.Deps{
		Generate: handlers.NewGenerateHandler(runner, executions, asyncPool, logger),
		Upload:   handlers.NewUploadHandler(processor, logger),
		Search:   handlers.NewSearchHandler(embedder, store, logger),
		Health:   handlers.NewHealthHandler(store, logger),
	})
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 120 * time.Second,
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func initLogger() (*slog.Logger, error) {
	logDir := filepath.Join("logs", "caseforge")

	fileHandler, err := logging.NewDailyFileHandler(logDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}

	return slog.New(fileHandler), nil
}
