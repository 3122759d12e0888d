package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mkuznetsov/rag-chain-server/internal/config"
	"github.com/mkuznetsov/rag-chain-server/internal/core/ports"
	"github.com/mkuznetsov/rag-chain-server/internal/core/usecase"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/chunking"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/extractor"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/llm/ollama"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/queue/nats"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/repository/postgres"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/resilience"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/vector/memory"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Ingestor  ports.DocumentIngestor
	Retriever ports.DocumentRetriever
	Streamer  ports.AnswerStreamer
	Documents ports.DocumentReader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	embedder := ollama.NewEmbedder(ollamaClient, executor)
	completer := ollama.NewCompleter(ollamaClient)

	var vectorDB ports.VectorStore
	switch cfg.VectorBackend {
	case "memory":
		vectorDB = memory.NewStore()
	case "qdrant", "":
		vectorDB = qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}

	var db *sql.DB
	var ledger ports.DocumentLedger
	var docs ports.DocumentReader
	if cfg.PostgresDSN != "" {
		var err error
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewDocumentLedger(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		ledger = repo
		docs = repo
	}

	var notifier ports.IngestNotifier
	var queue *nats.Notifier
	if cfg.NATSURL != "" {
		var err error
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, fmt.Errorf("init nats: %w", err)
		}
		notifier = queue
	}

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extract := extractor.New()

	ingestUC := usecase.NewIngestDocumentUseCase(extract, chunker, embedder, vectorDB, ledger, notifier)
	retrieveUC := usecase.NewRetrieveUseCase(embedder, vectorDB)
	streamUC := usecase.NewStreamAnswerUseCase(retrieveUC, completer, cfg.RAGTopK)

	slog.Info("app_wired",
		"vector_backend", cfg.VectorBackend,
		"ledger_enabled", ledger != nil,
		"notifier_enabled", notifier != nil,
	)

	return &App{
		Config: cfg,

		Ingestor:  ingestUC,
		Retriever: retrieveUC,
		Streamer:  streamUC,
		Documents: docs,

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			if db != nil {
				_ = db.Close()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
