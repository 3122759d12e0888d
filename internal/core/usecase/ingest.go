package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
	"github.com/mkuznetsov/rag-chain-server/internal/core/ports"
)

type IngestDocumentUseCase struct {
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectorDB  ports.VectorStore
	ledger    ports.DocumentLedger
	notifier  ports.IngestNotifier
}

func NewIngestDocumentUseCase(
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	ledger ports.DocumentLedger,
	notifier ports.IngestNotifier,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vectorDB:  vectorDB,
		ledger:    ledger,
		notifier:  notifier,
	}
}

// Ingest extracts, chunks, embeds and indexes one staged file. If the
// pipeline fails after some chunks were written the index may hold an
// incomplete chunk set for the document; the ledger records the failure
// but no rollback is attempted.
func (uc *IngestDocumentUseCase) Ingest(ctx context.Context, path, filename string) (*domain.Document, error) {
	base := sanitizeFilename(filename)
	if base == "" {
		return nil, domain.WrapError(domain.ErrInvalidFilename, "ingest", fmt.Errorf("unusable filename %q", filename))
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		Filename:  base,
		Source:    domain.EncodeSource(base),
		Status:    domain.StatusIngesting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if uc.ledger != nil {
		if err := uc.ledger.Create(ctx, doc); err != nil {
			return nil, fmt.Errorf("create ledger record: %w", err)
		}
	}

	chunkCount, err := uc.runPipeline(ctx, path, doc)
	if err != nil {
		uc.markFailed(ctx, doc.ID, err)
		return nil, err
	}

	doc.ChunkCount = chunkCount
	doc.Status = domain.StatusReady
	if uc.ledger != nil {
		if err := uc.ledger.MarkReady(ctx, doc.ID, chunkCount); err != nil {
			return nil, fmt.Errorf("mark ledger ready: %w", err)
		}
	}

	if uc.notifier != nil {
		if err := uc.notifier.PublishDocumentIngested(ctx, doc); err != nil {
			slog.Warn("ingest_notify_failed", "document_id", doc.ID, "error", err)
		}
	}

	return doc, nil
}

func (uc *IngestDocumentUseCase) runPipeline(ctx context.Context, path string, doc *domain.Document) (int, error) {
	text, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("no extractable text"))
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	if err := uc.vectorDB.IndexChunks(ctx, doc.Source, chunks, vectors); err != nil {
		return 0, fmt.Errorf("index chunks in vector store: %w", err)
	}
	return len(chunks), nil
}

func (uc *IngestDocumentUseCase) markFailed(ctx context.Context, id string, ingestErr error) {
	if uc.ledger == nil {
		return
	}
	if err := uc.ledger.MarkFailed(ctx, id, ingestErr.Error()); err != nil {
		slog.Warn("ledger_mark_failed_error", "document_id", id, "error", err)
	}
}

// sanitizeFilename strips path components and rejects names that are
// empty once reduced to a basename.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	switch base {
	case "", ".", string(filepath.Separator):
		return ""
	}
	return base
}
