package ports

import (
	"context"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

// Embedder builds vectors for chunks and query text. Output dimension is
// fixed for a given model version.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits extracted text into embeddable spans.
type Chunker interface {
	Split(text string) []string
}

// VectorStore indexes chunk records and answers nearest-neighbour queries.
// Records are append-only; concurrent writers and readers must not corrupt
// existing records.
type VectorStore interface {
	IndexChunks(ctx context.Context, source string, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error)
}

// CompletionStreamer produces answer fragments for a prompt. The channel
// is closed when generation finishes; a terminal Fragment.Err reports a
// mid-stream failure. Cancelling ctx stops upstream generation.
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, prompt string, maxTokens int) (<-chan domain.Fragment, error)
}

// TextExtractor turns a staged file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// DocumentLedger records upload outcomes. Optional: a nil ledger disables
// the bookkeeping without affecting ingestion.
type DocumentLedger interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	MarkReady(ctx context.Context, id string, chunkCount int) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
}

// IngestNotifier publishes an event after a document becomes searchable.
type IngestNotifier interface {
	PublishDocumentIngested(ctx context.Context, doc *domain.Document) error
}
