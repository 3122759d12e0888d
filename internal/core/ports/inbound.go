package ports

import (
	"context"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

// DocumentIngestor is the inbound contract for turning a staged upload
// into searchable vector records.
type DocumentIngestor interface {
	Ingest(ctx context.Context, path, filename string) (*domain.Document, error)
}

// DocumentRetriever ranks indexed chunks against a query.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// AnswerStreamer orchestrates direct or retrieval-augmented generation
// and yields the answer incrementally.
type AnswerStreamer interface {
	StreamAnswer(ctx context.Context, req domain.PromptRequest) (<-chan domain.Fragment, error)
}

// DocumentReader is the inbound read model for upload ledger records.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
