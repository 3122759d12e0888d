package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, string) (string, error) {
	return f.text, f.err
}

type chunkerFake struct {
	chunks []string
}

func (f *chunkerFake) Split(string) []string { return f.chunks }

type embedderFake struct {
	queryVector []float32
	err         error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queryVector, nil
}

type vectorStoreFake struct {
	source  string
	chunks  []string
	vectors [][]float32
	hits    []domain.RetrievedChunk
	err     error
}

func (f *vectorStoreFake) IndexChunks(_ context.Context, source string, chunks []string, vectors [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.source = source
	f.chunks = chunks
	f.vectors = vectors
	return nil
}

func (f *vectorStoreFake) Search(context.Context, []float32, int) ([]domain.RetrievedChunk, error) {
	return f.hits, f.err
}

type ledgerFake struct {
	created    *domain.Document
	readyID    string
	readyCount int
	failedID   string
	failedMsg  string
}

func (f *ledgerFake) Create(_ context.Context, doc *domain.Document) error {
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *ledgerFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *ledgerFake) MarkReady(_ context.Context, id string, chunkCount int) error {
	f.readyID = id
	f.readyCount = chunkCount
	return nil
}

func (f *ledgerFake) MarkFailed(_ context.Context, id, msg string) error {
	f.failedID = id
	f.failedMsg = msg
	return nil
}

type notifierFake struct {
	published *domain.Document
	err       error
}

func (f *notifierFake) PublishDocumentIngested(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.published = doc
	return nil
}

func TestIngestSuccess(t *testing.T) {
	store := &vectorStoreFake{}
	ledger := &ledgerFake{}
	notifier := &notifierFake{}
	uc := NewIngestDocumentUseCase(
		&extractorFake{text: "alpha beta"},
		&chunkerFake{chunks: []string{"alpha beta"}},
		&embedderFake{},
		store,
		ledger,
		notifier,
	)

	doc, err := uc.Ingest(context.Background(), "/tmp/stage/notes.txt", "notes.txt")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if doc.Status != domain.StatusReady {
		t.Fatalf("expected ready status, got %s", doc.Status)
	}
	if doc.ChunkCount != 1 {
		t.Fatalf("expected 1 chunk, got %d", doc.ChunkCount)
	}

	decoded, err := domain.DecodeSource(store.source)
	if err != nil {
		t.Fatalf("DecodeSource() error = %v", err)
	}
	if decoded != "notes.txt" {
		t.Fatalf("expected decoded source notes.txt, got %q", decoded)
	}
	if len(store.vectors) != len(store.chunks) {
		t.Fatalf("vectors/chunks mismatch: %d/%d", len(store.vectors), len(store.chunks))
	}
	if ledger.readyID != doc.ID || ledger.readyCount != 1 {
		t.Fatalf("expected ledger marked ready for %s, got %s/%d", doc.ID, ledger.readyID, ledger.readyCount)
	}
	if notifier.published == nil || notifier.published.ID != doc.ID {
		t.Fatalf("expected ingest notification for %s", doc.ID)
	}
}

func TestIngestStripsPathComponents(t *testing.T) {
	store := &vectorStoreFake{}
	uc := NewIngestDocumentUseCase(
		&extractorFake{text: "content"},
		&chunkerFake{chunks: []string{"content"}},
		&embedderFake{},
		store,
		nil,
		nil,
	)

	doc, err := uc.Ingest(context.Background(), "/tmp/stage/report.txt", "../../etc/report.txt")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if doc.Filename != "report.txt" {
		t.Fatalf("expected basename report.txt, got %q", doc.Filename)
	}
}

func TestIngestRejectsEmptyFilename(t *testing.T) {
	uc := NewIngestDocumentUseCase(
		&extractorFake{text: "content"},
		&chunkerFake{chunks: []string{"content"}},
		&embedderFake{},
		&vectorStoreFake{},
		nil,
		nil,
	)

	for _, name := range []string{"", "   ", "/", "."} {
		_, err := uc.Ingest(context.Background(), "/tmp/stage/x", name)
		if !domain.IsKind(err, domain.ErrInvalidFilename) {
			t.Fatalf("filename %q: expected invalid filename error, got %v", name, err)
		}
	}
}

func TestIngestEmbedFailureMarksLedgerFailed(t *testing.T) {
	ledger := &ledgerFake{}
	uc := NewIngestDocumentUseCase(
		&extractorFake{text: "content"},
		&chunkerFake{chunks: []string{"content"}},
		&embedderFake{err: errors.New("embedder down")},
		&vectorStoreFake{},
		ledger,
		nil,
	)

	_, err := uc.Ingest(context.Background(), "/tmp/stage/a.txt", "a.txt")
	if err == nil || !strings.Contains(err.Error(), "embed chunks") {
		t.Fatalf("expected embed error, got %v", err)
	}
	if ledger.failedID == "" || !strings.Contains(ledger.failedMsg, "embedder down") {
		t.Fatalf("expected ledger failure record, got %q/%q", ledger.failedID, ledger.failedMsg)
	}
}

func TestIngestNotifierFailureIsNotFatal(t *testing.T) {
	uc := NewIngestDocumentUseCase(
		&extractorFake{text: "content"},
		&chunkerFake{chunks: []string{"content"}},
		&embedderFake{},
		&vectorStoreFake{},
		nil,
		&notifierFake{err: errors.New("nats down")},
	)

	doc, err := uc.Ingest(context.Background(), "/tmp/stage/a.txt", "a.txt")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if doc.Status != domain.StatusReady {
		t.Fatalf("expected ready status, got %s", doc.Status)
	}
}
