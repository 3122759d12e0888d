package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

func newMockLedger(t *testing.T) (*DocumentLedger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDocumentLedger(db), mock
}

func TestDocumentLedgerCreate(t *testing.T) {
	ledger, mock := newMockLedger(t)

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        "doc-1",
		Filename:  "notes.txt",
		Source:    "bm90ZXMudHh0",
		Status:    domain.StatusIngesting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.Filename, doc.Source, 0, "ingesting", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ledger.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDocumentLedgerGetByID(t *testing.T) {
	ledger, mock := newMockLedger(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "filename", "source", "chunk_count", "status", "error_message", "created_at", "updated_at",
	}).AddRow("doc-1", "notes.txt", "bm90ZXMudHh0", 3, "ready", "", now, now)

	mock.ExpectQuery("SELECT id, filename, source").
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := ledger.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Status != domain.StatusReady {
		t.Fatalf("status = %q, want ready", doc.Status)
	}
	if doc.ChunkCount != 3 {
		t.Fatalf("chunk count = %d, want 3", doc.ChunkCount)
	}
}

func TestDocumentLedgerGetByIDNotFound(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectQuery("SELECT id, filename, source").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := ledger.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("err = %v, want ErrDocumentNotFound", err)
	}
}

func TestDocumentLedgerMarkReady(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", "ready", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ledger.MarkReady(context.Background(), "doc-1", 5); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}
}

func TestDocumentLedgerMarkFailed(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", "failed", "embed chunks: boom", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ledger.MarkFailed(context.Background(), "doc-1", "embed chunks: boom"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
}
