package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("  alpha beta\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	text, err := New().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "alpha beta" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
}

func TestExtractRejectsBinaryContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x01}, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := New().Extract(context.Background(), path); err == nil {
		t.Fatalf("expected error for non-UTF8 content")
	}
}

func TestExtractWorkbookJoinsCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	book := excelize.NewFile()
	if err := book.SetCellValue("Sheet1", "A1", "alpha"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := book.SetCellValue("Sheet1", "B1", "beta"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	_ = book.Close()

	text, err := New().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "alpha") || !strings.Contains(text, "beta") {
		t.Fatalf("expected cell values in text, got %q", text)
	}
}

func TestExtractMissingFileFails(t *testing.T) {
	if _, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
