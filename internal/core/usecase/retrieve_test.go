package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

func TestRetrieveDecodesEachHitOwnSource(t *testing.T) {
	store := &vectorStoreFake{hits: []domain.RetrievedChunk{
		{Source: domain.EncodeSource("first.txt"), Text: "first chunk", Score: 0.9},
		{Source: domain.EncodeSource("second.pdf"), Text: "second chunk", Score: 0.7},
	}}
	uc := NewRetrieveUseCase(&embedderFake{queryVector: []float32{1, 0}}, store)

	results, err := uc.Retrieve(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Source != "first.txt" || results[1].Source != "second.pdf" {
		t.Fatalf("expected per-hit sources, got %q and %q", results[0].Source, results[1].Source)
	}
}

func TestRetrieveSortsByDescendingScore(t *testing.T) {
	store := &vectorStoreFake{hits: []domain.RetrievedChunk{
		{Source: domain.EncodeSource("low.txt"), Text: "low", Score: 0.2},
		{Source: domain.EncodeSource("high.txt"), Text: "high", Score: 0.8},
		{Source: domain.EncodeSource("mid.txt"), Text: "mid", Score: 0.5},
	}}
	uc := NewRetrieveUseCase(&embedderFake{queryVector: []float32{1, 0}}, store)

	results, err := uc.Retrieve(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected k=2 truncation, got %d results", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not sorted descending: %v", results)
		}
	}
	if results[0].Source != "high.txt" {
		t.Fatalf("expected best hit first, got %q", results[0].Source)
	}
}

func TestRetrieveEmptyQueryReturnsNoResults(t *testing.T) {
	uc := NewRetrieveUseCase(&embedderFake{}, &vectorStoreFake{err: errors.New("must not be called")})

	results, err := uc.Retrieve(context.Background(), "   ", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result set, got %d", len(results))
	}
}

func TestRetrieveEmptyIndexReturnsNoResults(t *testing.T) {
	uc := NewRetrieveUseCase(&embedderFake{queryVector: []float32{1}}, &vectorStoreFake{})

	results, err := uc.Retrieve(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result set, got %d", len(results))
	}
}

func TestRetrieveKeepsUndecodableSourceVerbatim(t *testing.T) {
	store := &vectorStoreFake{hits: []domain.RetrievedChunk{
		{Source: "not*base64", Text: "chunk", Score: 0.5},
	}}
	uc := NewRetrieveUseCase(&embedderFake{queryVector: []float32{1}}, store)

	results, err := uc.Retrieve(context.Background(), "query", 1)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if results[0].Source != "not*base64" {
		t.Fatalf("expected verbatim source, got %q", results[0].Source)
	}
}
