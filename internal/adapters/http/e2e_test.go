package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
	"github.com/mkuznetsov/rag-chain-server/internal/core/usecase"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/chunking"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/extractor"
	"github.com/mkuznetsov/rag-chain-server/internal/infrastructure/vector/memory"
)

// hashEmbedder maps text to a small deterministic vector so tests can
// run the full pipeline without a model server.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashVector(text)
	}
	return out, nil
}

func (e hashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func hashVector(text string) []float32 {
	vec := make([]float32, 8)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32 = 2166136261
		for _, b := range []byte(word) {
			h = (h ^ uint32(b)) * 16777619
		}
		vec[h%8] += 1
	}
	return vec
}

type echoCompleter struct{}

func (echoCompleter) StreamCompletion(_ context.Context, prompt string, _ int) (<-chan domain.Fragment, error) {
	out := make(chan domain.Fragment, 1)
	out <- domain.Fragment{Text: "answered: " + prompt[:min(20, len(prompt))]}
	close(out)
	return out, nil
}

func newFullStack(t *testing.T) http.Handler {
	t.Helper()

	embedder := hashEmbedder{}
	store := memory.NewStore()
	chunker := chunking.NewSplitter(900, 150)

	ingest := usecase.NewIngestDocumentUseCase(extractor.New(), chunker, embedder, store, nil, nil)
	retrieve := usecase.NewRetrieveUseCase(embedder, store)
	stream := usecase.NewStreamAnswerUseCase(retrieve, echoCompleter{}, 4)

	return NewRouter(Config{}, ingest, retrieve, stream, nil, nil).Handler()
}

func uploadFile(t *testing.T, handler http.Handler, filename, content string) {
	t.Helper()
	body, contentType := multipartBody(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/uploadDocument", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("upload %s: expected 200, got %d: %s", filename, res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "File uploaded successfully") {
		t.Fatalf("upload %s: unexpected body %q", filename, res.Body.String())
	}
}

func TestUploadThenSearchRoundTrip(t *testing.T) {
	handler := newFullStack(t)

	uploadFile(t, handler, "notes.txt", "alpha beta gamma")
	uploadFile(t, handler, "other.txt", "delta epsilon zeta")

	payload, _ := json.Marshal(map[string]any{"content": "alpha", "num_docs": 2})
	req := httptest.NewRequest(http.MethodPost, "/documentSearch", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", res.Code)
	}

	var results []domain.SearchResult
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		t.Fatalf("decode search results: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one search result")
	}
	if results[0].Source != "notes.txt" {
		t.Fatalf("top result source = %q, want notes.txt", results[0].Source)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not sorted by score desc at index %d", i)
		}
	}
}

func TestGenerateGroundedAfterUpload(t *testing.T) {
	handler := newFullStack(t)

	uploadFile(t, handler, "facts.txt", "the sky is blue")

	payload := `{"question":"what color is the sky"}`
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d", res.Code)
	}
	if !strings.HasPrefix(res.Body.String(), "answered: ") {
		t.Fatalf("streamed body = %q", res.Body.String())
	}
}
