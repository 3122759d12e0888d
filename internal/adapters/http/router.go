package httpadapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
	"github.com/mkuznetsov/rag-chain-server/internal/core/ports"
	"github.com/mkuznetsov/rag-chain-server/internal/observability/metrics"
)

const serviceName = "rag-chain-server"

type Config struct {
	RAGTopK           int
	GenMaxTokens      int
	RateLimitRPS      int
	RateLimitBurst    int
	MaxInFlight       int
	BackpressureDelay time.Duration
}

type Router struct {
	cfg       Config
	ingestor  ports.DocumentIngestor
	retriever ports.DocumentRetriever
	streamer  ports.AnswerStreamer
	docs      ports.DocumentReader
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg Config,
	ingestor ports.DocumentIngestor,
	retriever ports.DocumentRetriever,
	streamer ports.AnswerStreamer,
	docs ports.DocumentReader,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	if cfg.RAGTopK <= 0 {
		cfg.RAGTopK = 4
	}
	if cfg.GenMaxTokens <= 0 {
		cfg.GenMaxTokens = 500
	}
	return &Router{
		cfg:       cfg,
		ingestor:  ingestor,
		retriever: retriever,
		streamer:  streamer,
		docs:      docs,
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/uploadDocument", rt.uploadDocument)
	mux.HandleFunc("/generate", rt.generate)
	mux.HandleFunc("/documentSearch", rt.documentSearch)
	if rt.docs != nil {
		mux.HandleFunc("/documents/", rt.getDocumentByID)
	}
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.cfg.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.BackpressureDelay)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	start := time.Now()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No files provided"})
		return
	}
	defer file.Close()

	if strings.TrimSpace(fileHeader.Filename) == "" {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No files provided"})
		return
	}

	stagingDir, err := os.MkdirTemp("", "upload-*")
	if err != nil {
		writeError(w, r, "create staging dir", err)
		return
	}
	defer os.RemoveAll(stagingDir)

	stagedPath := filepath.Join(stagingDir, filepath.Base(fileHeader.Filename))
	staged, err := os.Create(stagedPath)
	if err != nil {
		writeError(w, r, "stage upload", err)
		return
	}
	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		writeError(w, r, "stage upload", err)
		return
	}
	if err := staged.Close(); err != nil {
		writeError(w, r, "stage upload", err)
		return
	}

	doc, err := rt.ingestor.Ingest(r.Context(), stagedPath, fileHeader.Filename)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidFilename) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "No files provided"})
			return
		}
		if rt.metrics != nil {
			rt.metrics.RecordIngest(serviceName, "failed", 0, time.Since(start))
		}
		writeError(w, r, "ingest document", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordIngest(serviceName, "ready", doc.ChunkCount, time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "File uploaded successfully"})
}

// Prompt is the request body for /generate. UseKnowledgeBase is a
// pointer so an absent field defaults to true rather than false.
type Prompt struct {
	Question         string `json:"question"`
	Context          string `json:"context"`
	UseKnowledgeBase *bool  `json:"use_knowledge_base"`
	NumTokens        int    `json:"num_tokens"`
}

func (rt *Router) generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var prompt Prompt
	if err := json.NewDecoder(r.Body).Decode(&prompt); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(prompt.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	useKB := true
	if prompt.UseKnowledgeBase != nil {
		useKB = *prompt.UseKnowledgeBase
	}
	numTokens := prompt.NumTokens
	if numTokens <= 0 {
		numTokens = rt.cfg.GenMaxTokens
	}

	fragments, err := rt.streamer.StreamAnswer(r.Context(), domain.PromptRequest{
		Question:         prompt.Question,
		Context:          prompt.Context,
		UseKnowledgeBase: useKB,
		NumTokens:        numTokens,
	})
	if err != nil {
		writeError(w, r, "start answer stream", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	sent := 0
	for frag := range fragments {
		if frag.Err != nil {
			slog.Error("answer_stream_aborted",
				"request_id", requestIDFromContext(r.Context()),
				"fragments_sent", sent,
				"error", frag.Err,
			)
			break
		}
		if _, err := io.WriteString(w, frag.Text); err != nil {
			slog.Warn("answer_stream_client_gone",
				"request_id", requestIDFromContext(r.Context()),
				"error", err,
			)
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
		sent++
	}

	if rt.metrics != nil {
		rt.metrics.RecordStreamFragments(serviceName, sent)
	}
}

type searchRequest struct {
	Content string `json:"content"`
	NumDocs int    `json:"num_docs"`
}

func (rt *Router) documentSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	numDocs := req.NumDocs
	if numDocs <= 0 {
		numDocs = rt.cfg.RAGTopK
	}

	start := time.Now()
	results, err := rt.retriever.Retrieve(r.Context(), req.Content, numDocs)
	if err != nil {
		writeError(w, r, "document search", err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrievalObservation(serviceName, "/documentSearch", len(results), time.Since(start))
	}
	writeJSON(w, http.StatusOK, results)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"operation", operation,
			"error", err,
		)
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}
