package domain

// RetrievedChunk is a raw vector store hit. Source still carries the
// encoded filename exactly as it was written at ingestion time.
type RetrievedChunk struct {
	Source string
	Text   string
	Score  float64
}

// SearchResult is a decoded, caller-facing retrieval hit.
type SearchResult struct {
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
	Content string  `json:"content"`
}

// PromptRequest describes one /generate call.
type PromptRequest struct {
	Question         string
	Context          string
	UseKnowledgeBase bool
	NumTokens        int
}

// Fragment is one piece of a streamed answer. A non-nil Err means the
// stream ended abnormally; fragments already delivered stand.
type Fragment struct {
	Text string
	Err  error
}
