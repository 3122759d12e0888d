package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

type record struct {
	vector []float32
	source string
	text   string
}

// Store is an embedded brute-force cosine-similarity index. Records are
// append-only; a read-write mutex lets concurrent retrievals proceed
// while ingestions append.
type Store struct {
	mu        sync.RWMutex
	dimension int
	records   []record
}

func NewStore() *Store { return &Store{} }

func (s *Store) IndexChunks(_ context.Context, source string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, vector := range vectors {
		if s.dimension == 0 {
			s.dimension = len(vector)
		}
		if len(vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vector), s.dimension)
		}
		s.records = append(s.records, record{
			vector: vector,
			source: source,
			text:   chunks[i],
		})
	}
	return nil
}

func (s *Store) Search(_ context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || len(s.records) == 0 {
		return nil, nil
	}

	hits := make([]domain.RetrievedChunk, 0, len(s.records))
	for _, rec := range s.records {
		hits = append(hits, domain.RetrievedChunk{
			Source: rec.source,
			Text:   rec.text,
			Score:  cosine(rec.vector, queryVector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
