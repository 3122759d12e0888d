package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
	"github.com/mkuznetsov/rag-chain-server/internal/core/ports"
)

const defaultTopK = 4

type RetrieveUseCase struct {
	embedder ports.Embedder
	vectorDB ports.VectorStore
}

func NewRetrieveUseCase(embedder ports.Embedder, vectorDB ports.VectorStore) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		vectorDB: vectorDB,
	}
}

// Retrieve embeds the query, asks the vector store for the nearest
// neighbours and decodes each hit's own source metadata. An empty query
// or an empty index yields an empty result, never an error.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = defaultTopK
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.vectorDB.Search(ctx, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("search vector store: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		source, err := domain.DecodeSource(hit.Source)
		if err != nil {
			// Foreign records without the metadata codec stay traceable
			// under their stored name.
			source = hit.Source
		}
		results = append(results, domain.SearchResult{
			Score:   hit.Score,
			Source:  source,
			Content: hit.Text,
		})
	}

	// Stores usually return ranked hits already; the contract to callers
	// is non-increasing score regardless, with stable ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
