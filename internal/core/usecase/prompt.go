package usecase

import (
	"fmt"
	"strings"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

func buildGroundedPrompt(question string, results []domain.SearchResult) string {
	var contextBlock strings.Builder
	for _, result := range results {
		contextBlock.WriteString(result.Content)
		contextBlock.WriteString("\n\n")
	}

	return fmt.Sprintf(`Answer the question using only the context below.
If the context is insufficient, say so directly.

Context:
%s
Question:
%s
`, contextBlock.String(), question)
}

func buildDirectPrompt(contextText, question string) string {
	if strings.TrimSpace(contextText) == "" {
		return question
	}
	return fmt.Sprintf(`Context:
%s

Question:
%s
`, contextText, question)
}
