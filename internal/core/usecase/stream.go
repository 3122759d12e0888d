package usecase

import (
	"context"
	"fmt"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
	"github.com/mkuznetsov/rag-chain-server/internal/core/ports"
)

const defaultMaxTokens = 500

type StreamAnswerUseCase struct {
	retriever ports.DocumentRetriever
	completer ports.CompletionStreamer
	topK      int
}

func NewStreamAnswerUseCase(
	retriever ports.DocumentRetriever,
	completer ports.CompletionStreamer,
	topK int,
) *StreamAnswerUseCase {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &StreamAnswerUseCase{
		retriever: retriever,
		completer: completer,
		topK:      topK,
	}
}

// StreamAnswer builds either a grounded prompt (retrieval first) or a
// direct prompt from the caller-supplied context, then hands off to the
// completion provider. Fragments flow through untouched; a mid-stream
// provider failure ends the stream without retry.
func (uc *StreamAnswerUseCase) StreamAnswer(ctx context.Context, req domain.PromptRequest) (<-chan domain.Fragment, error) {
	maxTokens := req.NumTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var prompt string
	if req.UseKnowledgeBase {
		results, err := uc.retriever.Retrieve(ctx, req.Question, uc.topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve context: %w", err)
		}
		prompt = buildGroundedPrompt(req.Question, results)
	} else {
		prompt = buildDirectPrompt(req.Context, req.Question)
	}

	fragments, err := uc.completer.StreamCompletion(ctx, prompt, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("start completion stream: %w", err)
	}
	return fragments, nil
}
