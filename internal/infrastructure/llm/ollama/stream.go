package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkuznetsov/rag-chain-server/internal/core/domain"
)

type Completer struct {
	client *Client
}

func NewCompleter(client *Client) *Completer {
	return &Completer{client: client}
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// StreamCompletion opens an NDJSON generation stream and forwards each
// response fragment on an unbuffered channel, so the consumer paces the
// read. Cancelling ctx closes the response body and stops generation
// upstream.
func (c *Completer) StreamCompletion(ctx context.Context, prompt string, maxTokens int) (<-chan domain.Fragment, error) {
	reqBody := map[string]any{
		"model":  c.client.genModel,
		"prompt": prompt,
		"stream": true,
	}
	if maxTokens > 0 {
		reqBody["options"] = map[string]any{"num_predict": maxTokens}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.client.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama generate request: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, newHTTPStatusError("generate", resp)
	}

	fragments := make(chan domain.Fragment)
	go func() {
		defer close(fragments)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var chunk generateChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}

			if chunk.Response != "" {
				select {
				case fragments <- domain.Fragment{Text: chunk.Response}:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case fragments <- domain.Fragment{Err: fmt.Errorf("read generate stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return fragments, nil
}
