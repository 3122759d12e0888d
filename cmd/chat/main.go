package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkuznetsov/rag-chain-server/pkg/chatclient"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "RAG chain server base URL")
	modelName := flag.String("model", "llama3.1:8b", "model display name")
	useKB := flag.Bool("kb", true, "ground answers in the knowledge base")
	numTokens := flag.Int("tokens", 500, "maximum answer tokens")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := chatclient.New(*serverURL, *modelName)
	fmt.Printf("chat with %s (prefix with 'search:' or 'upload:', ctrl-d to quit)\n", client.ModelName())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "search:"):
			runSearch(ctx, client, strings.TrimSpace(strings.TrimPrefix(line, "search:")))
		case strings.HasPrefix(line, "upload:"):
			runUpload(ctx, client, strings.Fields(strings.TrimPrefix(line, "upload:")))
		default:
			runPredict(ctx, client, line, *useKB, *numTokens)
		}

		if ctx.Err() != nil {
			break
		}
	}
	fmt.Println()
}

func runSearch(ctx context.Context, client *chatclient.Client, query string) {
	results, err := client.Search(ctx, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		return
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, res := range results {
		fmt.Printf("[%.3f] %s: %s\n", res.Score, res.Source, res.Content)
	}
}

func runUpload(ctx context.Context, client *chatclient.Client, paths []string) {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: upload: <path> [path ...]")
		return
	}
	if err := client.UploadDocuments(ctx, paths); err != nil {
		fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
		return
	}
	fmt.Printf("uploaded %d file(s)\n", len(paths))
}

func runPredict(ctx context.Context, client *chatclient.Client, query string, useKB bool, numTokens int) {
	fragments, err := client.Predict(ctx, query, useKB, numTokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate failed: %v\n", err)
		return
	}
	for frag := range fragments {
		fmt.Print(frag)
	}
	fmt.Println()
}
