package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q, want 8080", cfg.APIPort)
	}
	if cfg.RAGTopK != 4 {
		t.Fatalf("RAGTopK = %d, want 4", cfg.RAGTopK)
	}
	if cfg.GenMaxTokens != 500 {
		t.Fatalf("GenMaxTokens = %d, want 500", cfg.GenMaxTokens)
	}
	if cfg.PostgresDSN != "" {
		t.Fatalf("PostgresDSN = %q, want empty", cfg.PostgresDSN)
	}
	if cfg.VectorBackend != "qdrant" {
		t.Fatalf("VectorBackend = %q, want qdrant", cfg.VectorBackend)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9191")
	t.Setenv("RAG_TOP_K", "7")
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()

	if cfg.APIPort != "9191" {
		t.Fatalf("APIPort = %q, want 9191", cfg.APIPort)
	}
	if cfg.RAGTopK != 7 {
		t.Fatalf("RAGTopK = %d, want 7", cfg.RAGTopK)
	}
	if cfg.ChunkSize != 900 {
		t.Fatalf("ChunkSize = %d, want fallback 900 on bad value", cfg.ChunkSize)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	t.Setenv("API_PORT", "9191")
	t.Setenv("OLLAMA_URL", "http://env:11434")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("api_port: \"7070\"\nrag_top_k: 2\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.APIPort != "7070" {
		t.Fatalf("APIPort = %q, want file value 7070", cfg.APIPort)
	}
	if cfg.RAGTopK != 2 {
		t.Fatalf("RAGTopK = %d, want file value 2", cfg.RAGTopK)
	}
	if cfg.OllamaURL != "http://env:11434" {
		t.Fatalf("OllamaURL = %q, want env value kept", cfg.OllamaURL)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
