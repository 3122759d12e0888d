package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	VectorBackend    string
	QdrantURL        string
	QdrantCollection string

	// PostgresDSN empty disables the upload ledger.
	PostgresDSN string

	// NATSURL empty disables ingest notifications.
	NATSURL     string
	NATSSubject string

	ChunkSize    int
	ChunkOverlap int
	RAGTopK      int
	GenMaxTokens int

	APIRateLimitRPS   int
	APIRateLimitBurst int
	APIMaxInFlight    int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		VectorBackend:    mustEnv("VECTOR_BACKEND", "qdrant"),
		QdrantURL:        mustEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: mustEnv("QDRANT_COLLECTION", "documents"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "documents.ingested"),

		ChunkSize:    mustEnvInt("CHUNK_SIZE", 900),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 150),
		RAGTopK:      mustEnvInt("RAG_TOP_K", 4),
		GenMaxTokens: mustEnvInt("GEN_MAX_TOKENS", 500),

		APIRateLimitRPS:   mustEnvInt("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 64),
	}
}

// fileConfig mirrors Config with pointers so an absent key keeps the
// environment value instead of zeroing it.
type fileConfig struct {
	APIPort  *string `yaml:"api_port"`
	LogLevel *string `yaml:"log_level"`

	OllamaURL        *string `yaml:"ollama_url"`
	OllamaGenModel   *string `yaml:"ollama_gen_model"`
	OllamaEmbedModel *string `yaml:"ollama_embed_model"`

	VectorBackend    *string `yaml:"vector_backend"`
	QdrantURL        *string `yaml:"qdrant_url"`
	QdrantCollection *string `yaml:"qdrant_collection"`

	PostgresDSN *string `yaml:"postgres_dsn"`

	NATSURL     *string `yaml:"nats_url"`
	NATSSubject *string `yaml:"nats_subject"`

	ChunkSize    *int `yaml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap"`
	RAGTopK      *int `yaml:"rag_top_k"`
	GenMaxTokens *int `yaml:"gen_max_tokens"`

	APIRateLimitRPS   *int `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst *int `yaml:"api_rate_limit_burst"`
	APIMaxInFlight    *int `yaml:"api_max_in_flight"`
}

// LoadFile loads from the environment, then overlays keys from a YAML
// file. File values win over environment values.
func LoadFile(path string) (Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	overlayString(&cfg.APIPort, fc.APIPort)
	overlayString(&cfg.LogLevel, fc.LogLevel)
	overlayString(&cfg.OllamaURL, fc.OllamaURL)
	overlayString(&cfg.OllamaGenModel, fc.OllamaGenModel)
	overlayString(&cfg.OllamaEmbedModel, fc.OllamaEmbedModel)
	overlayString(&cfg.VectorBackend, fc.VectorBackend)
	overlayString(&cfg.QdrantURL, fc.QdrantURL)
	overlayString(&cfg.QdrantCollection, fc.QdrantCollection)
	overlayString(&cfg.PostgresDSN, fc.PostgresDSN)
	overlayString(&cfg.NATSURL, fc.NATSURL)
	overlayString(&cfg.NATSSubject, fc.NATSSubject)
	overlayInt(&cfg.ChunkSize, fc.ChunkSize)
	overlayInt(&cfg.ChunkOverlap, fc.ChunkOverlap)
	overlayInt(&cfg.RAGTopK, fc.RAGTopK)
	overlayInt(&cfg.GenMaxTokens, fc.GenMaxTokens)
	overlayInt(&cfg.APIRateLimitRPS, fc.APIRateLimitRPS)
	overlayInt(&cfg.APIRateLimitBurst, fc.APIRateLimitBurst)
	overlayInt(&cfg.APIMaxInFlight, fc.APIMaxInFlight)

	return cfg, nil
}

func overlayString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func overlayInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
