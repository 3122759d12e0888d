package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/mkuznetsov/rag-chain-server/internal/adapters/http"
	"github.com/mkuznetsov/rag-chain-server/internal/bootstrap"
	"github.com/mkuznetsov/rag-chain-server/internal/config"
	"github.com/mkuznetsov/rag-chain-server/internal/observability/logging"
	"github.com/mkuznetsov/rag-chain-server/internal/observability/metrics"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file overlaid on environment values")
	flag.Parse()

	var cfg config.Config
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			slog.Error("load_config_failed", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Load()
	}

	logger := logging.NewJSONLogger("rag-chain-server", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("rag-chain-server")
	router := httpadapter.NewRouter(
		httpadapter.Config{
			RAGTopK:        cfg.RAGTopK,
			GenMaxTokens:   cfg.GenMaxTokens,
			RateLimitRPS:   cfg.APIRateLimitRPS,
			RateLimitBurst: cfg.APIRateLimitBurst,
			MaxInFlight:    cfg.APIMaxInFlight,
		},
		app.Ingestor,
		app.Retriever,
		app.Streamer,
		app.Documents,
		serverMetrics,
	).Handler()

	// No WriteTimeout: /generate holds the response open for the
	// duration of a model completion.
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
