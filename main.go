package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"timecast/internal/ai"
	"timecast/internal/auth"
	"timecast/internal/config"
	"timecast/internal/pipeline"
	"timecast/internal/server"
	"timecast/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	records, err := store.NewRecordStore(cfg.DataFile)
	if err != nil {
		log.Error("failed to open record store", "error", err)
		os.Exit(1)
	}

	blobs, err := store.NewBlobStore(cfg.AudioDir)
	if err != nil {
		log.Error("failed to open audio store", "error", err)
		os.Exit(1)
	}

	verifier, err := auth.NewGoogleVerifier(cfg.GoogleClientID)
	if err != nil {
		log.Error("failed to initialize identity verifier", "error", err)
		os.Exit(1)
	}

	text, speech, err := buildProviders(cfg)
	if err != nil {
		log.Error("failed to initialize model provider", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	generator := pipeline.NewGenerator(text, speech, blobs, log)
	srv := server.New(cfg, records, blobs, verifier, generator, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("timecast listening", "port", cfg.Port, "provider", cfg.Provider)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("timecast stopped gracefully")
}

func buildProviders(cfg *config.Config) (ai.TextProvider, ai.SpeechProvider, error) {
	if cfg.Provider == config.ProviderOpenAI {
		client, err := ai.NewOpenAIClient(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}

	client, err := ai.NewGeminiClient(ai.GeminiConfig{
		APIKey:      cfg.GeminiAPIKey,
		APIVersion:  cfg.GeminiAPIVersion,
		TextModel:   cfg.GeminiModel,
		SpeechModel: cfg.GeminiTTSModel,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}
