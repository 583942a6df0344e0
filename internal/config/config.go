package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port           string
	DataFile       string
	AudioDir       string
	GoogleClientID string

	Provider string

	GeminiAPIKey     string
	GeminiAPIVersion string
	GeminiModel      string
	GeminiTTSModel   string

	OpenAIAPIKey string

	GenerateTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "3000"),
		DataFile:         getEnv("DATA_FILE", "data/podcasts.json"),
		AudioDir:         getEnv("AUDIO_DIR", "public/audio"),
		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
		Provider:         strings.ToLower(getEnv("PROVIDER", ProviderGemini)),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", ""),
		GeminiTTSModel:   getEnv("GEMINI_TTS_MODEL", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		GenerateTimeout:  10 * time.Minute,
	}

	if raw := os.Getenv("GENERATE_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GENERATE_TIMEOUT format: %w", err)
		}
		cfg.GenerateTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown PROVIDER %q", c.Provider)
	}

	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("GENERATE_TIMEOUT must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
