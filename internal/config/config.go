package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	// Auth
	APIKey string

	// Storage. Empty DatabaseURL selects the in-memory store.
	DatabaseURL string

	// Upload limits
	MaxUploadBytes int64

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8080"),
		Env:  envOr("ENV", "development"),

		APIKey: os.Getenv("SURGIVERIFY_API_KEY"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 26214400), // 25MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 26214400
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" && c.Env == "production" {
		return fmt.Errorf("SURGIVERIFY_API_KEY is required in production")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
