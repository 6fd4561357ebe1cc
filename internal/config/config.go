package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Values come from environment
// variables, optionally seeded from a .env file in the working directory.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Azure Blob Storage credentials. When the account is set, images are
	// fetched from blob storage instead of plain HTTP.
	AzureStorageAccount string
	AzureStorageKey     string

	// OCR engine pool
	OCRPoolSize int
	OCRLanguage string

	// Batch concurrency bound. Kept equal to OCRPoolSize unless overridden:
	// the OCR pool is the true bound on parallelism, so a larger value only
	// adds goroutines blocked on client checkout.
	BatchConcurrency int

	// Preprocessing policy
	PreprocessTargetWidth int
	PreprocessBinarize    bool

	// Minimum weighted score (out of 100) to call an image a label.
	LabelScoreThreshold float64
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Best-effort .env load; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Host:                  getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                  getEnvOrDefault("PORT", "8080"),
		RequestTimeout:        parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:     parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize:    parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		AzureStorageAccount:   getEnvOrDefault("AZURE_STORAGE_ACCOUNT", ""),
		AzureStorageKey:       getEnvOrDefault("AZURE_STORAGE_KEY", ""),
		OCRPoolSize:           int(parseIntOrDefault("OCR_POOL_SIZE", 4)),
		OCRLanguage:           getEnvOrDefault("OCR_LANGUAGE", "spa+eng"),
		BatchConcurrency:      int(parseIntOrDefault("BATCH_CONCURRENCY", 0)),
		PreprocessTargetWidth: int(parseIntOrDefault("PREPROCESS_TARGET_WIDTH", 1500)),
		PreprocessBinarize:    getEnvOrDefault("PREPROCESS_BINARIZE", "true") == "true",
		LabelScoreThreshold:   parseFloatOrDefault("LABEL_SCORE_THRESHOLD", 45),
	}

	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = cfg.OCRPoolSize
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout)
	}
	if cfg.AzureStorageAccount != "" && cfg.AzureStorageKey == "" {
		return nil, fmt.Errorf("AZURE_STORAGE_KEY is required when AZURE_STORAGE_ACCOUNT is set")
	}
	if cfg.OCRPoolSize < 1 {
		return nil, fmt.Errorf("OCR_POOL_SIZE must be >= 1 (got %d)", cfg.OCRPoolSize)
	}
	if cfg.PreprocessTargetWidth < 100 {
		return nil, fmt.Errorf("PREPROCESS_TARGET_WIDTH must be >= 100 (got %d)", cfg.PreprocessTargetWidth)
	}
	if cfg.LabelScoreThreshold <= 0 || cfg.LabelScoreThreshold > 100 {
		return nil, fmt.Errorf("LABEL_SCORE_THRESHOLD must be in (0,100] (got %v)", cfg.LabelScoreThreshold)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
