package container

import (
	"fmt"
	"net/http"

	"go-label-detector/internal/config"
	"go-label-detector/internal/detector"
	"go-label-detector/internal/ocr"
	"go-label-detector/internal/preprocess"
	"go-label-detector/internal/storage"
	"go-label-detector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config  *config.Config
	fetcher storage.Fetcher
	ocrPool *ocr.Pool
	labels  *detector.LabelDetector
	handler http.Handler
}

// NewContainer creates a new dependency injection container.
func NewContainer(cfg *config.Config) (*Container, error) {
	var fetcher storage.Fetcher
	if cfg.AzureStorageAccount != "" {
		azure, err := storage.NewAzureFetcher(cfg.AzureStorageAccount, cfg.AzureStorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure storage: %w", err)
		}
		fetcher = azure
	} else {
		fetcher = storage.NewHTTPFetcher(cfg.ImageFetchTimeout)
	}

	preprocessor := preprocess.New(cfg.PreprocessTargetWidth, cfg.PreprocessBinarize)

	ocrPool, err := ocr.NewPool(cfg.OCRPoolSize, cfg.OCRLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR pool: %w", err)
	}

	scoringCfg := detector.DefaultScoringConfig()
	scoringCfg.LabelThreshold = cfg.LabelScoreThreshold

	labels := detector.New(
		fetcher,
		preprocessor,
		ocrPool,
		detector.DefaultSignalConfig(),
		scoringCfg,
		cfg.BatchConcurrency,
	)

	handler := transport.NewHandler(labels, cfg)

	return &Container{
		config:  cfg,
		fetcher: fetcher,
		ocrPool: ocrPool,
		labels:  labels,
		handler: handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases owned resources, in particular the OCR clients.
func (c *Container) Close() error {
	return c.ocrPool.Close()
}
