// Package detector decides whether a product photo depicts a printed label
// (nutrition table, ingredients list, barcode, manufacturer text) rather
// than an ordinary product shot. It is the pre-filter in front of the
// structured extraction pipeline.
package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "go-label-detector/internal/errors"
	"go-label-detector/internal/logger"
	"go-label-detector/internal/storage"
	"go-label-detector/pkg/models"
)

// Preprocessor normalizes raw image bytes into an OCR-friendly buffer.
type Preprocessor interface {
	Preprocess(data []byte) ([]byte, error)
}

// Recognizer runs OCR over preprocessed image bytes.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte) (*models.OCRResult, error)
}

// ImageRef identifies one image in a batch by its external ID.
type ImageRef struct {
	ID  string
	URL string
}

// LabelDetector runs the full per-image pipeline: fetch, preprocess, OCR,
// density analysis, signal detection, scoring. It owns no mutable state
// beyond its collaborators and is safe for concurrent use.
type LabelDetector struct {
	fetcher      storage.Fetcher
	preprocessor Preprocessor
	recognizer   Recognizer
	signals      *SignalDetector
	scorer       *Scorer

	// concurrency bounds simultaneous per-image pipelines in a batch. Keep
	// it equal to the OCR pool size: the pool is the true parallelism
	// bound, and extra goroutines would only block on client checkout.
	concurrency int
}

// New creates a LabelDetector.
func New(fetcher storage.Fetcher, preprocessor Preprocessor, recognizer Recognizer,
	signalCfg SignalConfig, scoringCfg ScoringConfig, concurrency int) *LabelDetector {
	if concurrency < 1 {
		concurrency = 1
	}
	return &LabelDetector{
		fetcher:      fetcher,
		preprocessor: preprocessor,
		recognizer:   recognizer,
		signals:      NewSignalDetector(signalCfg),
		scorer:       NewScorer(scoringCfg),
		concurrency:  concurrency,
	}
}

// DetectLabel runs the pipeline for a single image. Acquisition and OCR
// errors propagate to the caller, which owns the retry decision; empty OCR
// output is not an error and yields a low or zero score.
func (d *LabelDetector) DetectLabel(ctx context.Context, imageURL string) (*models.LabelDetectionResult, error) {
	start := time.Now()

	data, err := d.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}

	width, height, err := storage.Dimensions(data)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to read image dimensions", err)
	}

	processed, err := d.preprocessor.Preprocess(data)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to preprocess image", err)
	}

	ocr, err := d.recognizer.Recognize(ctx, processed)
	if err != nil {
		return nil, apperrors.NewOCRError("text recognition failed", err)
	}

	if ocr.Text == "" && len(ocr.Words) == 0 {
		logger.WithFields(logrus.Fields{
			"url":    imageURL,
			"width":  width,
			"height": height,
		}).Warn("OCR produced no text for image")
	}

	density := AnalyzeTextDensity(ocr, width, height)
	barcodeQR := d.signals.DetectBarcodeQR(ocr)
	signals := SignalSummary{
		Nutrition:    d.signals.HasNutritionInfo(ocr),
		Ingredients:  d.signals.HasIngredientList(ocr),
		Storage:      d.signals.HasStorageInfo(ocr),
		Manufacturer: d.signals.HasManufacturerInfo(ocr),
	}

	verdict := d.scorer.Score(density, barcodeQR, signals, ocr)

	result := &models.LabelDetectionResult{
		IsProductLabel: verdict.IsLabel,
		Confidence:     verdict.Confidence,
		Reasoning:      verdict.Reasoning,
		Metrics: models.LabelMetrics{
			TextCoverage:          density.TextCoveragePercentage,
			TextBlockCount:        density.TextBlockCount,
			WordCount:             density.WordsDetected,
			HasBarcode:            barcodeQR.HasBarcode,
			HasQRCode:             barcodeQR.HasQRCode,
			AverageTextConfidence: density.AverageWordConfidence,
		},
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	logger.WithFields(logrus.Fields{
		"url":                imageURL,
		"is_product_label":   result.IsProductLabel,
		"score":              verdict.Score,
		"confidence":         result.Confidence,
		"processing_time_ms": result.ProcessingTimeMs,
	}).Debug("label detection completed")

	return result, nil
}

// DetectLabelsInBatch runs the pipeline over many images with bounded
// concurrency and returns one result per image ID. Failures are isolated:
// a failing image yields a zero-confidence result whose reasoning describes
// the error, and never aborts the rest of the batch.
func (d *LabelDetector) DetectLabelsInBatch(ctx context.Context, images []ImageRef) map[string]models.LabelDetectionResult {
	results := make(map[string]models.LabelDetectionResult, len(images))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, d.concurrency)

	for _, img := range images {
		wg.Add(1)
		go func(img ImageRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := d.DetectLabel(ctx, img.URL)
			if err != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"image_id": img.ID,
					"url":      img.URL,
				}).Warn("batch image failed, recording zero-confidence result")
				result = failureResult(err)
			}

			mu.Lock()
			results[img.ID] = *result
			mu.Unlock()
		}(img)
	}

	wg.Wait()
	return results
}

func failureResult(err error) *models.LabelDetectionResult {
	return &models.LabelDetectionResult{
		IsProductLabel: false,
		Confidence:     0,
		Reasoning:      fmt.Sprintf("detection failed: %v", err),
	}
}
