// Package ocr wraps a pool of Tesseract clients behind a single Recognize
// call. Clients are owned by the pool, checked out of a buffered channel,
// and returned after each recognition, so the pool size is an exact bound
// on concurrent engine usage.
package ocr

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gonum.org/v1/gonum/stat"

	"go-label-detector/pkg/models"
)

// Client is the subset of the Tesseract client the pool needs. It exists so
// tests can substitute a fake engine.
type Client interface {
	SetImageFromBytes(data []byte) error
	Text() (string, error)
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
	Close() error
}

// newClient builds a real Tesseract client. Overridden in tests.
var newClient = func(language string) (Client, error) {
	client := gosseract.NewClient()
	if language != "" {
		if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR language %q: %w", language, err)
		}
	}
	return client, nil
}

// Pool owns a fixed set of OCR clients.
type Pool struct {
	clients   chan Client
	size      int
	closeOnce sync.Once
}

// NewPool initializes size Tesseract clients for the given language string
// (e.g. "spa+eng"). Initialization failure is fatal to the pool: any
// already-created clients are closed before returning the error.
func NewPool(size int, language string) (*Pool, error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}

	p := &Pool{
		clients: make(chan Client, size),
		size:    size,
	}

	for i := 0; i < size; i++ {
		client, err := newClient(language)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to initialize OCR worker %d: %w", i, err)
		}
		p.clients <- client
	}

	return p, nil
}

// Size returns the number of clients in the pool.
func (p *Pool) Size() int {
	return p.size
}

// Recognize checks out a client, runs recognition on data, and returns the
// text with per-word geometry when the engine provides it. Blocks until a
// client is free or ctx is done.
func (p *Pool) Recognize(ctx context.Context, data []byte) (*models.OCRResult, error) {
	var client Client
	select {
	case client = <-p.clients:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { p.clients <- client }()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to load image into OCR engine: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognition failed: %w", err)
	}

	// Word geometry is best-effort: some configurations only return the
	// flat string, and the analyzers handle that shape.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		boxes = nil
	}

	words := make([]models.OCRWord, 0, len(boxes))
	confidences := make([]float64, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		words = append(words, models.OCRWord{
			Text:       word,
			Confidence: box.Confidence,
			BBox: models.BBox{
				X0: box.Box.Min.X,
				Y0: box.Box.Min.Y,
				X1: box.Box.Max.X,
				Y1: box.Box.Max.Y,
			},
		})
		confidences = append(confidences, box.Confidence)
	}

	confidence := 0.0
	if len(confidences) > 0 {
		confidence = stat.Mean(confidences, nil)
	}

	return &models.OCRResult{
		Text:       strings.TrimSpace(text),
		Confidence: confidence,
		Words:      words,
	}, nil
}

// Close shuts down every client. Safe to call more than once. Callers must
// not race Close with Recognize.
func (p *Pool) Close() error {
	var firstErr error
	p.closeOnce.Do(func() {
		close(p.clients)
		for client := range p.clients {
			if err := client.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}
