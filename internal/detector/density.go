package detector

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"go-label-detector/pkg/models"
)

const (
	// gridCellSize buckets word centers into 200-unit cells, the cell size
	// of a 5x5 grid over a nominal 1000x1000 frame. Centers are taken in
	// raw pixel coordinates without rescaling into that frame, so images
	// wider than 1000px can occupy more than 25 cells. This matches the
	// original behavior and downstream thresholds depend on it.
	gridCellSize = 200

	// Assumed average glyph cell when the engine returns no word geometry
	// and text area has to be estimated from character count.
	fallbackGlyphWidth  = 10
	fallbackGlyphHeight = 15

	// Rough lines-to-blocks ratio for the unstructured fallback.
	fallbackLinesPerBlock = 2
)

// AnalyzeTextDensity converts one OCR pass into geometric density metrics
// for an image of the given pixel dimensions. It is a pure function: the
// same inputs always produce the same output and ocr is never mutated.
//
// Three input shapes are handled: structured words with bounding boxes,
// a flat text string with no geometry, and fully empty output (which yields
// an all-zero result, not an error).
func AnalyzeTextDensity(ocr *models.OCRResult, width, height int) models.TextDensityAnalysis {
	if ocr == nil || (len(ocr.Words) == 0 && strings.TrimSpace(ocr.Text) == "") {
		return models.TextDensityAnalysis{}
	}

	if len(ocr.Words) > 0 {
		return analyzeFromWords(ocr.Words, width, height)
	}
	return analyzeFromText(ocr, width, height)
}

func analyzeFromWords(words []models.OCRWord, width, height int) models.TextDensityAnalysis {
	imageArea := float64(width) * float64(height)

	var totalArea float64
	confidences := make([]float64, 0, len(words))
	occupied := make(map[string]struct{})

	for _, word := range words {
		totalArea += word.BBox.Area()
		confidences = append(confidences, word.Confidence)

		cellX := int(word.BBox.CenterX()) / gridCellSize
		cellY := int(word.BBox.CenterY()) / gridCellSize
		occupied[fmt.Sprintf("%d_%d", cellX, cellY)] = struct{}{}
	}

	// Coverage is intentionally not capped here: dense or overlapping
	// boxes can legitimately push it past 100%.
	coverage := 0.0
	if imageArea > 0 {
		coverage = totalArea / imageArea * 100
	}

	return models.TextDensityAnalysis{
		TotalTextArea:          totalArea,
		ImageArea:              imageArea,
		TextCoveragePercentage: coverage,
		TextBlockCount:         len(occupied),
		AverageWordConfidence:  stat.Mean(confidences, nil),
		WordsDetected:          len(words),
	}
}

// analyzeFromText estimates density when the engine returned a flat string
// without word geometry. The area estimate is coarse, so unlike the
// word-based branch its coverage is capped at 100%.
func analyzeFromText(ocr *models.OCRResult, width, height int) models.TextDensityAnalysis {
	imageArea := float64(width) * float64(height)

	charCount := len([]rune(ocr.Text))
	estimatedArea := float64(charCount * fallbackGlyphWidth * fallbackGlyphHeight)
	if estimatedArea > imageArea {
		estimatedArea = imageArea
	}

	coverage := 0.0
	if imageArea > 0 {
		coverage = estimatedArea / imageArea * 100
		if coverage > 100 {
			coverage = 100
		}
	}

	nonEmptyLines := 0
	for _, line := range strings.Split(ocr.Text, "\n") {
		if strings.TrimSpace(line) != "" {
			nonEmptyLines++
		}
	}
	blockCount := nonEmptyLines / fallbackLinesPerBlock
	if blockCount < 1 {
		blockCount = 1
	}

	return models.TextDensityAnalysis{
		TotalTextArea:          estimatedArea,
		ImageArea:              imageArea,
		TextCoveragePercentage: coverage,
		TextBlockCount:         blockCount,
		AverageWordConfidence:  ocr.Confidence,
		WordsDetected:          len(strings.Fields(ocr.Text)),
	}
}
