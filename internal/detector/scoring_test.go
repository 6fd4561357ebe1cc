package detector

import (
	"math"
	"strings"
	"testing"

	"go-label-detector/pkg/models"
)

const nutritionLabelText = "INFORMACION NUTRICIONAL Calorias 120kcal Proteina 5g Grasa 2g " +
	"Carbohidratos 20g Ingredientes: leche, azucar, agua, cultivo"

func TestScore_NutritionLabelScenario(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	density := models.TextDensityAnalysis{
		TextCoveragePercentage: 30,
		TextBlockCount:         6,
		WordsDetected:          20,
	}
	signals := SignalSummary{Nutrition: true, Ingredients: true}

	result := scorer.Score(density, models.BarcodeQRAnalysis{}, signals,
		&models.OCRResult{Text: nutritionLabelText})

	// 15 (text) + 15 (coverage 0.3/0.4*20) + 15 (blocks) + 12 (words) +
	// 20 (nutrition) + 10 (ingredients) = 87
	if math.Abs(result.Score-87) > 1e-9 {
		t.Errorf("Score = %v, want 87", result.Score)
	}
	if !result.IsLabel {
		t.Error("expected IsLabel = true")
	}
	if math.Abs(result.Confidence-0.87) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.87", result.Confidence)
	}
	for _, expected := range []string{
		"substantial text volume",
		"text covers",
		"many distinct text blocks",
		"nutrition information detected",
		"ingredient list detected",
	} {
		if !strings.Contains(result.Reasoning, expected) {
			t.Errorf("reasoning %q missing %q", result.Reasoning, expected)
		}
	}
}

func TestScore_OrdinaryPhotoScenario(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	density := models.TextDensityAnalysis{
		TextCoveragePercentage: 2,
		TextBlockCount:         1,
		WordsDetected:          8,
	}

	result := scorer.Score(density, models.BarcodeQRAnalysis{}, SignalSummary{},
		&models.OCRResult{Text: "Photo of a smiling child on a beach"})

	// Only the 5-9 word tier fires: 4 points.
	if result.Score != 4 {
		t.Errorf("Score = %v, want 4", result.Score)
	}
	if result.IsLabel {
		t.Error("expected IsLabel = false")
	}
}

func TestScore_CoverageCapBoundary(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	tests := []struct {
		name     string
		coverage float64 // percentage
		expected float64 // points, which equal the total here
	}{
		{name: "exactly at full ratio", coverage: 40, expected: 20},
		{name: "beyond full ratio stays capped", coverage: 80, expected: 20},
		{name: "below minimum earns nothing", coverage: 10, expected: 0},
		{name: "halfway to full ratio", coverage: 20, expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			density := models.TextDensityAnalysis{TextCoveragePercentage: tt.coverage}
			result := scorer.Score(density, models.BarcodeQRAnalysis{}, SignalSummary{}, &models.OCRResult{})
			if result.Score != tt.expected {
				t.Errorf("coverage %v%%: Score = %v, want %v", tt.coverage, result.Score, tt.expected)
			}
		})
	}
}

func TestScore_WordCountMonotonicity(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	previous := -1.0
	for words := 0; words <= 40; words++ {
		density := models.TextDensityAnalysis{WordsDetected: words}
		result := scorer.Score(density, models.BarcodeQRAnalysis{}, SignalSummary{}, &models.OCRResult{})
		if result.Score < previous {
			t.Fatalf("score decreased from %v to %v at %d words", previous, result.Score, words)
		}
		previous = result.Score
	}
}

func TestScore_TextVolumeTiers(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	tests := []struct {
		name     string
		textLen  int
		expected float64
	}{
		{name: "below medium", textLen: 49, expected: 0},
		{name: "medium lower bound", textLen: 50, expected: 8},
		{name: "medium upper bound", textLen: 100, expected: 8},
		{name: "long text", textLen: 101, expected: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ocr := &models.OCRResult{Text: strings.Repeat("a", tt.textLen)}
			result := scorer.Score(models.TextDensityAnalysis{}, models.BarcodeQRAnalysis{}, SignalSummary{}, ocr)
			if result.Score != tt.expected {
				t.Errorf("text length %d: Score = %v, want %v", tt.textLen, result.Score, tt.expected)
			}
		})
	}
}

func TestScore_BlockCountTiers(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	tests := []struct {
		blocks   int
		expected float64
	}{
		{blocks: 0, expected: 0},
		{blocks: 1, expected: 0},
		{blocks: 2, expected: 5},
		{blocks: 3, expected: 10},
		{blocks: 4, expected: 10},
		{blocks: 5, expected: 15},
		{blocks: 12, expected: 15},
	}

	for _, tt := range tests {
		density := models.TextDensityAnalysis{TextBlockCount: tt.blocks}
		result := scorer.Score(density, models.BarcodeQRAnalysis{}, SignalSummary{}, &models.OCRResult{})
		if result.Score != tt.expected {
			t.Errorf("%d blocks: Score = %v, want %v", tt.blocks, result.Score, tt.expected)
		}
	}
}

func TestScore_SignalPoints(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	result := scorer.Score(models.TextDensityAnalysis{},
		models.BarcodeQRAnalysis{HasBarcode: true},
		SignalSummary{Nutrition: true, Ingredients: true, Storage: true, Manufacturer: true},
		&models.OCRResult{})

	// 20 + 10 + 5 + 5 + 5
	if result.Score != 45 {
		t.Errorf("Score = %v, want 45", result.Score)
	}
	// The threshold is inclusive: domain signals alone can reach it.
	if !result.IsLabel {
		t.Error("expected IsLabel = true at exactly the threshold")
	}
}

func TestScore_NothingFires(t *testing.T) {
	scorer := NewScorer(DefaultScoringConfig())

	result := scorer.Score(models.TextDensityAnalysis{}, models.BarcodeQRAnalysis{}, SignalSummary{}, &models.OCRResult{})

	if result.Score != 0 {
		t.Errorf("Score = %v, want 0", result.Score)
	}
	if result.IsLabel {
		t.Error("expected IsLabel = false")
	}
	if result.Reasoning != NoLabelCharacteristics {
		t.Errorf("Reasoning = %q, want sentinel %q", result.Reasoning, NoLabelCharacteristics)
	}
}

func TestScore_ConfidenceCappedAtOne(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.NutritionPoints = 200 // force an overshoot
	scorer := NewScorer(cfg)

	result := scorer.Score(models.TextDensityAnalysis{}, models.BarcodeQRAnalysis{},
		SignalSummary{Nutrition: true}, &models.OCRResult{})

	if result.Confidence != 1 {
		t.Errorf("Confidence = %v, want capped 1", result.Confidence)
	}
}
