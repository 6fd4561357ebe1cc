package detector

import (
	"fmt"
	"math"
	"strings"

	"go-label-detector/pkg/models"
)

// NoLabelCharacteristics is the reasoning sentinel when no criterion fired.
const NoLabelCharacteristics = "no label characteristics detected"

// ScoringConfig holds every weight and threshold of the scoring engine.
// Hoisting them out of the code keeps unit tests deterministic and lets a
// deployment tune the trade-off without a rebuild.
type ScoringConfig struct {
	// Raw text volume
	LongTextChars    int
	LongTextPoints   float64
	MediumTextChars  int
	MediumTextPoints float64

	// Text coverage: ratios above CoverageMinRatio earn points linearly,
	// reaching CoverageMaxPoints at CoverageFullRatio and capping there.
	CoverageMinRatio  float64
	CoverageFullRatio float64
	CoverageMaxPoints float64

	// Text block count tiers
	ManyBlocks          int
	ManyBlocksPoints    float64
	SeveralBlocks       int
	SeveralBlocksPoints float64
	PairBlocksPoints    float64

	// Word count tiers
	WordTiers []WordTier

	// Domain signals
	NutritionPoints    float64
	IngredientsPoints  float64
	StoragePoints      float64
	ManufacturerPoints float64
	BarcodeQRPoints    float64

	// LabelThreshold is the minimum total (out of 100) to call the image a
	// label. It is intentionally permissive: missing a real label costs
	// more downstream than forwarding a false positive.
	LabelThreshold float64
}

// WordTier awards Points when the word count is at least MinWords.
type WordTier struct {
	MinWords int
	Points   float64
}

// DefaultScoringConfig returns the stock weights (max total 100).
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		LongTextChars:    100,
		LongTextPoints:   15,
		MediumTextChars:  50,
		MediumTextPoints: 8,

		CoverageMinRatio:  0.1,
		CoverageFullRatio: 0.4,
		CoverageMaxPoints: 20,

		ManyBlocks:          5,
		ManyBlocksPoints:    15,
		SeveralBlocks:       3,
		SeveralBlocksPoints: 10,
		PairBlocksPoints:    5,

		WordTiers: []WordTier{
			{MinWords: 30, Points: 15},
			{MinWords: 20, Points: 12},
			{MinWords: 10, Points: 8},
			{MinWords: 5, Points: 4},
		},

		NutritionPoints:    20,
		IngredientsPoints:  10,
		StoragePoints:      5,
		ManufacturerPoints: 5,
		BarcodeQRPoints:    5,

		LabelThreshold: 45,
	}
}

// SignalSummary carries the boolean detector outcomes into scoring.
type SignalSummary struct {
	Nutrition    bool
	Ingredients  bool
	Storage      bool
	Manufacturer bool
}

// ScoreResult is the scoring engine's verdict before it is packaged into a
// LabelDetectionResult.
type ScoreResult struct {
	Score      float64
	Confidence float64
	IsLabel    bool
	Reasoning  string
}

// Scorer fuses density metrics and signal detections into a weighted score.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score runs the additive multi-criterion evaluation. Criteria are
// independent and non-exclusive; their order only fixes the reasoning
// trail, not the total.
func (s *Scorer) Score(density models.TextDensityAnalysis, barcodeQR models.BarcodeQRAnalysis, signals SignalSummary, ocr *models.OCRResult) ScoreResult {
	var score float64
	var reasons []string

	textLen := 0
	if ocr != nil {
		textLen = len([]rune(ocr.Text))
	}
	switch {
	case textLen > s.cfg.LongTextChars:
		score += s.cfg.LongTextPoints
		reasons = append(reasons, fmt.Sprintf("substantial text volume (%d chars)", textLen))
	case textLen >= s.cfg.MediumTextChars:
		score += s.cfg.MediumTextPoints
		reasons = append(reasons, fmt.Sprintf("moderate text volume (%d chars)", textLen))
	}

	coverageRatio := density.TextCoveragePercentage / 100
	if coverageRatio > s.cfg.CoverageMinRatio {
		points := math.Min(s.cfg.CoverageMaxPoints,
			coverageRatio/s.cfg.CoverageFullRatio*s.cfg.CoverageMaxPoints)
		score += points
		reasons = append(reasons, fmt.Sprintf("text covers %.1f%% of image", density.TextCoveragePercentage))
	}

	switch {
	case density.TextBlockCount >= s.cfg.ManyBlocks:
		score += s.cfg.ManyBlocksPoints
		reasons = append(reasons, fmt.Sprintf("many distinct text blocks (%d)", density.TextBlockCount))
	case density.TextBlockCount >= s.cfg.SeveralBlocks:
		score += s.cfg.SeveralBlocksPoints
		reasons = append(reasons, fmt.Sprintf("several text blocks (%d)", density.TextBlockCount))
	case density.TextBlockCount == 2:
		score += s.cfg.PairBlocksPoints
		reasons = append(reasons, "two text blocks")
	}

	for _, tier := range s.cfg.WordTiers {
		if density.WordsDetected >= tier.MinWords {
			score += tier.Points
			reasons = append(reasons, fmt.Sprintf("%d words detected", density.WordsDetected))
			break
		}
	}

	if signals.Nutrition {
		score += s.cfg.NutritionPoints
		reasons = append(reasons, "nutrition information detected")
	}
	if signals.Ingredients {
		score += s.cfg.IngredientsPoints
		reasons = append(reasons, "ingredient list detected")
	}
	if signals.Storage {
		score += s.cfg.StoragePoints
		reasons = append(reasons, "storage instructions detected")
	}
	if signals.Manufacturer {
		score += s.cfg.ManufacturerPoints
		reasons = append(reasons, "manufacturer information detected")
	}
	if barcodeQR.HasBarcode || barcodeQR.HasQRCode {
		score += s.cfg.BarcodeQRPoints
		reasons = append(reasons, "barcode or QR indicators detected")
	}

	reasoning := NoLabelCharacteristics
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}

	return ScoreResult{
		Score:      score,
		Confidence: math.Min(score/100, 1),
		IsLabel:    score >= s.cfg.LabelThreshold,
		Reasoning:  reasoning,
	}
}
