package detector

import (
	"regexp"
	"strings"

	"go-label-detector/internal/match"
	"go-label-detector/pkg/models"
)

// SignalConfig holds the keyword vocabularies, thresholds, and pattern sets
// behind the boolean signal detectors. Vocabularies are Spanish-first with
// common English terms; they are data, not behavior, and callers may swap
// them for locale or domain tuning.
type SignalConfig struct {
	NutritionKeywords       []string
	NutritionShortTokens    []string
	NutritionStemPatterns   []string
	IngredientKeywords      []string
	StorageKeywords         []string
	ManufacturerKeywords    []string
	QRKeywords              []string
	BarcodeKeywords         []string

	NutritionThreshold    float64
	IngredientThreshold   float64
	StorageThreshold      float64
	ManufacturerThreshold float64
	BarcodeThreshold      float64

	// MinIngredientMatches is how many ingredient keywords must fuzzy-match
	// before the text counts as an ingredient list; single hits (agua,
	// natural) are too common in ordinary product photos.
	MinIngredientMatches int
}

// DefaultSignalConfig returns the stock vocabularies and thresholds.
func DefaultSignalConfig() SignalConfig {
	return SignalConfig{
		NutritionKeywords: []string{
			"nutricional", "nutrición", "nutricion",
			"información nutricional", "informacion nutricional",
			"calorías", "calorias", "proteína", "proteina",
			"proteínas", "proteinas", "grasa", "grasas",
			"carbohidrato", "carbohidratos", "kcal",
			"valor energético", "valor energetico",
			"azúcares", "azucares", "sodio", "fibra",
			"porción", "porcion",
			"nutrition facts", "calories", "protein", "carbohydrate",
		},
		NutritionShortTokens: []string{"cal", "kcal", "grasa", "prot", "carb", "fibr"},
		NutritionStemPatterns: []string{
			`nutri`, `calor`, `prote`, `carbo`, `informa.*nutri`,
		},
		IngredientKeywords: []string{
			"ingrediente", "ingredientes", "contiene",
			"leche", "azúcar", "azucar", "agua", "natural",
			"cultivo", "cultivos", "probiótico", "probiotico",
			"lácteo", "lacteo", "conservante", "saborizante",
			"ingredients", "contains",
		},
		StorageKeywords: []string{
			"temperatura", "almacena", "almacenar", "almacenaje",
			"refrigera", "refrigerar", "refrigeración", "refrigeracion",
			"conserva", "conservar", "grados", "°c",
			"mantener", "keep refrigerated",
		},
		ManufacturerKeywords: []string{
			"producto", "fabricado", "elaborado", "distribuido",
			"comercializado", "industria", "empresa",
			"hecho en", "made in",
		},
		QRKeywords:      []string{"qr", "scan", "escanea", "código", "codigo"},
		BarcodeKeywords: []string{"barras", "ean", "upc", "código", "codigo"},

		NutritionThreshold:    0.7,
		IngredientThreshold:   0.75,
		StorageThreshold:      0.75,
		ManufacturerThreshold: 0.75,
		BarcodeThreshold:      0.7,
		MinIngredientMatches:  2,
	}
}

// Barcode/QR confidence tiers. Keyword matches are stronger evidence than a
// bare digit run, which could be a lot number or net weight.
const (
	barcodeKeywordConfidence  = 0.8
	barcodeDigitRunConfidence = 0.6
	barcodeNoMatchConfidence  = 0.3
)

// SignalDetector runs the boolean/confidence detectors over OCR text.
// It is stateless after construction and safe for concurrent use.
type SignalDetector struct {
	cfg SignalConfig

	unitPattern     *regexp.Regexp
	perPortion      *regexp.Regexp
	tableSignature  *regexp.Regexp
	digitRunPattern *regexp.Regexp
	stemPatterns    []*regexp.Regexp
}

// NewSignalDetector compiles the pattern sets for cfg.
func NewSignalDetector(cfg SignalConfig) *SignalDetector {
	stems := make([]*regexp.Regexp, 0, len(cfg.NutritionStemPatterns))
	for _, pattern := range cfg.NutritionStemPatterns {
		stems = append(stems, regexp.MustCompile(`(?i)`+pattern))
	}

	return &SignalDetector{
		cfg:             cfg,
		unitPattern:     regexp.MustCompile(`(?i)\d+[.,]?\d*\s*(?:mg|kcal|cal|gr|g)\b`),
		perPortion:      regexp.MustCompile(`(?i)por cada|por 100|por cad`),
		tableSignature:  regexp.MustCompile(`\|\s*\d`),
		digitRunPattern: regexp.MustCompile(`\d{8,}`),
		stemPatterns:    stems,
	}
}

// HasNutritionInfo reports whether the text carries nutrition-table
// characteristics. Six alternative criteria are tried; any single one is
// enough. The redundancy is deliberate: OCR of a nutrition table rarely
// survives intact, but usually keeps at least one of these traces.
func (d *SignalDetector) HasNutritionInfo(ocr *models.OCRResult) bool {
	if ocr == nil || ocr.Text == "" {
		return false
	}
	text := ocr.Text
	lower := strings.ToLower(text)

	// (a) vocabulary fuzzy match
	if match.FuzzySearchAny(text, d.cfg.NutritionKeywords, d.cfg.NutritionThreshold) {
		return true
	}

	// (b) table signature: pipe followed by digits plus several pipes total
	if d.tableSignature.MatchString(text) && strings.Count(text, "|") >= 3 {
		return true
	}

	// (c) repeated quantity+unit pairs (120kcal, 5g, 2.5 mg)
	unitMatches := len(d.unitPattern.FindAllString(text, -1))
	if unitMatches >= 3 {
		return true
	}

	// (d) short token co-occurrence
	shortHits := 0
	for _, token := range d.cfg.NutritionShortTokens {
		if strings.Contains(lower, token) {
			shortHits++
		}
	}
	if shortHits >= 2 {
		return true
	}

	// (e) "per portion" phrasing next to quantity+unit pairs
	if d.perPortion.MatchString(text) && unitMatches >= 2 {
		return true
	}

	// (f) partial stems surviving heavy OCR damage
	stemHits := 0
	for _, stem := range d.stemPatterns {
		if stem.MatchString(text) {
			stemHits++
		}
	}
	return stemHits >= 2
}

// HasIngredientList reports whether the text looks like an ingredients list.
func (d *SignalDetector) HasIngredientList(ocr *models.OCRResult) bool {
	if ocr == nil || ocr.Text == "" {
		return false
	}
	hits := match.FuzzySearchCount(ocr.Text, d.cfg.IngredientKeywords, d.cfg.IngredientThreshold)
	return hits >= d.cfg.MinIngredientMatches
}

// HasStorageInfo reports whether the text mentions storage conditions.
func (d *SignalDetector) HasStorageInfo(ocr *models.OCRResult) bool {
	if ocr == nil || ocr.Text == "" {
		return false
	}
	return match.FuzzySearchAny(ocr.Text, d.cfg.StorageKeywords, d.cfg.StorageThreshold)
}

// HasManufacturerInfo reports whether the text mentions a manufacturer,
// distributor, or origin statement.
func (d *SignalDetector) HasManufacturerInfo(ocr *models.OCRResult) bool {
	if ocr == nil || ocr.Text == "" {
		return false
	}
	return match.FuzzySearchAny(ocr.Text, d.cfg.ManufacturerKeywords, d.cfg.ManufacturerThreshold)
}

// DetectBarcodeQR infers likely barcode/QR presence from textual cues only.
// A digit run of eight or more characters is treated as a probable barcode
// number (EAN-8 and longer) even without keywords.
func (d *SignalDetector) DetectBarcodeQR(ocr *models.OCRResult) models.BarcodeQRAnalysis {
	if ocr == nil || ocr.Text == "" {
		return models.BarcodeQRAnalysis{Confidence: barcodeNoMatchConfidence}
	}
	text := ocr.Text

	hasQR := match.FuzzySearchAny(text, d.cfg.QRKeywords, d.cfg.BarcodeThreshold)
	barcodeKeyword := match.FuzzySearchAny(text, d.cfg.BarcodeKeywords, d.cfg.BarcodeThreshold)
	digitRun := d.digitRunPattern.MatchString(text)

	confidence := barcodeNoMatchConfidence
	switch {
	case hasQR || barcodeKeyword:
		confidence = barcodeKeywordConfidence
	case digitRun:
		confidence = barcodeDigitRunConfidence
	}

	return models.BarcodeQRAnalysis{
		HasBarcode: barcodeKeyword || digitRun,
		HasQRCode:  hasQR,
		Confidence: confidence,
	}
}
