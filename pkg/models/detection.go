package models

// OCRWord is a single recognized word with its bounding box in pixel space.
// Produced by the OCR engine; owned by its OCRResult and never mutated.
type OCRWord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100
	BBox       BBox    `json:"bbox"`
}

// BBox is an axis-aligned rectangle (x0,y0)-(x1,y1) in pixel coordinates.
type BBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Area returns the bounding box area in square pixels.
func (b BBox) Area() float64 {
	return float64(b.X1-b.X0) * float64(b.Y1-b.Y0)
}

// CenterX returns the horizontal center of the box.
func (b BBox) CenterX() float64 {
	return float64(b.X0+b.X1) / 2
}

// CenterY returns the vertical center of the box.
func (b BBox) CenterY() float64 {
	return float64(b.Y0+b.Y1) / 2
}

// OCRResult is one OCR pass over one image. Words may be empty even when
// Text is non-empty: some engine configurations return only the flat string.
// Consumers must handle both shapes.
type OCRResult struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"` // 0-100, engine-level average
	Words      []OCRWord `json:"words,omitempty"`
}

// TextDensityAnalysis holds geometric/textual density metrics derived from a
// single OCRResult. Computed fresh per image, read-only after creation.
type TextDensityAnalysis struct {
	TotalTextArea          float64 `json:"total_text_area"`
	ImageArea              float64 `json:"image_area"`
	TextCoveragePercentage float64 `json:"text_coverage_percentage"`
	TextBlockCount         int     `json:"text_block_count"`
	AverageWordConfidence  float64 `json:"average_word_confidence"`
	WordsDetected          int     `json:"words_detected"`
}

// BarcodeQRAnalysis reports likely barcode/QR presence inferred from textual
// cues only. It has no relation to actual pixel-level barcode geometry.
type BarcodeQRAnalysis struct {
	HasBarcode bool    `json:"has_barcode"`
	HasQRCode  bool    `json:"has_qr_code"`
	Confidence float64 `json:"confidence"` // 0-1
}

// LabelMetrics summarizes the measured signals behind a decision.
type LabelMetrics struct {
	TextCoverage          float64 `json:"text_coverage"`
	TextBlockCount        int     `json:"text_block_count"`
	WordCount             int     `json:"word_count"`
	HasBarcode            bool    `json:"has_barcode"`
	HasQRCode             bool    `json:"has_qr_code"`
	AverageTextConfidence float64 `json:"average_text_confidence"`
}

// LabelDetectionResult is the final decision record for one image.
type LabelDetectionResult struct {
	IsProductLabel   bool         `json:"is_product_label"`
	Confidence       float64      `json:"confidence"` // 0-1
	Reasoning        string       `json:"reasoning"`
	Metrics          LabelMetrics `json:"metrics"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
}
