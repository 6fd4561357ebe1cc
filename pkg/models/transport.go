package models

// DetectRequest is the single-image detection request body.
type DetectRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// BatchImage identifies one image inside a batch request.
type BatchImage struct {
	ID  string `json:"id" binding:"required"`
	URL string `json:"url" binding:"required,url"`
}

// BatchDetectRequest is the batch detection request body.
type BatchDetectRequest struct {
	Images []BatchImage `json:"images" binding:"required,min=1,dive"`
}

// BatchDetectResponse maps image IDs to their detection results.
type BatchDetectResponse struct {
	Results map[string]LabelDetectionResult `json:"results"`
}
