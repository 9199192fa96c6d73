package models

// AnalyzeURLRequest asks for the analysis of a single remote image
type AnalyzeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// AnalyzeBatchRequest asks for the analysis of several remote images
type AnalyzeBatchRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}

// BatchItem is the outcome for one reference of a batch request
type BatchItem struct {
	Reference string          `json:"reference"`
	Analysis  *AnalysisRecord `json:"analysis,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// BatchResponse preserves the order of the requested references
type BatchResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// ToneTypeInfo describes one of the ten tonal categories
type ToneTypeInfo struct {
	Name     string `json:"name"`
	Notation string `json:"notation"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}
