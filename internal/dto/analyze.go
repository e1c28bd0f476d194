package dto

import (
	"time"

	"portfolio-analyzer/internal/model"
)

// Output formats accepted by the analyze endpoint.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// UploadedImage is one admitted upload, held in memory for the lifetime
// of the request only.
type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AnalysisResponse is the markdown-mode result.
type AnalysisResponse struct {
	Content         string  `json:"content"`
	ProcessingTime  float64 `json:"processing_time"`
	RequestID       string  `json:"request_id"`
	ImagesProcessed int     `json:"images_processed"`
}

// StructuredAnalysisResponse is the JSON-mode result wrapping the
// validated four-tab report.
type StructuredAnalysisResponse struct {
	PortfolioReport *model.PortfolioReport `json:"portfolioReport"`
	ProcessingTime  float64                `json:"processing_time"`
	RequestID       string                 `json:"request_id"`
	ImagesProcessed int                    `json:"images_processed"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewErrorResponse(message, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
}

type HealthResponse struct {
	Status           string `json:"status"`
	Model            string `json:"model"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}
