// Package api contains API contract definitions for the data insight service.
// Version v1 represents the current stable API version.
package api

// Upload API Requests

// RowsRequest asks for one page of rows from a stored upload
type RowsRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
	Offset   int    `json:"offset" validate:"min=0"`
	Limit    int    `json:"limit" validate:"min=0,max=1000"`
}

// ChartRequest asks for a chart rendered over a stored upload. Value is the
// numeric column for line charts and is ignored for bar charts.
type ChartRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
	Kind     string `json:"kind" validate:"required,oneof=bar line"`
	Category string `json:"category" validate:"required"`
	Value    string `json:"value" validate:"required_if=Kind line"`
}

// Analysis API Requests

// AnalysisRequest asks a provider for commentary on a stored upload.
// The provider name travels in the URL path.
type AnalysisRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// Report API Requests

// ReportGenerateRequest asks for a pdf report over a stored upload,
// optionally with commentary from the named provider
type ReportGenerateRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
	Provider string `json:"provider" validate:"omitempty,provider"`
}
