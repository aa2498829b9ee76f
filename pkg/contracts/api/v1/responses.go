package api

import "time"

// Common response envelopes

// SuccessResponse wraps a successful operation with optional data
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// Upload API Responses

// ColumnInfo describes one table column and its inferred type
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TablePage is one window of table rows
type TablePage struct {
	Headers []string     `json:"headers"`
	Columns []ColumnInfo `json:"columns"`
	Rows    [][]string   `json:"rows"`
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
	HasMore bool         `json:"has_more"`
}

// ChartInfo is a rendered chart, png encoded as base64
type ChartInfo struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Value    string `json:"value,omitempty"`
	Image    string `json:"image"`
}

// FileInfo describes a stored file
type FileInfo struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// UploadResponse is returned after an upload has been processed
type UploadResponse struct {
	Filename    string       `json:"filename"`
	Size        int64        `json:"size"`
	UploadedAt  time.Time    `json:"uploaded_at"`
	RowCount    int          `json:"row_count"`
	ColumnCount int          `json:"column_count"`
	Preview     TablePage    `json:"preview"`
	Summary     SummaryData  `json:"summary"`
	Charts      []ChartInfo  `json:"charts,omitempty"`
}

// Statistics

// ValueCount is a value together with its occurrence count
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericColumnStats holds descriptive statistics of a numeric column
type NumericColumnStats struct {
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Outliers int     `json:"outliers"`
}

// TextColumnStats holds frequency statistics of a text column
type TextColumnStats struct {
	TopValues []ValueCount `json:"top_values"`
}

// DatetimeColumnStats holds range statistics of a datetime column
type DatetimeColumnStats struct {
	Count int    `json:"count"`
	Min   string `json:"min"`
	Max   string `json:"max"`
}

// ColumnStats aggregates the per-column statistics
type ColumnStats struct {
	Name         string               `json:"name"`
	Type         string               `json:"type"`
	Nulls        int                  `json:"nulls"`
	Unique       int                  `json:"unique"`
	Completeness float64              `json:"completeness"`
	Numeric      *NumericColumnStats  `json:"numeric,omitempty"`
	Text         *TextColumnStats     `json:"text,omitempty"`
	Datetime     *DatetimeColumnStats `json:"datetime,omitempty"`
}

// SummaryData is the statistical summary of an uploaded table
type SummaryData struct {
	RowCount        int           `json:"row_count"`
	ColumnCount     int           `json:"column_count"`
	NumericColumns  int           `json:"numeric_columns"`
	TextColumns     int           `json:"text_columns"`
	DatetimeColumns int           `json:"datetime_columns"`
	TotalMissing    int           `json:"total_missing"`
	Completeness    float64       `json:"completeness"`
	Columns         []ColumnStats `json:"columns"`
}

// Analysis API Responses

// AnalysisResponse carries provider commentary about an upload
type AnalysisResponse struct {
	Provider   string `json:"provider"`
	Filename   string `json:"filename"`
	Commentary string `json:"commentary"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

// ProvidersResponse lists the usable analysis providers
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// Report API Responses

// ReportResponse is returned after a report has been generated
type ReportResponse struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	GeneratedAt time.Time `json:"generated_at"`
	DownloadURL string    `json:"download_url"`
}
