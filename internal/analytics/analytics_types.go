package analytics

import "datasight/internal/dataset"

// Summary holds descriptive statistics for a whole table.
type Summary struct {
	RowCount        int             `json:"row_count"`
	ColumnCount     int             `json:"column_count"`
	NumericColumns  int             `json:"numeric_columns"`
	TextColumns     int             `json:"text_columns"`
	DatetimeColumns int             `json:"datetime_columns"`
	TotalMissing    int             `json:"total_missing"`
	Completeness    float64         `json:"completeness"`
	Columns         []ColumnSummary `json:"columns"`
}

// ColumnSummary holds per-column statistics. Exactly one of Numeric, Text
// or Datetime is set depending on the inferred column type.
type ColumnSummary struct {
	Name         string             `json:"name"`
	Type         dataset.ColumnType `json:"type"`
	Nulls        int                `json:"nulls"`
	Unique       int                `json:"unique"`
	Completeness float64            `json:"completeness"`
	Numeric      *NumericStats      `json:"numeric,omitempty"`
	Text         *TextStats         `json:"text,omitempty"`
	Datetime     *DatetimeStats     `json:"datetime,omitempty"`
}

// NumericStats describes the distribution of a numeric column.
type NumericStats struct {
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Outliers int     `json:"outliers"`
}

// TextStats lists the most frequent values of a text column.
type TextStats struct {
	TopValues []ValueCount `json:"top_values"`
}

// ValueCount is one value with its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DatetimeStats describes the time range of a datetime column.
type DatetimeStats struct {
	Count int    `json:"count"`
	Min   string `json:"min"`
	Max   string `json:"max"`
}
