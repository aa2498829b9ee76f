package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// inference samples at most this many non-empty cells per column
	inferSampleSize = 50
	// share of samples that must parse for a column to take that type
	inferThreshold = 0.8
)

var datetimeLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
	time.RFC3339,
}

// ParseNumber parses a cell as a float. It tolerates thousands separators,
// a comma decimal point, currency markers and a trailing percent sign.
func ParseNumber(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, false
	}
	v = strings.TrimSuffix(v, "%")
	for _, marker := range []string{"$", "€", "₽", "руб.", "руб", "р."} {
		v = strings.ReplaceAll(v, marker, "")
	}
	v = strings.TrimSpace(v)
	// 1 234,56 and 1,234.56 both occur in source files
	if strings.Contains(v, ",") && strings.Contains(v, ".") {
		v = strings.ReplaceAll(v, ",", "")
	} else if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ",", ".")
	}
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ReplaceAll(v, " ", "")
	if v == "" || strings.Count(v, ".") > 1 {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseTime parses a cell against the supported datetime layouts.
func ParseTime(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// InferTypes classifies every column and stores the result on the table.
// A column becomes numeric or datetime when at least 80% of up to 50
// sampled non-empty cells parse as that type; everything else is text.
func InferTypes(t *Table) {
	t.Columns = make([]Column, len(t.Headers))
	for idx, name := range t.Headers {
		t.Columns[idx] = Column{Name: name, Type: inferColumn(t, idx)}
	}
}

func inferColumn(t *Table, idx int) ColumnType {
	var samples []string
	for _, row := range t.Rows {
		if idx >= len(row) || row[idx] == "" {
			continue
		}
		samples = append(samples, row[idx])
		if len(samples) >= inferSampleSize {
			break
		}
	}
	if len(samples) == 0 {
		return TypeText
	}

	numeric, datetime := 0, 0
	for _, s := range samples {
		if _, ok := ParseNumber(s); ok {
			numeric++
		} else if _, ok := ParseTime(s); ok {
			datetime++
		}
	}

	threshold := int(float64(len(samples)) * inferThreshold)
	if threshold == 0 {
		threshold = 1
	}
	switch {
	case numeric >= threshold:
		return TypeNumeric
	case datetime >= threshold:
		return TypeDatetime
	default:
		return TypeText
	}
}
