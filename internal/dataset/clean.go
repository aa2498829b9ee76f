package dataset

import (
	"fmt"
	"strings"
)

// missing markers recognized case-insensitively after trimming
var missingMarkers = map[string]struct{}{
	"":      {},
	"nan":   {},
	"none":  {},
	"null":  {},
	"n/a":   {},
	"na":    {},
	"-":     {},
	"undef": {},
}

// NormalizeCell trims a raw cell and maps missing-value markers to "".
func NormalizeCell(raw string) string {
	v := strings.TrimSpace(raw)
	if _, ok := missingMarkers[strings.ToLower(v)]; ok {
		return ""
	}
	return v
}

// Clean normalizes cells and removes rows and columns that carry no data.
// Ragged rows are padded to the header width, unnamed headers get a
// positional name, and duplicate header names get a numeric suffix.
func Clean(t *Table) *Table {
	width := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	headers := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(t.Headers) {
			name = strings.TrimSpace(t.Headers[i])
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name] = 1
		headers[i] = name
	}

	// Normalize cells and drop rows with no data at all.
	rows := make([][]string, 0, len(t.Rows))
	for _, raw := range t.Rows {
		row := make([]string, width)
		empty := true
		for i := 0; i < width; i++ {
			if i < len(raw) {
				row[i] = NormalizeCell(raw[i])
			}
			if row[i] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	// Drop columns where every cell is empty.
	keep := make([]int, 0, width)
	for col := 0; col < width; col++ {
		for _, row := range rows {
			if row[col] != "" {
				keep = append(keep, col)
				break
			}
		}
	}

	if len(keep) == width {
		return &Table{Headers: headers, Rows: rows}
	}

	outHeaders := make([]string, len(keep))
	for i, col := range keep {
		outHeaders[i] = headers[col]
	}
	outRows := make([][]string, len(rows))
	for r, row := range rows {
		out := make([]string, len(keep))
		for i, col := range keep {
			out[i] = row[col]
		}
		outRows[r] = out
	}
	return &Table{Headers: outHeaders, Rows: outRows}
}
