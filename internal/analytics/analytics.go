// Package analytics computes descriptive statistics over ingested tables.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"datasight/internal/dataset"
)

const (
	// values further than this many standard deviations from the mean
	// count as outliers
	outlierZScore = 2.0
	// number of most frequent values reported for text columns
	topValueCount = 5
)

// Summarizer computes table summaries.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// Summarize computes statistics for every column of the table. Column types
// must already be inferred.
func (s *Summarizer) Summarize(ctx context.Context, table *dataset.Table) (*Summary, error) {
	if len(table.Columns) != len(table.Headers) {
		return nil, fmt.Errorf("table has no inferred column types")
	}

	s.logger.InfoContext(ctx, "computing table summary",
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))

	summary := &Summary{
		RowCount:    table.NumRows(),
		ColumnCount: table.NumColumns(),
		Columns:     make([]ColumnSummary, 0, len(table.Columns)),
	}

	for idx, col := range table.Columns {
		cs := s.summarizeColumn(table, idx, col)
		summary.Columns = append(summary.Columns, cs)
		summary.TotalMissing += cs.Nulls
		switch col.Type {
		case dataset.TypeNumeric:
			summary.NumericColumns++
		case dataset.TypeDatetime:
			summary.DatetimeColumns++
		default:
			summary.TextColumns++
		}
	}
	if cells := summary.RowCount * summary.ColumnCount; cells > 0 {
		summary.Completeness = roundTo(float64(cells-summary.TotalMissing)/float64(cells)*100, 2)
	}

	return summary, nil
}

func (s *Summarizer) summarizeColumn(table *dataset.Table, idx int, col dataset.Column) ColumnSummary {
	values := make([]string, 0, len(table.Rows))
	nulls := 0
	unique := make(map[string]struct{})
	for _, row := range table.Rows {
		v := ""
		if idx < len(row) {
			v = row[idx]
		}
		if v == "" {
			nulls++
			continue
		}
		values = append(values, v)
		unique[v] = struct{}{}
	}

	cs := ColumnSummary{
		Name:   col.Name,
		Type:   col.Type,
		Nulls:  nulls,
		Unique: len(unique),
	}
	if n := len(table.Rows); n > 0 {
		cs.Completeness = roundTo(float64(len(values))/float64(n)*100, 2)
	}

	switch col.Type {
	case dataset.TypeNumeric:
		cs.Numeric = numericStats(values)
	case dataset.TypeDatetime:
		cs.Datetime = datetimeStats(values)
	default:
		cs.Text = textStats(values)
	}
	return cs
}

// numericStats computes distribution statistics over the values that parse
// as numbers.
func numericStats(values []string) *NumericStats {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := dataset.ParseNumber(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return &NumericStats{}
	}

	stats := &NumericStats{
		Count: len(nums),
		Min:   nums[0],
		Max:   nums[0],
	}
	for _, f := range nums {
		stats.Sum += f
		if f < stats.Min {
			stats.Min = f
		}
		if f > stats.Max {
			stats.Max = f
		}
	}
	stats.Mean = stats.Sum / float64(len(nums))

	sorted := make([]float64, len(nums))
	copy(sorted, nums)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	var variance float64
	for _, f := range nums {
		d := f - stats.Mean
		variance += d * d
	}
	variance /= float64(len(nums))
	stats.StdDev = math.Sqrt(variance)

	if stats.StdDev > 0 {
		for _, f := range nums {
			if math.Abs(f-stats.Mean)/stats.StdDev >= outlierZScore {
				stats.Outliers++
			}
		}
	}

	stats.Sum = roundTo(stats.Sum, 4)
	stats.Mean = roundTo(stats.Mean, 4)
	stats.Median = roundTo(stats.Median, 4)
	stats.StdDev = roundTo(stats.StdDev, 4)
	return stats
}

// textStats counts value frequencies and keeps the most common ones.
func textStats(values []string) *TextStats {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}

	pairs := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		pairs = append(pairs, ValueCount{Value: v, Count: c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Value < pairs[j].Value
	})
	if len(pairs) > topValueCount {
		pairs = pairs[:topValueCount]
	}
	return &TextStats{TopValues: pairs}
}

// datetimeStats finds the covered time range.
func datetimeStats(values []string) *DatetimeStats {
	var min, max time.Time
	count := 0
	for _, v := range values {
		ts, ok := dataset.ParseTime(v)
		if !ok {
			continue
		}
		if count == 0 || ts.Before(min) {
			min = ts
		}
		if count == 0 || ts.After(max) {
			max = ts
		}
		count++
	}
	stats := &DatetimeStats{Count: count}
	if count > 0 {
		stats.Min = min.Format("2006-01-02")
		stats.Max = max.Format("2006-01-02")
	}
	return stats
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
