// Package charts renders PNG charts from table columns.
package charts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"datasight/internal/analytics"
	"datasight/internal/dataset"
)

const (
	// most frequent categories shown on a bar chart
	maxBarCategories = 15
	chartWidth       = 900
	chartHeight      = 450
	maxLabelRunes    = 18
)

// Builder renders charts for a table.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a chart builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Bar renders a bar chart of category counts for the named column,
// keeping the most frequent categories.
func (b *Builder) Bar(ctx context.Context, table *dataset.Table, column string) ([]byte, error) {
	values, err := table.ColumnValues(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, v := range values {
		if v != "" {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("column %q has no values to chart", column)
	}

	pairs := make([]analytics.ValueCount, 0, len(counts))
	for v, c := range counts {
		pairs = append(pairs, analytics.ValueCount{Value: v, Count: c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Value < pairs[j].Value
	})
	if len(pairs) > maxBarCategories {
		pairs = pairs[:maxBarCategories]
	}

	bars := make([]chart.Value, len(pairs))
	for i, p := range pairs {
		bars[i] = chart.Value{Label: truncateLabel(p.Value), Value: float64(p.Count)}
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Распределение значений: %s", column),
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}

	b.logger.InfoContext(ctx, "rendered bar chart",
		slog.String("column", column),
		slog.Int("categories", len(bars)))
	return buf.Bytes(), nil
}

// Line renders a line chart of the numeric column summed per category.
func (b *Builder) Line(ctx context.Context, table *dataset.Table, category, value string) ([]byte, error) {
	catIdx := table.ColumnIndex(category)
	valIdx := table.ColumnIndex(value)
	if catIdx < 0 {
		return nil, fmt.Errorf("column %q not found", category)
	}
	if valIdx < 0 {
		return nil, fmt.Errorf("column %q not found", value)
	}

	sums := make(map[string]float64)
	var order []string
	for _, row := range table.Rows {
		if catIdx >= len(row) || valIdx >= len(row) {
			continue
		}
		cat := row[catIdx]
		num, ok := dataset.ParseNumber(row[valIdx])
		if cat == "" || !ok {
			continue
		}
		if _, seen := sums[cat]; !seen {
			order = append(order, cat)
		}
		sums[cat] += num
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("columns %q and %q have no plottable values", category, value)
	}
	sortCategories(order)

	xs := make([]float64, len(order))
	ys := make([]float64, len(order))
	ticks := make([]chart.Tick, len(order))
	for i, cat := range order {
		xs[i] = float64(i)
		ys[i] = sums[cat]
		ticks[i] = chart.Tick{Value: float64(i), Label: truncateLabel(cat)}
	}
	// a line needs two points to render
	if len(xs) == 1 {
		xs = append(xs, 1)
		ys = append(ys, ys[0])
		ticks = append(ticks, chart.Tick{Value: 1, Label: ""})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s по %s", value, category),
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    value,
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render line chart: %w", err)
	}

	b.logger.InfoContext(ctx, "rendered line chart",
		slog.String("category", category),
		slog.String("value", value),
		slog.Int("points", len(order)))
	return buf.Bytes(), nil
}

// sortCategories orders the x axis. When every category parses as a number
// (years, months) the axis is sorted numerically, otherwise lexically.
func sortCategories(cats []string) {
	nums := make(map[string]float64, len(cats))
	for _, c := range cats {
		n, ok := dataset.ParseNumber(c)
		if !ok {
			sort.Strings(cats)
			return
		}
		nums[c] = n
	}
	sort.Slice(cats, func(i, j int) bool { return nums[cats[i]] < nums[cats[j]] })
}

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRunes {
		return s
	}
	return string(runes[:maxLabelRunes-1]) + "…"
}
