package report

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/internal/analytics"
	"datasight/internal/dataset"
)

func newTestBuilder() *Builder {
	return NewBuilder(slog.New(slog.NewJSONHandler(io.Discard, nil)), "")
}

func sampleParams() Params {
	table := &dataset.Table{
		Headers: []string{"region", "amount"},
		Rows: [][]string{
			{"north", "100"},
			{"south", "250"},
		},
	}
	dataset.InferTypes(table)

	return Params{
		Filename:   "20240315_120000_sales.csv",
		UploadedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		FileSize:   2048,
		Table:      table,
		Summary: &analytics.Summary{
			RowCount:    2,
			ColumnCount: 2,
			Columns: []analytics.ColumnSummary{
				{
					Name: "amount", Type: dataset.TypeNumeric, Unique: 2, Completeness: 100,
					Numeric: &analytics.NumericStats{Count: 2, Sum: 350, Mean: 175, Min: 100, Max: 250, Median: 175},
				},
			},
		},
		Commentary: "# Summary\n\nThe data looks **complete**.\n\n- two regions\n- no gaps\n\n---\n",
	}
}

func TestBuild_ProducesPDF(t *testing.T) {
	data, err := newTestBuilder().Build(context.Background(), sampleParams())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestBuild_LargeTableTruncated(t *testing.T) {
	params := sampleParams()
	rows := make([][]string, 200)
	for i := range rows {
		rows[i] = []string{"r", "1"}
	}
	params.Table = &dataset.Table{Headers: []string{"region", "amount"}, Rows: rows}

	data, err := newTestBuilder().Build(context.Background(), params)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBuild_WithoutOptionalSections(t *testing.T) {
	params := Params{
		Filename:   "plain.csv",
		UploadedAt: time.Now(),
		FileSize:   10,
		Table:      &dataset.Table{Headers: []string{"a"}, Rows: [][]string{{"1"}}},
	}

	data, err := newTestBuilder().Build(context.Background(), params)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBuild_MissingFontFallsBack(t *testing.T) {
	b := NewBuilder(slog.New(slog.NewJSONHandler(io.Discard, nil)), "/nonexistent/font.ttf")
	data, err := b.Build(context.Background(), sampleParams())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestSplitSpans(t *testing.T) {
	spans := splitSpans("plain **bold** and *italic* end")
	require.Len(t, spans, 5)
	assert.Equal(t, inlineSpan{text: "plain "}, spans[0])
	assert.Equal(t, inlineSpan{text: "bold", bold: true}, spans[1])
	assert.Equal(t, inlineSpan{text: " and "}, spans[2])
	assert.Equal(t, inlineSpan{text: "italic", italic: true}, spans[3])
	assert.Equal(t, inlineSpan{text: " end"}, spans[4])
}

func TestTruncateCell(t *testing.T) {
	assert.Equal(t, "short", truncateCell("short"))
	long := "a value that is certainly longer than the cell limit"
	assert.LessOrEqual(t, len([]rune(truncateCell(long))), reportCellRunes)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "2.0 KB", formatSize(2048))
	assert.Equal(t, "1.5 MB", formatSize(1572864))
}
