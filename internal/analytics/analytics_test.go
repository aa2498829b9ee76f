package analytics

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/internal/dataset"
)

func newTestSummarizer() *Summarizer {
	return NewSummarizer(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func buildTable(headers []string, rows [][]string) *dataset.Table {
	table := &dataset.Table{Headers: headers, Rows: rows}
	dataset.InferTypes(table)
	return table
}

func TestSummarize_RequiresInferredTypes(t *testing.T) {
	table := &dataset.Table{Headers: []string{"a"}, Rows: [][]string{{"1"}}}
	_, err := newTestSummarizer().Summarize(context.Background(), table)
	assert.Error(t, err)
}

func TestSummarize_NumericColumn(t *testing.T) {
	table := buildTable(
		[]string{"amount"},
		[][]string{{"10"}, {"20"}, {"30"}, {"40"}, {""}},
	)

	summary, err := newTestSummarizer().Summarize(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, summary.Columns, 1)

	col := summary.Columns[0]
	assert.Equal(t, dataset.TypeNumeric, col.Type)
	assert.Equal(t, 1, col.Nulls)
	assert.Equal(t, 4, col.Unique)
	assert.InDelta(t, 80.0, col.Completeness, 0.01)

	require.NotNil(t, col.Numeric)
	assert.Equal(t, 4, col.Numeric.Count)
	assert.InDelta(t, 100.0, col.Numeric.Sum, 1e-9)
	assert.InDelta(t, 25.0, col.Numeric.Mean, 1e-9)
	assert.InDelta(t, 10.0, col.Numeric.Min, 1e-9)
	assert.InDelta(t, 40.0, col.Numeric.Max, 1e-9)
	assert.InDelta(t, 25.0, col.Numeric.Median, 1e-9)
}

func TestSummarize_OutlierDetection(t *testing.T) {
	rows := make([][]string, 0, 21)
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"100"})
	}
	rows = append(rows, []string{"10000"})

	table := buildTable([]string{"value"}, rows)
	summary, err := newTestSummarizer().Summarize(context.Background(), table)
	require.NoError(t, err)

	require.NotNil(t, summary.Columns[0].Numeric)
	assert.Equal(t, 1, summary.Columns[0].Numeric.Outliers)
}

func TestSummarize_TextColumnTopValues(t *testing.T) {
	table := buildTable(
		[]string{"city"},
		[][]string{
			{"Moscow"}, {"Moscow"}, {"Moscow"},
			{"Kazan"}, {"Kazan"},
			{"Perm"}, {"Omsk"}, {"Tula"}, {"Ufa"}, {"Sochi"},
		},
	)

	summary, err := newTestSummarizer().Summarize(context.Background(), table)
	require.NoError(t, err)

	col := summary.Columns[0]
	require.NotNil(t, col.Text)
	require.Len(t, col.Text.TopValues, 5)
	assert.Equal(t, ValueCount{Value: "Moscow", Count: 3}, col.Text.TopValues[0])
	assert.Equal(t, ValueCount{Value: "Kazan", Count: 2}, col.Text.TopValues[1])
}

func TestSummarize_DatetimeColumn(t *testing.T) {
	table := buildTable(
		[]string{"date"},
		[][]string{{"2024-03-01"}, {"2024-01-15"}, {"2024-06-30"}},
	)

	summary, err := newTestSummarizer().Summarize(context.Background(), table)
	require.NoError(t, err)

	col := summary.Columns[0]
	assert.Equal(t, dataset.TypeDatetime, col.Type)
	require.NotNil(t, col.Datetime)
	assert.Equal(t, 3, col.Datetime.Count)
	assert.Equal(t, "2024-01-15", col.Datetime.Min)
	assert.Equal(t, "2024-06-30", col.Datetime.Max)
}

func TestSummarize_EmptyTable(t *testing.T) {
	table := buildTable([]string{"a"}, nil)
	summary, err := newTestSummarizer().Summarize(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RowCount)
	assert.Equal(t, 0.0, summary.Completeness)
	assert.Equal(t, 0.0, summary.Columns[0].Completeness)
}

func TestSummarize_DatasetTotals(t *testing.T) {
	table := buildTable(
		[]string{"city", "amount", "date"},
		[][]string{
			{"Moscow", "10", "2024-01-01"},
			{"Kazan", "", "2024-02-01"},
			{"", "30", "2024-03-01"},
			{"Moscow", "40", ""},
		},
	)

	summary, err := newTestSummarizer().Summarize(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.RowCount)
	assert.Equal(t, 3, summary.ColumnCount)
	assert.Equal(t, 1, summary.NumericColumns)
	assert.Equal(t, 1, summary.TextColumns)
	assert.Equal(t, 1, summary.DatetimeColumns)
	assert.Equal(t, 3, summary.TotalMissing)
	assert.InDelta(t, 75.0, summary.Completeness, 0.01)
}
