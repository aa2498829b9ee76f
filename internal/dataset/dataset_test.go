package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_NormalizesMissingMarkers(t *testing.T) {
	table := &Table{
		Headers: []string{"name", "value"},
		Rows: [][]string{
			{"alpha", "NaN"},
			{"  beta  ", "none"},
			{"gamma", "10"},
		},
	}

	cleaned := Clean(table)
	require.Len(t, cleaned.Rows, 3)
	assert.Equal(t, "", cleaned.Rows[0][1])
	assert.Equal(t, "beta", cleaned.Rows[1][0])
	assert.Equal(t, "10", cleaned.Rows[2][1])
}

func TestClean_DropsEmptyRowsAndColumns(t *testing.T) {
	table := &Table{
		Headers: []string{"name", "empty", "value"},
		Rows: [][]string{
			{"alpha", "", "1"},
			{"", "null", ""},
			{"beta", "  ", "2"},
		},
	}

	cleaned := Clean(table)
	assert.Equal(t, []string{"name", "value"}, cleaned.Headers)
	require.Len(t, cleaned.Rows, 2)
	assert.Equal(t, []string{"alpha", "1"}, cleaned.Rows[0])
	assert.Equal(t, []string{"beta", "2"}, cleaned.Rows[1])
}

func TestClean_PadsRaggedRowsAndNamesHeaders(t *testing.T) {
	table := &Table{
		Headers: []string{"a", "", "a"},
		Rows: [][]string{
			{"1", "2", "3", "4"},
			{"5"},
		},
	}

	cleaned := Clean(table)
	assert.Equal(t, []string{"a", "column_2", "a_2", "column_4"}, cleaned.Headers)
	require.Len(t, cleaned.Rows, 2)
	assert.Equal(t, []string{"5", "", "", ""}, cleaned.Rows[1])
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"-3.5", -3.5, true},
		{"3,14", 3.14, true},
		{"1,234.56", 1234.56, true},
		{"1 234,56", 1234.56, true},
		{"99%", 99, true},
		{"$1500", 1500, true},
		{"1200 руб.", 1200, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12.3.4", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %q", tt.in)
		}
	}
}

func TestParseTime(t *testing.T) {
	ts, ok := ParseTime("2024-03-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ts)

	ts, ok = ParseTime("15.03.2024")
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())

	_, ok = ParseTime("not a date")
	assert.False(t, ok)
}

func TestInferTypes(t *testing.T) {
	table := &Table{
		Headers: []string{"city", "population", "founded"},
		Rows: [][]string{
			{"Moscow", "13010112", "1147-01-01"},
			{"Kazan", "1308660", "1005-01-01"},
			{"Perm", "1034002", "1723-01-01"},
		},
	}

	InferTypes(table)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, TypeText, table.Columns[0].Type)
	assert.Equal(t, TypeNumeric, table.Columns[1].Type)
	assert.Equal(t, TypeDatetime, table.Columns[2].Type)
}

func TestInferTypes_ThresholdAllowsDirtyValues(t *testing.T) {
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{"10"}
	}
	// 2 of 10 values fail to parse, still above the 80% threshold
	rows[3][0] = "n/a value"
	rows[7][0] = "missing"

	table := &Table{Headers: []string{"amount"}, Rows: rows}
	InferTypes(table)
	assert.Equal(t, TypeNumeric, table.Columns[0].Type)
}

func TestInferTypes_EmptyColumnIsText(t *testing.T) {
	table := &Table{
		Headers: []string{"blank"},
		Rows:    [][]string{{""}, {""}},
	}
	InferTypes(table)
	assert.Equal(t, TypeText, table.Columns[0].Type)
}

func TestTableHelpers(t *testing.T) {
	table := &Table{
		Headers: []string{"a", "b"},
		Rows:    [][]string{{"1", "2"}, {"3", "4"}, {"5", "6"}},
	}

	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, 2, table.NumColumns())
	assert.Equal(t, 1, table.ColumnIndex("b"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))

	values, err := table.ColumnValues("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "5"}, values)

	_, err = table.ColumnValues("missing")
	assert.Error(t, err)

	head := table.Head(2)
	assert.Equal(t, 2, head.NumRows())
	assert.Equal(t, 3, table.Head(10).NumRows())
}
