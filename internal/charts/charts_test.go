package charts

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/internal/dataset"
)

func newTestBuilder() *Builder {
	return NewBuilder(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func salesTable() *dataset.Table {
	return &dataset.Table{
		Headers: []string{"region", "amount"},
		Rows: [][]string{
			{"north", "100"},
			{"north", "50"},
			{"south", "200"},
			{"east", "75"},
		},
	}
}

func TestBar_RendersPNG(t *testing.T) {
	data, err := newTestBuilder().Bar(context.Background(), salesTable(), "region")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, chartWidth, img.Bounds().Dx())
}

func TestBar_UnknownColumn(t *testing.T) {
	_, err := newTestBuilder().Bar(context.Background(), salesTable(), "missing")
	assert.Error(t, err)
}

func TestBar_EmptyColumn(t *testing.T) {
	table := &dataset.Table{Headers: []string{"blank"}, Rows: [][]string{{""}, {""}}}
	_, err := newTestBuilder().Bar(context.Background(), table, "blank")
	assert.Error(t, err)
}

func TestLine_RendersPNG(t *testing.T) {
	data, err := newTestBuilder().Line(context.Background(), salesTable(), "region", "amount")
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestLine_SingleCategory(t *testing.T) {
	table := &dataset.Table{
		Headers: []string{"region", "amount"},
		Rows:    [][]string{{"north", "10"}},
	}

	data, err := newTestBuilder().Line(context.Background(), table, "region", "amount")
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestLine_NoNumericValues(t *testing.T) {
	table := &dataset.Table{
		Headers: []string{"region", "amount"},
		Rows:    [][]string{{"north", "abc"}},
	}

	_, err := newTestBuilder().Line(context.Background(), table, "region", "amount")
	assert.Error(t, err)
}

func TestSortCategories(t *testing.T) {
	years := []string{"2024", "2021", "2023"}
	sortCategories(years)
	assert.Equal(t, []string{"2021", "2023", "2024"}, years)

	// numeric sort, not lexical
	mixed := []string{"10", "2", "1"}
	sortCategories(mixed)
	assert.Equal(t, []string{"1", "2", "10"}, mixed)

	names := []string{"north", "east", "west"}
	sortCategories(names)
	assert.Equal(t, []string{"east", "north", "west"}, names)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short"))
	long := "a very long category label indeed"
	truncated := truncateLabel(long)
	assert.Less(t, len([]rune(truncated)), len([]rune(long)))
}
