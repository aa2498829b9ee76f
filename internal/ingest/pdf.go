package ingest

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"datasight/internal/dataset"
	"datasight/internal/errors"
)

const (
	// text fragments within this vertical distance belong to the same row
	pdfRowTolerance = 2.0
	// horizontal gap that separates two cells within a row
	pdfCellGap = 8.0
	// column assignment tolerance against the header cell positions
	pdfColumnTolerance = 25.0
)

// pdfCell is a merged run of text fragments with its starting X position.
type pdfCell struct {
	x    float64
	text string
}

// readPDF extracts a table from the first page of a PDF document by
// clustering text fragments into rows and columns. When no tabular
// structure is detected the page text is returned as a single column.
func readPDF(path string, opts Options) (table *dataset.Table, err error) {
	// the pdf library panics on malformed documents
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = errors.NewParsingError("failed to read pdf document", nil)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open pdf document", err)
	}
	defer f.Close()

	if reader.NumPage() < 1 {
		return nil, errors.NewParsingError("pdf document has no pages", nil)
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return nil, errors.NewParsingError("pdf first page is empty", nil)
	}

	texts := page.Content().Text
	if len(texts) == 0 {
		return nil, errors.NewParsingError("pdf first page contains no text", nil)
	}

	rows := clusterRows(texts)
	if grid, ok := buildGrid(rows); ok {
		return &dataset.Table{
			Headers: grid[0],
			Rows:    limitRows(grid[1:], opts.RowLimit),
		}, nil
	}

	// no table structure, expose the page text as one column
	lines := make([][]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, cell := range row {
			parts[i] = cell.text
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, []string{line})
		}
	}
	if len(lines) == 0 {
		return nil, errors.NewParsingError("pdf first page contains no text", nil)
	}
	return &dataset.Table{
		Headers: []string{"content"},
		Rows:    limitRows(lines, opts.RowLimit),
	}, nil
}

// clusterRows groups text fragments by vertical position and merges
// horizontally adjacent fragments into cells.
func clusterRows(texts []pdf.Text) [][]pdfCell {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y // pdf Y origin is the page bottom
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]pdf.Text
	for _, t := range sorted {
		if strings.TrimSpace(t.S) == "" && t.S != " " {
			continue
		}
		n := len(rows)
		if n > 0 && abs(rows[n-1][0].Y-t.Y) <= pdfRowTolerance {
			rows[n-1] = append(rows[n-1], t)
		} else {
			rows = append(rows, []pdf.Text{t})
		}
	}

	cells := make([][]pdfCell, 0, len(rows))
	for _, fragments := range rows {
		sort.Slice(fragments, func(i, j int) bool { return fragments[i].X < fragments[j].X })

		var row []pdfCell
		var buf strings.Builder
		start, end := 0.0, 0.0
		for i, frag := range fragments {
			if i == 0 || frag.X-end > pdfCellGap {
				if buf.Len() > 0 {
					row = append(row, pdfCell{x: start, text: strings.TrimSpace(buf.String())})
					buf.Reset()
				}
				start = frag.X
			}
			buf.WriteString(frag.S)
			end = frag.X + frag.W
		}
		if buf.Len() > 0 {
			row = append(row, pdfCell{x: start, text: strings.TrimSpace(buf.String())})
		}
		if len(row) > 0 {
			cells = append(cells, row)
		}
	}
	return cells
}

// buildGrid aligns rows against the header cell positions. A grid counts as
// a table when it has at least two columns and two data rows that mostly
// line up with the header.
func buildGrid(rows [][]pdfCell) ([][]string, bool) {
	if len(rows) < 3 {
		return nil, false
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, false
	}

	grid := make([][]string, 0, len(rows))
	headerOut := make([]string, len(header))
	for i, cell := range header {
		headerOut[i] = cell.text
	}
	grid = append(grid, headerOut)

	aligned := 0
	for _, row := range rows[1:] {
		out := make([]string, len(header))
		matched := 0
		for _, cell := range row {
			col := nearestColumn(header, cell.x)
			if col < 0 {
				continue
			}
			if out[col] == "" {
				out[col] = cell.text
			} else {
				out[col] += " " + cell.text
			}
			matched++
		}
		if matched >= 2 {
			aligned++
		}
		grid = append(grid, out)
	}

	// most data rows must fit the header layout
	if aligned < 2 || aligned*2 < len(rows)-1 {
		return nil, false
	}
	return grid, true
}

// nearestColumn finds the header column whose X position is closest to x.
func nearestColumn(header []pdfCell, x float64) int {
	best, bestDist := -1, pdfColumnTolerance
	for i, cell := range header {
		if d := abs(cell.x - x); d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
