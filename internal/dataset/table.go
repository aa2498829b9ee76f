package dataset

import "fmt"

// ColumnType classifies the dominant value kind of a column.
type ColumnType string

const (
	TypeNumeric  ColumnType = "numeric"
	TypeDatetime ColumnType = "datetime"
	TypeText     ColumnType = "text"
)

// Column describes one column of a table after type inference.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Table is the in-memory representation of an uploaded tabular file.
// Cells are kept as strings; an empty string means a missing value.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Columns []Column   `json:"columns,omitempty"`
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Headers)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// ColumnValues returns all cell values of the named column in row order.
func (t *Table) ColumnValues(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}
	return values, nil
}

// ColumnByName returns the inferred column metadata, or false when the
// column is unknown or types have not been inferred yet.
func (t *Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Head returns a copy of the table limited to at most n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	head := &Table{
		Headers: t.Headers,
		Rows:    t.Rows[:n],
		Columns: t.Columns,
	}
	return head
}
