package ingest

import (
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"datasight/internal/dataset"
	"datasight/internal/errors"
)

// readXLSX reads the first sheet of an xlsx workbook.
func readXLSX(path string, opts Options) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open xlsx workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("xlsx workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read xlsx sheet", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError("xlsx sheet contains no rows", nil)
	}

	return &dataset.Table{
		Headers: rows[0],
		Rows:    limitRows(rows[1:], opts.RowLimit),
	}, nil
}

// readXLS reads the first sheet of a legacy xls workbook.
func readXLS(path string, opts Options) (*dataset.Table, error) {
	workbook, err := xls.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open xls workbook", err)
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, errors.NewParsingError("xls workbook has no sheets", err)
	}

	var rows [][]string
	for i := 0; i <= sheet.GetNumberRows()-1; i++ {
		row, err := sheet.GetRow(i)
		if err != nil {
			continue
		}
		cells := row.GetCols()
		record := make([]string, len(cells))
		for j, cell := range cells {
			record[j] = cell.GetString()
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return nil, errors.NewParsingError("xls sheet contains no rows", nil)
	}

	return &dataset.Table{
		Headers: rows[0],
		Rows:    limitRows(rows[1:], opts.RowLimit),
	}, nil
}
