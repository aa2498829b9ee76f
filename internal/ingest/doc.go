// Package ingest parses uploaded files into dataset tables. It dispatches on
// the file extension and supports xlsx and legacy xls workbooks, delimited
// csv files with encoding fallback, and tables extracted from the first page
// of a PDF document.
package ingest
