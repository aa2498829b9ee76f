// Package report renders downloadable pdf reports for analyzed uploads.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-pdf/fpdf"

	"datasight/internal/analytics"
	"datasight/internal/dataset"
	"datasight/internal/errors"
)

const (
	// data rows included in the report table
	reportTableRows = 50
	// cell text longer than this is cut with an ellipsis
	reportCellRunes = 24
	fontFamily      = "Helvetica"
	unicodeFamily   = "ReportUnicode"
)

// Params describes one report to build.
type Params struct {
	Filename   string
	UploadedAt time.Time
	FileSize   int64
	Table      *dataset.Table
	Summary    *analytics.Summary
	Commentary string
	Charts     [][]byte
}

// Builder renders pdf reports.
type Builder struct {
	logger   *slog.Logger
	fontPath string
}

// NewBuilder creates a report builder. fontPath may name a unicode ttf
// file; when it is empty or unreadable the latin core fonts are used.
func NewBuilder(logger *slog.Logger, fontPath string) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger, fontPath: fontPath}
}

type document struct {
	pdf       *fpdf.Fpdf
	family    string
	translate func(string) string
}

// Build renders the report and returns the pdf bytes.
func (b *Builder) Build(ctx context.Context, params Params) ([]byte, error) {
	doc := b.newDocument()
	pdf := doc.pdf

	b.writeTitle(doc, params)
	b.writeFileInfo(doc, params)
	b.writeTable(doc, params.Table)
	if params.Summary != nil {
		b.writeSummary(doc, params.Summary)
	}
	if params.Commentary != "" {
		b.writeCommentary(doc, params.Commentary)
	}
	b.writeCharts(doc, params.Charts)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewAppError(errors.ErrTypeStorage, "failed to render pdf report", err)
	}

	b.logger.InfoContext(ctx, "report rendered",
		slog.String("filename", params.Filename),
		slog.Int("pages", pdf.PageCount()),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (b *Builder) newDocument() *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)

	doc := &document{pdf: pdf, family: fontFamily, translate: func(s string) string { return s }}

	if b.fontPath != "" {
		if data, err := os.ReadFile(b.fontPath); err == nil {
			pdf.AddUTF8FontFromBytes(unicodeFamily, "", data)
			pdf.AddUTF8FontFromBytes(unicodeFamily, "B", data)
			pdf.AddUTF8FontFromBytes(unicodeFamily, "I", data)
			doc.family = unicodeFamily
		} else {
			b.logger.Warn("report font not readable, using core fonts",
				slog.String("font_path", b.fontPath),
				slog.String("error", err.Error()))
		}
	}
	if doc.family == fontFamily {
		doc.translate = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	return doc
}

func (b *Builder) writeTitle(doc *document, params Params) {
	pdf := doc.pdf
	pdf.SetFont(doc.family, "B", 18)
	pdf.CellFormat(0, 12, doc.translate("Отчет по данным"), "", 1, "C", false, 0, "")
	pdf.SetFont(doc.family, "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, doc.translate(fmt.Sprintf("Сформирован %s", time.Now().Format("2006-01-02 15:04"))), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
}

func (b *Builder) writeFileInfo(doc *document, params Params) {
	pdf := doc.pdf
	pdf.SetFont(doc.family, "B", 12)
	pdf.CellFormat(0, 8, doc.translate("Файл"), "", 1, "L", false, 0, "")
	pdf.SetFont(doc.family, "", 10)

	rows := [][2]string{
		{"Имя файла", params.Filename},
		{"Загружен", params.UploadedAt.Format("2006-01-02 15:04:05")},
		{"Размер", formatSize(params.FileSize)},
	}
	if params.Table != nil {
		rows = append(rows,
			[2]string{"Строк", fmt.Sprintf("%d", params.Table.NumRows())},
			[2]string{"Столбцов", fmt.Sprintf("%d", params.Table.NumColumns())},
		)
	}
	for _, row := range rows {
		pdf.CellFormat(45, 6, doc.translate(row[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, doc.translate(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (b *Builder) writeTable(doc *document, table *dataset.Table) {
	if table == nil || table.NumColumns() == 0 {
		return
	}
	pdf := doc.pdf
	pdf.SetFont(doc.family, "B", 12)
	pdf.CellFormat(0, 8, doc.translate("Данные"), "", 1, "L", false, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right
	colWidth := usable / float64(table.NumColumns())
	if colWidth < 18 {
		colWidth = 18
	}

	pdf.SetFont(doc.family, "B", 8)
	pdf.SetFillColor(52, 73, 94)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range table.Headers {
		pdf.CellFormat(colWidth, 7, doc.translate(truncateCell(h)), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(doc.family, "", 8)
	pdf.SetTextColor(0, 0, 0)
	limit := table.NumRows()
	if limit > reportTableRows {
		limit = reportTableRows
	}
	for r := 0; r < limit; r++ {
		fill := r%2 == 1
		pdf.SetFillColor(236, 240, 241)
		for c := range table.Headers {
			cell := ""
			if c < len(table.Rows[r]) {
				cell = table.Rows[r][c]
			}
			pdf.CellFormat(colWidth, 6, doc.translate(truncateCell(cell)), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	if table.NumRows() > limit {
		pdf.SetFont(doc.family, "I", 8)
		pdf.CellFormat(0, 6, doc.translate(fmt.Sprintf("... и еще %d строк", table.NumRows()-limit)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (b *Builder) writeSummary(doc *document, summary *analytics.Summary) {
	pdf := doc.pdf
	pdf.SetFont(doc.family, "B", 12)
	pdf.CellFormat(0, 8, doc.translate("Аналитика"), "", 1, "L", false, 0, "")

	pdf.SetFont(doc.family, "", 9)
	totals := fmt.Sprintf("строк: %d, столбцов: %d (числовых: %d, текстовых: %d, дат: %d), пропусков: %d, заполненность: %.1f%%",
		summary.RowCount, summary.ColumnCount,
		summary.NumericColumns, summary.TextColumns, summary.DatetimeColumns,
		summary.TotalMissing, summary.Completeness)
	pdf.CellFormat(0, 5, doc.translate(totals), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	for _, col := range summary.Columns {
		pdf.SetFont(doc.family, "B", 10)
		pdf.CellFormat(0, 6, doc.translate(fmt.Sprintf("%s (%s)", col.Name, col.Type)), "", 1, "L", false, 0, "")

		pdf.SetFont(doc.family, "", 9)
		line := fmt.Sprintf("пропусков: %d, уникальных: %d, заполненность: %.1f%%",
			col.Nulls, col.Unique, col.Completeness)
		pdf.CellFormat(0, 5, doc.translate(line), "", 1, "L", false, 0, "")

		switch {
		case col.Numeric != nil:
			stats := col.Numeric
			line = fmt.Sprintf("сумма: %.2f, среднее: %.2f, мин: %.2f, макс: %.2f, медиана: %.2f, откл: %.2f, выбросов: %d",
				stats.Sum, stats.Mean, stats.Min, stats.Max, stats.Median, stats.StdDev, stats.Outliers)
			pdf.CellFormat(0, 5, doc.translate(line), "", 1, "L", false, 0, "")
		case col.Datetime != nil && col.Datetime.Count > 0:
			line = fmt.Sprintf("диапазон: %s .. %s", col.Datetime.Min, col.Datetime.Max)
			pdf.CellFormat(0, 5, doc.translate(line), "", 1, "L", false, 0, "")
		case col.Text != nil && len(col.Text.TopValues) > 0:
			for _, v := range col.Text.TopValues {
				pdf.CellFormat(0, 5, doc.translate(fmt.Sprintf("  %s: %d", truncateCell(v.Value), v.Count)), "", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(1)
	}
	pdf.Ln(3)
}

func (b *Builder) writeCommentary(doc *document, commentary string) {
	pdf := doc.pdf
	pdf.SetFont(doc.family, "B", 12)
	pdf.CellFormat(0, 8, doc.translate("Комментарий"), "", 1, "L", false, 0, "")
	writeMarkdown(doc, commentary)
	pdf.Ln(3)
}

func (b *Builder) writeCharts(doc *document, charts [][]byte) {
	if len(charts) == 0 {
		return
	}
	pdf := doc.pdf
	pdf.SetFont(doc.family, "B", 12)
	pdf.CellFormat(0, 8, doc.translate("Графики"), "", 1, "L", false, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageWidth - left - right

	for i, img := range charts {
		name := fmt.Sprintf("chart-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		pdf.ImageOptions(name, left, pdf.GetY(), width, 0, true, opts, 0, "")
		pdf.Ln(4)
	}
}

func truncateCell(s string) string {
	runes := []rune(s)
	if len(runes) <= reportCellRunes {
		return s
	}
	return string(runes[:reportCellRunes-3]) + "..."
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
