package report

import "strings"

// writeMarkdown renders a small markdown subset: #/##/### headings, dash and
// star bullets, horizontal rules, and inline **bold** and *italic* spans.
// Model commentary arrives in this format.
func writeMarkdown(doc *document, text string) {
	pdf := doc.pdf
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimRight(rawLine, " \t\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			pdf.Ln(2)
		case trimmed == "---" || trimmed == "***":
			pageWidth, _ := pdf.GetPageSize()
			left, _, right, _ := pdf.GetMargins()
			y := pdf.GetY() + 2
			pdf.Line(left, y, pageWidth-right, y)
			pdf.Ln(4)
		case strings.HasPrefix(trimmed, "### "):
			pdf.SetFont(doc.family, "B", 10)
			pdf.CellFormat(0, 6, doc.translate(strings.TrimPrefix(trimmed, "### ")), "", 1, "L", false, 0, "")
		case strings.HasPrefix(trimmed, "## "):
			pdf.SetFont(doc.family, "B", 11)
			pdf.CellFormat(0, 7, doc.translate(strings.TrimPrefix(trimmed, "## ")), "", 1, "L", false, 0, "")
		case strings.HasPrefix(trimmed, "# "):
			pdf.SetFont(doc.family, "B", 12)
			pdf.CellFormat(0, 8, doc.translate(strings.TrimPrefix(trimmed, "# ")), "", 1, "L", false, 0, "")
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			pdf.SetFont(doc.family, "", 9)
			pdf.CellFormat(5, 5, doc.translate("•"), "", 0, "L", false, 0, "")
			writeInline(doc, trimmed[2:], 9)
			pdf.Ln(-1)
		default:
			writeInline(doc, trimmed, 9)
			pdf.Ln(-1)
		}
	}
	pdf.SetFont(doc.family, "", 9)
}

// writeInline writes one line, toggling bold and italic on ** and * markers.
func writeInline(doc *document, line string, size float64) {
	pdf := doc.pdf
	for _, span := range splitSpans(line) {
		style := ""
		if span.bold {
			style += "B"
		}
		if span.italic {
			style += "I"
		}
		pdf.SetFont(doc.family, style, size)
		pdf.Write(5, doc.translate(span.text))
	}
}

type inlineSpan struct {
	text   string
	bold   bool
	italic bool
}

// splitSpans cuts a line into styled spans at ** and * markers. An
// unbalanced marker styles the rest of the line.
func splitSpans(line string) []inlineSpan {
	var spans []inlineSpan
	bold, italic := false, false
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			spans = append(spans, inlineSpan{text: buf.String(), bold: bold, italic: italic})
			buf.Reset()
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '*' {
			if i+1 < len(runes) && runes[i+1] == '*' {
				flush()
				bold = !bold
				i++
				continue
			}
			flush()
			italic = !italic
			continue
		}
		buf.WriteRune(runes[i])
	}
	flush()
	return spans
}
