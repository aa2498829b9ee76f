package ai

import (
	"strings"
	"unicode/utf8"

	"datasight/internal/dataset"
)

// promptRowLimit caps how many data rows are embedded into the prompt.
const promptRowLimit = 15

// systemPrompt instructs the model to act as a data analyst.
const systemPrompt = "Ты опытный аналитик данных. Тебе дан фрагмент таблицы, " +
	"загруженной пользователем. Проанализируй данные: опиши их структуру, " +
	"выдели закономерности, аномалии и возможные проблемы качества данных, " +
	"сформулируй практические выводы. Отвечай на русском языке, структурируй " +
	"ответ заголовками и списками в формате markdown."

// BuildPrompt renders the first rows of the table as an aligned text grid
// for the model to read.
func BuildPrompt(table *dataset.Table) string {
	head := table.Head(promptRowLimit)

	widths := make([]int, len(head.Headers))
	for i, h := range head.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range head.Rows {
		for i := range head.Headers {
			if i < len(row) {
				if w := utf8.RuneCountInString(row[i]); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	var b strings.Builder
	b.WriteString("Таблица (первые строки):\n\n")
	writeRow(&b, head.Headers, widths)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')
	for _, row := range head.Rows {
		writeRow(&b, row, widths)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(cell)
		if pad := w - utf8.RuneCountInString(cell); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
	}
	b.WriteByte('\n')
}
