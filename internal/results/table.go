package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxColumnWidth caps a column so long keyword lists don't wrap the terminal
const maxColumnWidth = 40

// WriteTable prints rows as an aligned plain-text table
func WriteTable(w io.Writer, rows []Row) error {
	widths := make([]int, len(Columns))
	for i, c := range Columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, row := range rows {
		for i, cell := range row.Cells() {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxColumnWidth))
		}
	}

	if err := writeLine(w, Columns, widths); err != nil {
		return err
	}

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	if err := writeLine(w, rule, widths); err != nil {
		return err
	}

	for _, row := range rows {
		if err := writeLine(w, row.Cells(), widths); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, cells []string, widths []int) error {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		cell = runewidth.Truncate(cell, widths[i], "…")
		if i == len(cells)-1 {
			parts[i] = cell
			continue
		}
		parts[i] = runewidth.FillRight(cell, widths[i])
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, "  "))
	return err
}
