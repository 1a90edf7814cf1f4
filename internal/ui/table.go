package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Right-aligned columns suit amounts.
type Column struct {
	Title string
	Width int
	Right bool
}

// Row is a slice of cell values.
type Row []string

// Table renders aligned rows under a header and a divider. One row can be
// marked, such as the wallet's current tier or the selected RPC endpoint.
type Table struct {
	cols    []Column
	rows    []Row
	marked  int
	Caption string // dimmed line under the rows, e.g. the data source
}

// NewTable creates a table with no marked row.
func NewTable(cols []Column) *Table {
	return &Table{cols: cols, marked: -1}
}

// AddRow appends a row. Missing trailing cells render blank.
func (t *Table) AddRow(r Row) {
	t.rows = append(t.rows, r)
}

// Mark highlights row i with a ▸ gutter. Out of range clears the mark.
func (t *Table) Mark(i int) {
	if i < 0 || i >= len(t.rows) {
		i = -1
	}
	t.marked = i
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Render returns the table as a string. Cells are padded by visible width,
// so pre-styled values line up with plain ones.
func (t *Table) Render() string {
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)
	gutter := t.marked >= 0

	line := func(mark string, cells []string) string {
		if gutter {
			return mark + strings.Join(cells, " ") + "\n"
		}
		return strings.Join(cells, " ") + "\n"
	}

	titles := make([]string, len(t.cols))
	rules := make([]string, len(t.cols))
	for j, col := range t.cols {
		titles[j] = header.Render(fit(col.Title, col.Width, col.Right))
		rules[j] = StyleMeta.Render(strings.Repeat("─", col.Width))
	}

	var sb strings.Builder
	sb.WriteString(line("  ", titles))
	sb.WriteString(line("  ", rules))
	for i, row := range t.rows {
		style, mark := cell, "  "
		if i == t.marked {
			style, mark = StyleSelected, StyleBrand.Render("▸ ")
		}
		cells := make([]string, len(t.cols))
		for j, col := range t.cols {
			v := ""
			if j < len(row) {
				v = row[j]
			}
			cells[j] = style.Render(fit(v, col.Width, col.Right))
		}
		sb.WriteString(line(mark, cells))
	}
	if t.Caption != "" {
		sb.WriteString(StyleMeta.Render(t.Caption) + "\n")
	}
	return sb.String()
}

// fit pads s to exactly width visible cells. Plain text that is too wide is
// cut with an ellipsis; styled text is left as is.
func fit(s string, width int, right bool) string {
	w := lipgloss.Width(s)
	if w > width {
		if w != utf8.RuneCountInString(s) || width < 1 {
			return s
		}
		r := []rune(s)
		return string(r[:width-1]) + "…"
	}
	gap := strings.Repeat(" ", width-w)
	if right {
		return gap + s
	}
	return s + gap
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		val := StyleValue.Render(p[1])
		sb.WriteString("  " + key + " " + val + "\n")
	}
	return StyleBorder.Render(sb.String())
}

// ProgressBar renders pct (0..100) as a bar of the given width followed by
// the percentage.
func ProgressBar(pct, width int) string {
	pct = max(0, min(pct, 100))
	filled := pct * width / 100
	bar := StyleBrand.Render(strings.Repeat("█", filled)) +
		StyleMeta.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d%%", bar, pct)
}
