package gridtable

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Width returns the width of column col, padding included but not the
// separators. An explicit ColumnWidth wins; otherwise the widest cell that
// starts in col and spans exactly one column decides. Spanning cells never
// widen a column.
func (t *Table) Width(col int) (int, error) {
	if col < 0 || col >= t.Columns() {
		return 0, fmt.Errorf("%w: column %d, table has %d columns", ErrColumnOutOfRange, col, t.Columns())
	}
	if w, ok := t.widths[col]; ok {
		return w, nil
	}

	widest, found := 0, false
	for _, row := range t.rows {
		c := cellAt(row, col)
		if c == nil || c.hSpan != 1 {
			continue
		}
		left, right := t.padding(c)
		if w := left + measure(c.contents, t.breaks) + right; !found || w > widest {
			widest = w
		}
		found = true
	}
	if !found {
		return 0, fmt.Errorf("%w: column %d", ErrWidthRequired, col)
	}
	return widest, nil
}

// Widths resolves every column width.
func (t *Table) Widths() ([]int, error) {
	widths := make([]int, t.Columns())
	for i := range widths {
		w, err := t.Width(i)
		if err != nil {
			return nil, err
		}
		widths[i] = w
	}
	return widths, nil
}

// cellAt returns the cell that starts at logical column col of row. The row
// is walked by span rather than by raw index, so the extra slots claimed by a
// column span are skipped.
func cellAt(row Row, col int) *Cell {
	for i := 0; i < len(row); {
		switch e := row[i].(type) {
		case *Cell:
			if e == nil {
				return nil
			}
			if i == col {
				return e
			}
			if e.hSpan < 1 {
				i++
				continue
			}
			i += e.hSpan
		case SpanHold:
			if i == col {
				return nil
			}
			i++
		default:
			return nil
		}
		if i > col {
			return nil
		}
	}
	return nil
}

// cellWidth returns the width of a cell starting at col and spanning span
// columns. A merged cell also takes the separator between each pair of
// columns it covers.
func cellWidth(widths []int, col, span int) int {
	w := 0
	for i := col; i < col+span; i++ {
		w += widths[i]
	}
	return w + span - 1
}

// LineWidth returns the display width of every line of a table rendered
// with the given column widths.
func LineWidth(widths []int) int {
	w := 1
	for _, cw := range widths {
		w += cw + 1
	}
	return w
}

// measure returns the display width a cell's contents asks for. Flattened
// contents count every line break as one separator; preserved contents
// count their widest line.
func measure(contents string, mode LineBreakMode) int {
	contents = normalize(contents)
	if mode == BreaksPreserve {
		widest := 0
		for _, line := range strings.Split(contents, "\n") {
			if w := runewidth.StringWidth(strings.TrimRight(line, " ")); w > widest {
				widest = w
			}
		}
		return widest
	}
	return runewidth.StringWidth(strings.ReplaceAll(contents, "\n", " "))
}

// normalize folds carriage returns and tabs so that every character left
// has a well defined display width.
func normalize(s string) string {
	if !strings.ContainsAny(s, "\r\t") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\t", " ")
}

// widestRune is the display width of the widest rune in s.
func widestRune(s string) int {
	widest := 0
	for _, r := range s {
		if w := runewidth.RuneWidth(r); w > widest {
			widest = w
		}
	}
	return widest
}
