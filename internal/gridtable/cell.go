package gridtable

import (
	"fmt"
	"strings"
)

// DefaultPad is the number of spaces on each side of a cell's text unless
// the cell or the table says otherwise.
const DefaultPad = 1

// Entry is one slot of a Row: either a *Cell or a SpanHold.
// The interface is sealed; consumers switch over both variants.
type Entry interface {
	isEntry()
}

// SpanHold occupies a slot that belongs to the span of another cell.
// It has no content and is never measured or rendered on its own.
type SpanHold struct{}

func (SpanHold) isEntry() {}

// Hold is the placeholder to use when building rows by hand.
var Hold Entry = SpanHold{}

// Cell is the content of one table cell. It is immutable once built.
type Cell struct {
	contents string
	hSpan    int
	vSpan    int
	leftPad  int
	rightPad int
	padSet   bool
}

func (*Cell) isEntry() {}

// CellOption configures a Cell in NewCell.
type CellOption func(*Cell)

// Span sets both the column span and the row span of a cell.
func Span(cols, rows int) CellOption {
	return func(c *Cell) {
		c.hSpan = cols
		c.vSpan = rows
	}
}

// ColSpan sets how many adjacent columns the cell covers.
func ColSpan(n int) CellOption {
	return func(c *Cell) { c.hSpan = n }
}

// RowSpan sets how many adjacent rows the cell covers.
func RowSpan(n int) CellOption {
	return func(c *Cell) { c.vSpan = n }
}

// Padding sets the spaces kept left and right of the cell's text, overriding
// the table default.
func Padding(left, right int) CellOption {
	return func(c *Cell) {
		c.leftPad = left
		c.rightPad = right
		c.padSet = true
	}
}

// NewCell returns a cell holding contents. Without options it spans one
// column and one row and uses the table's default padding.
func NewCell(contents string, opts ...CellOption) *Cell {
	c := &Cell{
		contents: contents,
		hSpan:    1,
		vSpan:    1,
		leftPad:  DefaultPad,
		rightPad: DefaultPad,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contents returns the raw text of the cell.
func (c *Cell) Contents() string { return c.contents }

// ColSpan returns the number of columns the cell covers.
func (c *Cell) ColSpan() int { return c.hSpan }

// RowSpan returns the number of rows the cell covers.
func (c *Cell) RowSpan() int { return c.vSpan }

// Padding returns the cell's own padding and whether it was set explicitly.
func (c *Cell) Padding() (left, right int, ok bool) {
	return c.leftPad, c.rightPad, c.padSet
}

// String implements Stringer.
func (c *Cell) String() string {
	var spans []string
	if c.hSpan > 1 {
		spans = append(spans, fmt.Sprintf("colspan=%d", c.hSpan))
	}
	if c.vSpan > 1 {
		spans = append(spans, fmt.Sprintf("rowspan=%d", c.vSpan))
	}
	return fmt.Sprintf("%s[%s]", strings.Join(spans, ","), c.contents)
}

// String implements Stringer.
func (SpanHold) String() string { return "[hold]" }

// Row is one logical table row with an Entry per column.
type Row []Entry

// Cells builds a row of single-span cells from plain strings.
func Cells(texts ...string) Row {
	row := make(Row, len(texts))
	for i, text := range texts {
		row[i] = NewCell(text)
	}
	return row
}
