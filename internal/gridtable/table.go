package gridtable

import (
	"fmt"
	"sort"
	"strings"
)

// LineBreakMode controls how line breaks inside a cell's contents are treated.
type LineBreakMode int

const (
	// BreaksFlatten treats line breaks like spaces; wrapping is purely width driven.
	BreaksFlatten LineBreakMode = iota
	// BreaksPreserve wraps every source line on its own and keeps lines that
	// fit unchanged. Use it for nested tables and other preformatted text.
	BreaksPreserve
)

// ParseLineBreakMode converts "flatten" or "preserve" to a LineBreakMode.
// Empty input means BreaksFlatten.
func ParseLineBreakMode(s string) (LineBreakMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flatten":
		return BreaksFlatten, nil
	case "preserve":
		return BreaksPreserve, nil
	default:
		return BreaksFlatten, fmt.Errorf("invalid line break mode %q (expected flatten|preserve)", s)
	}
}

func (m LineBreakMode) String() string {
	if m == BreaksPreserve {
		return "preserve"
	}
	return "flatten"
}

// Table is a complete grid table description. Row 0 is the header row and
// fixes the number of columns.
type Table struct {
	rows     []Row
	widths   map[int]int
	leftPad  int
	rightPad int
	breaks   LineBreakMode
}

// TableOption configures a Table in NewTable.
type TableOption func(*Table)

// ColumnWidth fixes the width of column col, padding included.
func ColumnWidth(col, width int) TableOption {
	return func(t *Table) { t.widths[col] = width }
}

// DefaultPadding sets the padding of every cell that has no Padding option.
func DefaultPadding(left, right int) TableOption {
	return func(t *Table) {
		t.leftPad = left
		t.rightPad = right
	}
}

// LineBreaks sets how line breaks in cell contents are handled.
func LineBreaks(mode LineBreakMode) TableOption {
	return func(t *Table) { t.breaks = mode }
}

// NewTable returns a table over rows. The rows are copied, so later changes
// to the caller's slices do not affect the table.
func NewTable(rows []Row, opts ...TableOption) *Table {
	t := &Table{
		rows:     make([]Row, len(rows)),
		widths:   make(map[int]int),
		leftPad:  DefaultPad,
		rightPad: DefaultPad,
	}
	for i, row := range rows {
		t.rows[i] = append(Row(nil), row...)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Columns returns the number of logical columns, as fixed by the header row.
func (t *Table) Columns() int {
	if len(t.rows) == 0 {
		return 0
	}
	return len(t.rows[0])
}

// NumRows returns the number of rows including the header.
func (t *Table) NumRows() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	return append(Row(nil), t.rows[i]...)
}

// LineBreakMode returns the table's line break handling.
func (t *Table) LineBreakMode() LineBreakMode { return t.breaks }

// ExplicitWidth returns the width set with ColumnWidth for col, if any.
func (t *Table) ExplicitWidth(col int) (int, bool) {
	w, ok := t.widths[col]
	return w, ok
}

// padding resolves the padding a cell renders with.
func (t *Table) padding(c *Cell) (int, int) {
	if c.padSet {
		return c.leftPad, c.rightPad
	}
	return t.leftPad, t.rightPad
}

// formatter returns the Formatter used for c.
func (t *Table) formatter(c *Cell) Formatter {
	left, right := t.padding(c)
	return Formatter{LeftPad: left, RightPad: right, Breaks: t.breaks}
}

// spanClaim records a vertical span still covering a column.
type spanClaim struct {
	row, col int
	rowsLeft int
}

// Validate checks the table's shape: every row has the header's column
// count, spans stay inside the table and cover only placeholders, every
// placeholder is covered by a span, and no cell lands inside a vertical span
// that is still in progress.
func (t *Table) Validate() error {
	if len(t.rows) == 0 {
		return fmt.Errorf("%w: table has no header row", ErrShapeMismatch)
	}
	cols := len(t.rows[0])
	if cols == 0 {
		return fmt.Errorf("%w: header row is empty", ErrShapeMismatch)
	}
	if t.leftPad < 0 || t.rightPad < 0 {
		return fmt.Errorf("%w: negative default padding %d/%d", ErrInvalidSpan, t.leftPad, t.rightPad)
	}

	explicit := make([]int, 0, len(t.widths))
	for col := range t.widths {
		explicit = append(explicit, col)
	}
	sort.Ints(explicit)
	for _, col := range explicit {
		if col < 0 || col >= cols {
			return fmt.Errorf("%w: width set for column %d, table has %d columns", ErrColumnOutOfRange, col, cols)
		}
		if w := t.widths[col]; w < 1 {
			return fmt.Errorf("%w: column %d width %d", ErrInvalidSpan, col, w)
		}
	}

	claims := make([]spanClaim, cols)
	for r, row := range t.rows {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d columns, header has %d", ErrShapeMismatch, r, len(row), cols)
		}
		covered := make([]bool, cols)
		for c, entry := range row {
			switch e := entry.(type) {
			case *Cell:
				if e == nil {
					return fmt.Errorf("%w: nil cell at row %d column %d", ErrShapeMismatch, r, c)
				}
				if cl := claims[c]; cl.rowsLeft > 0 && cl.row < r {
					return fmt.Errorf("%w: cell at row %d column %d lies inside the span of the cell at row %d column %d",
						ErrOverlappingSpan, r, c, cl.row, cl.col)
				}
				if covered[c] {
					return fmt.Errorf("%w: cell at row %d column %d lies inside a column span", ErrShapeMismatch, r, c)
				}
				if err := checkCell(e, r, c); err != nil {
					return err
				}
				if c+e.hSpan > cols {
					return fmt.Errorf("%w: cell at row %d column %d spans %d columns past the last column",
						ErrShapeMismatch, r, c, c+e.hSpan-cols)
				}
				for k := c + 1; k < c+e.hSpan; k++ {
					if _, ok := row[k].(SpanHold); !ok {
						return fmt.Errorf("%w: cell at row %d column %d spans over column %d, which is not a placeholder",
							ErrShapeMismatch, r, c, k)
					}
					if cl := claims[k]; cl.rowsLeft > 0 && cl.row < r {
						return fmt.Errorf("%w: cell at row %d column %d spans over column %d, still held by the cell at row %d column %d",
							ErrOverlappingSpan, r, c, k, cl.row, cl.col)
					}
					covered[k] = true
				}
				if e.vSpan > 1 {
					for k := c; k < c+e.hSpan; k++ {
						claims[k] = spanClaim{row: r, col: c, rowsLeft: e.vSpan - 1}
					}
				}
			case SpanHold:
				if covered[c] {
					continue
				}
				if cl := claims[c]; cl.rowsLeft > 0 && cl.row < r {
					claims[c].rowsLeft--
					continue
				}
				return fmt.Errorf("%w: placeholder at row %d column %d is not covered by any span", ErrShapeMismatch, r, c)
			default:
				return fmt.Errorf("%w: missing entry at row %d column %d", ErrShapeMismatch, r, c)
			}
		}
	}
	return nil
}

func checkCell(c *Cell, row, col int) error {
	if c.hSpan < 1 || c.vSpan < 1 {
		return fmt.Errorf("%w: cell at row %d column %d has span %dx%d", ErrInvalidSpan, row, col, c.hSpan, c.vSpan)
	}
	if c.padSet && (c.leftPad < 0 || c.rightPad < 0) {
		return fmt.Errorf("%w: cell at row %d column %d has padding %d/%d", ErrInvalidSpan, row, col, c.leftPad, c.rightPad)
	}
	return nil
}
