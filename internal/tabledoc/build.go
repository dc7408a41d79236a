package tabledoc

import (
	"fmt"
	"log/slog"
	"strings"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/gridtable"
)

// Defaults are the settings a document inherits when it does not set them.
type Defaults struct {
	LineBreaks gridtable.LineBreakMode
	LeftPad    int
	RightPad   int
}

// DefaultSettings returns the renderer's own defaults.
func DefaultSettings() Defaults {
	return Defaults{
		LineBreaks: gridtable.BreaksFlatten,
		LeftPad:    gridtable.DefaultPad,
		RightPad:   gridtable.DefaultPad,
	}
}

// Build converts the document into a grid table. Rows only list the cells a
// reader sees; slots covered by a colspan or by a rowspan from an earlier row
// are filled with placeholders. A row with fewer cells than the header is
// completed with empty cells.
//
// Nested tables are rendered first and their text becomes the cell contents.
// A document with nested tables renders with preserved line breaks unless it
// says otherwise, and saying flatten is an error.
func (d *Document) Build(def Defaults) (*gridtable.Table, error) {
	if len(d.Header) == 0 {
		msg := "a table needs a header row"
		if d.line > 0 {
			msg = fmt.Sprintf("line %d: %s", d.line, msg)
		}
		return nil, &clierrors.ValidationError{Field: "header", Message: msg, Err: gridtable.ErrShapeMismatch}
	}

	mode := def.LineBreaks
	if d.LineBreaks != "" {
		m, err := gridtable.ParseLineBreakMode(d.LineBreaks)
		if err != nil {
			return nil, &clierrors.ValidationError{Field: "line_breaks", Message: err.Error()}
		}
		mode = m
	}
	if d.hasNestedTable() {
		if d.LineBreaks != "" && mode != gridtable.BreaksPreserve {
			return nil, &clierrors.ValidationError{
				Field:   "line_breaks",
				Message: "nested tables need line_breaks: preserve",
			}
		}
		mode = gridtable.BreaksPreserve
	}

	left, right := d.Padding.resolve(def.LeftPad, def.RightPad)
	opts := []gridtable.TableOption{
		gridtable.LineBreaks(mode),
		gridtable.DefaultPadding(left, right),
	}
	for col, w := range d.Widths {
		opts = append(opts, gridtable.ColumnWidth(col, w))
	}

	cols := 0
	for _, c := range d.Header {
		cols += max(c.colSpan(), 1)
	}

	// Nested tables inherit padding but pick their own line break mode.
	inner := Defaults{LineBreaks: gridtable.BreaksFlatten, LeftPad: left, RightPad: right}

	specs := append([][]CellSpec{d.Header}, d.Rows...)
	rows := make([]gridtable.Row, len(specs))
	claims := make([]int, cols)
	for r, spec := range specs {
		row, err := buildRow(r, spec, claims, inner)
		if err != nil {
			return nil, err
		}
		rows[r] = row
	}
	for col, rowsLeft := range claims {
		if rowsLeft > 0 {
			slog.Debug("rowspan runs past the last row", "column", col, "rows_left", rowsLeft)
		}
	}

	return gridtable.NewTable(rows, opts...), nil
}

// buildRow lays out the visible cells of row r over the columns that are not
// claimed by a rowspan from above. claims holds, per column, how many more
// rows an earlier cell covers; it is updated for the next row.
func buildRow(r int, spec []CellSpec, claims []int, inner Defaults) (gridtable.Row, error) {
	cols := len(claims)
	row := make(gridtable.Row, cols)
	next := 0
	for col := 0; col < cols; {
		if claims[col] > 0 {
			row[col] = gridtable.Hold
			claims[col]--
			col++
			continue
		}
		if next >= len(spec) {
			row[col] = gridtable.NewCell("")
			col++
			continue
		}

		c := spec[next]
		field := cellField(r, next, c.line)
		next++

		cs, rs := c.colSpan(), c.rowSpan()
		if cs < 1 || rs < 1 {
			return nil, &clierrors.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("colspan and rowspan must be at least 1, got %dx%d", cs, rs),
				Err:     gridtable.ErrInvalidSpan,
			}
		}
		if col+cs > cols {
			return nil, &clierrors.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("colspan %d at column %d runs past the last column", cs, col),
				Err:     gridtable.ErrShapeMismatch,
			}
		}
		for k := col + 1; k < col+cs; k++ {
			if claims[k] > 0 {
				return nil, &clierrors.ValidationError{
					Field:   field,
					Message: fmt.Sprintf("colspan covers column %d, which a rowspan from above still holds", k),
					Err:     gridtable.ErrOverlappingSpan,
				}
			}
		}

		cell, err := c.build(field, inner)
		if err != nil {
			return nil, err
		}
		row[col] = cell
		for k := col; k < col+cs; k++ {
			if k > col {
				row[k] = gridtable.Hold
			}
			claims[k] = rs - 1
		}
		col += cs
	}

	if next < len(spec) {
		return nil, &clierrors.ValidationError{
			Field:   cellField(r, next, spec[next].line),
			Message: fmt.Sprintf("row has %d cells, only %d fit beside the spans", len(spec), next),
			Err:     gridtable.ErrShapeMismatch,
		}
	}
	return row, nil
}

func (c CellSpec) build(field string, inner Defaults) (*gridtable.Cell, error) {
	text := c.Text
	if c.Table != nil {
		if c.Text != "" {
			return nil, &clierrors.ValidationError{Field: field, Message: "a cell holds either text or a table, not both"}
		}
		nested, err := c.Table.Build(inner)
		if err != nil {
			return nil, fmt.Errorf("nested table in %s: %w", field, err)
		}
		out, err := gridtable.Print(nested)
		if err != nil {
			return nil, &clierrors.ValidationError{Field: field, Message: "nested table: " + err.Error(), Err: err}
		}
		text = strings.TrimSuffix(out, "\n")
	}

	opts := []gridtable.CellOption{gridtable.Span(c.colSpan(), c.rowSpan())}
	if c.Padding != nil {
		left, right := c.Padding.resolve(inner.LeftPad, inner.RightPad)
		opts = append(opts, gridtable.Padding(left, right))
	}
	return gridtable.NewCell(text, opts...), nil
}

func (c CellSpec) colSpan() int {
	if c.ColSpan == 0 {
		return 1
	}
	return c.ColSpan
}

func (c CellSpec) rowSpan() int {
	if c.RowSpan == 0 {
		return 1
	}
	return c.RowSpan
}

func (d *Document) hasNestedTable() bool {
	for _, c := range d.Header {
		if c.Table != nil {
			return true
		}
	}
	for _, row := range d.Rows {
		for _, c := range row {
			if c.Table != nil {
				return true
			}
		}
	}
	return false
}

// cellField names a cell by its position in the document. r counts the
// header as row 0.
func cellField(r, i, line int) string {
	name := fmt.Sprintf("rows[%d][%d]", r-1, i)
	if r == 0 {
		name = fmt.Sprintf("header[%d]", i)
	}
	if line > 0 {
		name += fmt.Sprintf(" (line %d)", line)
	}
	return name
}
