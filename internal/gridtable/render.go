package gridtable

import (
	"fmt"
	"log/slog"
	"strings"
)

// slot is the render-time state of the cell anchored at one column: the text
// it still has to print and how many more rows its box covers below the row
// being rendered. A zero slot means no cell is in flight there.
type slot struct {
	cell     *Cell
	text     string
	rowsLeft int
}

func (s slot) active() bool { return s.cell != nil }

// overflow is indexed by anchor column. Render steps never modify the
// overflow they are given; they return a new one.
type overflow []slot

func (o overflow) clone() overflow {
	return append(overflow(nil), o...)
}

// needsLine reports whether the row must print another physical line: some
// cell that ends in this row still has text, or this is the last row and any
// cell at all still has text.
func (o overflow) needsLine(last bool) bool {
	for _, s := range o {
		if s.active() && !blank(s.text) && (s.rowsLeft == 0 || last) {
			return true
		}
	}
	return false
}

// settle drops the cells whose box and text are both finished.
func (o overflow) settle() overflow {
	next := o.clone()
	for col, s := range next {
		if s.active() && s.rowsLeft == 0 && blank(s.text) {
			next[col] = slot{}
		}
	}
	return next
}

// heldWithin returns a slot whose vertical span still covers one of the
// columns in [from, to).
func (o overflow) heldWithin(from, to int) (slot, bool) {
	for anchor, s := range o {
		if !s.active() || s.rowsLeft == 0 {
			continue
		}
		if anchor < to && anchor+s.cell.hSpan > from {
			return s, true
		}
	}
	return slot{}, false
}

// printer holds what stays fixed during one Print call.
type printer struct {
	table  *Table
	widths []int
}

// Print renders the table as a grid table. Every line, the last one
// included, ends with a newline. A malformed table returns an error and no
// output.
func Print(t *Table) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	widths, err := t.Widths()
	if err != nil {
		return "", err
	}
	p := &printer{table: t, widths: widths}
	if err := p.checkRoom(); err != nil {
		return "", err
	}
	slog.Debug("rendering grid table", "rows", len(t.rows), "widths", widths, "line_breaks", t.breaks.String())

	var b strings.Builder
	emit := func(lines ...string) {
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	emit(p.border('-'))
	carried := make(overflow, len(widths))
	last := len(t.rows) - 1
	for r, row := range t.rows {
		lines, out, err := p.renderRow(r, row, carried, r == last)
		if err != nil {
			return "", err
		}
		emit(lines...)
		divider, next := p.renderDivider(out, r == 0)
		emit(divider)
		carried = next
	}
	return b.String(), nil
}

// Render is shorthand for Print(t).
func (t *Table) Render() (string, error) {
	return Print(t)
}

// checkRoom rejects cells whose padding leaves no room for their widest
// rune. Such cells would otherwise lose text or never run out of overflow.
func (p *printer) checkRoom() error {
	for r, row := range p.table.rows {
		for col, entry := range row {
			c, ok := entry.(*Cell)
			if !ok || blank(c.contents) {
				continue
			}
			left, right := p.table.padding(c)
			need := max(widestRune(c.contents), 1)
			if w := cellWidth(p.widths, col, c.hSpan); w-left-right < need {
				return fmt.Errorf("%w: cell at row %d column %d is %d wide with padding %d/%d, text needs %d",
					ErrColumnTooNarrow, r, col, w, left, right, need)
			}
		}
	}
	return nil
}

// renderRow prints one logical row. It starts the row's own cells, continues
// the cells whose vertical span reaches into the row, and prints physical
// lines until every cell that ends here is flushed. On the last row all
// remaining text is flushed, whatever the spans claim.
func (p *printer) renderRow(r int, row Row, in overflow, last bool) ([]string, overflow, error) {
	out := make(overflow, len(p.widths))
	for col := 0; col < len(row); {
		switch e := row[col].(type) {
		case *Cell:
			if prev, ok := in.heldWithin(col, col+e.hSpan); ok {
				return nil, nil, fmt.Errorf("%w: cell at row %d column %d lies inside the span of %s",
					ErrOverlappingSpan, r, col, prev.cell)
			}
			out[col] = slot{cell: e, text: e.contents, rowsLeft: e.vSpan - 1}
			col += e.hSpan
		case SpanHold:
			s := in[col]
			if !s.active() || s.rowsLeft == 0 {
				return nil, nil, fmt.Errorf("%w: placeholder at row %d column %d is not covered by any span",
					ErrShapeMismatch, r, col)
			}
			s.rowsLeft--
			out[col] = s
			col += s.cell.hSpan
		default:
			return nil, nil, fmt.Errorf("%w: missing entry at row %d column %d", ErrShapeMismatch, r, col)
		}
	}

	if last {
		for col, s := range out {
			if s.active() && s.rowsLeft > 0 {
				slog.Debug("vertical span runs past the last row; flushing", "row", r, "column", col, "rows_left", s.rowsLeft)
			}
		}
	}

	var lines []string
	for {
		var line string
		line, out = p.renderLine(out)
		lines = append(lines, line)
		if !out.needsLine(last) {
			break
		}
	}

	out = out.settle()
	if last {
		out = make(overflow, len(p.widths))
	}
	return lines, out, nil
}

// renderLine prints one physical line across all anchors of o.
func (p *printer) renderLine(o overflow) (string, overflow) {
	next := o.clone()
	var b strings.Builder
	for col := 0; col < len(o); {
		s := o[col]
		b.WriteByte('|')
		if !s.active() {
			b.WriteString(strings.Repeat(" ", p.widths[col]))
			col++
			continue
		}
		text, rest := p.table.formatter(s.cell).Format(s.text, cellWidth(p.widths, col, s.cell.hSpan))
		b.WriteString(text)
		next[col].text = rest
		col += s.cell.hSpan
	}
	b.WriteByte('|')
	return b.String(), next
}

// segment is one column stretch of a divider line.
type segment struct {
	text string
	open bool // cell interior rather than border
}

// renderDivider prints the line below a row. Where a cell's vertical span
// carries on past the divider, that stretch shows the cell's next line of
// text instead of the border.
func (p *printer) renderDivider(o overflow, header bool) (string, overflow) {
	fill := "-"
	if header {
		fill = "="
	}
	next := o.clone()
	var segs []segment
	for col := 0; col < len(p.widths); {
		s := o[col]
		if s.active() && s.rowsLeft > 0 {
			text, rest := p.table.formatter(s.cell).Format(s.text, cellWidth(p.widths, col, s.cell.hSpan))
			next[col].text = rest
			segs = append(segs, segment{text: text, open: true})
			col += s.cell.hSpan
			continue
		}
		segs = append(segs, segment{text: strings.Repeat(fill, p.widths[col])})
		col++
	}
	return joinSegments(segs), next
}

// border is a divider with no cell text in it.
func (p *printer) border(fill byte) string {
	segs := make([]segment, len(p.widths))
	for i, w := range p.widths {
		segs[i] = segment{text: strings.Repeat(string(fill), w)}
	}
	return joinSegments(segs)
}

// joinSegments places a junction before, between and after segments: "+"
// next to any border stretch, "|" where only cell interiors meet.
func joinSegments(segs []segment) string {
	var b strings.Builder
	for i := 0; i <= len(segs); i++ {
		junction := byte('|')
		if (i > 0 && !segs[i-1].open) || (i < len(segs) && !segs[i].open) {
			junction = '+'
		}
		b.WriteByte(junction)
		if i < len(segs) {
			b.WriteString(segs[i].text)
		}
	}
	return b.String()
}
