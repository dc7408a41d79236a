package output

import (
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/salmonumbrella/rstgrid/internal/gridtable"
)

// Width sources reported per column.
const (
	SourceExplicit = "explicit"
	SourceAuto     = "auto"
)

// ColumnWidth is the resolved width of one column.
type ColumnWidth struct {
	Column int    `json:"column" yaml:"column"`
	Width  int    `json:"width" yaml:"width"`
	Source string `json:"source" yaml:"source"`
}

// Report describes a resolved or rendered grid table.
type Report struct {
	Columns    int           `json:"columns" yaml:"columns"`
	Rows       int           `json:"rows" yaml:"rows"`
	LineWidth  int           `json:"line_width" yaml:"line_width"`
	LineBreaks string        `json:"line_breaks" yaml:"line_breaks"`
	Widths     []ColumnWidth `json:"widths" yaml:"widths"`
	Lines      []string      `json:"lines,omitempty" yaml:"lines,omitempty"`
	Text       string        `json:"text,omitempty" yaml:"text,omitempty"`
}

// NewReport describes t laid out with widths. text is the rendered grid and
// may be empty when only the layout was resolved.
func NewReport(t *gridtable.Table, widths []int, text string) Report {
	r := Report{
		Columns:    t.Columns(),
		Rows:       t.NumRows(),
		LineWidth:  gridtable.LineWidth(widths),
		LineBreaks: t.LineBreakMode().String(),
		Widths:     make([]ColumnWidth, len(widths)),
		Text:       text,
	}
	for col, w := range widths {
		source := SourceAuto
		if _, ok := t.ExplicitWidth(col); ok {
			source = SourceExplicit
		}
		r.Widths[col] = ColumnWidth{Column: col, Width: w, Source: source}
	}
	if text != "" {
		r.Lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	}
	return r
}

// PlainText returns the rendered grid, or an aligned width listing when
// nothing was rendered.
func (r Report) PlainText() string {
	if r.Text != "" {
		return r.Text
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	_, _ = tw.Write([]byte("COLUMN\tWIDTH\tSOURCE\n"))
	for _, c := range r.Widths {
		_, _ = tw.Write([]byte(strconv.Itoa(c.Column) + "\t" + strconv.Itoa(c.Width) + "\t" + c.Source + "\n"))
	}
	_ = tw.Flush()
	return b.String()
}

// Table lists the column widths.
func (r Report) Table() Table {
	t := Table{Headers: []string{"Column", "Width", "Source"}}
	for _, c := range r.Widths {
		t.Rows = append(t.Rows, []string{strconv.Itoa(c.Column), strconv.Itoa(c.Width), c.Source})
	}
	return t
}
