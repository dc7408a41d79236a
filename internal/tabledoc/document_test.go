package tabledoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
)

func intPtr(n int) *int { return &n }

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Document
	}{
		{
			name: "yaml mapping",
			input: `
widths: {2: 30}
padding: {left: 2}
line_breaks: preserve
header: [Name, Kind, Notes]
rows:
  - [alpha, {text: "spans two", colspan: 2}]
  - [{text: tall, rowspan: 2, padding: {left: 0, right: 0}}, 42, ~]
`,
			want: &Document{
				Widths:     ColumnWidths{2: 30},
				Padding:    &Padding{Left: intPtr(2)},
				LineBreaks: "preserve",
				Header:     []CellSpec{{Text: "Name"}, {Text: "Kind"}, {Text: "Notes"}},
				Rows: [][]CellSpec{
					{{Text: "alpha"}, {Text: "spans two", ColSpan: 2}},
					{{Text: "tall", RowSpan: 2, Padding: &Padding{Left: intPtr(0), Right: intPtr(0)}}, {Text: "42"}, {}},
				},
			},
		},
		{
			name:  "json document",
			input: `{"widths": {"0": 12}, "header": ["a", "b"], "rows": [[{"text": "x", "colspan": 2}]]}`,
			want: &Document{
				Widths: ColumnWidths{0: 12},
				Header: []CellSpec{{Text: "a"}, {Text: "b"}},
				Rows:   [][]CellSpec{{{Text: "x", ColSpan: 2}}},
			},
		},
		{
			name:  "widths as a list",
			input: "widths: [~, 9]\nheader: [a, b]\n",
			want: &Document{
				Widths: ColumnWidths{1: 9},
				Header: []CellSpec{{Text: "a"}, {Text: "b"}},
			},
		},
		{
			name:  "bare list of rows",
			input: "- [h1, h2]\n- [a, b]\n",
			want: &Document{
				Header: []CellSpec{{Text: "h1"}, {Text: "h2"}},
				Rows:   [][]CellSpec{{{Text: "a"}, {Text: "b"}}},
			},
		},
		{
			name:  "scalar padding",
			input: "padding: 0\nheader: [a]\n",
			want: &Document{
				Padding: &Padding{Left: intPtr(0), Right: intPtr(0)},
				Header:  []CellSpec{{Text: "a"}},
			},
		},
		{
			name:  "multi-line text",
			input: "header:\n  - |\n    line one\n    line two\n",
			want: &Document{
				Header: []CellSpec{{Text: "line one\nline two\n"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			opts := cmp.Options{
				cmpopts.IgnoreUnexported(Document{}, CellSpec{}),
				cmpopts.EquateEmpty(),
			}
			if diff := cmp.Diff(tt.want, got, opts); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_NestedTable(t *testing.T) {
	doc, err := Parse([]byte(`
header: [Outer]
rows:
  - - table:
        header: [x, y]
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	nested := doc.Rows[0][0].Table
	if nested == nil {
		t.Fatal("expected a nested table")
	}
	if len(nested.Header) != 2 || nested.Header[1].Text != "y" {
		t.Errorf("nested header = %+v", nested.Header)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantMsg   string
	}{
		{"empty", "  \n", "document", "empty"},
		{"unknown top-level key", "header: [a]\ncolumns: 3\n", "document", `unknown key "columns"`},
		{"unknown cell key", "header: [{txt: a}]\n", "cell", "line 1"},
		{"cell is a list", "header: [[a]]\n", "cell", "string or a mapping"},
		{"bad width key", "widths: {first: 3}\nheader: [a]\n", "widths", `"first"`},
		{"bad width value", "widths: {0: wide}\nheader: [a]\n", "widths", "not a number"},
		{"unknown padding key", "padding: {top: 1}\nheader: [a]\n", "padding", `"top"`},
		{"scalar document", "just text", "document", "expected a mapping"},
		{"invalid yaml", "header: [a\n", "document", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			var ve *clierrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Parse() error = %T %v, want ValidationError", err, err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
			if !strings.Contains(ve.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", ve.Message, tt.wantMsg)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader("header: [a, b]\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(doc.Header) != 2 {
		t.Errorf("len(Header) = %d, want 2", len(doc.Header))
	}
}
