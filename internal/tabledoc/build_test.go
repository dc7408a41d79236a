package tabledoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/gridtable"
)

func mustParse(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestBuild_InsertsPlaceholders(t *testing.T) {
	doc := mustParse(t, `
header: [Name, Kind, Notes]
rows:
  - [alpha, {text: "spans two", colspan: 2}]
  - [{text: tall cell, rowspan: 2}, b, c]
  - [d, e]
`)
	table, err := doc.Build(DefaultSettings())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if table.NumRows() != 4 || table.Columns() != 3 {
		t.Fatalf("table is %dx%d, want 4x3", table.NumRows(), table.Columns())
	}

	shape := func(r int) string {
		var parts []string
		for _, e := range table.Row(r) {
			switch v := e.(type) {
			case *gridtable.Cell:
				parts = append(parts, v.String())
			case gridtable.SpanHold:
				parts = append(parts, v.String())
			}
		}
		return strings.Join(parts, " ")
	}
	want := []string{
		"[Name] [Kind] [Notes]",
		"[alpha] colspan=2[spans two] [hold]",
		"rowspan=2[tall cell] [b] [c]",
		"[hold] [d] [e]",
	}
	for r, w := range want {
		if got := shape(r); got != w {
			t.Errorf("row %d = %q, want %q", r, got, w)
		}
	}
	if err := table.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestRender(t *testing.T) {
	doc := mustParse(t, `
header: [Name, Kind, Notes]
rows:
  - [alpha, {text: "spans two", colspan: 2}]
  - [{text: tall cell, rowspan: 2}, b, c]
  - [d, e]
`)
	res, err := Render(doc, DefaultSettings())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := lines(
		"+-----------+------+-------+",
		"| Name      | Kind | Notes |",
		"+===========+======+=======+",
		"| alpha     | spans two    |",
		"+-----------+------+-------+",
		"| tall cell | b    | c     |",
		"|           +------+-------+",
		"|           | d    | e     |",
		"+-----------+------+-------+",
	)
	if diff := cmp.Diff(want, res.Text); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{11, 6, 7}, res.Widths); diff != "" {
		t.Errorf("Widths mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_NestedTable(t *testing.T) {
	doc := mustParse(t, `
header: [Outer]
rows:
  - - table:
        header: [x, y]
`)
	res, err := Render(doc, DefaultSettings())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := lines(
		"+-----------+",
		"| Outer     |",
		"+===========+",
		"| +---+---+ |",
		"| | x | y | |",
		"| +===+===+ |",
		"+-----------+",
	)
	if diff := cmp.Diff(want, res.Text); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
	if res.Table.LineBreakMode() != gridtable.BreaksPreserve {
		t.Errorf("LineBreakMode() = %v, want preserve", res.Table.LineBreakMode())
	}
}

func TestRender_ShortRowIsPadded(t *testing.T) {
	doc := mustParse(t, "widths: {1: 8}\nheader: [Key, Value]\nrows:\n  - [a]\n")
	res, err := Render(doc, DefaultSettings())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := lines(
		"+-----+--------+",
		"| Key | Value  |",
		"+=====+========+",
		"| a   |        |",
		"+-----+--------+",
	)
	if diff := cmp.Diff(want, res.Text); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Defaults(t *testing.T) {
	doc := mustParse(t, "header: [\"a\\nb\"]\n")

	flat, err := doc.Build(DefaultSettings())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if w, _ := flat.Width(0); w != 5 {
		t.Errorf("flatten Width(0) = %d, want 5", w)
	}

	kept, err := doc.Build(Defaults{LineBreaks: gridtable.BreaksPreserve, LeftPad: 2, RightPad: 0})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if w, _ := kept.Width(0); w != 3 {
		t.Errorf("preserve Width(0) = %d, want 3", w)
	}

	doc.LineBreaks = "flatten"
	if tbl, _ := doc.Build(Defaults{LineBreaks: gridtable.BreaksPreserve}); tbl.LineBreakMode() != gridtable.BreaksFlatten {
		t.Error("document line_breaks should win over the defaults")
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
		wantErr   error
	}{
		{
			name:      "too many cells",
			input:     "header: [a, b]\nrows:\n  - [x, y, z]\n",
			wantField: "rows[0][2]",
			wantErr:   gridtable.ErrShapeMismatch,
		},
		{
			name:      "cells beside a rowspan",
			input:     "header: [a, b]\nrows:\n  - [{text: x, rowspan: 2}, y]\n  - [p, q]\n",
			wantField: "rows[1][1]",
			wantErr:   gridtable.ErrShapeMismatch,
		},
		{
			name:      "colspan past the last column",
			input:     "header: [a, b]\nrows:\n  - [x, {text: y, colspan: 2}]\n",
			wantField: "rows[0][1]",
			wantErr:   gridtable.ErrShapeMismatch,
		},
		{
			name:      "colspan over a rowspan",
			input:     "header: [a, b, c]\nrows:\n  - [x, {text: tall, rowspan: 2}, z]\n  - [{text: wide, colspan: 2}]\n",
			wantField: "rows[1][0]",
			wantErr:   gridtable.ErrOverlappingSpan,
		},
		{
			name:      "negative span",
			input:     "header: [{text: a, colspan: -1}]\n",
			wantField: "header[0]",
			wantErr:   gridtable.ErrInvalidSpan,
		},
		{
			name:      "no header",
			input:     "rows:\n  - [a]\n",
			wantField: "header",
			wantErr:   gridtable.ErrShapeMismatch,
		},
		{
			name:      "bad line break mode",
			input:     "line_breaks: hard\nheader: [a]\n",
			wantField: "line_breaks",
		},
		{
			name:      "nested table with flatten",
			input:     "line_breaks: flatten\nheader: [{table: {header: [x]}}]\n",
			wantField: "line_breaks",
		},
		{
			name:      "text and table",
			input:     "header: [{text: a, table: {header: [x]}}]\n",
			wantField: "header[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.input)
			_, err := doc.Build(DefaultSettings())
			var ve *clierrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Build() error = %v, want ValidationError", err)
			}
			if !strings.HasPrefix(ve.Field, tt.wantField) {
				t.Errorf("Field = %q, want prefix %q", ve.Field, tt.wantField)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheck_LayoutErrors(t *testing.T) {
	doc := mustParse(t, "header: [{text: merged, colspan: 2}]\n")
	_, _, err := Check(doc, DefaultSettings())
	if !errors.Is(err, gridtable.ErrWidthRequired) {
		t.Fatalf("Check() error = %v, want ErrWidthRequired", err)
	}
	if !clierrors.IsValidationError(err) {
		t.Errorf("Check() error = %T, want ValidationError", err)
	}

	doc = mustParse(t, "widths: {0: 2}\nheader: [a]\n")
	if _, err := Render(doc, DefaultSettings()); !errors.Is(err, gridtable.ErrColumnTooNarrow) {
		t.Errorf("Render() error = %v, want ErrColumnTooNarrow", err)
	}

	doc = mustParse(t, "widths: {3: 10}\nheader: [a]\n")
	if _, _, err := Check(doc, DefaultSettings()); !errors.Is(err, gridtable.ErrColumnOutOfRange) {
		t.Errorf("Check() error = %v, want ErrColumnOutOfRange", err)
	}
}
