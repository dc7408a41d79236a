package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/rstgrid/internal/gridtable"
)

func sampleReport(t *testing.T, render bool) Report {
	t.Helper()
	table := gridtable.NewTable([]gridtable.Row{
		gridtable.Cells("Module", "Status"),
		gridtable.Cells("gridtable", "ok"),
	}, gridtable.ColumnWidth(1, 10))
	widths, err := table.Widths()
	if err != nil {
		t.Fatalf("Widths() error = %v", err)
	}
	var text string
	if render {
		if text, err = gridtable.Print(table); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
	}
	return NewReport(table, widths, text)
}

func TestNewReport(t *testing.T) {
	r := sampleReport(t, true)

	want := []ColumnWidth{
		{Column: 0, Width: 11, Source: SourceAuto},
		{Column: 1, Width: 10, Source: SourceExplicit},
	}
	if diff := cmp.Diff(want, r.Widths); diff != "" {
		t.Errorf("Widths mismatch (-want +got):\n%s", diff)
	}
	if r.Columns != 2 || r.Rows != 2 || r.LineWidth != 24 || r.LineBreaks != "flatten" {
		t.Errorf("unexpected report header: %+v", r)
	}
	if len(r.Lines) != 5 {
		t.Fatalf("len(Lines) = %d, want 5", len(r.Lines))
	}
	if r.Lines[1] != "| Module    | Status   |" {
		t.Errorf("Lines[1] = %q", r.Lines[1])
	}
}

func TestReport_PrintFormats(t *testing.T) {
	ctx := context.Background()
	r := sampleReport(t, true)

	t.Run("text writes the grid verbatim", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatText).Print(ctx, r); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		if buf.String() != r.Text {
			t.Errorf("Print() = %q, want %q", buf.String(), r.Text)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatJSON).Print(ctx, r); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		var got Report
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if diff := cmp.Diff(r, got); diff != "" {
			t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("yaml keeps the grid text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatYAML).Print(ctx, r); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		var got Report
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid YAML: %v", err)
		}
		if got.Text != r.Text {
			t.Errorf("Text = %q, want %q", got.Text, r.Text)
		}
	})

	t.Run("ndjson is one line", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatNDJSON).Print(ctx, r); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		if n := strings.Count(buf.String(), "\n"); n != 1 {
			t.Errorf("got %d lines, want 1", n)
		}
	})

	t.Run("table lists widths", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinter(&buf, FormatTable).Print(ctx, r); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		for _, want := range []string{"SOURCE", "explicit", "auto", "11"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("output missing %q:\n%s", want, buf.String())
			}
		}
	})
}

func TestReport_PlainTextWithoutGrid(t *testing.T) {
	r := sampleReport(t, false)
	want := "COLUMN  WIDTH  SOURCE\n" +
		"0       11     auto\n" +
		"1       10     explicit\n"
	if got := r.PlainText(); got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
	if r.Lines != nil {
		t.Errorf("Lines = %v, want nil", r.Lines)
	}
}
