package output

import (
	"context"
	"testing"
)

func TestWithFormat(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{name: "text format", format: FormatText},
		{name: "json format", format: FormatJSON},
		{name: "table format", format: FormatTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctx = WithFormat(ctx, tt.format)

			got := FormatFromContext(ctx)
			if got != tt.format {
				t.Errorf("FormatFromContext() = %v, want %v", got, tt.format)
			}
		})
	}
}

func TestFormatFromContext_Default(t *testing.T) {
	// Empty context should return default format (FormatText)
	ctx := context.Background()
	got := FormatFromContext(ctx)
	want := FormatText

	if got != want {
		t.Errorf("FormatFromContext() with empty context = %v, want %v", got, want)
	}
}

func TestFormatFromContext_WrongType(t *testing.T) {
	// Context with wrong type should return default format
	ctx := context.WithValue(context.Background(), contextKey{}, "not-a-format")
	got := FormatFromContext(ctx)
	want := FormatText

	if got != want {
		t.Errorf("FormatFromContext() with wrong type = %v, want %v", got, want)
	}
}

func TestFormatFromContext_Nested(t *testing.T) {
	// Test that nested contexts preserve the format
	ctx := context.Background()
	ctx = WithFormat(ctx, FormatJSON)

	// Create a child context with a different value
	type otherKey struct{}
	ctx = context.WithValue(ctx, otherKey{}, "some-value")

	// Format should still be preserved
	got := FormatFromContext(ctx)
	want := FormatJSON

	if got != want {
		t.Errorf("FormatFromContext() in nested context = %v, want %v", got, want)
	}
}

func TestFormatFromContext_Override(t *testing.T) {
	// Test that format can be overridden in a child context
	ctx := context.Background()
	ctx = WithFormat(ctx, FormatText)

	// Override with a new format
	ctx = WithFormat(ctx, FormatJSON)

	got := FormatFromContext(ctx)
	want := FormatJSON

	if got != want {
		t.Errorf("FormatFromContext() after override = %v, want %v", got, want)
	}
}

func TestSelectionContext(t *testing.T) {
	ctx := context.Background()
	if QueryFromContext(ctx) != "" || JSONPathFromContext(ctx) != "" || QuietFromContext(ctx) {
		t.Fatal("empty context should carry no selection and not be quiet")
	}

	ctx = WithQuery(ctx, ".tables[0]")
	ctx = WithJSONPath(ctx, "$.tables[1]")
	ctx = WithQuiet(ctx, true)
	if got := QueryFromContext(ctx); got != ".tables[0]" {
		t.Errorf("QueryFromContext() = %q", got)
	}
	if got := JSONPathFromContext(ctx); got != "$.tables[1]" {
		t.Errorf("JSONPathFromContext() = %q", got)
	}
	if !QuietFromContext(ctx) {
		t.Error("QuietFromContext() = false after WithQuiet(true)")
	}
}
