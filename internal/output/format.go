package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable output (default). A rendered grid is
	// written verbatim.
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is a boxed summary table.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
// Returns error if the format is invalid.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON, "jsonl":
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|jsonl|table|yaml)")
	}
}

// PlainTexter is implemented by results with their own text rendering.
type PlainTexter interface {
	PlainText() string
}

// Tabular is implemented by results that can be shown as a Table.
type Tabular interface {
	Table() Table
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Print outputs data in the configured format.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}

	switch p.format {
	case FormatJSON:
		return p.printJSON(data)
	case FormatNDJSON:
		return p.printNDJSON(data)
	case FormatYAML:
		return p.printYAML(data)
	case FormatTable:
		return p.printTable(data)
	case FormatText:
		return p.printText(data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// printJSON outputs data as pretty-printed JSON.
func (p *Printer) printJSON(data interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printNDJSON outputs data as newline-delimited JSON: one line per element
// for slices, one line otherwise.
func (p *Printer) printNDJSON(data interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			if err := enc.Encode(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return enc.Encode(data)
}

// printYAML outputs data as YAML.
func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// printTable outputs a Table, or anything Tabular, as a boxed table.
func (p *Printer) printTable(data interface{}) error {
	var t Table
	switch v := data.(type) {
	case Table:
		t = v
	case *Table:
		if v == nil {
			return nil
		}
		t = *v
	case Tabular:
		t = v.Table()
	default:
		return clierrors.NewUserError(
			fmt.Sprintf("table output is not available for %T", data),
			"Use --output text|json|yaml instead",
		)
	}
	if len(t.Headers) == 0 && len(t.Rows) == 0 {
		return nil
	}

	tw := tablewriter.NewWriter(p.w)
	tw.SetHeader(t.Headers)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.AppendBulk(t.Rows)
	tw.Render()
	return nil
}

// printText outputs data as human-readable text.
// PlainTexter results and strings are written as they are. Structs and maps
// become key-value lines, slices one item per line.
func (p *Printer) printText(data interface{}) error {
	switch v := data.(type) {
	case PlainTexter:
		return p.writeText(v.PlainText())
	case string:
		return p.writeText(v)
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		return p.printTextMap(v, "")
	case reflect.Struct:
		return p.printTextStruct(v, "")
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if _, err := fmt.Fprintf(p.w, "%s\n", formatValue(v.Index(i))); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(p.w, "%v\n", data)
		return err
	}
}

// writeText writes s and makes sure it ends with a newline.
func (p *Printer) writeText(s string) error {
	if s == "" {
		return nil
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(p.w, s)
	return err
}

// printTextMap outputs a map as key-value pairs sorted by key.
func (p *Printer) printTextMap(v reflect.Value, indent string) error {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
	})
	for _, key := range keys {
		if err := p.printTextField(fmt.Sprintf("%v", key), v.MapIndex(key), indent); err != nil {
			return err
		}
	}
	return nil
}

// printTextStruct outputs a struct as key-value pairs with indented nested values.
func (p *Printer) printTextStruct(v reflect.Value, indent string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldJSONName(field)
		if name == "-" {
			continue
		}
		if err := p.printTextField(name, v.Field(i), indent); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTextField(name string, value reflect.Value, indent string) error {
	value = derefValue(value)
	switch {
	case !value.IsValid():
		_, err := fmt.Fprintf(p.w, "%s%s: <nil>\n", indent, name)
		return err
	case value.Kind() == reflect.Struct:
		if _, err := fmt.Fprintf(p.w, "%s%s:\n", indent, name); err != nil {
			return err
		}
		return p.printTextStruct(value, indent+"  ")
	case value.Kind() == reflect.Map && value.Len() > 0:
		if _, err := fmt.Fprintf(p.w, "%s%s:\n", indent, name); err != nil {
			return err
		}
		return p.printTextMap(value, indent+"  ")
	default:
		_, err := fmt.Fprintf(p.w, "%s%s: %s\n", indent, name, formatValue(value))
		return err
	}
}

// derefValue follows pointers and interfaces. A nil pointer or interface
// yields the zero Value.
func derefValue(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// fieldJSONName returns the JSON tag name for a struct field, or the Go
// field name when there is no tag.
func fieldJSONName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return f.Name
}

// formatValue formats a value on a single line.
func formatValue(v reflect.Value) string {
	v = derefValue(v)
	if !v.IsValid() {
		return "<nil>"
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "[]"
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, ", ")
	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprintf("%v", keys[i]) < fmt.Sprintf("%v", keys[j])
		})
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%v=%s", k, formatValue(v.MapIndex(k)))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
