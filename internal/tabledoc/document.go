// Package tabledoc reads declarative table documents in YAML or JSON and
// turns them into grid tables.
//
// A document lists the header and the rows a reader sees. Cells are plain
// strings or mappings with text, colspan, rowspan, padding and table keys;
// Build inserts the span placeholders the renderer expects.
package tabledoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
)

// Document is a table description.
type Document struct {
	Widths     ColumnWidths `yaml:"widths,omitempty" json:"widths,omitempty"`
	Padding    *Padding     `yaml:"padding,omitempty" json:"padding,omitempty"`
	LineBreaks string       `yaml:"line_breaks,omitempty" json:"line_breaks,omitempty"`
	Header     []CellSpec   `yaml:"header" json:"header"`
	Rows       [][]CellSpec `yaml:"rows,omitempty" json:"rows,omitempty"`

	line int
}

// Padding is the number of spaces on each side of a cell's text.
// A side left out keeps the inherited value.
type Padding struct {
	Left  *int `yaml:"left,omitempty" json:"left,omitempty"`
	Right *int `yaml:"right,omitempty" json:"right,omitempty"`
}

func (p *Padding) resolve(left, right int) (int, int) {
	if p == nil {
		return left, right
	}
	if p.Left != nil {
		left = *p.Left
	}
	if p.Right != nil {
		right = *p.Right
	}
	return left, right
}

// CellSpec is one visible cell. In YAML it is either a scalar, taken as the
// cell text, or a mapping.
type CellSpec struct {
	Text    string    `yaml:"text,omitempty" json:"text,omitempty"`
	ColSpan int       `yaml:"colspan,omitempty" json:"colspan,omitempty"`
	RowSpan int       `yaml:"rowspan,omitempty" json:"rowspan,omitempty"`
	Padding *Padding  `yaml:"padding,omitempty" json:"padding,omitempty"`
	Table   *Document `yaml:"table,omitempty" json:"table,omitempty"`

	line int
}

// ColumnWidths maps a column index to its explicit width. In YAML it is a
// mapping keyed by index or a sequence where null leaves a column automatic.
type ColumnWidths map[int]int

var (
	documentKeys = []string{"widths", "padding", "line_breaks", "header", "rows"}
	cellKeys     = []string{"text", "colspan", "rowspan", "padding", "table"}
	paddingKeys  = []string{"left", "right"}
)

// Parse decodes a YAML or JSON table document.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &clierrors.ValidationError{Field: "document", Message: "document is empty"}
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var ve *clierrors.ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}
		return nil, &clierrors.ValidationError{Field: "document", Message: err.Error(), Err: err}
	}
	return &doc, nil
}

// Decode reads a whole document from r.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// UnmarshalYAML accepts the mapping form and, as a shorthand, a bare
// sequence of rows whose first row is the header.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var rows [][]CellSpec
		if err := node.Decode(&rows); err != nil {
			return err
		}
		*d = Document{line: node.Line}
		if len(rows) > 0 {
			d.Header = rows[0]
			d.Rows = rows[1:]
		}
		return nil
	case yaml.MappingNode:
		if err := checkKeys(node, "document", documentKeys); err != nil {
			return err
		}
		type plain Document
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*d = Document(p)
		d.line = node.Line
		return nil
	default:
		return positioned(node, "document", "expected a mapping with header and rows, or a list of rows")
	}
}

// UnmarshalYAML accepts a scalar cell or a cell mapping.
func (c *CellSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = CellSpec{line: node.Line}
		if node.Tag != "!!null" {
			c.Text = node.Value
		}
		return nil
	case yaml.MappingNode:
		if err := checkKeys(node, "cell", cellKeys); err != nil {
			return err
		}
		type plain CellSpec
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*c = CellSpec(p)
		c.line = node.Line
		return nil
	default:
		return positioned(node, "cell", "expected a string or a mapping")
	}
}

// UnmarshalYAML rejects unknown padding keys.
func (p *Padding) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var n int
		if err := node.Decode(&n); err != nil {
			return positioned(node, "padding", "expected a number or a mapping with left and right")
		}
		*p = Padding{Left: &n, Right: &n}
		return nil
	}
	if err := checkKeys(node, "padding", paddingKeys); err != nil {
		return err
	}
	type plain Padding
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = Padding(v)
	return nil
}

// UnmarshalYAML reads widths keyed by column index. JSON documents can only
// use string keys, so keys are parsed rather than decoded.
func (w *ColumnWidths) UnmarshalYAML(node *yaml.Node) error {
	out := make(ColumnWidths)
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			col, err := strconv.Atoi(key.Value)
			if err != nil {
				return positioned(key, "widths", fmt.Sprintf("column key %q is not an index", key.Value))
			}
			var width int
			if err := value.Decode(&width); err != nil {
				return positioned(value, "widths", fmt.Sprintf("width for column %d is not a number", col))
			}
			out[col] = width
		}
	case yaml.SequenceNode:
		for col, value := range node.Content {
			if value.Tag == "!!null" {
				continue
			}
			var width int
			if err := value.Decode(&width); err != nil {
				return positioned(value, "widths", fmt.Sprintf("width for column %d is not a number", col))
			}
			out[col] = width
		}
	default:
		return positioned(node, "widths", "expected a mapping or a list")
	}
	*w = out
	return nil
}

func checkKeys(node *yaml.Node, field string, allowed []string) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !contains(allowed, key.Value) {
			return positioned(key, field, fmt.Sprintf("unknown key %q", key.Value))
		}
	}
	return nil
}

func positioned(node *yaml.Node, field, message string) error {
	return &clierrors.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("line %d column %d: %s", node.Line, node.Column, message),
	}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
