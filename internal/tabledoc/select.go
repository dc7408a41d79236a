package tabledoc

import (
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
)

// Selector narrows a larger YAML or JSON file down to the table document
// inside it. At most one of Query (a jq expression) and JSONPath is set.
type Selector struct {
	Query    string
	JSONPath string
}

// Empty reports whether the selector keeps the whole input.
func (s Selector) Empty() bool {
	return strings.TrimSpace(s.Query) == "" && strings.TrimSpace(s.JSONPath) == ""
}

// Load applies the selector to data and parses the result.
func Load(data []byte, sel Selector) (*Document, error) {
	selected, err := sel.Apply(data)
	if err != nil {
		return nil, err
	}
	return Parse(selected)
}

// Apply returns the selected node re-encoded as YAML. An empty selector
// returns data unchanged.
func (s Selector) Apply(data []byte) ([]byte, error) {
	if s.Empty() {
		return data, nil
	}
	if strings.TrimSpace(s.Query) != "" && strings.TrimSpace(s.JSONPath) != "" {
		return nil, clierrors.NewUserError("--query and --jsonpath cannot be combined", "Use one of them to select the table")
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &clierrors.ValidationError{Field: "document", Message: err.Error(), Err: err}
	}
	normalized := normalizeToInterface(raw)

	var (
		selected interface{}
		err      error
	)
	if strings.TrimSpace(s.Query) != "" {
		selected, err = runQuery(strings.TrimSpace(s.Query), normalized)
	} else {
		selected, err = applyJSONPath(strings.TrimSpace(s.JSONPath), normalized)
	}
	if err != nil {
		return nil, err
	}
	if selected == nil {
		return nil, clierrors.NewUserError("selection matched nothing", "Check the expression against the input document")
	}
	return yaml.Marshal(selected)
}

// runQuery evaluates a jq expression. The expression must produce exactly
// one value.
func runQuery(query string, data interface{}) (interface{}, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, formatInvalidQueryErr(err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, formatInvalidQueryErr(err)
	}

	var results []interface{}
	iter := code.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if queryErr, isErr := v.(error); isErr {
			return nil, clierrors.NewUserError(fmt.Sprintf("query error: %s", safeErrorMessage(queryErr)), "")
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return nil, clierrors.NewUserError(
			fmt.Sprintf("query produced %d values, expected one table", len(results)),
			"Select a single table, for example --query '.tables[0]'",
		)
	}
}

func applyJSONPath(path string, data interface{}) (interface{}, error) {
	if !strings.HasPrefix(path, "$") {
		path = "$." + strings.TrimPrefix(path, ".")
	}
	value, err := jsonpath.Get(path, data)
	if err != nil {
		return nil, clierrors.WrapUserError(err, "invalid --jsonpath value", "Example: --jsonpath '$.tables[0]'")
	}
	return value, nil
}

// normalizeToInterface converts decoded YAML into the map and slice forms
// jq and JSONPath understand. Mappings with non-string keys, such as widths
// keyed by column index, get string keys.
func normalizeToInterface(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeToInterface(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeToInterface(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeToInterface(item)
		}
		return out
	case uint64:
		return float64(val)
	default:
		return val
	}
}

func formatInvalidQueryErr(err error) error {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "unexpected eof") {
		return clierrors.WrapUserError(err, "invalid --query", "Query looks incomplete; quote it fully")
	}
	return clierrors.WrapUserError(err, "invalid --query", "Example: --query '.tables[0]'")
}

// safeErrorMessage returns a best-effort string representation for errors whose
// Error method may panic (seen with some gojq runtime errors on typed values).
func safeErrorMessage(err error) (msg string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			msg = fmt.Sprintf("%T", err)
		}
	}()

	msg = strings.TrimSpace(err.Error())
	// gojq messages often append the full offending value in parentheses.
	if idx := strings.Index(msg, " ("); idx > 0 {
		msg = msg[:idx]
	}
	if msg == "" {
		return fmt.Sprintf("%T", err)
	}
	return msg
}
