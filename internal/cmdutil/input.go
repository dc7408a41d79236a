package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
)

// ResolveDocumentInput resolves a table document from inline text, @file,
// "-" (stdin) or a file path argument. With neither given it falls back to
// stdin, unless stdin is an interactive terminal.
func ResolveDocumentInput(stdin io.Reader, raw string, path string) ([]byte, error) {
	if raw != "" && path != "" {
		return nil, clierrors.NewUserError(
			"use only one of --doc or a file argument",
			"Drop --doc to render the file, or drop the file argument",
		)
	}

	if path != "" {
		return ReadInputSource(stdin, path)
	}

	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		if IsTerminal(stdin) {
			return nil, clierrors.NewUserError(
				"no table document given",
				"Pass a file path, or pipe a YAML/JSON table document on stdin",
			)
		}
		return ReadInputSource(stdin, "-")
	case trimmed == "-":
		return ReadInputSource(stdin, "-")
	case strings.HasPrefix(trimmed, "@"):
		return ReadInputSource(stdin, trimmed[1:])
	}

	return []byte(NormalizeJSONInput(raw)), nil
}

// NormalizeJSONInput unwraps double-serialized JSON strings when possible.
// If the input is a JSON string containing JSON, it returns the inner JSON.
//
// This handles cases where a document has been inadvertently quoted, such as:
//   - Shell escaping issues: "{\"header\": [\"a\"]}" -> {"header": ["a"]}
//   - Copy-paste from string literals: "[[1, 2]]" -> [[1, 2]]
//
// The function only unwraps one level - triple-serialized JSON will
// only have one layer removed.
//
// If the input is not a double-serialized JSON string, it is returned unchanged.
func NormalizeJSONInput(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}

	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
		return raw
	}

	innerTrimmed := strings.TrimSpace(inner)
	if innerTrimmed == "" {
		return raw
	}
	if json.Valid([]byte(innerTrimmed)) {
		return innerTrimmed
	}

	return raw
}

// ReadInputSource reads input from a file path, or from stdin when path is "-".
// Read failures come back as *errors.InputError.
func ReadInputSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("input file path is required")
	}
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, &clierrors.InputError{Source: "stdin", Err: err}
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &clierrors.InputError{Source: path, Err: err}
	}
	return data, nil
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
