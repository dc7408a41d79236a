// Package batch renders many table documents from one file: a JSON array of
// documents, NDJSON with one document per line, or a YAML stream of
// documents separated by "---".
package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/tabledoc"
)

const (
	// MaxInputSize is the maximum file size for batch input (10MB).
	MaxInputSize = 10 * 1024 * 1024
	// MaxItemCount is the maximum number of documents in a batch.
	MaxItemCount = 10000
)

// Result represents the outcome of rendering a single document.
type Result struct {
	Index   int    `json:"index" yaml:"index"`
	Success bool   `json:"success" yaml:"success"`
	Text    string `json:"text,omitempty" yaml:"text,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// Options control how a batch is rendered.
type Options struct {
	Defaults tabledoc.Defaults
	Selector tabledoc.Selector
	// Jobs bounds how many documents render at once. Zero uses GOMAXPROCS.
	Jobs int
}

// ReadDocuments reads the documents of a batch file.
func ReadDocuments(path string) ([][]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &clierrors.InputError{Source: path, Err: err}
	}
	if info.Size() > MaxInputSize {
		return nil, clierrors.NewUserError(
			fmt.Sprintf("%s exceeds maximum size of %d bytes", path, MaxInputSize),
			"Split the batch into smaller files",
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &clierrors.InputError{Source: path, Err: err}
	}
	return ParseDocuments(data)
}

// ParseDocuments splits batch input into one raw document per entry.
func ParseDocuments(data []byte) ([][]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &clierrors.ValidationError{Field: "batch", Message: "batch input is empty"}
	}

	var docs [][]byte
	var err error
	switch {
	case trimmed[0] == '[' && isObjectArray(trimmed):
		docs, err = splitJSONArray(trimmed)
	case trimmed[0] == '{' && firstLineIsJSON(trimmed):
		docs, err = splitNDJSON(trimmed)
	default:
		docs, err = splitYAMLStream(data)
	}
	if err != nil {
		return nil, err
	}
	if len(docs) > MaxItemCount {
		return nil, clierrors.NewUserError(
			fmt.Sprintf("batch exceeds maximum item count of %d", MaxItemCount),
			"Split the batch into smaller files",
		)
	}
	return docs, nil
}

// isObjectArray reports whether data is a JSON array of objects. A JSON
// array of rows is a single table document, not a batch.
func isObjectArray(data []byte) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return false
	}
	for _, item := range items {
		if item = bytes.TrimSpace(item); len(item) == 0 || item[0] != '{' {
			return false
		}
	}
	return true
}

// firstLineIsJSON tells NDJSON apart from one pretty-printed JSON object.
func firstLineIsJSON(data []byte) bool {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	return json.Valid(bytes.TrimSpace(first))
}

func splitJSONArray(data []byte) ([][]byte, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &clierrors.ValidationError{Field: "batch", Message: err.Error(), Err: err}
	}
	docs := make([][]byte, len(items))
	for i, item := range items {
		docs[i] = item
	}
	return docs, nil
}

func splitNDJSON(data []byte) ([][]byte, error) {
	var docs [][]byte
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB line buffer

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		if !json.Valid(text) {
			return nil, &clierrors.ValidationError{
				Field:   fmt.Sprintf("line %d", line),
				Message: "invalid JSON document",
			}
		}
		docs = append(docs, append([]byte(nil), text...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading batch: %w", err)
	}
	return docs, nil
}

func splitYAMLStream(data []byte) ([][]byte, error) {
	var docs [][]byte
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &clierrors.ValidationError{
				Field:   fmt.Sprintf("document %d", len(docs)),
				Message: err.Error(),
				Err:     err,
			}
		}
		if len(node.Content) == 0 {
			continue
		}
		out, err := yaml.Marshal(&node)
		if err != nil {
			return nil, err
		}
		docs = append(docs, out)
	}
	return docs, nil
}

// Render renders every document with at most opts.Jobs in flight. Results
// keep input order and a failing document does not stop the others; the
// returned error is only set when ctx is canceled.
func Render(ctx context.Context, docs [][]byte, opts Options) ([]Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, data := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = renderOne(i, data, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	slog.Debug("batch rendered", "documents", len(docs), "failed", Failed(results), "jobs", jobs)
	return results, nil
}

func renderOne(index int, data []byte, opts Options) Result {
	res := Result{Index: index}
	doc, err := tabledoc.Load(data, opts.Selector)
	if err == nil {
		var out *tabledoc.Result
		if out, err = tabledoc.Render(doc, opts.Defaults); err == nil {
			res.Success = true
			res.Text = out.Text
			return res
		}
	}
	res.Err = err
	res.Error = err.Error()
	return res
}

// Failed counts the documents that did not render.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}

// WriteResults writes batch results as JSON.
func WriteResults(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
