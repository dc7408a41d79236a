package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/rstgrid/internal/batch"
	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/output"
	"github.com/salmonumbrella/rstgrid/internal/tabledoc"
	"github.com/salmonumbrella/rstgrid/internal/ui"
)

func newBatchCmd() *cobra.Command {
	var (
		lineBreaks  string
		resultsPath string
		jobs        int
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Render every table document in a file",
		Long: `Render many table documents from one file. The file holds a JSON array of
documents, NDJSON with one document per line, or a YAML stream of documents
separated by "---".

A document that fails is reported and the rest still render. --query and
--jsonpath apply to each document.`,
		Example: `  rstgrid batch tables.yaml
  rstgrid batch tables.ndjson -o ndjson
  rstgrid batch tables.json --results results.json --jobs 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, err := documentDefaults(ConfigFromContext(ctx), lineBreaks)
			if err != nil {
				return err
			}
			if jobs < 0 {
				return clierrors.NewUserError("--jobs must not be negative", "Use --jobs 0 to match the number of CPUs")
			}

			docs, err := batch.ReadDocuments(args[0])
			if err != nil {
				return err
			}

			results, err := batch.Render(ctx, docs, batch.Options{
				Defaults: def,
				Selector: tabledoc.Selector{
					Query:    output.QueryFromContext(ctx),
					JSONPath: output.JSONPathFromContext(ctx),
				},
				Jobs: jobs,
			})
			if err != nil {
				return err
			}

			if resultsPath != "" {
				if err := batch.WriteResults(resultsPath, results); err != nil {
					return err
				}
			}

			if err := printBatch(cmd, results); err != nil {
				return err
			}
			return batchError(results)
		},
	}
	cmd.Flags().StringVar(&lineBreaks, "line-breaks", "", "Line break mode for documents that do not set one: flatten|preserve")
	cmd.Flags().StringVar(&resultsPath, "results", "", "Also write per-document results as JSON to this file")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "Documents rendered at once (0 = number of CPUs)")
	flagAlias(cmd.Flags(), "line-breaks", "lb")
	return cmd
}

// printBatch writes the rendered grids separated by blank lines in text
// format, or the results list otherwise.
func printBatch(cmd *cobra.Command, results []batch.Result) error {
	ctx := cmd.Context()
	if output.FormatFromContext(ctx) != output.FormatText {
		return printerForContext(ctx).Print(ctx, results)
	}

	out := stdoutFromContext(ctx)
	u := ui.FromContext(ctx)
	first := true
	for _, r := range results {
		if !r.Success {
			u.Error("document %d: %s", r.Index, r.Error)
			continue
		}
		if !first {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		first = false
		if _, err := fmt.Fprint(out, r.Text); err != nil {
			return err
		}
	}
	u.Info("%d of %d documents rendered", len(results)-batch.Failed(results), len(results))
	return nil
}

// batchError reports failed documents. It wraps the first failure so the
// exit code follows that document's error.
func batchError(results []batch.Result) error {
	failed := batch.Failed(results)
	if failed == 0 {
		return nil
	}
	for _, r := range results {
		if !r.Success {
			return clierrors.WrapUserError(
				fmt.Errorf("document %d: %w", r.Index, r.Err),
				fmt.Sprintf("%d of %d documents failed", failed, len(results)),
				"Run with -o json or --results to see every error",
			)
		}
	}
	return nil
}
