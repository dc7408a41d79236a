package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/rstgrid/internal/cmdutil"
	"github.com/salmonumbrella/rstgrid/internal/config"
	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/gridtable"
	"github.com/salmonumbrella/rstgrid/internal/output"
	"github.com/salmonumbrella/rstgrid/internal/tabledoc"
	"github.com/salmonumbrella/rstgrid/internal/ui"
)

// documentFlags are the input flags shared by render, widths and validate.
type documentFlags struct {
	doc        string
	lineBreaks string
}

func (f *documentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.doc, "doc", "", "Inline table document (YAML or JSON), @file, or - for stdin")
	cmd.Flags().StringVar(&f.lineBreaks, "line-breaks", "", "Line break mode for documents that do not set one: flatten|preserve")
	flagAlias(cmd.Flags(), "line-breaks", "lb")
}

// loadedDocument is a decoded document with the defaults it renders with.
type loadedDocument struct {
	doc      *tabledoc.Document
	defaults tabledoc.Defaults
	source   string
}

func loadDocument(ctx context.Context, args []string, f documentFlags) (*loadedDocument, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	}

	def, err := documentDefaults(ConfigFromContext(ctx), f.lineBreaks)
	if err != nil {
		return nil, err
	}

	data, err := cmdutil.ResolveDocumentInput(stdinFromContext(ctx), f.doc, path)
	if err != nil {
		return nil, err
	}

	sel := tabledoc.Selector{
		Query:    output.QueryFromContext(ctx),
		JSONPath: output.JSONPathFromContext(ctx),
	}
	doc, err := tabledoc.Load(data, sel)
	if err != nil {
		return nil, err
	}

	source := sourceName(path, f.doc)
	slog.Debug("loaded table document",
		"source", source,
		"bytes", len(data),
		"header_cells", len(doc.Header),
		"rows", len(doc.Rows),
		"selected", !sel.Empty(),
	)
	return &loadedDocument{doc: doc, defaults: def, source: source}, nil
}

// documentDefaults merges the config file and the --line-breaks flag over
// the renderer's own defaults.
func documentDefaults(cfg *config.Config, lineBreaks string) (tabledoc.Defaults, error) {
	def := tabledoc.DefaultSettings()

	mode := cfg.GetLineBreaks()
	if strings.TrimSpace(lineBreaks) != "" {
		mode = lineBreaks
	}
	if mode != "" {
		m, err := gridtable.ParseLineBreakMode(mode)
		if err != nil {
			return def, clierrors.NewUserError(err.Error(),
				"Use --line-breaks flatten|preserve, or fix line_breaks in the config file or "+config.EnvLineBreaks)
		}
		def.LineBreaks = m
	}

	def.LeftPad, def.RightPad = cfg.GetPadding(gridtable.DefaultPad)
	if def.LeftPad < 0 || def.RightPad < 0 {
		return def, clierrors.NewUserError("configured padding must not be negative", "Run: rstgrid config set padding 1")
	}
	return def, nil
}

func sourceName(path, doc string) string {
	switch {
	case path != "" && path != "-":
		return path
	case strings.HasPrefix(strings.TrimSpace(doc), "@"):
		return strings.TrimPrefix(strings.TrimSpace(doc), "@")
	case doc != "" && strings.TrimSpace(doc) != "-":
		return "--doc"
	default:
		return "stdin"
	}
}

func newRenderCmd() *cobra.Command {
	var flags documentFlags

	cmd := &cobra.Command{
		Use:     "render [file|-]",
		Aliases: []string{"r", "print"},
		Short:   "Render a table document as a grid table",
		Long: `Render a YAML or JSON table document as a reStructuredText grid table.

The document is read from the file argument, from --doc, or from stdin when
the argument is - or missing and stdin is piped.`,
		Example: `  rstgrid render table.yaml
  cat table.json | rstgrid render
  rstgrid render notes.yaml -q '.tables[0]' --line-breaks preserve
  rstgrid render table.yaml -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loaded, err := loadDocument(ctx, args, flags)
			if err != nil {
				return err
			}

			res, err := tabledoc.Render(loaded.doc, loaded.defaults)
			if err != nil {
				return err
			}
			return printerForContext(ctx).Print(ctx, output.NewReport(res.Table, res.Widths, res.Text))
		},
	}
	flags.register(cmd)
	return cmd
}

func newWidthsCmd() *cobra.Command {
	var flags documentFlags

	cmd := &cobra.Command{
		Use:     "widths [file|-]",
		Aliases: []string{"w"},
		Short:   "Show the resolved width of every column",
		Long: `Resolve the column widths of a table document without rendering it.

A column's width is its explicit width from 'widths:' or, failing that, the
widest non-spanning cell in it plus that cell's padding.`,
		Example: `  rstgrid widths table.yaml
  rstgrid widths table.yaml -o table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loaded, err := loadDocument(ctx, args, flags)
			if err != nil {
				return err
			}

			table, widths, err := tabledoc.Check(loaded.doc, loaded.defaults)
			if err != nil {
				return err
			}
			return printerForContext(ctx).Print(ctx, output.NewReport(table, widths, ""))
		},
	}
	flags.register(cmd)
	return cmd
}

// validationResult is what validate prints for structured output formats.
type validationResult struct {
	Valid     bool   `json:"valid" yaml:"valid"`
	Source    string `json:"source" yaml:"source"`
	Columns   int    `json:"columns" yaml:"columns"`
	Rows      int    `json:"rows" yaml:"rows"`
	LineWidth int    `json:"line_width" yaml:"line_width"`
}

func newValidateCmd() *cobra.Command {
	var flags documentFlags

	cmd := &cobra.Command{
		Use:     "validate [file|-]",
		Aliases: []string{"v", "check"},
		Short:   "Check a table document without rendering it",
		Long: `Check that a table document decodes, that its rows line up with the
header, that spans do not overlap and that every column has a width.

Exits 0 when the table is valid, 2 when the document cannot be decoded and 3
when the table layout is invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loaded, err := loadDocument(ctx, args, flags)
			if err != nil {
				return err
			}

			table, widths, err := tabledoc.Check(loaded.doc, loaded.defaults)
			if err != nil {
				return err
			}

			result := validationResult{
				Valid:     true,
				Source:    loaded.source,
				Columns:   table.Columns(),
				Rows:      table.NumRows(),
				LineWidth: gridtable.LineWidth(widths),
			}
			if output.FormatFromContext(ctx) != output.FormatText {
				return printerForContext(ctx).Print(ctx, result)
			}
			ui.FromContext(ctx).Success("%s: valid grid table, %d columns, %d rows, %d characters wide",
				result.Source, result.Columns, result.Rows, result.LineWidth)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
