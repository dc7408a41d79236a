package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/rstgrid/internal/config"
	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/iocontext"
	"github.com/salmonumbrella/rstgrid/internal/logging"
	"github.com/salmonumbrella/rstgrid/internal/output"
	"github.com/salmonumbrella/rstgrid/internal/ui"
)

type globalFlagInput struct {
	outputFlag   string
	queryFlag    string
	jqFlag       string
	jsonPathFlag string
	debugMode    bool
	logFormat    string
	colorFlag    string
	errorFormat  string
	quietFlag    bool
}

type globalOptions struct {
	format      output.Format
	query       string
	jsonPath    string
	debug       bool
	logFormat   logging.Format
	color       ui.ColorMode
	errorFormat string
	quiet       bool
}

func parseGlobalOptions(cmd *cobra.Command, cfg *config.Config, stdout io.Writer, flags globalFlagInput) (globalOptions, error) {
	opts := globalOptions{
		debug:    flags.debugMode,
		quiet:    flags.quietFlag,
		jsonPath: strings.TrimSpace(flags.jsonPathFlag),
	}
	fs := cmd.Flags()

	formatStr := flags.outputFlag
	if !flagChanged(fs, "output", "out") && cfg.GetOutput() != "" {
		formatStr = cfg.GetOutput()
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return globalOptions{}, clierrors.NewUserError(err.Error(), "Use one of: text, json, ndjson, table, yaml")
	}
	opts.format = format

	logFormat, err := logging.ParseFormat(flags.logFormat)
	if err != nil {
		return globalOptions{}, clierrors.NewUserError(err.Error(), "Use one of: text, json")
	}
	opts.logFormat = logFormat

	colorStr := flags.colorFlag
	if !flagChanged(fs, "color") && cfg.GetColor() != "" {
		colorStr = cfg.GetColor()
	}
	opts.color = ui.ParseColorMode(colorStr)

	opts.errorFormat = flags.errorFormat
	if !flagChanged(fs, "error-format") && cfg.ErrorFormat != "" {
		opts.errorFormat = cfg.ErrorFormat
	}

	// Structured output piped elsewhere should not be mixed with status lines.
	if !flagChanged(fs, "quiet") && !isTerminal(stdout) {
		switch opts.format {
		case output.FormatJSON, output.FormatNDJSON, output.FormatYAML:
			opts.quiet = true
		}
	}

	if flagChanged(fs, "query", "qr") && flagChanged(fs, "jq") {
		return globalOptions{}, errOnlyOne("--query", "--jq")
	}
	opts.query = strings.TrimSpace(flags.queryFlag)
	if opts.query == "" {
		opts.query = strings.TrimSpace(flags.jqFlag)
	}

	return opts, nil
}

func validateGlobalOptions(opts *globalOptions) error {
	if opts.query != "" && opts.jsonPath != "" {
		return errOnlyOne("--query", "--jsonpath")
	}
	return validateErrorFormat(opts.errorFormat)
}

func buildRootContext(ctx context.Context, app *App, cfg *config.Config, opts globalOptions) context.Context {
	ctx = iocontext.WithIO(ctx, app.Stdout, app.Stderr)
	ctx = iocontext.WithStdin(ctx, app.Stdin)
	ctx = output.WithFormat(ctx, opts.format)
	ctx = output.WithQuery(ctx, opts.query)
	ctx = output.WithJSONPath(ctx, opts.jsonPath)
	ctx = output.WithQuiet(ctx, opts.quiet)
	ctx = WithConfig(ctx, cfg)
	ctx = WithErrorFormat(ctx, opts.errorFormat)

	u := ui.NewWithWriter(app.Stderr, opts.color)
	u.SetQuiet(opts.quiet)
	ctx = ui.WithUI(ctx, u)
	return ctx
}

// isConfigCommand reports whether cmd is `config` or one of its
// subcommands. Those manage the file themselves, so a broken file must not
// stop them.
func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" && c.HasParent() && !c.Parent().HasParent() {
			return true
		}
	}
	return false
}

func errOnlyOne(left, right string) error {
	return clierrors.NewUserError(
		fmt.Sprintf("use only one of %s or %s", left, right),
		"Pass only one of them",
	)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
