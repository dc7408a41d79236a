package cmd

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/rstgrid/internal/config"
	"github.com/salmonumbrella/rstgrid/internal/logging"
)

//go:embed help.txt
var rootHelpText string

func newRootCmd(app *App) *cobra.Command {
	var flags globalFlagInput

	rootCmd := &cobra.Command{
		Use:   "rstgrid",
		Short: "Render reStructuredText grid tables",
		Long: `Render YAML or JSON table documents as fixed-width reStructuredText grid
tables, with column and row spans, per-cell padding and nested tables.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Ensure Cobra doesn't emit its own error/usage text; we handle error output centrally.
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			// Config commands read and write the file themselves.
			cfg := &config.Config{}
			if !isConfigCommand(cmd) {
				loaded, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = loaded
			}
			cfg.ApplyEnv(os.LookupEnv)

			opts, err := parseGlobalOptions(cmd, cfg, app.Stdout, flags)
			if err != nil {
				return err
			}
			if err := validateGlobalOptions(&opts); err != nil {
				return err
			}

			logging.Configure(opts.debug, opts.logFormat, app.Stderr)

			cmd.SetContext(buildRootContext(cmd.Context(), app, cfg, opts))
			return nil
		},
	}

	rootCmd.Version = app.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("rstgrid %s (commit: %s, built: %s)\n", app.Version, app.Commit, app.BuildTime))
	rootCmd.SetIn(app.Stdin)
	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.outputFlag, "output", "o", "text", "Output format: text|json|ndjson|jsonl|table|yaml")
	pf.StringVarP(&flags.queryFlag, "query", "q", "", "jq expression selecting the table inside the input document")
	// Alias --jq to --query for discoverability
	pf.StringVar(&flags.jqFlag, "jq", "", "Alias for --query")
	_ = pf.MarkHidden("jq")
	pf.StringVar(&flags.jsonPathFlag, "jsonpath", "", "JSONPath expression selecting the table inside the input document (e.g. $.tables[0])")
	pf.BoolVar(&flags.debugMode, "debug", false, "Enable debug logging (width resolution, span flushes)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Debug log format: text|json")
	pf.StringVar(&flags.colorFlag, "color", "auto", "Color mode for status messages: auto|always|never")
	pf.StringVar(&flags.errorFormat, "error-format", "auto", "Error output format: auto|text|json|yaml")
	pf.BoolVar(&flags.quietFlag, "quiet", false, "Suppress non-essential output")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "query", "qr")

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newWidthsCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newMCPCmd(app))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	installRootHelp(rootCmd)

	return rootCmd
}

func installRootHelp(root *cobra.Command) {
	defaultHelp := root.HelpFunc()

	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}

		_, _ = fmt.Fprint(cmd.OutOrStdout(), rootHelpText)
	})
}
