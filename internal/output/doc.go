// Package output provides output formatting functionality for the rstgrid CLI.
//
// It supports output formats:
//   - text: The rendered grid, verbatim (default)
//   - json: Pretty-printed JSON report
//   - ndjson: Newline-delimited JSON
//   - table: Column widths as a boxed table
//   - yaml: YAML report
//
// # Context-Based Dependency Injection
//
// The format is parsed once in the root command's PersistentPreRunE and
// carried in the context:
//
//	format, err := output.ParseFormat(formatFlag)
//	if err != nil {
//	    return err
//	}
//	ctx := output.WithFormat(cmd.Context(), format)
//	cmd.SetContext(ctx)
//
// In commands:
//
//	printer := output.NewPrinter(stdout, output.FormatFromContext(ctx))
//	return printer.Print(ctx, output.NewReport(table, widths, text))
//
// # Data Type Handling
//
// Values implementing PlainTexter are written as they are in text format, and
// values implementing Tabular supply the rows for table format. Other structs
// and maps print as key-value lines in text format.
package output
