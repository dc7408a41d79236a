package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/rstgrid/internal/mcptool"
	"github.com/salmonumbrella/rstgrid/internal/output"
	"github.com/salmonumbrella/rstgrid/internal/ui"
)

func newMCPCmd(app *App) *cobra.Command {
	var lineBreaks string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the renderer as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing two tools:

  render_grid_table   render a YAML/JSON table document as a grid table
  grid_table_widths   resolve the column widths of a table document

Documents inherit line_breaks and padding from the config file, as with
'rstgrid render'. Register it with an MCP client as: rstgrid mcp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, err := documentDefaults(ConfigFromContext(ctx), lineBreaks)
			if err != nil {
				return err
			}

			s := mcptool.NewServer(app.Version, def)
			slog.Debug("starting MCP server", "version", app.Version, "line_breaks", def.LineBreaks.String())
			return mcptool.Serve(ctx, s, stdinFromContext(ctx), stdoutFromContext(ctx))
		},
	}
	cmd.Flags().StringVar(&lineBreaks, "line-breaks", "", "Line break mode for documents that do not set one: flatten|preserve")

	cmd.AddCommand(newMCPToolsCmd(app))
	return cmd
}

// toolInfo is one advertised MCP tool.
type toolInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type toolList []toolInfo

func (l toolList) Table() output.Table {
	t := output.Table{Headers: []string{"NAME", "DESCRIPTION"}}
	for _, tool := range l {
		t.Rows = append(t.Rows, []string{tool.Name, tool.Description})
	}
	return t
}

func newMCPToolsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools 'rstgrid mcp' advertises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, err := documentDefaults(ConfigFromContext(ctx), "")
			if err != nil {
				return err
			}

			client, err := mcptool.NewInProcessClient(ctx, mcptool.NewServer(app.Version, def), app.Version)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			tools, err := client.ListTools(ctx)
			if err != nil {
				return err
			}

			list := make(toolList, 0, len(tools))
			for _, t := range tools {
				list = append(list, toolInfo{Name: t.Name, Description: t.Description})
			}

			if output.FormatFromContext(ctx) == output.FormatText {
				out := stdoutFromContext(ctx)
				for _, t := range list {
					if _, err := fmt.Fprintf(out, "%s\t%s\n", t.Name, t.Description); err != nil {
						return err
					}
				}
				ui.FromContext(ctx).Info("%d tools", len(list))
				return nil
			}
			return printerForContext(ctx).Print(ctx, list)
		},
	}
}
