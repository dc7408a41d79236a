// Package mcptool exposes the grid table renderer as Model Context Protocol
// tools, so agents can render a YAML/JSON table document without shelling
// out to the CLI.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/salmonumbrella/rstgrid/internal/cmdutil"
	clierrors "github.com/salmonumbrella/rstgrid/internal/errors"
	"github.com/salmonumbrella/rstgrid/internal/gridtable"
	"github.com/salmonumbrella/rstgrid/internal/output"
	"github.com/salmonumbrella/rstgrid/internal/tabledoc"
)

const (
	serverName = "rstgrid"

	// ToolRender renders a table document and returns the grid text.
	ToolRender = "render_grid_table"
	// ToolWidths resolves column widths without rendering.
	ToolWidths = "grid_table_widths"
)

// NewServer builds an MCP server with the grid table tools registered.
// def supplies the line break mode and padding a document inherits.
func NewServer(version string, def tabledoc.Defaults) *server.MCPServer {
	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	h := &handlers{defaults: def}
	s.AddTool(documentTool(ToolRender,
		"Render a table document (YAML or JSON) as a reStructuredText grid table. "+
			"Cells are strings or {text, colspan, rowspan, padding, table} mappings."), h.render)
	s.AddTool(documentTool(ToolWidths,
		"Resolve the column widths of a table document without rendering it. "+
			"Returns JSON with one entry per column."), h.widths)

	return s
}

func documentTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("document",
			mcp.Required(),
			mcp.Description("Table document: {widths, padding, line_breaks, header, rows} or a list of rows whose first row is the header"),
		),
		mcp.WithString("query",
			mcp.Description("Optional jq expression selecting the table inside a larger document"),
		),
		mcp.WithString("jsonpath",
			mcp.Description("Optional JSONPath expression selecting the table inside a larger document"),
		),
		mcp.WithString("line_breaks",
			mcp.Description("Default line break mode when the document does not set one"),
			mcp.Enum("flatten", "preserve"),
		),
	)
}

// Serve runs the server over a stdio-style transport until ctx is done or in
// is closed.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	slog.Debug("serving MCP tools", "tools", []string{ToolRender, ToolWidths})
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

type handlers struct {
	defaults tabledoc.Defaults
}

func (h *handlers) render(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, def, errResult := h.load(req)
	if errResult != nil {
		return errResult, nil
	}
	res, err := tabledoc.Render(doc, def)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (h *handlers) widths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, def, errResult := h.load(req)
	if errResult != nil {
		return errResult, nil
	}
	table, widths, err := tabledoc.Check(doc, def)
	if err != nil {
		return toolError(err), nil
	}
	data, err := json.Marshal(output.NewReport(table, widths, ""))
	if err != nil {
		return nil, fmt.Errorf("encode width report: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// load decodes the request's document. A failure comes back as a tool error
// result so the calling agent can read it and retry.
func (h *handlers) load(req mcp.CallToolRequest) (*tabledoc.Document, tabledoc.Defaults, *mcp.CallToolResult) {
	def := h.defaults

	raw, err := req.RequireString("document")
	if err != nil {
		return nil, def, mcp.NewToolResultError(err.Error())
	}
	if mode := req.GetString("line_breaks", ""); mode != "" {
		m, err := gridtable.ParseLineBreakMode(mode)
		if err != nil {
			return nil, def, mcp.NewToolResultError(err.Error())
		}
		def.LineBreaks = m
	}

	sel := tabledoc.Selector{
		Query:    req.GetString("query", ""),
		JSONPath: req.GetString("jsonpath", ""),
	}
	doc, err := tabledoc.Load([]byte(cmdutil.NormalizeJSONInput(raw)), sel)
	if err != nil {
		return nil, def, toolError(err)
	}
	return doc, def, nil
}

func toolError(err error) *mcp.CallToolResult {
	msg := err.Error()
	if hint := clierrors.UserSuggestion(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return mcp.NewToolResultError(msg)
}
