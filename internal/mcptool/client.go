package mcptool

import (
	"context"
	"fmt"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const clientName = "rstgrid-cli"

// ToolError is a tool call the server answered with an error result.
type ToolError struct {
	ToolName string
	Message  string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("MCP tool %q returned error: %s", e.ToolName, e.Message)
}

// Client wraps an mcp-go client connected to a server in the same process.
// The CLI uses it to list what `rstgrid mcp` advertises.
type Client struct {
	inner *mcpclient.Client
}

// NewInProcessClient starts and initializes a session against s.
// The caller must call Close when done.
func NewInProcessClient(ctx context.Context, s *server.MCPServer, version string) (*Client, error) {
	inner, err := mcpclient.NewInProcessClient(s)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	if err := inner.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err = inner.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    clientName,
				Version: version,
			},
		},
	})
	if err != nil {
		_ = inner.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	return &Client{inner: inner}, nil
}

// CallTool invokes a tool and returns the concatenated text content of the
// result. An error result comes back as *ToolError.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	result, err := c.inner.CallTool(ctx, mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return "", fmt.Errorf("MCP tool %q failed: %w", name, err)
	}
	if result == nil {
		return "", fmt.Errorf("MCP tool %q returned an empty response", name)
	}
	text := extractText(result)
	if result.IsError {
		return "", &ToolError{ToolName: name, Message: text}
	}
	return text, nil
}

// ListTools returns the tools the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	result, err := c.inner.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list MCP tools: %w", err)
	}
	return result.Tools, nil
}

// Close terminates the session.
func (c *Client) Close() error {
	if c.inner == nil {
		return nil
	}
	return c.inner.Close()
}

// extractText joins all text content of a CallToolResult with newlines.
func extractText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
