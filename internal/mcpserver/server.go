// Package mcpserver exposes the relay tools over the Model Context Protocol
// so external agents can call them directly, without the chat loop.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Yogeshknaik/MCP-server/internal/tool"
)

// Serve runs an MCP stdio server exposing every tool registered in the
// registry. Each tool declares its named, typed parameters and returns its
// result as a single text content block. Blocks until stdin closes.
func Serve(registry *tool.Registry) error {
	s := server.NewMCPServer("mcp-relay", "1.0.0")

	for _, desc := range registry.Descriptors() {
		opts := []mcp.ToolOption{mcp.WithDescription(desc.Description)}
		for _, p := range desc.Params {
			propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
			if p.Required {
				propOpts = append(propOpts, mcp.Required())
			}
			switch p.Type {
			case "number", "integer":
				opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
			case "boolean":
				opts = append(opts, mcp.WithBoolean(p.Name, propOpts...))
			default:
				opts = append(opts, mcp.WithString(p.Name, propOpts...))
			}
		}

		name := desc.Name
		s.AddTool(mcp.NewTool(name, opts...), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result, err := registry.Execute(ctx, name, req.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("encode tool result: %w", err)
			}
			return mcp.NewToolResultText(string(payload)), nil
		})
	}

	return server.ServeStdio(s)
}
