// Package mcp serves the memory bank over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memorybank/internal/adapters/cache"
	"memorybank/internal/adapters/reader"
	"memorybank/internal/application/commands"
)

// Stats holds the optional telemetry sources behind the cache_stats tool
type Stats struct {
	Cache  interface{ Stats() cache.Stats }
	Reader interface{ Stats() reader.Stats }
}

// NewServer builds an MCP server with every memory bank tool and resource.
func NewServer(name, version string, bank commands.Bank, stats Stats) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
	)

	s.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	RegisterReadTools(s, bank, stats)
	RegisterWriteTools(s, bank)
	RegisterResources(s, bank)
	return s
}
