package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memorybank/internal/application/commands"
)

// RegisterWriteTools adds the memory bank write tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, bank commands.Bank) {
	s.AddTool(updateTool(), updateHandler(bank))
	s.AddTool(writeFileTool(), writeFileHandler(bank))
}

// --- update_document ---

func updateTool() mcp.Tool {
	return mcp.NewTool("update_document",
		mcp.WithDescription("Replace the content of a memory bank document. Invalid front-matter is reported but does not block the write."),
		mcp.WithString("type",
			mcp.Description("Document type"),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("New document content, including its front-matter header"),
			mcp.Required(),
		),
	)
}

func updateHandler(bank commands.Bank) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewUpdateDocumentCommand(bank, req.GetString("type", ""), req.GetString("content", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		msg := result.Message
		if len(result.Record.ValidationErrors) > 0 {
			msg += "\nmetadata issues:\n  " + strings.Join(result.Record.ValidationErrors, "\n  ")
		}
		return mcp.NewToolResultText(msg), nil
	}
}

// --- write_file ---

func writeFileTool() mcp.Tool {
	return mcp.NewTool("write_file",
		mcp.WithDescription("Write a file at a path relative to the memory bank root. Existing files are kept unless overwrite is set."),
		mcp.WithString("path",
			mcp.Description("Relative path under the memory bank root (e.g. notes/decisions.md)"),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("File content"),
			mcp.Required(),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace an existing file (default false)"),
		),
	)
}

func writeFileHandler(bank commands.Bank) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewWriteFileCommand(bank,
			req.GetString("path", ""),
			req.GetString("content", ""),
			req.GetBool("overwrite", false),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
