package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"memorybank/internal/application/commands"
	"memorybank/internal/domain"
)

// RegisterReadTools adds all read-only memory bank tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, bank commands.Bank, stats Stats) {
	s.AddTool(listTool(), listHandler(bank))
	s.AddTool(readTool(), readHandler(bank))
	s.AddTool(searchTool(), searchHandler(bank))
	s.AddTool(healthTool(), healthHandler(bank))
	s.AddTool(historyTool(), historyHandler(bank))
	s.AddTool(cacheStatsTool(), cacheStatsHandler(stats))
}

// --- list_documents ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List the memory bank documents with their path, size and metadata status."),
	)
}

func listHandler(bank commands.Bank) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := commands.NewListDocumentsCommand(bank).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, d := range docs {
			fmt.Fprintf(&sb, "%-15s %-9s %6dB  %s\n", d.Type, d.Status, d.Size, d.Path)
			for _, ve := range d.ValidationErrors {
				fmt.Fprintf(&sb, "  ! %s\n", ve)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- read_document ---

func readTool() mcp.Tool {
	return mcp.NewTool("read_document",
		mcp.WithDescription("Read a memory bank document, including its front-matter header."),
		mcp.WithString("type",
			mcp.Description("Document type (projectbrief, productContext, activeContext, systemPatterns, techContext, progress)"),
			mcp.Required(),
		),
	)
}

func readHandler(bank commands.Bank) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec, err := commands.NewShowDocumentCommand(bank, req.GetString("type", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(rec.Raw), nil
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search document titles and lines by keyword."),
		mcp.WithString("query",
			mcp.Description("Search query (at least 2 characters)"),
			mcp.Required(),
		),
	)
}

func searchHandler(bank commands.Bank) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		results, err := commands.NewSearchCommand(bank, query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			if r.Line == 0 {
				fmt.Fprintf(&sb, "%s  %s\n", r.Type, r.MatchedText)
				continue
			}
			fmt.Fprintf(&sb, "%s:%d  %s\n", r.Type, r.Line, r.MatchedText)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- health_check ---

func healthTool() mcp.Tool {
	return mcp.NewTool("health_check",
		mcp.WithDescription("Check that the memory bank root and every document exist on disk."),
	)
}

func healthHandler(bank commands.Bank) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := commands.NewHealthCommand(bank).Execute(ctx)
		return mcp.NewToolResultText(formatHealth(res)), nil
	}
}

func formatHealth(res domain.HealthCheckResult) string {
	var sb strings.Builder
	if res.IsHealthy {
		sb.WriteString("healthy: ")
	} else {
		sb.WriteString("unhealthy: ")
	}
	sb.WriteString(res.Summary)
	sb.WriteByte('\n')
	for _, issue := range res.Issues {
		fmt.Fprintf(&sb, "- %s\n", issue)
	}
	return sb.String()
}

// --- history ---

func historyTool() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("List recorded revisions of a document, newest first."),
		mcp.WithString("type",
			mcp.Description("Document type"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum revisions to return (default %d)", commands.DefaultHistoryLimit)),
		),
	)
}

func historyHandler(bank commands.Bank) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewHistoryCommand(bank, req.GetString("type", ""), req.GetInt("limit", 0))
		revs, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(revs) == 0 {
			return mcp.NewToolResultText("No revisions recorded."), nil
		}

		var sb strings.Builder
		for _, r := range revs {
			marker := ""
			if r.Created {
				marker = " (created)"
			}
			fmt.Fprintf(&sb, "%s  %016x  %-9s%s\n", r.RecordedAt.Format(time.RFC3339), r.Checksum, r.Status, marker)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- cache_stats ---

func cacheStatsTool() mcp.Tool {
	return mcp.NewTool("cache_stats",
		mcp.WithDescription("Report content cache and reader statistics."),
	)
}

func cacheStatsHandler(stats Stats) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		if stats.Cache != nil {
			s := stats.Cache.Stats()
			fmt.Fprintf(&sb, "cache: %d/%d entries, %d hits, %d misses, %d evictions, %d reloads, hit rate %.2f\n",
				s.CurrentSize, s.MaxSize, s.Hits, s.Misses, s.Evictions, s.Reloads, s.HitRate)
		}
		if stats.Reader != nil {
			s := stats.Reader.Stats()
			fmt.Fprintf(&sb, "reader: %d buffered (avg %s), %d streamed (avg %s), %d cache hits, %d bytes\n",
				s.BufferedReads, s.AvgBufferedDuration, s.StreamedReads, s.AvgStreamingDuration, s.CacheHits, s.TotalBytesRead)
			fmt.Fprintf(&sb, "reader: %d failures, %d timeouts, %d backpressure pauses, %d dropped settlements\n",
				s.Failures, s.Timeouts, s.BackpressurePauses, s.DroppedSettlements)
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No statistics available."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
