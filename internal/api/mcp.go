package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Searcher Searcher
	Finder   SimilarFinder
	Queries  QueryIndex
}

// NewMCPServer creates an MCP server exposing the review pipeline and
// the catalog matcher as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"reviewlens",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("reviewlens — consensus review verdicts and similar-product lookups for consumer products."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_reviews",
			mcp.WithDescription("Aggregate community reviews for a product into structured judgments and one consensus verdict."),
			mcp.WithString("query", mcp.Description("Product name to search for"), mcp.Required()),
		),
		mcpSearchReviews(deps),
	)

	s.AddTool(
		mcp.NewTool("similar_products",
			mcp.WithDescription("Return same-brand, competitor, and same-category products for a product name."),
			mcp.WithString("product_name", mcp.Description("Product to find neighbors for"), mcp.Required()),
		),
		mcpSimilarProducts(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"search://recent",
			"Recent Searches",
			mcp.WithResourceDescription("Previously searched product queries"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecentSearches(deps),
	)

	return s
}

func mcpSearchReviews(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		result := deps.Searcher.Search(ctx, query)

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSimilarProducts(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("product_name")
		if err != nil {
			return mcpError("product_name is required"), nil
		}

		buckets := deps.Finder.Similar(ctx, name)

		b, err := json.Marshal(buckets)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal buckets: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecentSearches(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		queries, err := deps.Queries.SearchQueries()
		if err != nil {
			return nil, fmt.Errorf("failed to list searches: %w", err)
		}

		b, err := json.Marshal(queries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal searches: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
