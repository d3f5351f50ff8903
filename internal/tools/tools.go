// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools exposes the search orchestrator as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
	"github.com/pdiddy/paper-aggregator/internal/search"
	"github.com/pdiddy/paper-aggregator/pkg/types"
)

// Tool names.
const (
	SearchTool = "search_papers"
	RecentTool = "get_all_recent_papers"
)

// ServerName identifies the MCP server to clients.
const ServerName = "paper-aggregator"

// SearchArgs are the search_papers arguments.
type SearchArgs struct {
	Query      string  `json:"query,omitempty" jsonschema:"Search terms or keywords; may be omitted when author is set"`
	Author     string  `json:"author,omitempty" jsonschema:"Author name to restrict the search to"`
	Source     string  `json:"source,omitempty" jsonschema:"Sources to query: all, arxiv or ssrn (default all)"`
	MaxResults int     `json:"max_results,omitempty" jsonschema:"Maximum number of papers to return (default 20)"`
	Timeout    float64 `json:"timeout,omitempty" jsonschema:"Seconds to wait for the sources (default 30)"`
}

// RecentArgs are the get_all_recent_papers arguments.
type RecentArgs struct {
	MonthsBack int    `json:"months_back" jsonschema:"Number of months to look back, at least 1"`
	Source     string `json:"source,omitempty" jsonschema:"Sources to query: all, arxiv or ssrn (default all)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of papers to return (default 50)"`
}

// DefaultTimeout bounds a tool call that does not set one.
const DefaultTimeout = 30 * time.Second

// Handler answers tool calls with the orchestrator.
type Handler struct {
	Orchestrator *search.Orchestrator
	Logger       *zap.Logger
}

// Search handles search_papers.
func (h *Handler) Search(ctx context.Context, _ *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	timeout := DefaultTimeout
	if args.Timeout > 0 {
		timeout = time.Duration(args.Timeout * float64(time.Second))
	}
	resp, err := h.Orchestrator.Search(ctx, search.SearchRequest{
		Query:      args.Query,
		Author:     args.Author,
		Source:     args.Source,
		MaxResults: args.MaxResults,
		Timeout:    timeout,
	})
	if err != nil {
		return h.failure(SearchTool, err)
	}
	return h.success(resp)
}

// Recent handles get_all_recent_papers.
func (h *Handler) Recent(ctx context.Context, _ *mcp.CallToolRequest, args RecentArgs) (*mcp.CallToolResult, any, error) {
	resp, err := h.Orchestrator.Recent(ctx, search.RecentRequest{
		MonthsBack: args.MonthsBack,
		Source:     args.Source,
		MaxResults: args.MaxResults,
		Timeout:    DefaultTimeout,
	})
	if err != nil {
		return h.failure(RecentTool, err)
	}
	return h.success(resp)
}

func (h *Handler) success(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// failure reports caller errors as a tool error result so the model can
// correct its arguments.
func (h *Handler) failure(tool string, err error) (*mcp.CallToolResult, any, error) {
	h.logger().Warn("tool call rejected",
		zap.String("tool", tool),
		zap.String("kind", string(apperr.KindOf(err))),
		zap.Error(err))
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error in tool '%s': %v", tool, err)}},
	}, nil, nil
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.NewNop()
}

// Register adds both tools to server. Tool descriptions embed the field
// reference of the returned paper records.
func Register(server *mcp.Server, h *Handler) {
	fields := "\n\nEach paper carries these fields:\n" + types.FieldDescriptionsMarkdown()

	mcp.AddTool(server, &mcp.Tool{
		Name: SearchTool,
		Description: "Search for academic papers across multiple sources (arXiv, SSRN). " +
			"Give a query, an author, or both. " +
			"Results found in several sources are merged by title and sorted newest first." + fields,
	}, h.Search)

	mcp.AddTool(server, &mcp.Tool{
		Name: RecentTool,
		Description: "Get recent academic papers from multiple sources (arXiv, SSRN) published in the " +
			"last months_back months, across all subject areas." + fields,
	}, h.Recent)
}

// NewServer returns an MCP server with both tools registered.
func NewServer(h *Handler, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	Register(server, h)
	return server
}
