package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query   string            `json:"query" jsonschema:"free-text query; empty matches every document"`
	Limit   int               `json:"limit,omitempty" jsonschema:"maximum number of hits (default 20, at most 1000)"`
	Offset  int               `json:"offset,omitempty" jsonschema:"number of hits to skip"`
	Filters map[string]string `json:"filters,omitempty" jsonschema:"exact-match filters keyed by filter field, e.g. Industry or Region"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Hits     []map[string]any            `json:"hits"`
	Total    int64                       `json:"total"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"pageSize"`
	Facets   map[string]map[string]int64 `json:"facets,omitempty"`
}

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// StatsOutput is the output schema for the index_stats tool.
type StatsOutput struct {
	Documents            int64            `json:"documents"`
	IsIndexing           bool             `json:"isIndexing"`
	FieldDistribution    map[string]int64 `json:"fieldDistribution,omitempty"`
	SearchableAttributes []string         `json:"searchableAttributes,omitempty"`
	FilterableAttributes []string         `json:"filterableAttributes,omitempty"`
	SortableAttributes   []string         `json:"sortableAttributes,omitempty"`
}

// RebuildOutput is the output schema for rebuild_index and refresh_index.
type RebuildOutput struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Indexed int                   `json:"indexed"`
	Skipped int                   `json:"skipped"`
	Failed  []domain.BatchFailure `json:"failedBatches,omitempty"`
}

// AckOutput reports completion of an operation without data.
type AckOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search the document index with optional filters",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_stats",
		Description: "Report document count, indexing state and applied index settings",
	}, s.handleStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh_index",
		Description: "Clear the index and rebuild it from published records",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rebuild_index",
		Description: "Re-index every published record without clearing first",
	}, s.handleRebuild)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_index",
		Description: "Remove every document from the index",
	}, s.handleClear)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "configure_index",
		Description: "Apply the searchable, filterable and sortable attribute settings",
	}, s.handleConfigure)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	q := domain.AdvancedSearchQuery{
		Query:   input.Query,
		Filters: input.Filters,
	}
	if input.Limit > 0 {
		q.Limit = &input.Limit
	}
	if input.Offset > 0 {
		q.Offset = &input.Offset
	}

	page, err := s.ports.Search.Advanced(ctx, q)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Hits:     page.Hits,
		Total:    page.Pagination.Total,
		Page:     page.Pagination.Page,
		PageSize: page.Pagination.PageSize,
		Facets:   page.Search.FacetDistribution,
	}, nil
}

func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	report, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		Documents:            report.NumberOfDocuments,
		IsIndexing:           report.IsIndexing,
		FieldDistribution:    report.FieldDistribution,
		SearchableAttributes: report.Settings.SearchableAttributes,
		FilterableAttributes: report.Settings.FilterableAttributes,
		SortableAttributes:   report.Settings.SortableAttributes,
	}, nil
}

func (s *Server) handleRefresh(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, RebuildOutput, error) {
	result, err := s.ports.Index.Refresh(ctx)
	if err != nil {
		return nil, RebuildOutput{}, err
	}
	return nil, RebuildOutput{
		Success: result.Success,
		Message: result.Message,
		Indexed: result.Stats.Indexed,
		Skipped: result.Stats.Skipped,
		Failed:  result.Stats.Failures,
	}, nil
}

func (s *Server) handleRebuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, RebuildOutput, error) {
	result, err := s.ports.Index.Rebuild(ctx)
	if err != nil {
		return nil, RebuildOutput{}, err
	}
	return nil, RebuildOutput{
		Success: true,
		Message: result.Message(),
		Indexed: result.Indexed,
		Skipped: result.Skipped,
		Failed:  result.Failures,
	}, nil
}

func (s *Server) handleClear(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.ports.Index.Clear(ctx); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{Success: true, Message: "Index cleared"}, nil
}

func (s *Server) handleConfigure(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.ports.Index.Configure(ctx); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{Success: true, Message: "Index settings applied"}, nil
}
