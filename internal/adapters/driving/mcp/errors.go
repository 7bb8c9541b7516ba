// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets assistants search the document index and run index maintenance.
package mcp

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingIndexAdmin is returned when the index admin is not provided.
	ErrMissingIndexAdmin = errors.New("mcp: index admin is required")
)
