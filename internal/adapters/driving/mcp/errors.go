// Package mcp provides an MCP (Model Context Protocol) server adapter for bioorbit.
// It lets AI assistants search the indexed literature and trigger ingestion.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrIngestUnavailable is returned by the ingest tool when no ingestion
// service is wired.
var ErrIngestUnavailable = errors.New("mcp: ingestion is not available")
