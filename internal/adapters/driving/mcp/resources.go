package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for bioorbit resources.
	uriScheme = "bioorbit://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "watermark",
		Name:        "watermark",
		Description: "Cutoff date of the last successful ingestion run",
		MIMEType:    "application/json",
	}, s.handleWatermarkResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "search/{query}",
		Name:        "text-search",
		Description: "Top text-modality passages for a URL-escaped query",
		MIMEType:    "application/json",
	}, s.handleSearchResource)
}

// handleWatermarkResource returns {"watermark": "YYYY/MM/DD"} or null.
func (s *Server) handleWatermarkResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	body := map[string]any{"watermark": nil}
	if s.ports.Watermark != nil {
		wm, err := s.ports.Watermark.GetWatermark(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading watermark: %w", err)
		}
		if wm != nil {
			body["watermark"] = domain.FormatWatermark(*wm)
		}
	}

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling watermark: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSearchResource runs a default text search for the query in the URI.
func (s *Server) handleSearchResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	query := extractQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	results, err := s.ports.Search.Search(ctx, domain.SearchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	out := make([]SearchResultOutput, len(results))
	for i := range results {
		out[i] = toResultOutput(results[i])
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling results: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractQuery extracts and unescapes the query from bioorbit://search/{query}.
func extractQuery(uri string) string {
	const prefix = uriScheme + "search/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	q, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(q)
}
