package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query           string   `json:"query" jsonschema:"text, protein sequence or SMILES string to search for"`
	Modality        string   `json:"modality,omitempty" jsonschema:"embedding space: text, protein or molecule (default text)"`
	Limit           int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	MinAttribute    *float64 `json:"min_attribute,omitempty" jsonschema:"keep only passages whose delta_g is at most this value (kcal/mol)"`
	DiversityLambda *float64 `json:"diversity_lambda,omitempty" jsonschema:"relevance versus diversity trade-off in [0,1]"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ID         string  `json:"id"`
	PMID       string  `json:"pmid"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Score      float64 `json:"score"`
	Modality   string  `json:"modality"`
	Chunk      string  `json:"chunk"`
	ChunkIndex int     `json:"chunk_index"`
	DeltaG     float64 `json:"delta_g"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Query      string `json:"query,omitempty" jsonschema:"PubMed search term (default from config)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum records to fetch"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Status    string              `json:"status"`
	Message   string              `json:"message"`
	Counts    domain.IngestCounts `json:"counts"`
	Watermark string              `json:"watermark,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search ingested PubMed passages by text, protein or molecule similarity, reranked for diversity",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Fetch new PubMed records since the last run and index them",
		}, s.handleIngest)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req := domain.SearchRequest{
		Query:           input.Query,
		Modality:        domain.Modality(input.Modality),
		Limit:           input.Limit,
		MinAttribute:    input.MinAttribute,
		DiversityLambda: input.DiversityLambda,
	}
	if input.Modality != "" {
		m, err := domain.ParseModality(input.Modality)
		if err != nil {
			return nil, SearchOutput{}, err
		}
		req.Modality = m
	}

	results, err := s.ports.Search.Search(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = toResultOutput(results[i])
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, ErrIngestUnavailable
	}

	report, err := s.ports.Ingest.Run(ctx, domain.IngestRequest{
		Query:      input.Query,
		MaxResults: input.MaxResults,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, toIngestOutput(report), nil
}

func toResultOutput(r domain.SearchResult) SearchResultOutput {
	return SearchResultOutput{
		ID:         r.ID,
		PMID:       r.Payload.PMID,
		Title:      r.Payload.Title,
		URL:        r.Payload.URL,
		Score:      r.Score,
		Modality:   string(r.Modality),
		Chunk:      r.Payload.Chunk,
		ChunkIndex: r.Payload.ChunkIndex,
		DeltaG:     r.Payload.DeltaG,
	}
}

func toIngestOutput(r *domain.IngestReport) IngestOutput {
	out := IngestOutput{
		Status:  string(r.Status),
		Message: r.Message,
		Counts:  r.Counts,
	}
	if r.Watermark != nil {
		out.Watermark = r.Watermark.UTC().Format(time.DateOnly)
	}
	return out
}
