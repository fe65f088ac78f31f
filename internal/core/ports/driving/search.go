package driving

import (
	"context"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// SearchService provides retrieval to external actors.
type SearchService interface {
	// Search embeds the query, over-fetches, filters by delta_g and reranks by MMR.
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error)
}
