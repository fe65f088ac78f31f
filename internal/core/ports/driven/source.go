package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// SourceQuery constrains a literature search.
type SourceQuery struct {
	// Term is the search expression.
	Term string

	// MaxResults bounds the number of identifiers returned.
	MaxResults int

	// Since restricts results to records entered on or after this date.
	// Nil means no lower bound (first run).
	Since *time.Time

	// Until is the run's cutoff date.
	Until time.Time
}

// LiteratureSource searches and fetches records from an upstream database.
type LiteratureSource interface {
	// Search returns record identifiers matching the query.
	Search(ctx context.Context, q SourceQuery) ([]string, error)

	// FetchDetails returns full records for the given identifiers.
	FetchDetails(ctx context.Context, ids []string) ([]domain.SourceRecord, error)
}
