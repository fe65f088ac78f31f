package driven

import "context"

// Similarity scores how semantically close two text spans are.
// Used by the chunker's primary strategy.
type Similarity interface {
	// Similarity returns a score in [0, 1]; 1 means identical meaning.
	Similarity(ctx context.Context, a, b string) (float64, error)
}
