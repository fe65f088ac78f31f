package domain

// Retrieval defaults.
const (
	DefaultSearchLimit     = 10
	MaxSearchLimit         = 50
	DefaultOverFetchFactor = 2
	DefaultDiversityLambda = 0.5
)

// SearchRequest describes one retrieval.
type SearchRequest struct {
	// Query is the natural-language or domain-typed query text.
	Query string

	// Modality selects the embedding space. Empty means text.
	Modality Modality

	// Limit is the maximum number of results. Zero means DefaultSearchLimit.
	Limit int

	// MinAttribute keeps only candidates whose delta_g is <= this value.
	// Nil disables the filter.
	MinAttribute *float64

	// DiversityLambda trades relevance (1.0) against novelty (0.0).
	// Nil means the configured default.
	DiversityLambda *float64
}

// SearchResult is a single reranked hit.
type SearchResult struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Payload  Payload  `json:"payload"`
	Modality Modality `json:"modality"`
}

// Float64 returns a pointer to v. Handy for optional request fields.
func Float64(v float64) *float64 {
	return &v
}
