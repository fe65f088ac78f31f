package driven

import (
	"context"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// Metric is a vector distance metric.
type Metric string

// Supported metrics.
const (
	MetricCosine Metric = "cosine"
)

// VectorSpace declares one named vector field of the index.
type VectorSpace struct {
	Name       string
	Dimensions int
	Metric     Metric
}

// VectorQuery is a nearest-neighbour query against one space.
type VectorQuery struct {
	// Space is the vector space (modality) to search.
	Space string

	// Vector is the query embedding.
	Vector []float32

	// Limit is the number of candidates requested.
	Limit int

	// WithVectors asks the index to return stored vectors for each candidate.
	WithVectors bool

	// MaxAttribute, when set, asks the index to pre-filter delta_g <= value.
	// Callers still filter client-side; indexes may ignore it.
	MaxAttribute *float64
}

// VectorIndex stores points and answers similarity queries.
// Backed by Milvus, Qdrant or an in-memory index.
type VectorIndex interface {
	// EnsureSpaces creates the collection and its vector spaces if missing.
	EnsureSpaces(ctx context.Context, spaces []VectorSpace) error

	// Upsert writes points in one batch. Existing IDs are overwritten.
	Upsert(ctx context.Context, points []domain.IngestedPoint) error

	// Query returns candidates ordered by descending score.
	Query(ctx context.Context, q VectorQuery) ([]domain.Candidate, error)

	// ListIdentifiers returns the distinct values of a payload field.
	ListIdentifiers(ctx context.Context, field string) (map[string]struct{}, error)

	// Close releases resources.
	Close() error
}
