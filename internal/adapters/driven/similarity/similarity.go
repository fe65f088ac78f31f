// Package similarity scores how close two text spans are in meaning.
package similarity

import (
	"context"
	"fmt"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// Ensure Embedding implements the interface.
var _ driven.Similarity = (*Embedding)(nil)

// Embedding compares spans by the cosine of their embeddings.
type Embedding struct {
	embedder driven.EmbeddingService
}

// NewEmbedding creates an embedding-backed similarity scorer.
func NewEmbedding(embedder driven.EmbeddingService) *Embedding {
	return &Embedding{embedder: embedder}
}

// Similarity embeds both spans in one call and returns their cosine, clamped to [0, 1].
func (e *Embedding) Similarity(ctx context.Context, a, b string) (float64, error) {
	vecs, err := e.embedder.EmbedBatch(ctx, []string{a, b})
	if err != nil {
		return 0, fmt.Errorf("embed spans: %w", err)
	}
	if len(vecs) != 2 {
		return 0, fmt.Errorf("embed spans: got %d vectors, want 2", len(vecs))
	}
	score := domain.CosineSimilarity(vecs[0], vecs[1])
	return max(0, min(1, score)), nil
}
