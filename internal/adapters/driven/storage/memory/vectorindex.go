package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force cosine index held in memory.
type VectorIndex struct {
	mu     sync.RWMutex
	spaces map[string]driven.VectorSpace
	points map[string]domain.IngestedPoint
	order  []string // insertion order, for deterministic ties
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		spaces: make(map[string]driven.VectorSpace),
		points: make(map[string]domain.IngestedPoint),
	}
}

// EnsureSpaces declares vector spaces. Redeclaring a space with a
// different dimension is an error.
func (x *VectorIndex) EnsureSpaces(_ context.Context, spaces []driven.VectorSpace) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, sp := range spaces {
		if sp.Dimensions <= 0 {
			return fmt.Errorf("space %q: dimensions must be positive", sp.Name)
		}
		if existing, ok := x.spaces[sp.Name]; ok && existing.Dimensions != sp.Dimensions {
			return fmt.Errorf("space %q: dimension %d conflicts with existing %d",
				sp.Name, sp.Dimensions, existing.Dimensions)
		}
		x.spaces[sp.Name] = sp
	}
	return nil
}

// Upsert writes points, replacing any with the same ID.
func (x *VectorIndex) Upsert(_ context.Context, points []domain.IngestedPoint) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, p := range points {
		if p.ID == "" {
			return fmt.Errorf("point has empty id")
		}
		for m, v := range p.Vectors {
			sp, ok := x.spaces[string(m)]
			if !ok {
				return fmt.Errorf("point %s: unknown space %q", p.ID, m)
			}
			if len(v) != sp.Dimensions {
				return fmt.Errorf("point %s: %s vector has %d dimensions, want %d",
					p.ID, m, len(v), sp.Dimensions)
			}
		}
	}
	for _, p := range points {
		if _, ok := x.points[p.ID]; !ok {
			x.order = append(x.order, p.ID)
		}
		x.points[p.ID] = clonePoint(p)
	}
	return nil
}

// Query scores every point holding a vector in the requested space.
func (x *VectorIndex) Query(ctx context.Context, q driven.VectorQuery) ([]domain.Candidate, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if _, ok := x.spaces[q.Space]; !ok {
		return nil, fmt.Errorf("unknown space %q", q.Space)
	}

	var out []domain.Candidate
	for _, id := range x.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := x.points[id]
		v, ok := p.Vectors[domain.Modality(q.Space)]
		if !ok {
			continue
		}
		if q.MaxAttribute != nil && p.Payload.DeltaG > *q.MaxAttribute {
			continue
		}
		c := domain.Candidate{
			ID:      p.ID,
			Score:   domain.CosineSimilarity(q.Vector, v),
			Payload: p.Payload,
		}
		if q.WithVectors {
			c.Vector = append([]float32(nil), v...)
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// ListIdentifiers returns the distinct values of a payload field.
func (x *VectorIndex) ListIdentifiers(_ context.Context, field string) (map[string]struct{}, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	ids := make(map[string]struct{})
	for _, p := range x.points {
		v, ok := p.Payload.ToMap()[field]
		if !ok {
			return nil, fmt.Errorf("unknown payload field %q", field)
		}
		if s := fmt.Sprint(v); s != "" {
			ids[s] = struct{}{}
		}
	}
	return ids, nil
}

// Count returns the number of stored points.
func (x *VectorIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.points)
}

// Close is a no-op.
func (x *VectorIndex) Close() error {
	return nil
}

func clonePoint(p domain.IngestedPoint) domain.IngestedPoint {
	vectors := make(map[domain.Modality][]float32, len(p.Vectors))
	for m, v := range p.Vectors {
		vectors[m] = append([]float32(nil), v...)
	}
	p.Vectors = vectors
	return p
}
