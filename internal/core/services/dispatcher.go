package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// DefaultEmbedBatchSize bounds a single model call.
const DefaultEmbedBatchSize = 64

// Dispatcher routes embedding requests to the model registered for a modality.
// Modalities without an explicit model use the text model.
type Dispatcher struct {
	text      driven.EmbeddingService
	models    map[domain.Modality]driven.EmbeddingService
	batchSize int
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithModalityModel overrides the model for one modality.
func WithModalityModel(m domain.Modality, svc driven.EmbeddingService) DispatcherOption {
	return func(d *Dispatcher) {
		if svc != nil {
			d.models[m] = svc
		}
	}
}

// WithBatchSize sets the maximum number of texts per model call.
func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// NewDispatcher creates a dispatcher backed by the given text model.
func NewDispatcher(text driven.EmbeddingService, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		text:      text,
		models:    make(map[domain.Modality]driven.EmbeddingService),
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dimensions returns the vector size of the model serving m.
func (d *Dispatcher) Dimensions(m domain.Modality) int {
	svc, err := d.model(m)
	if err != nil {
		return 0
	}
	return svc.Dimensions()
}

// Space returns the vector space that holds embeddings for m. Modalities
// served by the text model share the text space.
func (d *Dispatcher) Space(m domain.Modality) domain.Modality {
	if _, ok := d.models[m]; ok {
		return m
	}
	return domain.ModalityText
}

// Spaces maps modalities to their distinct spaces, in first-seen order.
func (d *Dispatcher) Spaces(ms []domain.Modality) []domain.Modality {
	out := make([]domain.Modality, 0, len(ms))
	seen := make(map[domain.Modality]bool, len(ms))
	for _, m := range ms {
		sp := d.Space(m)
		if !seen[sp] {
			seen[sp] = true
			out = append(out, sp)
		}
	}
	return out
}

func (d *Dispatcher) model(m domain.Modality) (driven.EmbeddingService, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown modality %q", domain.ErrInvalidInput, m)
	}
	if svc, ok := d.models[m]; ok {
		return svc, nil
	}
	if d.text == nil {
		return nil, fmt.Errorf("%w: no embedding model configured", domain.ErrEmbedding)
	}
	return d.text, nil
}

// Embed returns the embedding of one text.
func (d *Dispatcher) Embed(ctx context.Context, text string, m domain.Modality) ([]float32, error) {
	vecs, err := d.EmbedMany(ctx, []string{text}, m)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany returns one embedding per text, in input order.
func (d *Dispatcher) EmbedMany(ctx context.Context, texts []string, m domain.Modality) ([][]float32, error) {
	svc, err := d.model(m)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	dims := svc.Dimensions()
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += d.batchSize {
		end := min(start+d.batchSize, len(texts))
		batch := texts[start:end]

		logger.Debug("Embedding %d texts (%s, batch %d-%d)", len(batch), m, start, end)
		vecs, err := svc.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrEmbedding, svc.ModelName(), err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%w: model returned %d vectors for %d texts",
				domain.ErrEmbedding, len(vecs), len(batch))
		}
		for i, v := range vecs {
			if dims > 0 && len(v) != dims {
				return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
					domain.ErrEmbedding, start+i, len(v), dims)
			}
		}
		out = append(out, vecs...)
	}
	return out, nil
}
