// Package chunker splits record abstracts into bounded semantic passages.
//
// The primary strategy groups sentences while they stay semantically close
// to the running passage. When no similarity collaborator is configured, or
// it fails, the chunker falls back to deterministic greedy sentence packing.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// Defaults for the chunking policy.
const (
	DefaultMaxSize   = 512
	DefaultMinSize   = 50
	DefaultThreshold = 0.5
)

// Processor splits record text into passages.
// It implements the PostProcessor interface.
type Processor struct {
	maxSize    int
	minSize    int
	threshold  float64
	similarity driven.Similarity
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxSize sets the maximum passage length in characters.
func WithMaxSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// WithMinSize sets the length below which text is returned unchanged.
func WithMinSize(size int) Option {
	return func(p *Processor) {
		if size >= 0 {
			p.minSize = size
		}
	}
}

// WithThreshold sets the similarity score below which a new passage starts.
func WithThreshold(t float64) Option {
	return func(p *Processor) {
		if t >= 0 && t <= 1 {
			p.threshold = t
		}
	}
}

// WithSimilarity enables the semantic strategy.
func WithSimilarity(s driven.Similarity) Option {
	return func(p *Processor) {
		p.similarity = s
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxSize:   DefaultMaxSize,
		minSize:   DefaultMinSize,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process chunks the record's abstract. Input chunks are ignored.
func (p *Processor) Process(
	ctx context.Context, record *domain.SourceRecord, _ []domain.Chunk,
) ([]domain.Chunk, error) {
	if record == nil {
		return nil, fmt.Errorf("chunker: record is nil")
	}
	passages := p.Split(ctx, record.Abstract)
	chunks := make([]domain.Chunk, len(passages))
	for i, text := range passages {
		chunks[i] = domain.NewChunk(record.ID, i, text)
	}
	return chunks, nil
}

// Split returns the ordered passages for text. Blank text yields none.
// It never fails for non-empty input.
func (p *Processor) Split(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) < p.minSize {
		return []string{text}
	}

	units := splitUnits(text)

	var passages []string
	if p.similarity != nil {
		semantic, err := p.semantic(ctx, units)
		if err != nil {
			logger.Warn("Semantic chunking failed, using sentence fallback: %v", err)
		} else {
			passages = semantic
		}
	}
	if passages == nil {
		passages = packGreedy(units, p.maxSize)
	}

	if len(passages) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return passages
}

// semantic grows a running passage while the next unit stays similar to it.
func (p *Processor) semantic(ctx context.Context, units []string) ([]string, error) {
	var passages []string
	var running strings.Builder

	flush := func() {
		if s := strings.TrimSpace(running.String()); s != "" {
			passages = append(passages, s)
		}
		running.Reset()
	}

	for _, u := range units {
		if strings.TrimSpace(u) == "" {
			running.WriteString(u)
			continue
		}
		if running.Len() == 0 || strings.TrimSpace(running.String()) == "" {
			running.WriteString(u)
			continue
		}
		if runeLen(running.String()+u) > p.maxSize {
			flush()
			running.WriteString(u)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, err := p.similarity.Similarity(ctx, strings.TrimSpace(running.String()), strings.TrimSpace(u))
		if err != nil {
			return nil, fmt.Errorf("similarity: %w", err)
		}
		if score < p.threshold {
			flush()
		}
		running.WriteString(u)
	}
	flush()
	return passages, nil
}
