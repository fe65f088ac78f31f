// Package eino adapts cloudwego/eino embedders to the EmbeddingService port.
package eino

import (
	"context"
	"fmt"
	"strings"

	arkEmbed "github.com/cloudwego/eino-ext/components/embedding/ark"
	dashscopeEmbed "github.com/cloudwego/eino-ext/components/embedding/dashscope"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Supported providers.
const (
	ProviderArk       = "ark"
	ProviderDashscope = "dashscope"
)

// Config selects and configures an eino provider.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
}

// EmbeddingService wraps an eino embedding.Embedder.
type EmbeddingService struct {
	embedder   embedding.Embedder
	model      string
	dimensions int
}

// New wraps an existing embedder.
func New(embedder embedding.Embedder, model string, dimensions int) *EmbeddingService {
	return &EmbeddingService{
		embedder:   embedder,
		model:      model,
		dimensions: dimensions,
	}
}

// NewFromConfig builds the provider's embedder.
func NewFromConfig(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("eino: %s embedding missing apiKey/model", provider)
	}

	switch provider {
	case ProviderArk:
		em, err := arkEmbed.NewEmbedder(ctx, &arkEmbed.EmbeddingConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("eino: create ark embedder: %w", err)
		}
		return New(em, cfg.Model, cfg.Dimensions), nil

	case ProviderDashscope:
		dim := cfg.Dimensions
		em, err := dashscopeEmbed.NewEmbedder(ctx, &dashscopeEmbed.EmbeddingConfig{
			Model:      cfg.Model,
			APIKey:     cfg.APIKey,
			Dimensions: &dim,
		})
		if err != nil {
			return nil, fmt.Errorf("eino: create dashscope embedder: %w", err)
		}
		return New(em, cfg.Model, cfg.Dimensions), nil

	default:
		return nil, fmt.Errorf("eino: unknown embedding provider: %s", cfg.Provider)
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("eino: embed strings: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("eino: got %d embeddings for %d inputs", len(vecs), len(texts))
	}

	out := make([][]float32, len(vecs))
	for i, v := range vecs {
		f := make([]float32, len(v))
		for j, x := range v {
			f[j] = float32(x)
		}
		out[i] = f
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping embeds a short probe string.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.Embed(ctx, "ping")
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error { return nil }
