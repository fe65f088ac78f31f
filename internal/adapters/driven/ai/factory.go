// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	einoembed "github.com/custodia-labs/bioorbit/internal/adapters/driven/embedding/eino"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/bioorbit/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/bioorbit/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Embedding providers.
const (
	ProviderHashing   = "hashing"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderArk       = einoembed.ProviderArk
	ProviderDashscope = einoembed.ProviderDashscope
)

// EmbeddingSettings selects and configures one embedding model.
type EmbeddingSettings struct {
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Dimensions int
	MaxRetries int
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s embedding unreachable: %w", domain.ErrEmbedding, settings.Provider, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service for settings.
// An empty provider means the offline hashing embedder.
func CreateEmbeddingService(ctx context.Context, settings EmbeddingSettings) (driven.EmbeddingService, error) {
	dims := settings.Dimensions
	if dims <= 0 {
		dims = domain.DefaultDimensions
	}

	switch strings.ToLower(strings.TrimSpace(settings.Provider)) {
	case "", ProviderHashing:
		return hashing.New(dims), nil

	case ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		}), nil

	case ProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
			MaxRetries: settings.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return svc, nil

	case ProviderArk, ProviderDashscope:
		svc, err := einoembed.NewFromConfig(ctx, einoembed.Config{
			Provider:   settings.Provider,
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			BaseURL:    settings.BaseURL,
			Dimensions: dims,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
}
