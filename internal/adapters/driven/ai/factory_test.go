package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    EmbeddingSettings
		wantModel   string
		wantErr     error
		errContains string
	}{
		{
			name:      "empty provider is hashing",
			settings:  EmbeddingSettings{Dimensions: 64},
			wantModel: "hashing",
		},
		{
			name: "ollama provider creates service",
			settings: EmbeddingSettings{
				Provider: ProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
		},
		{
			name: "openai provider creates service",
			settings: EmbeddingSettings{
				Provider: ProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
		},
		{
			name:     "openai without key fails",
			settings: EmbeddingSettings{Provider: ProviderOpenAI},
			wantErr:  domain.ErrEmbedding,
		},
		{
			name:     "ark without key fails",
			settings: EmbeddingSettings{Provider: ProviderArk, Model: "doubao-embedding"},
			wantErr:  domain.ErrEmbedding,
		},
		{
			name:        "unknown provider",
			settings:    EmbeddingSettings{Provider: "anthropic"},
			wantErr:     domain.ErrInvalidInput,
			errContains: "anthropic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(context.Background(), tt.settings)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Contains(t, svc.ModelName(), tt.wantModel)
		})
	}
}

func TestCreateEmbeddingService_DefaultDimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(context.Background(), EmbeddingSettings{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDimensions, svc.Dimensions())
}

func TestCreateAndValidateEmbeddingService_Hashing(t *testing.T) {
	svc, err := CreateAndValidateEmbeddingService(context.Background(), EmbeddingSettings{Provider: ProviderHashing})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateAndValidateEmbeddingService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
	}))
	defer srv.Close()

	_, err := CreateAndValidateEmbeddingService(context.Background(), EmbeddingSettings{
		Provider: ProviderOllama,
		BaseURL:  srv.URL,
		Model:    "all-minilm",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}
