package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error)
}

func (m *MockSearchService) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return nil, nil
}

// MockIngestionService implements driving.IngestionService for testing.
type MockIngestionService struct {
	Report *domain.IngestReport
	Err    error
}

func (m *MockIngestionService) Run(context.Context, domain.IngestRequest) (*domain.IngestReport, error) {
	return m.Report, m.Err
}

func (m *MockIngestionService) Running() bool { return false }

// MockWatermarkService implements driving.WatermarkService for testing.
type MockWatermarkService struct {
	Mark *time.Time
}

func (m *MockWatermarkService) GetWatermark(context.Context) (*time.Time, error) { return m.Mark, nil }
func (m *MockWatermarkService) SetWatermark(_ context.Context, t time.Time) error {
	m.Mark = &t
	return nil
}
func (m *MockWatermarkService) ResetWatermark(context.Context) error {
	m.Mark = nil
	return nil
}

func TestNewPorts(t *testing.T) {
	search := &MockSearchService{}
	ingest := &MockIngestionService{}
	wm := &MockWatermarkService{}

	ports := NewPorts(search, ingest, wm)

	require.NotNil(t, ports)
	assert.Equal(t, search, ports.Search)
	assert.Equal(t, ingest, ports.Ingest)
	assert.Equal(t, wm, ports.Watermark)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"all set", NewPorts(&MockSearchService{}, &MockIngestionService{}, &MockWatermarkService{}), nil},
		{"search only", &Ports{Search: &MockSearchService{}}, nil},
		{"missing search", &Ports{Ingest: &MockIngestionService{}}, ErrMissingSearchService},
		{"nil ports", nil, ErrInvalidPorts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
