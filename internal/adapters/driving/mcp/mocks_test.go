package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	last    domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	m.last = req
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestionService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error
	last   domain.IngestRequest
}

func (m *mockIngestService) Run(_ context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	m.last = req
	if m.report == nil {
		m.report = &domain.IngestReport{}
	}
	return m.report, m.err
}

func (m *mockIngestService) Running() bool {
	return false
}

// mockWatermarkService is a mock implementation of driving.WatermarkService.
type mockWatermarkService struct {
	watermark *time.Time
	err       error
}

func (m *mockWatermarkService) GetWatermark(_ context.Context) (*time.Time, error) {
	return m.watermark, m.err
}

func (m *mockWatermarkService) SetWatermark(_ context.Context, date time.Time) error {
	m.watermark = &date
	return m.err
}

func (m *mockWatermarkService) ResetWatermark(_ context.Context) error {
	m.watermark = nil
	return m.err
}
