package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// Ensure WatermarkStore implements the interface.
var _ driven.WatermarkStore = (*WatermarkStore)(nil)

// WatermarkStore is an in-memory implementation of driven.WatermarkStore.
type WatermarkStore struct {
	mu    sync.RWMutex
	value *time.Time
}

// NewWatermarkStore creates an empty watermark store.
func NewWatermarkStore() *WatermarkStore {
	return &WatermarkStore{}
}

// Get returns a copy of the stored watermark, or nil.
func (s *WatermarkStore) Get(_ context.Context) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.value == nil {
		return nil, nil
	}
	v := *s.value
	return &v, nil
}

// Set replaces the watermark.
func (s *WatermarkStore) Set(_ context.Context, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = &date
	return nil
}

// Clear removes the watermark.
func (s *WatermarkStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = nil
	return nil
}
