package pubmed

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// Ensure MemorySource implements the interface.
var _ driven.LiteratureSource = (*MemorySource)(nil)

// MemorySource serves a fixed set of records. Search matches the term as a
// case-insensitive substring of title or abstract, honouring Since by
// PublishedAt. Used by tests and offline demos.
type MemorySource struct {
	mu      sync.RWMutex
	records []domain.SourceRecord

	// SearchErr and FetchErr, when set, are returned by the matching call.
	SearchErr error
	FetchErr  error
}

// NewMemorySource creates a source over records.
func NewMemorySource(records ...domain.SourceRecord) *MemorySource {
	return &MemorySource{records: records}
}

// Add appends records.
func (m *MemorySource) Add(records ...domain.SourceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// Search implements driven.LiteratureSource.
func (m *MemorySource) Search(_ context.Context, q driven.SourceQuery) ([]string, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(q.Term))
	var ids []string
	for _, r := range m.records {
		if q.Since != nil && !r.PublishedAt.IsZero() && r.PublishedAt.Before(*q.Since) {
			continue
		}
		if !q.Until.IsZero() && !r.PublishedAt.IsZero() && r.PublishedAt.After(q.Until) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(r.Title+" "+r.Abstract), term) {
			continue
		}
		ids = append(ids, r.ID)
		if q.MaxResults > 0 && len(ids) == q.MaxResults {
			break
		}
	}
	return ids, nil
}

// FetchDetails implements driven.LiteratureSource.
func (m *MemorySource) FetchDetails(_ context.Context, ids []string) ([]domain.SourceRecord, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID := make(map[string]domain.SourceRecord, len(m.records))
	for _, r := range m.records {
		byID[r.ID] = r
	}
	out := make([]domain.SourceRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}
