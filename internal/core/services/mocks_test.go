package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService returns vectors derived from the text length.
type mockEmbeddingService struct {
	dims     int
	err      error
	short    bool // return one vector fewer than asked
	badDims  bool // return vectors of the wrong size
	batches  [][]string
	vectorOf func(text string) []float32
}

func newMockEmbedding(dims int) *mockEmbeddingService {
	return &mockEmbeddingService{dims: dims}
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil {
		return nil, m.err
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		size := m.dims
		if m.badDims {
			size++
		}
		if m.vectorOf != nil {
			out[i] = m.vectorOf(texts[i])
			continue
		}
		v := make([]float32, size)
		v[0] = float32(len(texts[i]))
		if size > 1 {
			v[1] = 1
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return m.dims }
func (m *mockEmbeddingService) ModelName() string            { return "mock" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorIndex records upserts and answers queries with fixed candidates.
type mockVectorIndex struct {
	mu         sync.Mutex
	ids        map[string]struct{}
	upserted   []domain.IngestedPoint
	candidates []domain.Candidate
	lastQuery  driven.VectorQuery
	upsertErr  error
	queryErr   error
	listErr    error
}

func newMockVectorIndex(known ...string) *mockVectorIndex {
	ids := make(map[string]struct{}, len(known))
	for _, id := range known {
		ids[id] = struct{}{}
	}
	return &mockVectorIndex{ids: ids}
}

func (m *mockVectorIndex) EnsureSpaces(_ context.Context, _ []driven.VectorSpace) error {
	return nil
}

func (m *mockVectorIndex) Upsert(_ context.Context, points []domain.IngestedPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, points...)
	for _, p := range points {
		m.ids[p.Payload.PMID] = struct{}{}
	}
	return nil
}

func (m *mockVectorIndex) Query(_ context.Context, q driven.VectorQuery) ([]domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	out := make([]domain.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		if !q.WithVectors {
			c.Vector = nil
		}
		out = append(out, c)
	}
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *mockVectorIndex) ListIdentifiers(_ context.Context, _ string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make(map[string]struct{}, len(m.ids))
	for id := range m.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockWatermarkStore keeps the watermark in memory.
type mockWatermarkStore struct {
	mu     sync.Mutex
	value  *time.Time
	getErr error
	setErr error
	sets   int
}

func (m *mockWatermarkStore) Get(_ context.Context) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.value == nil {
		return nil, nil
	}
	v := *m.value
	return &v, nil
}

func (m *mockWatermarkStore) Set(_ context.Context, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.value = &date
	return nil
}

func (m *mockWatermarkStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = nil
	return nil
}

// mockSource serves fixed records.
type mockSource struct {
	records   []domain.SourceRecord
	searchErr error
	fetchErr  error
	queries   []driven.SourceQuery

	// block, when set, holds Search until it is closed.
	block chan struct{}
}

func (m *mockSource) Search(ctx context.Context, q driven.SourceQuery) ([]string, error) {
	m.queries = append(m.queries, q)
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	ids := make([]string, len(m.records))
	for i, r := range m.records {
		ids[i] = r.ID
	}
	return ids, nil
}

func (m *mockSource) FetchDetails(_ context.Context, _ []string) ([]domain.SourceRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.records, nil
}

// splitPipeline makes one chunk per sentence-ish piece split on "|".
type splitPipeline struct {
	err error
}

func (p *splitPipeline) Process(_ context.Context, record *domain.SourceRecord) ([]domain.Chunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	var chunks []domain.Chunk
	for i, part := range splitBar(record.Abstract) {
		c := domain.NewChunk(record.ID, i, part)
		c.DeltaG = -1
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func splitBar(s string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '|' {
			if i > start {
				parts = append(parts, s[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

// mockLocker simulates a cross-process lock.
type mockLocker struct {
	held     bool
	err      error
	released int
}

func (m *mockLocker) TryLock(_ context.Context) (func(context.Context) error, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.held {
		return nil, driven.ErrLockHeld
	}
	m.held = true
	return func(context.Context) error {
		m.held = false
		m.released++
		return nil
	}, nil
}

// mockPublisher records published reports.
type mockPublisher struct {
	reports []*domain.IngestReport
	err     error
}

func (m *mockPublisher) PublishIngest(_ context.Context, r *domain.IngestReport) error {
	m.reports = append(m.reports, r)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return m.pruneErr
}

func (m *mockSchedulerStore) history(taskID string) []domain.TaskResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.TaskResult(nil), m.results[taskID]...)
}

// Ensure mocks implement interfaces
var (
	_ driven.EmbeddingService      = (*mockEmbeddingService)(nil)
	_ driven.VectorIndex           = (*mockVectorIndex)(nil)
	_ driven.WatermarkStore        = (*mockWatermarkStore)(nil)
	_ driven.LiteratureSource      = (*mockSource)(nil)
	_ driven.PostProcessorPipeline = (*splitPipeline)(nil)
	_ driven.Locker                = (*mockLocker)(nil)
	_ driven.EventPublisher        = (*mockPublisher)(nil)
	_ driven.SchedulerStore        = (*mockSchedulerStore)(nil)
)

var errBoom = errors.New("boom")
