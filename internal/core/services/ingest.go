package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driving"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestDefaults are used when a request leaves a field empty.
type IngestDefaults struct {
	Query      string
	MaxResults int
	Modalities []domain.Modality
}

// DefaultMaxResults bounds a run when neither the request nor config does.
const DefaultMaxResults = 20

// IngestionService runs incremental, duplicate-aware ingestion.
// At most one run is active per process; a Locker extends that across processes.
type IngestionService struct {
	source     driven.LiteratureSource
	state      *StateService
	pipeline   driven.PostProcessorPipeline
	dispatcher *Dispatcher
	index      driven.VectorIndex
	locker     driven.Locker
	events     driven.EventPublisher
	defaults   IngestDefaults
	clock      func() time.Time

	mu      sync.Mutex
	running bool
}

// IngestOption configures an IngestionService.
type IngestOption func(*IngestionService)

// WithLocker adds a cross-process lock.
func WithLocker(l driven.Locker) IngestOption {
	return func(s *IngestionService) { s.locker = l }
}

// WithEventPublisher announces completed runs.
func WithEventPublisher(p driven.EventPublisher) IngestOption {
	return func(s *IngestionService) { s.events = p }
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) IngestOption {
	return func(s *IngestionService) { s.clock = clock }
}

// WithIngestDefaults sets the query, batch size and modalities used when a
// request leaves them empty.
func WithIngestDefaults(d IngestDefaults) IngestOption {
	return func(s *IngestionService) {
		if d.Query != "" {
			s.defaults.Query = d.Query
		}
		if d.MaxResults > 0 {
			s.defaults.MaxResults = d.MaxResults
		}
		if len(d.Modalities) > 0 {
			s.defaults.Modalities = d.Modalities
		}
	}
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	source driven.LiteratureSource,
	state *StateService,
	pipeline driven.PostProcessorPipeline,
	dispatcher *Dispatcher,
	index driven.VectorIndex,
	opts ...IngestOption,
) *IngestionService {
	s := &IngestionService{
		source:     source,
		state:      state,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		index:      index,
		defaults: IngestDefaults{
			MaxResults: DefaultMaxResults,
			Modalities: []domain.Modality{domain.ModalityText},
		},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a run is active in this process.
func (s *IngestionService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *IngestionService) acquire(ctx context.Context) (func(), error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrIngestInProgress
	}
	s.running = true
	s.mu.Unlock()

	releaseLocal := func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}

	if s.locker == nil {
		return releaseLocal, nil
	}

	unlock, err := s.locker.TryLock(ctx)
	if err != nil {
		releaseLocal()
		if errors.Is(err, driven.ErrLockHeld) {
			return nil, domain.ErrIngestInProgress
		}
		return nil, fmt.Errorf("%w: acquire lock: %w", domain.ErrState, err)
	}
	return func() {
		// Release even if the run's context was cancelled.
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release ingestion lock: %v", err)
		}
		releaseLocal()
	}, nil
}

// Run executes one ingestion run. The returned report is never nil.
// The watermark advances only after every point has been upserted.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *IngestionService) Run(ctx context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	report := &domain.IngestReport{StartedAt: s.clock()}
	defer func() { report.Duration = s.clock().Sub(report.StartedAt) }()

	fail := func(err error) (*domain.IngestReport, error) {
		report.Status = domain.IngestStatusFailed
		report.Message = err.Error()
		logger.Error("Ingestion failed: %v", err)
		return report, err
	}

	// 1. Single-flight
	release, err := s.acquire(ctx)
	if err != nil {
		return fail(err)
	}
	defer release()

	logger.Section("Ingestion")

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = s.defaults.Query
	}
	if query == "" {
		return fail(fmt.Errorf("%w: ingestion query is required", domain.ErrInvalidInput))
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.defaults.MaxResults
	}

	// 2. Watermark and cutoff
	since, err := s.state.GetWatermark(ctx)
	if err != nil {
		return fail(err)
	}
	cutoff := domain.TruncateToDate(s.clock())
	if since != nil {
		logger.Info("Fetching %q from %s to %s", query, domain.FormatWatermark(*since), domain.FormatWatermark(cutoff))
	} else {
		logger.Info("Fetching %q up to %s (first run)", query, domain.FormatWatermark(cutoff))
	}

	// 3. Fetch
	ids, err := s.source.Search(ctx, driven.SourceQuery{
		Term:       query,
		MaxResults: maxResults,
		Since:      since,
		Until:      cutoff,
	})
	if err != nil {
		return fail(fmt.Errorf("%w: search: %w", domain.ErrUpstreamFetch, err))
	}
	var records []domain.SourceRecord
	if len(ids) > 0 {
		records, err = s.source.FetchDetails(ctx, ids)
		if err != nil {
			return fail(fmt.Errorf("%w: fetch details: %w", domain.ErrUpstreamFetch, err))
		}
	}
	report.Counts.Fetched = len(records)

	// 4. Nothing new
	if len(records) == 0 {
		report.Status = domain.IngestStatusNoNewRecords
		report.Message = "no new records since the last run"
		return report, nil
	}

	// 5. Reconcile
	known, err := s.state.ListIngestedIdentifiers(ctx)
	if err != nil {
		return fail(err)
	}
	fresh, dupes := Reconcile(records, known)
	report.Counts.Duplicates = dupes
	if len(fresh) == 0 {
		report.Status = domain.IngestStatusAllDuplicates
		report.Message = fmt.Sprintf("all %d fetched records are already indexed", len(records))
		return report, nil
	}

	// 6. Chunk
	var chunks []domain.Chunk
	owners := make(map[string]*domain.SourceRecord, len(fresh))
	for i := range fresh {
		record := &fresh[i]
		if !record.HasText() {
			report.Counts.SkippedEmpty++
			continue
		}
		cs, err := s.pipeline.Process(ctx, record)
		if err != nil {
			return fail(fmt.Errorf("process record %s: %w", record.ID, err))
		}
		if len(cs) == 0 {
			report.Counts.SkippedEmpty++
			continue
		}
		owners[record.ID] = record
		report.Counts.RecordsChunked++
		chunks = append(chunks, cs...)
	}
	report.Counts.Chunks = len(chunks)
	logger.Debug("Chunked %d records into %d passages", report.Counts.RecordsChunked, len(chunks))

	if len(chunks) > 0 {
		// 7. Embed, once per vector space
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		spaces := s.dispatcher.Spaces(s.defaults.Modalities)
		vectors := make(map[domain.Modality][][]float32, len(spaces))
		for _, m := range spaces {
			vecs, err := s.dispatcher.EmbedMany(ctx, texts, m)
			if err != nil {
				return fail(err)
			}
			vectors[m] = vecs
		}
		report.Counts.Embedded = len(chunks)

		// 8. Build points and upsert
		points := make([]domain.IngestedPoint, len(chunks))
		for i, c := range chunks {
			record := owners[c.RecordID]
			pv := make(map[domain.Modality][]float32, len(vectors))
			for m, vecs := range vectors {
				pv[m] = vecs[i]
			}
			points[i] = domain.IngestedPoint{
				ID:      PointID(c.RecordID, c.Ordinal),
				Vectors: pv,
				Payload: domain.Payload{
					PMID:       record.ID,
					Title:      record.Title,
					URL:        record.URL,
					Source:     domain.SourcePubMed,
					Chunk:      c.Text,
					ChunkIndex: c.Ordinal,
					DeltaG:     c.DeltaG,
					Modality:   spaces[0],
				},
			}
		}
		if err := s.index.Upsert(ctx, points); err != nil {
			return fail(fmt.Errorf("%w: upsert: %w", domain.ErrIndex, err))
		}
		report.Counts.Upserted = len(points)
	}

	// 9. Advance the watermark
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := s.state.SetWatermark(ctx, cutoff); err != nil {
		return fail(err)
	}
	report.Watermark = &cutoff
	report.Status = domain.IngestStatusIngested
	report.Message = fmt.Sprintf("ingested %d passages from %d records", report.Counts.Upserted, report.Counts.RecordsChunked)
	logger.Info("%s; watermark now %s", report.Message, domain.FormatWatermark(cutoff))

	// 10. Announce
	if s.events != nil {
		if err := s.events.PublishIngest(ctx, report); err != nil {
			logger.Warn("Failed to publish ingest event: %v", err)
		}
	}

	return report, nil
}
