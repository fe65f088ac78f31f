// Package app assembles the core services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/bioorbit/internal/adapters/driven/ai"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/events/kafka"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/lock/redis"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/similarity"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/vectorindex/milvus"
	"github.com/custodia-labs/bioorbit/internal/adapters/driven/vectorindex/qdrant"
	"github.com/custodia-labs/bioorbit/internal/config"
	"github.com/custodia-labs/bioorbit/internal/connectors/pubmed"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/core/services"
	"github.com/custodia-labs/bioorbit/internal/logger"
	"github.com/custodia-labs/bioorbit/internal/postprocessors"
)

// App holds the wired services for one process.
type App struct {
	Config    *config.Config
	Search    *services.SearchService
	Ingest    *services.IngestionService
	State     *services.StateService
	Scheduler *services.Scheduler
	Index     driven.VectorIndex

	closers []func() error
}

// Option overrides a driven adapter. Used by tests and embedders of the app.
type Option func(*overrides)

type overrides struct {
	source driven.LiteratureSource
	index  driven.VectorIndex
	embed  driven.EmbeddingService
}

// WithSource replaces the PubMed client.
func WithSource(s driven.LiteratureSource) Option {
	return func(o *overrides) { o.source = s }
}

// WithIndex replaces the configured vector index.
func WithIndex(x driven.VectorIndex) Option {
	return func(o *overrides) { o.index = x }
}

// WithTextEmbedder replaces the configured text embedding model.
func WithTextEmbedder(e driven.EmbeddingService) Option {
	return func(o *overrides) { o.embed = e }
}

// New wires every service described by cfg. On error, anything already
// opened is closed.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *App, err error) {
	var o overrides
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if cfg.Log.File != "" {
		if err := logger.SetFile(logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		}); err != nil {
			return nil, err
		}
	}

	modalities, err := cfg.IngestModalities()
	if err != nil {
		return nil, err
	}

	dispatcher, textModel, err := a.buildDispatcher(ctx, cfg, o.embed)
	if err != nil {
		return nil, err
	}

	pipeline, err := buildPipeline(cfg, similarity.NewEmbedding(textModel))
	if err != nil {
		return nil, err
	}

	index := o.index
	if index == nil {
		index, err = openIndex(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, index.Close)
	}
	// Every modality is searchable, so declare the space each one routes to.
	names := dispatcher.Spaces(append(domain.AllModalities(), modalities...))
	spaces := make([]driven.VectorSpace, len(names))
	for i, m := range names {
		spaces[i] = driven.VectorSpace{Name: string(m), Dimensions: dispatcher.Dimensions(m), Metric: driven.MetricCosine}
	}
	if err := index.EnsureSpaces(ctx, spaces); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndex, err)
	}
	a.Index = index

	watermarks, schedStore, err := a.openState(cfg)
	if err != nil {
		return nil, err
	}
	a.State = services.NewStateService(watermarks, index)

	ingestOpts := []services.IngestOption{
		services.WithIngestDefaults(services.IngestDefaults{
			Query:      cfg.Source.Query,
			MaxResults: cfg.Source.MaxResults,
			Modalities: modalities,
		}),
	}
	if cfg.Lock.RedisAddr != "" {
		locker, err := redis.Dial(ctx, redis.Config{
			Addr:     cfg.Lock.RedisAddr,
			Password: cfg.Lock.RedisPassword,
			DB:       cfg.Lock.RedisDB,
			Key:      cfg.Lock.Key,
			TTL:      cfg.Lock.TTL.Duration,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, locker.Close)
		ingestOpts = append(ingestOpts, services.WithLocker(locker))
	}
	if len(cfg.Events.Brokers) > 0 {
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers:  cfg.Events.Brokers,
			Topic:    cfg.Events.Topic,
			ClientID: cfg.Events.ClientID,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		ingestOpts = append(ingestOpts, services.WithEventPublisher(pub))
	}

	source := o.source
	if source == nil {
		source = pubmed.New(pubmed.Config{
			BaseURL: cfg.Source.BaseURL,
			Tool:    cfg.Source.Tool,
			Email:   cfg.Source.Email,
			APIKey:  cfg.Source.APIKey,
			Timeout: cfg.Source.Timeout.Duration,
		})
	}

	a.Ingest = services.NewIngestionService(source, a.State, pipeline, dispatcher, index, ingestOpts...)
	a.Search = services.NewSearchService(dispatcher, index, RetrievalSettings(cfg))
	a.Scheduler = services.NewScheduler(cfg.SchedulerConfig(), schedStore, a.Ingest)

	logger.Debug("App wired: index=%s state=%s modalities=%v", cfg.Index.Backend, cfg.State.Backend, modalities)
	return a, nil
}

// RetrievalSettings converts the hot-reloadable retrieval section.
func RetrievalSettings(cfg *config.Config) services.RetrievalSettings {
	return services.RetrievalSettings{
		DefaultLimit:    cfg.Retrieval.DefaultLimit,
		MaxLimit:        cfg.Retrieval.MaxLimit,
		OverFetchFactor: cfg.Retrieval.OverFetchFactor,
		DiversityLambda: cfg.Retrieval.DiversityLambda,
		FetchVectors:    cfg.Retrieval.FetchVectors,
	}
}

// Close releases every adapter in reverse open order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildDispatcher(
	ctx context.Context, cfg *config.Config, text driven.EmbeddingService,
) (*services.Dispatcher, driven.EmbeddingService, error) {
	if text == nil {
		svc, err := ai.CreateEmbeddingService(ctx, settingsFor(cfg.Embedding.Text(), cfg.Embedding.Dimensions))
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, svc.Close)
		text = svc
	}

	opts := []services.DispatcherOption{services.WithBatchSize(cfg.Embedding.BatchSize)}
	for name, mc := range cfg.Embedding.Modalities {
		m, err := domain.ParseModality(name)
		if err != nil {
			return nil, nil, err
		}
		if m == domain.ModalityText {
			continue
		}
		svc, err := ai.CreateEmbeddingService(ctx, settingsFor(mc, cfg.Embedding.Dimensions))
		if err != nil {
			return nil, nil, fmt.Errorf("%s model: %w", m, err)
		}
		a.closers = append(a.closers, svc.Close)
		opts = append(opts, services.WithModalityModel(m, svc))
	}
	return services.NewDispatcher(text, opts...), text, nil
}

func settingsFor(mc config.ModelConfig, dims int) ai.EmbeddingSettings {
	return ai.EmbeddingSettings{
		Provider:   mc.Provider,
		Model:      mc.Model,
		BaseURL:    mc.BaseURL,
		APIKey:     mc.APIKey,
		Dimensions: dims,
		MaxRetries: mc.MaxRetries,
	}
}

func buildPipeline(cfg *config.Config, sim driven.Similarity) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, sim)

	names := cfg.Ingest.Processors
	if len(names) == 0 {
		names = postprocessors.DefaultProcessors
	}
	return registry.BuildPipeline(names, map[string]map[string]any{
		"chunker": {
			"strategy":  cfg.Chunker.Strategy,
			"max_size":  cfg.Chunker.MaxSize,
			"min_size":  cfg.Chunker.MinSize,
			"threshold": cfg.Chunker.Threshold,
		},
	})
}

func openIndex(ctx context.Context, cfg *config.Config) (driven.VectorIndex, error) {
	switch cfg.Index.Backend {
	case config.IndexMemory, "":
		return memory.NewVectorIndex(), nil
	case config.IndexMilvus:
		m := cfg.Index.Milvus
		return milvus.Dial(ctx, milvus.Config{
			Address:    m.Address,
			Username:   m.Username,
			Password:   m.Password,
			DBName:     m.DBName,
			Collection: m.Collection,
		})
	case config.IndexQdrant:
		q := cfg.Index.Qdrant
		return qdrant.New(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    q.Timeout.Duration,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown index backend: %s", domain.ErrInvalidInput, cfg.Index.Backend)
	}
}

// openState returns the watermark store and the scheduler store. Only the
// sqlite backend persists scheduler history.
func (a *App) openState(cfg *config.Config) (driven.WatermarkStore, driven.SchedulerStore, error) {
	dir := cfg.DataDir()
	switch cfg.State.Backend {
	case config.StateFile, "":
		ws, err := file.NewWatermarkStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return ws, memory.NewSchedulerStore(), nil
	case config.StateBolt:
		ws, err := bolt.NewWatermarkStore(dir)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, ws.Close)
		return ws, memory.NewSchedulerStore(), nil
	case config.StateSQLite:
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store.Close)
		logger.Debug("State database: %s", filepath.Clean(store.Path()))
		return store.WatermarkStore(), store.SchedulerStore(), nil
	case config.StateMemory:
		return memory.NewWatermarkStore(), memory.NewSchedulerStore(), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown state backend: %s", domain.ErrInvalidInput, cfg.State.Backend)
	}
}
