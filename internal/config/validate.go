package config

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// Validate reports every invalid field, wrapped in domain.ErrInvalidInput.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Source.MaxResults <= 0 {
		add("source.max_results must be positive, got %d", c.Source.MaxResults)
	}
	switch c.Embedding.Provider {
	case EmbedHashing, EmbedOpenAI, EmbedOllama, EmbedArk, EmbedDashscope:
	default:
		add("unknown embedding.provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		add("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	for name, m := range c.Embedding.Modalities {
		if _, err := domain.ParseModality(name); err != nil {
			add("embedding.modalities: %v", err)
		}
		switch m.Provider {
		case EmbedHashing, EmbedOpenAI, EmbedOllama, EmbedArk, EmbedDashscope:
		default:
			add("unknown embedding.modalities.%s.provider %q", name, m.Provider)
		}
	}
	if c.Chunker.Threshold < 0 || c.Chunker.Threshold > 1 {
		add("chunker.threshold must be in [0,1], got %g", c.Chunker.Threshold)
	}
	if c.Chunker.MaxSize <= 0 {
		add("chunker.max_size must be positive, got %d", c.Chunker.MaxSize)
	}
	if len(c.Ingest.Modalities) == 0 {
		add("ingest.modalities must not be empty")
	} else if _, err := c.IngestModalities(); err != nil {
		add("ingest.modalities: %v", err)
	}
	switch c.Index.Backend {
	case IndexMemory, IndexMilvus, IndexQdrant:
	default:
		add("unknown index.backend %q", c.Index.Backend)
	}
	switch c.State.Backend {
	case StateFile, StateSQLite, StateBolt, StateMemory:
	default:
		add("unknown state.backend %q", c.State.Backend)
	}
	if c.Retrieval.OverFetchFactor < 1 {
		add("retrieval.over_fetch_factor must be >= 1, got %d", c.Retrieval.OverFetchFactor)
	}
	if c.Retrieval.DiversityLambda < 0 || c.Retrieval.DiversityLambda > 1 {
		add("retrieval.diversity_lambda must be in [0,1], got %g", c.Retrieval.DiversityLambda)
	}
	if c.Retrieval.MaxLimit > 0 && c.Retrieval.DefaultLimit > c.Retrieval.MaxLimit {
		add("retrieval.default_limit %d exceeds max_limit %d", c.Retrieval.DefaultLimit, c.Retrieval.MaxLimit)
	}
	if c.Schedule.Enabled && c.Schedule.Interval.Duration <= 0 {
		add("schedule.interval must be positive when the schedule is enabled")
	}
	if c.Lock.RedisAddr != "" && c.Lock.TTL.Duration <= 0 {
		add("lock.ttl must be positive")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
}
