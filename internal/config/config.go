// Package config holds the typed runtime configuration for bioorbit.
//
// Configuration is read from a TOML or YAML file, then overridden by
// environment variables (optionally seeded from a .env file). Every field
// has a default, so an empty file is a valid configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// Backend names.
const (
	IndexMemory = "memory"
	IndexMilvus = "milvus"
	IndexQdrant = "qdrant"

	StateFile   = "file"
	StateSQLite = "sqlite"
	StateBolt   = "bolt"
	StateMemory = "memory"

	EmbedHashing   = "hashing"
	EmbedOpenAI    = "openai"
	EmbedOllama    = "ollama"
	EmbedArk       = "ark"
	EmbedDashscope = "dashscope"
)

// Duration is a time.Duration that reads and writes "90s"-style strings in
// both TOML and YAML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// SourceConfig configures the PubMed connector and ingestion defaults.
type SourceConfig struct {
	Query      string   `toml:"query" yaml:"query"`
	MaxResults int      `toml:"max_results" yaml:"max_results"`
	Email      string   `toml:"email" yaml:"email"`
	APIKey     string   `toml:"api_key" yaml:"api_key"`
	Tool       string   `toml:"tool" yaml:"tool"`
	BaseURL    string   `toml:"base_url" yaml:"base_url"`
	Timeout    Duration `toml:"timeout" yaml:"timeout"`
}

// ModelConfig configures one embedding model.
type ModelConfig struct {
	Provider   string `toml:"provider" yaml:"provider"`
	Model      string `toml:"model" yaml:"model"`
	BaseURL    string `toml:"base_url" yaml:"base_url"`
	APIKey     string `toml:"api_key" yaml:"api_key"`
	MaxRetries int    `toml:"max_retries" yaml:"max_retries"`
}

// EmbeddingConfig configures the dispatcher. Text always uses the top-level
// model; Modalities may assign a different model to protein or molecule.
type EmbeddingConfig struct {
	Provider   string                 `toml:"provider" yaml:"provider"`
	Model      string                 `toml:"model" yaml:"model"`
	BaseURL    string                 `toml:"base_url" yaml:"base_url"`
	APIKey     string                 `toml:"api_key" yaml:"api_key"`
	MaxRetries int                    `toml:"max_retries" yaml:"max_retries"`
	Dimensions int                    `toml:"dimensions" yaml:"dimensions"`
	BatchSize  int                    `toml:"batch_size" yaml:"batch_size"`
	Modalities map[string]ModelConfig `toml:"modalities" yaml:"modalities"`
}

// Text returns the model settings for the text modality.
func (e EmbeddingConfig) Text() ModelConfig {
	return ModelConfig{
		Provider:   e.Provider,
		Model:      e.Model,
		BaseURL:    e.BaseURL,
		APIKey:     e.APIKey,
		MaxRetries: e.MaxRetries,
	}
}

// ChunkerConfig configures the chunking post-processor.
type ChunkerConfig struct {
	Strategy  string  `toml:"strategy" yaml:"strategy"`
	MaxSize   int     `toml:"max_size" yaml:"max_size"`
	MinSize   int     `toml:"min_size" yaml:"min_size"`
	Threshold float64 `toml:"threshold" yaml:"threshold"`
}

// IngestConfig configures what an ingestion run writes.
type IngestConfig struct {
	Modalities []string `toml:"modalities" yaml:"modalities"`
	Processors []string `toml:"processors" yaml:"processors"`
}

// MilvusConfig configures the Milvus backend.
type MilvusConfig struct {
	Address    string `toml:"address" yaml:"address"`
	Username   string `toml:"username" yaml:"username"`
	Password   string `toml:"password" yaml:"password"`
	DBName     string `toml:"db_name" yaml:"db_name"`
	Collection string `toml:"collection" yaml:"collection"`
}

// QdrantConfig configures the Qdrant backend.
type QdrantConfig struct {
	URL        string   `toml:"url" yaml:"url"`
	APIKey     string   `toml:"api_key" yaml:"api_key"`
	Collection string   `toml:"collection" yaml:"collection"`
	Timeout    Duration `toml:"timeout" yaml:"timeout"`
}

// IndexConfig selects the vector index.
type IndexConfig struct {
	Backend string       `toml:"backend" yaml:"backend"`
	Milvus  MilvusConfig `toml:"milvus" yaml:"milvus"`
	Qdrant  QdrantConfig `toml:"qdrant" yaml:"qdrant"`
}

// StateConfig selects the watermark store.
type StateConfig struct {
	Backend string `toml:"backend" yaml:"backend"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// RetrievalConfig holds search defaults. Hot-reloadable.
type RetrievalConfig struct {
	DefaultLimit    int     `toml:"default_limit" yaml:"default_limit"`
	MaxLimit        int     `toml:"max_limit" yaml:"max_limit"`
	OverFetchFactor int     `toml:"over_fetch_factor" yaml:"over_fetch_factor"`
	DiversityLambda float64 `toml:"diversity_lambda" yaml:"diversity_lambda"`
	FetchVectors    bool    `toml:"fetch_vectors" yaml:"fetch_vectors"`
}

// LockConfig configures the Redis ingestion lock. Empty RedisAddr disables it.
type LockConfig struct {
	RedisAddr     string   `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string   `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int      `toml:"redis_db" yaml:"redis_db"`
	Key           string   `toml:"key" yaml:"key"`
	TTL           Duration `toml:"ttl" yaml:"ttl"`
}

// EventsConfig configures Kafka events. No brokers disables them.
type EventsConfig struct {
	Brokers  []string `toml:"brokers" yaml:"brokers"`
	Topic    string   `toml:"topic" yaml:"topic"`
	ClientID string   `toml:"client_id" yaml:"client_id"`
}

// HTTPConfig configures `bioorbit serve`.
type HTTPConfig struct {
	Addr      string `toml:"addr" yaml:"addr"`
	JWTSecret string `toml:"jwt_secret" yaml:"jwt_secret"`
}

// ScheduleConfig configures periodic ingestion.
type ScheduleConfig struct {
	Enabled      bool     `toml:"enabled" yaml:"enabled"`
	Interval     Duration `toml:"interval" yaml:"interval"`
	Tick         Duration `toml:"tick" yaml:"tick"`
	HistoryLimit int      `toml:"history_limit" yaml:"history_limit"`
}

// LogConfig configures the optional rotating log file.
type LogConfig struct {
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
}

// Config is the root configuration.
type Config struct {
	Source    SourceConfig    `toml:"source" yaml:"source"`
	Embedding EmbeddingConfig `toml:"embedding" yaml:"embedding"`
	Chunker   ChunkerConfig   `toml:"chunker" yaml:"chunker"`
	Ingest    IngestConfig    `toml:"ingest" yaml:"ingest"`
	Index     IndexConfig     `toml:"index" yaml:"index"`
	State     StateConfig     `toml:"state" yaml:"state"`
	Retrieval RetrievalConfig `toml:"retrieval" yaml:"retrieval"`
	Lock      LockConfig      `toml:"lock" yaml:"lock"`
	Events    EventsConfig    `toml:"events" yaml:"events"`
	HTTP      HTTPConfig      `toml:"http" yaml:"http"`
	Schedule  ScheduleConfig  `toml:"schedule" yaml:"schedule"`
	Log       LogConfig       `toml:"log" yaml:"log"`
}

// HomeDir returns ~/.bioorbit, falling back to ./.bioorbit.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bioorbit"
	}
	return filepath.Join(home, ".bioorbit")
}

// Default returns the built-in configuration.
func Default() *Config {
	sched := domain.DefaultSchedulerConfig()
	return &Config{
		Source: SourceConfig{
			Query:      "protein ligand binding affinity",
			MaxResults: 20,
			Tool:       "bioorbit",
			Timeout:    Duration{30 * time.Second},
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbedHashing,
			Dimensions: domain.DefaultDimensions,
			BatchSize:  64,
		},
		Chunker: ChunkerConfig{
			Strategy:  "semantic",
			MaxSize:   512,
			MinSize:   50,
			Threshold: 0.5,
		},
		Ingest: IngestConfig{
			Modalities: []string{string(domain.ModalityText)},
			Processors: []string{"chunker", "attributes"},
		},
		Index: IndexConfig{
			Backend: IndexMemory,
			Milvus:  MilvusConfig{Address: "localhost:19530", Collection: "articles"},
			Qdrant:  QdrantConfig{URL: "http://localhost:6333", Collection: "Articles", Timeout: Duration{15 * time.Second}},
		},
		State: StateConfig{Backend: StateFile},
		Retrieval: RetrievalConfig{
			DefaultLimit:    domain.DefaultSearchLimit,
			MaxLimit:        domain.MaxSearchLimit,
			OverFetchFactor: domain.DefaultOverFetchFactor,
			DiversityLambda: domain.DefaultDiversityLambda,
			FetchVectors:    true,
		},
		Lock:   LockConfig{Key: "bioorbit:ingest:lock", TTL: Duration{30 * time.Minute}},
		Events: EventsConfig{Topic: "bioorbit.ingest"},
		HTTP:   HTTPConfig{Addr: ":8000"},
		Schedule: ScheduleConfig{
			Enabled:      sched.Enabled,
			Interval:     Duration{sched.IngestInterval},
			Tick:         Duration{sched.TickInterval},
			HistoryLimit: sched.HistoryLimit,
		},
		Log: LogConfig{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// DataDir returns the state directory, defaulting to ~/.bioorbit/data.
func (c *Config) DataDir() string {
	if c.State.Dir != "" {
		return c.State.Dir
	}
	return filepath.Join(HomeDir(), "data")
}

// SchedulerConfig converts the schedule section.
func (c *Config) SchedulerConfig() domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled:        c.Schedule.Enabled,
		IngestInterval: c.Schedule.Interval.Duration,
		TickInterval:   c.Schedule.Tick.Duration,
		HistoryLimit:   c.Schedule.HistoryLimit,
	}
}

// IngestModalities parses the configured ingestion modalities.
func (c *Config) IngestModalities() ([]domain.Modality, error) {
	out := make([]domain.Modality, 0, len(c.Ingest.Modalities))
	seen := make(map[domain.Modality]bool)
	for _, s := range c.Ingest.Modalities {
		m, err := domain.ParseModality(s)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}
