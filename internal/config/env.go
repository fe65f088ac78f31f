package config

import (
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every override variable.
const EnvPrefix = "BIOORBIT_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from the environment. Unparseable numbers are
// ignored so a typo never hides the file value behind a zero.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	integer := func(dst *int, key string) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	float := func(dst *float64, key string) {
		if v, ok := lookup(key); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				*dst = f
			}
		}
	}
	boolean := func(dst *bool, key string) {
		if v, ok := lookup(key); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}
	duration := func(dst *Duration, key string) {
		if v, ok := lookup(key); ok {
			if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
				dst.Duration = d
			}
		}
	}
	list := func(dst *[]string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			var out []string
			for _, part := range strings.Split(v, ",") {
				if p := strings.TrimSpace(part); p != "" {
					out = append(out, p)
				}
			}
			*dst = out
		}
	}

	str(&cfg.Source.Query, EnvPrefix+"QUERY")
	integer(&cfg.Source.MaxResults, EnvPrefix+"MAX_RESULTS")
	str(&cfg.Source.Email, EnvPrefix+"NCBI_EMAIL", "NCBI_EMAIL")
	str(&cfg.Source.APIKey, EnvPrefix+"NCBI_API_KEY", "NCBI_API_KEY")

	str(&cfg.Embedding.Provider, EnvPrefix+"EMBEDDING_PROVIDER")
	str(&cfg.Embedding.Model, EnvPrefix+"EMBEDDING_MODEL")
	str(&cfg.Embedding.BaseURL, EnvPrefix+"EMBEDDING_BASE_URL")
	str(&cfg.Embedding.APIKey, EnvPrefix+"EMBEDDING_API_KEY", "OPENAI_API_KEY")
	integer(&cfg.Embedding.Dimensions, EnvPrefix+"EMBEDDING_DIMENSIONS")

	float(&cfg.Chunker.Threshold, EnvPrefix+"CHUNK_THRESHOLD")
	integer(&cfg.Chunker.MaxSize, EnvPrefix+"CHUNK_MAX_SIZE")
	list(&cfg.Ingest.Modalities, EnvPrefix+"MODALITIES")

	str(&cfg.Index.Backend, EnvPrefix+"INDEX_BACKEND")
	str(&cfg.Index.Milvus.Address, EnvPrefix+"MILVUS_ADDRESS")
	str(&cfg.Index.Milvus.Username, EnvPrefix+"MILVUS_USERNAME")
	str(&cfg.Index.Milvus.Password, EnvPrefix+"MILVUS_PASSWORD")
	str(&cfg.Index.Qdrant.URL, EnvPrefix+"QDRANT_URL")
	str(&cfg.Index.Qdrant.APIKey, EnvPrefix+"QDRANT_API_KEY")

	str(&cfg.State.Backend, EnvPrefix+"STATE_BACKEND")
	str(&cfg.State.Dir, EnvPrefix+"STATE_DIR")

	integer(&cfg.Retrieval.DefaultLimit, EnvPrefix+"SEARCH_LIMIT")
	float(&cfg.Retrieval.DiversityLambda, EnvPrefix+"DIVERSITY_LAMBDA")

	str(&cfg.Lock.RedisAddr, EnvPrefix+"REDIS_ADDR")
	str(&cfg.Lock.RedisPassword, EnvPrefix+"REDIS_PASSWORD")
	duration(&cfg.Lock.TTL, EnvPrefix+"LOCK_TTL")

	list(&cfg.Events.Brokers, EnvPrefix+"KAFKA_BROKERS")
	str(&cfg.Events.Topic, EnvPrefix+"KAFKA_TOPIC")

	str(&cfg.HTTP.Addr, EnvPrefix+"HTTP_ADDR")
	str(&cfg.HTTP.JWTSecret, EnvPrefix+"JWT_SECRET")

	boolean(&cfg.Schedule.Enabled, EnvPrefix+"SCHEDULE")
	duration(&cfg.Schedule.Interval, EnvPrefix+"SCHEDULE_INTERVAL")

	str(&cfg.Log.File, EnvPrefix+"LOG_FILE")
}
