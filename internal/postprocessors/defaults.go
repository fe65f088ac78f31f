package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/postprocessors/attributes"
	"github.com/custodia-labs/bioorbit/internal/postprocessors/chunker"
)

// Chunking strategies accepted by the chunker builder.
const (
	StrategySemantic  = "semantic"
	StrategySentences = "sentences"
)

// DefaultProcessors is the processor order used for ingestion.
var DefaultProcessors = []string{"chunker", "attributes"}

// RegisterDefaults registers all built-in processors with the registry.
// sim backs the semantic chunking strategy and may be nil.
func RegisterDefaults(r *Registry, sim driven.Similarity) {
	r.Register("chunker", func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildChunker(cfg, sim)
	})
	r.Register("attributes", func(_ map[string]any) (driven.PostProcessor, error) {
		return attributes.New(), nil
	})
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_size (int): Maximum characters per passage (default: 512)
//   - min_size (int): Texts shorter than this are kept whole (default: 50)
//   - threshold (float): Similarity below which a passage breaks (default: 0.5)
//   - strategy (string): "semantic" or "sentences" (default: semantic)
func buildChunker(cfg map[string]any, sim driven.Similarity) (driven.PostProcessor, error) {
	var opts []chunker.Option

	strategy := StrategySemantic
	if cfg != nil {
		if size := getIntFromConfig(cfg, "max_size"); size > 0 {
			opts = append(opts, chunker.WithMaxSize(size))
		}
		if _, ok := cfg["min_size"]; ok {
			opts = append(opts, chunker.WithMinSize(getIntFromConfig(cfg, "min_size")))
		}
		if _, ok := cfg["threshold"]; ok {
			opts = append(opts, chunker.WithThreshold(getFloatFromConfig(cfg, "threshold")))
		}
		if s, ok := cfg["strategy"].(string); ok && s != "" {
			strategy = s
		}
	}

	switch strategy {
	case StrategySemantic:
		if sim != nil {
			opts = append(opts, chunker.WithSimilarity(sim))
		}
	case StrategySentences:
	default:
		return nil, fmt.Errorf("unknown chunking strategy: %s", strategy)
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig is getIntFromConfig for fractional settings.
func getFloatFromConfig(cfg map[string]any, key string) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
