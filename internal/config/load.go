package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// FileName is the default configuration file inside HomeDir.
const FileName = "config.toml"

// DefaultPath returns ~/.bioorbit/config.toml.
func DefaultPath() string {
	return filepath.Join(HomeDir(), FileName)
}

// Load reads path on top of the defaults, applies environment overrides and
// validates the result. An empty path means DefaultPath. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	loadDotEnv(filepath.Dir(path))

	cfg := Default()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeFile decodes path into cfg based on its extension.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, path, err)
		}
	case ".toml", "":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %q", domain.ErrInvalidInput, ext)
	}
	return nil
}

// loadDotEnv seeds the environment from .env in the working directory and
// in dir. Variables already set win.
func loadDotEnv(dir string) {
	candidates := []string{".env"}
	if dir != "" && dir != "." {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}
