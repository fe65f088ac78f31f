// Package file persists the ingestion watermark in a small TOML state file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// File names inside the state directory.
const (
	StateFile       = "state.toml"
	LegacyStateFile = "state.json"
)

// Ensure WatermarkStore implements the interface.
var _ driven.WatermarkStore = (*WatermarkStore)(nil)

type stateDoc struct {
	LastDate  string `toml:"last_date" json:"last_date"`
	UpdatedAt string `toml:"updated_at,omitempty" json:"-"`
}

// WatermarkStore keeps the watermark in <dir>/state.toml.
type WatermarkStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewWatermarkStore creates a store rooted at dir.
// If dir is empty, defaults to ~/.bioorbit.
func NewWatermarkStore(dir string) (*WatermarkStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".bioorbit")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &WatermarkStore{dir: dir, now: time.Now}, nil
}

// Path returns the state file path.
func (s *WatermarkStore) Path() string {
	return filepath.Join(s.dir, StateFile)
}

// Get reads state.toml, falling back to a legacy state.json.
func (s *WatermarkStore) Get(_ context.Context) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readTOML()
	if errors.Is(err, os.ErrNotExist) {
		doc, err = s.readLegacy()
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if doc.LastDate == "" {
		return nil, nil
	}

	t, err := domain.ParseWatermark(doc.LastDate)
	if err != nil {
		return nil, fmt.Errorf("decoding watermark: %w", err)
	}
	return &t, nil
}

// Set writes a temp file next to state.toml and renames it into place.
func (s *WatermarkStore) Set(_ context.Context, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(stateDoc{
		LastDate:  domain.FormatWatermark(date),
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return writeAtomic(s.Path(), data)
}

// Clear deletes both the state file and any legacy file.
func (s *WatermarkStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{StateFile, LegacyStateFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}

func (s *WatermarkStore) readTOML() (stateDoc, error) {
	var doc stateDoc
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return doc, err
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing %s: %w", StateFile, err)
	}
	return doc, nil
}

func (s *WatermarkStore) readLegacy() (stateDoc, error) {
	var doc stateDoc
	data, err := os.ReadFile(filepath.Join(s.dir, LegacyStateFile))
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing %s: %w", LegacyStateFile, err)
	}
	return doc, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
