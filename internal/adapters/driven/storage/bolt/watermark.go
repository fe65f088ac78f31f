// Package bolt stores the ingestion watermark in a bbolt database.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// DBFile is the bbolt file name inside the data directory.
const DBFile = "state.bolt"

var (
	bucketWatermarks = []byte("watermarks")
	keyIngest        = []byte("ingest")
)

// Ensure WatermarkStore implements the interface.
var _ driven.WatermarkStore = (*WatermarkStore)(nil)

// WatermarkStore keeps the watermark under the "ingest" key of the
// "watermarks" bucket.
type WatermarkStore struct {
	db *bbolt.DB
}

// NewWatermarkStore opens or creates <dataDir>/state.bolt.
func NewWatermarkStore(dataDir string) (*WatermarkStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, DBFile), 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketWatermarks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &WatermarkStore{db: db}, nil
}

// Get returns the stored watermark, or nil.
func (s *WatermarkStore) Get(_ context.Context) (*time.Time, error) {
	var raw string
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketWatermarks).Get(keyIngest); v != nil {
			raw = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading watermark: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	t, err := domain.ParseWatermark(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding watermark: %w", err)
	}
	return &t, nil
}

// Set replaces the watermark in one transaction.
func (s *WatermarkStore) Set(_ context.Context, date time.Time) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWatermarks).Put(keyIngest, []byte(domain.FormatWatermark(date)))
	})
	if err != nil {
		return fmt.Errorf("writing watermark: %w", err)
	}
	return nil
}

// Clear deletes the watermark key.
func (s *WatermarkStore) Clear(_ context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketWatermarks).Delete(keyIngest)
	})
	if err != nil {
		return fmt.Errorf("clearing watermark: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *WatermarkStore) Close() error {
	return s.db.Close()
}
