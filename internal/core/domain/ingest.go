package domain

import "time"

// IngestStatus is the distinguished outcome of an ingestion run.
type IngestStatus string

// Ingestion outcomes.
const (
	IngestStatusIngested      IngestStatus = "ingested"
	IngestStatusNoNewRecords  IngestStatus = "no_new_records"
	IngestStatusAllDuplicates IngestStatus = "all_duplicates"
	IngestStatusFailed        IngestStatus = "failed"
)

// IngestRequest parameterises one ingestion run.
// Zero values fall back to configured defaults.
type IngestRequest struct {
	// Query is the literature search term.
	Query string `json:"query,omitempty"`

	// MaxResults bounds the number of identifiers fetched.
	MaxResults int `json:"max_results,omitempty"`
}

// IngestCounts reports what a run did, including partial progress.
type IngestCounts struct {
	Fetched        int `json:"fetched"`
	Duplicates     int `json:"duplicates"`
	SkippedEmpty   int `json:"skipped_empty"`
	RecordsChunked int `json:"records_chunked"`
	Chunks         int `json:"chunks"`
	Embedded       int `json:"embedded"`
	Upserted       int `json:"upserted"`
}

// IngestReport is the structured outcome of an ingestion run.
type IngestReport struct {
	Status  IngestStatus `json:"status"`
	Message string       `json:"message"`
	Counts  IngestCounts `json:"counts"`

	// Watermark is the cutoff persisted by this run, nil when it was not advanced.
	Watermark *time.Time `json:"watermark,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Advanced reports whether the run moved the watermark forward.
func (r *IngestReport) Advanced() bool {
	return r != nil && r.Watermark != nil
}
