package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SourceRecord is a literature record as returned by the upstream source.
// It is immutable once fetched.
type SourceRecord struct {
	// ID is the upstream identifier (a PubMed ID).
	ID string

	// Title is the article title.
	Title string

	// Abstract is the full text body used for chunking.
	Abstract string

	// URL is the canonical link to the record.
	URL string

	// PublishedAt is the entry date reported by the source, if known.
	PublishedAt time.Time

	// FetchedAt is when the record was retrieved.
	FetchedAt time.Time
}

// HasText reports whether the record carries a non-blank abstract.
func (r SourceRecord) HasText() bool {
	return strings.TrimSpace(r.Abstract) != ""
}

// Chunk is a bounded passage derived from a SourceRecord.
// Chunks are never persisted on their own; an IngestedPoint is their stored form.
type Chunk struct {
	// RecordID is the owning record's identifier.
	RecordID string

	// Ordinal is the zero-based position of the chunk within its record.
	Ordinal int

	// Text is the passage content.
	Text string

	// Length is the passage length in characters.
	Length int

	// DeltaG is the binding free energy proxy extracted from the text (kcal/mol).
	DeltaG float64

	// Metadata holds processor-specific annotations.
	Metadata map[string]any
}

// NewChunk builds a chunk and computes its character length.
func NewChunk(recordID string, ordinal int, text string) Chunk {
	return Chunk{
		RecordID: recordID,
		Ordinal:  ordinal,
		Text:     text,
		Length:   utf8.RuneCountInString(text),
	}
}
