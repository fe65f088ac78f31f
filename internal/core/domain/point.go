package domain

import (
	"fmt"
	"strconv"
)

// Payload field names as stored in the vector index.
const (
	FieldPMID       = "pmid"
	FieldTitle      = "title"
	FieldURL        = "url"
	FieldSource     = "source"
	FieldChunk      = "chunk"
	FieldChunkIndex = "chunk_index"
	FieldDeltaG     = "delta_g"
	FieldModality   = "modality"
)

// SourcePubMed is the attribution written into every payload.
const SourcePubMed = "pubmed"

// Payload is the metadata stored alongside a point's vectors.
type Payload struct {
	PMID       string  `json:"pmid"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Source     string  `json:"source"`
	Chunk      string  `json:"chunk"`
	ChunkIndex int     `json:"chunk_index"`
	DeltaG     float64 `json:"delta_g"`

	// Modality is the primary ingested space. The modality a result was
	// matched in is SearchResult.Modality.
	Modality Modality `json:"modality"`
}

// ToMap flattens the payload for document-style stores.
func (p Payload) ToMap() map[string]any {
	return map[string]any{
		FieldPMID:       p.PMID,
		FieldTitle:      p.Title,
		FieldURL:        p.URL,
		FieldSource:     p.Source,
		FieldChunk:      p.Chunk,
		FieldChunkIndex: p.ChunkIndex,
		FieldDeltaG:     p.DeltaG,
		FieldModality:   string(p.Modality),
	}
}

// PayloadFromMap rebuilds a payload from a decoded JSON object.
// Missing or mistyped fields are left at their zero value.
func PayloadFromMap(m map[string]any) Payload {
	var p Payload
	p.PMID = stringField(m[FieldPMID])
	p.Title = stringField(m[FieldTitle])
	p.URL = stringField(m[FieldURL])
	p.Source = stringField(m[FieldSource])
	p.Chunk = stringField(m[FieldChunk])
	p.ChunkIndex = int(floatField(m[FieldChunkIndex]))
	p.DeltaG = floatField(m[FieldDeltaG])
	p.Modality = Modality(stringField(m[FieldModality]))
	return p
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func floatField(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// IngestedPoint is the persisted retrieval unit.
// Its ID is derived from (record ID, ordinal) so re-ingestion overwrites it.
type IngestedPoint struct {
	ID      string
	Vectors map[Modality][]float32
	Payload Payload
}

// Candidate is a raw hit returned by the vector index.
type Candidate struct {
	ID      string
	Score   float64
	Payload Payload

	// Vector is set only when the query asked for vectors.
	Vector []float32
}
