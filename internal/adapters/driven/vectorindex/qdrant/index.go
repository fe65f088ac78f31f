// Package qdrant implements driven.VectorIndex against the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// Defaults for the collection layout.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "Articles"
	DefaultTimeout    = 15 * time.Second

	hnswM           = 32
	hnswEfConstruct = 200
	scrollPageSize  = 256
)

var errNotFound = errors.New("not found")

// Config configures the Qdrant client.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// Index is a minimal REST client to one Qdrant collection.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

var _ driven.VectorIndex = (*Index)(nil)

// New creates a Qdrant index client. No request is made until EnsureSpaces.
func New(cfg Config) *Index {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors map[string]vectorParams `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureSpaces creates the collection with one named vector per space, plus
// payload indexes on delta_g and pmid. An existing collection must already
// hold every requested space with the same size.
func (x *Index) EnsureSpaces(ctx context.Context, spaces []driven.VectorSpace) error {
	var info collectionInfo
	err := x.do(ctx, http.MethodGet, x.collectionPath(""), nil, &info)
	switch {
	case err == nil:
		return checkSpaces(info.Result.Config.Params.Vectors, spaces)
	case !errors.Is(err, errNotFound):
		return err
	}

	vectors := make(map[string]vectorParams, len(spaces))
	for _, sp := range spaces {
		if sp.Dimensions <= 0 {
			return fmt.Errorf("space %q: dimensions must be positive", sp.Name)
		}
		vectors[sp.Name] = vectorParams{Size: sp.Dimensions, Distance: "Cosine"}
	}
	body := map[string]any{
		"vectors": vectors,
		"hnsw_config": map[string]any{
			"m":            hnswM,
			"ef_construct": hnswEfConstruct,
		},
	}
	if err := x.do(ctx, http.MethodPut, x.collectionPath(""), body, nil); err != nil {
		return fmt.Errorf("creating collection %s: %w", x.collection, err)
	}
	logger.Info("Created Qdrant collection %s with %d vector spaces", x.collection, len(spaces))

	for field, schema := range map[string]string{domain.FieldDeltaG: "float", domain.FieldPMID: "keyword"} {
		idx := map[string]any{"field_name": field, "field_schema": schema}
		if err := x.do(ctx, http.MethodPut, x.collectionPath("/index?wait=true"), idx, nil); err != nil {
			return fmt.Errorf("creating payload index %s: %w", field, err)
		}
	}
	return nil
}

func checkSpaces(existing map[string]vectorParams, spaces []driven.VectorSpace) error {
	for _, sp := range spaces {
		p, ok := existing[sp.Name]
		if !ok {
			return fmt.Errorf("collection has no vector space %q", sp.Name)
		}
		if p.Size != sp.Dimensions {
			return fmt.Errorf("vector space %q has size %d, want %d", sp.Name, p.Size, sp.Dimensions)
		}
	}
	return nil
}

type pointStruct struct {
	ID      string               `json:"id"`
	Vector  map[string][]float32 `json:"vector"`
	Payload map[string]any       `json:"payload"`
}

// Upsert writes all points in a single waited request.
func (x *Index) Upsert(ctx context.Context, points []domain.IngestedPoint) error {
	if len(points) == 0 {
		return nil
	}
	body := struct {
		Points []pointStruct `json:"points"`
	}{Points: make([]pointStruct, len(points))}

	for i, p := range points {
		vectors := make(map[string][]float32, len(p.Vectors))
		for m, v := range p.Vectors {
			vectors[string(m)] = v
		}
		body.Points[i] = pointStruct{ID: p.ID, Vector: vectors, Payload: p.Payload.ToMap()}
	}
	if err := x.do(ctx, http.MethodPut, x.collectionPath("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return nil
}

type scoredPoint struct {
	ID      any                        `json:"id"`
	Score   float64                    `json:"score"`
	Payload map[string]any             `json:"payload"`
	Vector  map[string]json.RawMessage `json:"vector"`
}

// Query runs a nearest-neighbour query against one named vector.
func (x *Index) Query(ctx context.Context, q driven.VectorQuery) ([]domain.Candidate, error) {
	body := map[string]any{
		"query":        q.Vector,
		"using":        q.Space,
		"limit":        q.Limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if q.WithVectors {
		body["with_vector"] = []string{q.Space}
	}
	if q.MaxAttribute != nil {
		body["filter"] = map[string]any{
			"must": []any{
				map[string]any{"key": domain.FieldDeltaG, "range": map[string]any{"lte": *q.MaxAttribute}},
			},
		}
	}

	var resp struct {
		Result struct {
			Points []scoredPoint `json:"points"`
		} `json:"result"`
	}
	if err := x.do(ctx, http.MethodPost, x.collectionPath("/points/query"), body, &resp); err != nil {
		return nil, fmt.Errorf("querying %s: %w", q.Space, err)
	}

	out := make([]domain.Candidate, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		c := domain.Candidate{
			ID:      fmt.Sprint(p.ID),
			Score:   p.Score,
			Payload: domain.PayloadFromMap(p.Payload),
		}
		if raw, ok := p.Vector[q.Space]; ok {
			if err := json.Unmarshal(raw, &c.Vector); err != nil {
				return nil, fmt.Errorf("decoding vector of %v: %w", p.ID, err)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// ListIdentifiers scrolls the whole collection, reading only field.
func (x *Index) ListIdentifiers(ctx context.Context, field string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	var offset any
	for {
		body := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": []string{field},
			"with_vector":  false,
		}
		if offset != nil {
			body["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := x.do(ctx, http.MethodPost, x.collectionPath("/points/scroll"), body, &resp); err != nil {
			return nil, fmt.Errorf("scrolling identifiers: %w", err)
		}
		for _, p := range resp.Result.Points {
			v, ok := p.Payload[field]
			if !ok || v == nil {
				continue
			}
			if s := payloadString(v); s != "" {
				ids[s] = struct{}{}
			}
		}
		if resp.Result.NextPageOffset == nil || len(resp.Result.Points) == 0 {
			return ids, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Close releases idle connections.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

func payloadString(v any) string {
	return domain.PayloadFromMap(map[string]any{domain.FieldPMID: v}).PMID
}

func (x *Index) collectionPath(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", x.url, x.collection, suffix)
}

func (x *Index) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
