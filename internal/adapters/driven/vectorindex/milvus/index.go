// Package milvus implements driven.VectorIndex on Milvus using
// milvus-sdk-go. Each modality is a float vector field named vec_<modality>,
// and payload fields are stored as typed scalar columns.
package milvus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// Defaults for the collection.
const (
	DefaultAddress    = "localhost:19530"
	DefaultCollection = "articles"

	vectorPrefix  = "vec_"
	fieldID       = "id"
	queryPageSize = 1000
)

// varchar column limits.
var maxLengths = map[string]int{
	fieldID:              64,
	domain.FieldPMID:     32,
	domain.FieldTitle:    2048,
	domain.FieldURL:      256,
	domain.FieldSource:   32,
	domain.FieldChunk:    8192,
	domain.FieldModality: 32,
}

// scalarFields are returned with every hit.
var scalarFields = []string{
	domain.FieldPMID, domain.FieldTitle, domain.FieldURL, domain.FieldSource,
	domain.FieldChunk, domain.FieldChunkIndex, domain.FieldDeltaG, domain.FieldModality,
}

// Client is the subset of the Milvus client the index uses.
type Client interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	DescribeCollection(ctx context.Context, collName string) (*entity.Collection, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...mclient.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...mclient.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...mclient.LoadCollectionOption) error
	Upsert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string,
		vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int,
		sp entity.SearchParam, opts ...mclient.SearchQueryOptionFunc) ([]mclient.SearchResult, error)
	Query(ctx context.Context, collectionName string, partitionNames []string, expr string,
		outputFields []string, opts ...mclient.SearchQueryOptionFunc) (mclient.ResultSet, error)
	Close() error
}

// Config configures the Milvus connection.
type Config struct {
	Address    string
	Username   string
	Password   string
	DBName     string
	Collection string
}

// Index is a Milvus-backed vector index.
type Index struct {
	cli        Client
	collection string
	dims       map[string]int // vector field -> dimension
}

var _ driven.VectorIndex = (*Index)(nil)

// Dial connects to Milvus.
func Dial(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to milvus at %s: %w", cfg.Address, err)
	}
	return New(cli, cfg.Collection), nil
}

// New wraps an existing client.
func New(cli Client, collection string) *Index {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Index{cli: cli, collection: collection, dims: make(map[string]int)}
}

// VectorField returns the column name for a modality space.
func VectorField(space string) string {
	return vectorPrefix + space
}

// EnsureSpaces creates the collection and an AUTOINDEX (COSINE) per vector
// field when missing, then loads it. An existing collection must contain
// every requested space.
func (x *Index) EnsureSpaces(ctx context.Context, spaces []driven.VectorSpace) error {
	exists, err := x.cli.HasCollection(ctx, x.collection)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}

	if exists {
		if err := x.loadExisting(ctx, spaces); err != nil {
			return err
		}
	} else {
		if err := x.create(ctx, spaces); err != nil {
			return err
		}
	}

	if err := x.cli.LoadCollection(ctx, x.collection, false); err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}
	return nil
}

func (x *Index) loadExisting(ctx context.Context, spaces []driven.VectorSpace) error {
	coll, err := x.cli.DescribeCollection(ctx, x.collection)
	if err != nil {
		return fmt.Errorf("describing collection: %w", err)
	}
	found := make(map[string]int)
	if coll.Schema != nil {
		for _, f := range coll.Schema.Fields {
			if f.DataType != entity.FieldTypeFloatVector {
				continue
			}
			dim, _ := strconv.Atoi(f.TypeParams[entity.TypeParamDim])
			found[f.Name] = dim
		}
	}
	for _, sp := range spaces {
		name := VectorField(sp.Name)
		dim, ok := found[name]
		if !ok {
			return fmt.Errorf("collection %s has no vector field %s", x.collection, name)
		}
		if dim != sp.Dimensions {
			return fmt.Errorf("vector field %s has dimension %d, want %d", name, dim, sp.Dimensions)
		}
	}
	x.dims = found
	return nil
}

func (x *Index) create(ctx context.Context, spaces []driven.VectorSpace) error {
	schema := &entity.Schema{
		CollectionName: x.collection,
		Description:    "bioorbit literature passages",
		Fields: []*entity.Field{
			varchar(fieldID).WithIsPrimaryKey(true),
			varchar(domain.FieldPMID),
			varchar(domain.FieldTitle),
			varchar(domain.FieldURL),
			varchar(domain.FieldSource),
			varchar(domain.FieldChunk),
			entity.NewField().WithName(domain.FieldChunkIndex).WithDataType(entity.FieldTypeInt64),
			entity.NewField().WithName(domain.FieldDeltaG).WithDataType(entity.FieldTypeDouble),
			varchar(domain.FieldModality),
		},
	}
	dims := make(map[string]int, len(spaces))
	for _, sp := range spaces {
		if sp.Dimensions <= 0 {
			return fmt.Errorf("space %q: dimensions must be positive", sp.Name)
		}
		name := VectorField(sp.Name)
		schema.Fields = append(schema.Fields, entity.NewField().
			WithName(name).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(sp.Dimensions)))
		dims[name] = sp.Dimensions
	}

	if err := x.cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("creating collection %s: %w", x.collection, err)
	}

	for _, sp := range spaces {
		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			return fmt.Errorf("building index: %w", err)
		}
		if err := x.cli.CreateIndex(ctx, x.collection, VectorField(sp.Name), idx, false); err != nil {
			return fmt.Errorf("creating index on %s: %w", VectorField(sp.Name), err)
		}
	}
	x.dims = dims
	logger.Info("Created Milvus collection %s with %d vector fields", x.collection, len(spaces))
	return nil
}

func varchar(name string) *entity.Field {
	return entity.NewField().
		WithName(name).
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(int64(maxLengths[name]))
}

// Upsert writes all points as one columnar batch. Every point must carry a
// vector for every field of the collection.
func (x *Index) Upsert(ctx context.Context, points []domain.IngestedPoint) error {
	if len(points) == 0 {
		return nil
	}
	n := len(points)
	ids := make([]string, 0, n)
	pmids := make([]string, 0, n)
	titles := make([]string, 0, n)
	urls := make([]string, 0, n)
	sources := make([]string, 0, n)
	chunks := make([]string, 0, n)
	ordinals := make([]int64, 0, n)
	deltaGs := make([]float64, 0, n)
	modalities := make([]string, 0, n)
	vectors := make(map[string][][]float32, len(x.dims))

	for _, p := range points {
		if p.ID == "" {
			return fmt.Errorf("point has empty id")
		}
		for field, dim := range x.dims {
			v, ok := p.Vectors[domain.Modality(strings.TrimPrefix(field, vectorPrefix))]
			if !ok {
				return fmt.Errorf("point %s has no vector for %s", p.ID, field)
			}
			if len(v) != dim {
				return fmt.Errorf("point %s: %s has %d dimensions, want %d", p.ID, field, len(v), dim)
			}
			vectors[field] = append(vectors[field], v)
		}
		ids = append(ids, p.ID)
		pmids = append(pmids, p.Payload.PMID)
		titles = append(titles, truncate(p.Payload.Title, maxLengths[domain.FieldTitle]))
		urls = append(urls, p.Payload.URL)
		sources = append(sources, p.Payload.Source)
		chunks = append(chunks, truncate(p.Payload.Chunk, maxLengths[domain.FieldChunk]))
		ordinals = append(ordinals, int64(p.Payload.ChunkIndex))
		deltaGs = append(deltaGs, p.Payload.DeltaG)
		modalities = append(modalities, string(p.Payload.Modality))
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(domain.FieldPMID, pmids),
		entity.NewColumnVarChar(domain.FieldTitle, titles),
		entity.NewColumnVarChar(domain.FieldURL, urls),
		entity.NewColumnVarChar(domain.FieldSource, sources),
		entity.NewColumnVarChar(domain.FieldChunk, chunks),
		entity.NewColumnInt64(domain.FieldChunkIndex, ordinals),
		entity.NewColumnDouble(domain.FieldDeltaG, deltaGs),
		entity.NewColumnVarChar(domain.FieldModality, modalities),
	}
	for field, vs := range vectors {
		columns = append(columns, entity.NewColumnFloatVector(field, x.dims[field], vs))
	}

	if _, err := x.cli.Upsert(ctx, x.collection, "", columns...); err != nil {
		return fmt.Errorf("upserting %d points: %w", n, err)
	}
	return nil
}

// Query searches one vector field. MaxAttribute becomes a server-side
// boolean expression.
func (x *Index) Query(ctx context.Context, q driven.VectorQuery) ([]domain.Candidate, error) {
	field := VectorField(q.Space)
	if _, ok := x.dims[field]; !ok {
		return nil, fmt.Errorf("unknown space %q", q.Space)
	}

	expr := ""
	if q.MaxAttribute != nil {
		expr = fmt.Sprintf("%s <= %s", domain.FieldDeltaG, strconv.FormatFloat(*q.MaxAttribute, 'f', -1, 64))
	}
	output := append([]string(nil), scalarFields...)
	if q.WithVectors {
		output = append(output, field)
	}

	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, fmt.Errorf("building search params: %w", err)
	}

	res, err := x.cli.Search(ctx, x.collection, nil, expr, output,
		[]entity.Vector{entity.FloatVector(q.Vector)}, field, entity.COSINE, q.Limit, sp)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	if len(res) == 0 {
		return nil, nil
	}
	sr := res[0]
	if sr.Err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, sr.Err)
	}

	var vecCol *entity.ColumnFloatVector
	if q.WithVectors {
		vecCol, _ = sr.Fields.GetColumn(field).(*entity.ColumnFloatVector)
	}

	out := make([]domain.Candidate, 0, sr.ResultCount)
	for i := 0; i < sr.ResultCount; i++ {
		id, err := sr.IDs.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("reading id %d: %w", i, err)
		}
		c := domain.Candidate{
			ID:      id,
			Score:   float64(sr.Scores[i]),
			Payload: payloadAt(sr.Fields, i),
		}
		if vecCol != nil && i < len(vecCol.Data()) {
			c.Vector = vecCol.Data()[i]
		}
		out = append(out, c)
	}
	return out, nil
}

func payloadAt(cols mclient.ResultSet, i int) domain.Payload {
	str := func(name string) string {
		if c := cols.GetColumn(name); c != nil {
			s, _ := c.GetAsString(i)
			return s
		}
		return ""
	}
	var p domain.Payload
	p.PMID = str(domain.FieldPMID)
	p.Title = str(domain.FieldTitle)
	p.URL = str(domain.FieldURL)
	p.Source = str(domain.FieldSource)
	p.Chunk = str(domain.FieldChunk)
	p.Modality = domain.Modality(str(domain.FieldModality))
	if c := cols.GetColumn(domain.FieldChunkIndex); c != nil {
		v, _ := c.GetAsInt64(i)
		p.ChunkIndex = int(v)
	}
	if c := cols.GetColumn(domain.FieldDeltaG); c != nil {
		p.DeltaG, _ = c.GetAsDouble(i)
	}
	return p
}

// ListIdentifiers pages through the collection reading one scalar column.
// Pages are keyed on the primary key rather than an offset, so the walk is
// not bounded by the server's result window.
func (x *Index) ListIdentifiers(ctx context.Context, field string) (map[string]struct{}, error) {
	output := []string{fieldID}
	if field != fieldID {
		output = append(output, field)
	}

	ids := make(map[string]struct{})
	expr := fieldID + ` != ""`
	for {
		rs, err := x.cli.Query(ctx, x.collection, nil, expr, output, mclient.WithLimit(queryPageSize))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", field, err)
		}
		keys, vals := rs.GetColumn(fieldID), rs.GetColumn(field)
		if keys == nil || vals == nil || keys.Len() == 0 {
			return ids, nil
		}

		var last string
		for i := 0; i < keys.Len(); i++ {
			k, err := keys.GetAsString(i)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", fieldID, err)
			}
			last = max(last, k)
			v, err := vals.GetAsString(i)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", field, err)
			}
			if v != "" {
				ids[v] = struct{}{}
			}
		}
		if keys.Len() < queryPageSize {
			return ids, nil
		}
		expr = fmt.Sprintf("%s > %q", fieldID, last)
	}
}

// Close closes the client connection.
func (x *Index) Close() error {
	return x.cli.Close()
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
