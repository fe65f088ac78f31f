package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/config"
	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// mockSearchService records requests and returns fixed results.
type mockSearchService struct {
	requests []domain.SearchRequest
	results  []domain.SearchResult
	err      error
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	m.requests = append(m.requests, req)
	return m.results, m.err
}

type mockIngestService struct {
	requests []domain.IngestRequest
	report   *domain.IngestReport
	err      error
}

func (m *mockIngestService) Run(_ context.Context, req domain.IngestRequest) (*domain.IngestReport, error) {
	m.requests = append(m.requests, req)
	return m.report, m.err
}

func (m *mockIngestService) Running() bool { return false }

type mockWatermarkService struct {
	mark *time.Time
	err  error
}

func (m *mockWatermarkService) GetWatermark(context.Context) (*time.Time, error) {
	return m.mark, m.err
}

func (m *mockWatermarkService) SetWatermark(_ context.Context, t time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.mark = &t
	return nil
}

func (m *mockWatermarkService) ResetWatermark(context.Context) error {
	m.mark = nil
	return m.err
}

type mockScheduler struct {
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.started = true
	<-ctx.Done()
	return nil
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

// testMocks exposes the mocks installed by setupTestServices.
var testMocks struct {
	search    *mockSearchService
	ingest    *mockIngestService
	watermark *mockWatermarkService
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			ID:       "11111111-1111-1111-1111-111111111111",
			Score:    0.912,
			Modality: domain.ModalityText,
			Payload: domain.Payload{
				PMID:   "38000001",
				Title:  "Allosteric inhibition of ABL kinase",
				URL:    "https://pubmed.ncbi.nlm.nih.gov/38000001/",
				Chunk:  "Asciminib binds the myristoyl pocket with high affinity.",
				DeltaG: -11.2,
			},
		},
	}
}

// setupTestServices installs mock services and resets command flags.
// The returned func restores an empty service set.
func setupTestServices() func() {
	testMocks.search = &mockSearchService{results: sampleResults()}
	wm := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	testMocks.ingest = &mockIngestService{report: &domain.IngestReport{
		Status:    domain.IngestStatusIngested,
		Message:   "ingested 4 passages from 2 records",
		Counts:    domain.IngestCounts{Fetched: 2, RecordsChunked: 2, Chunks: 4, Embedded: 4, Upserted: 4},
		Watermark: &wm,
	}}
	testMocks.watermark = &mockWatermarkService{}

	SetServices(&Services{
		Config:    config.Default(),
		Search:    testMocks.search,
		Ingest:    testMocks.ingest,
		Watermark: testMocks.watermark,
		Scheduler: &mockScheduler{},
	})
	resetFlags()
	return func() {
		SetServices(nil)
		resetFlags()
	}
}

// resetFlags restores flag variables, which cobra keeps between executions.
func resetFlags() {
	searchModality = string(domain.ModalityText)
	searchLimit = 10
	searchMinDeltaG = 0
	searchLambda = -1
	searchJSON = false
	ingestQuery = ""
	ingestMaxResults = 0
	ingestJSON = false
	tokenSubject = "bioorbit"
	tokenTTL = 24 * time.Hour
	tokenSecret = ""
	cfgFile = ""
	searchCmd.Flags().Lookup("min-delta-g").Changed = false
	searchCmd.Flags().Lookup("lambda").Changed = false
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "bioorbit", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"search", "ingest", "serve", "mcp", "watermark", "config", "token", "tui", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestSetServices_NilClears(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	SetServices(nil)

	assert.Nil(t, searchService)
	assert.Nil(t, ingestService)
	assert.Nil(t, appConfig)
}

func TestEnsureServices_NoBootstrap(t *testing.T) {
	SetServices(nil)
	SetBootstrap(nil)

	err := ensureServices(context.Background())

	assert.ErrorIs(t, err, errNotBootstrapped)
}

func TestEnsureServices_Bootstrap(t *testing.T) {
	SetServices(nil)
	defer SetServices(nil)
	defer SetBootstrap(nil)

	cfgFile = filepath.Join(t.TempDir(), "config.toml")
	defer func() { cfgFile = "" }()

	var got *config.Config
	closed := false
	SetBootstrap(func(_ context.Context, cfg *config.Config) (*Services, error) {
		got = cfg
		return &Services{
			Search: &mockSearchService{},
			Close:  func() error { closed = true; return nil },
		}, nil
	})

	require.NoError(t, ensureServices(context.Background()))
	require.NotNil(t, got)
	assert.NotNil(t, searchService)
	assert.Same(t, got, appConfig)

	require.NoError(t, teardown(nil, nil))
	assert.True(t, closed)
	assert.Nil(t, closeServices)
}

func TestEnsureServices_BootstrapError(t *testing.T) {
	SetServices(nil)
	defer SetBootstrap(nil)
	cfgFile = filepath.Join(t.TempDir(), "config.toml")
	defer func() { cfgFile = "" }()

	SetBootstrap(func(context.Context, *config.Config) (*Services, error) {
		return nil, errors.New("index unreachable")
	})

	err := ensureServices(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unreachable")
}

func TestConfigPath(t *testing.T) {
	cfgFile = ""
	assert.Equal(t, config.DefaultPath(), configPath())

	cfgFile = "/tmp/other.toml"
	defer func() { cfgFile = "" }()
	assert.Equal(t, "/tmp/other.toml", configPath())
}
