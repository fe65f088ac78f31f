package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest", ingestCmd.Use)
	assert.Contains(t, ingestCmd.Aliases, "update-db")
}

func TestIngestCmd_PrintsReport(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: ingested")
	assert.Contains(t, out, "fetched 2, duplicates 0, skipped 0")
	assert.Contains(t, out, "upserted 4")
	assert.Contains(t, out, "watermark advanced to 2025/05/01")

	require.Len(t, testMocks.ingest.requests, 1)
	assert.Equal(t, domain.IngestRequest{}, testMocks.ingest.requests[0])
}

func TestIngestCmd_PassesOverrides(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ingest", "-q", "EGFR inhibitor", "--max-results", "5")

	require.NoError(t, err)
	require.Len(t, testMocks.ingest.requests, 1)
	assert.Equal(t, "EGFR inhibitor", testMocks.ingest.requests[0].Query)
	assert.Equal(t, 5, testMocks.ingest.requests[0].MaxResults)
}

func TestIngestCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ingest", "--json")

	require.NoError(t, err)
	var decoded domain.IngestReport
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, domain.IngestStatusIngested, decoded.Status)
	assert.Equal(t, 4, decoded.Counts.Upserted)
}

func TestIngestCmd_Failure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testMocks.ingest.report = &domain.IngestReport{Status: domain.IngestStatusFailed, Message: "upstream fetch failed"}
	testMocks.ingest.err = domain.ErrUpstreamFetch

	out, err := execute(t, "ingest")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamFetch)
	assert.Contains(t, out, "Status: failed")
}

func TestIngestCmd_NoNewRecords(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testMocks.ingest.report = &domain.IngestReport{Status: domain.IngestStatusNoNewRecords, Message: "no new records"}

	out, err := execute(t, "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: no_new_records")
	assert.NotContains(t, out, "watermark advanced")
}
