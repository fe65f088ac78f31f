package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Contains(t, searchCmd.Long, "maximal marginal relevance")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_Flags(t *testing.T) {
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "10", limit.DefValue)

	modality := searchCmd.Flags().Lookup("modality")
	require.NotNil(t, modality)
	assert.Equal(t, "m", modality.Shorthand)
	assert.Equal(t, "text", modality.DefValue)

	assert.NotNil(t, searchCmd.Flags().Lookup("min-delta-g"))
	assert.NotNil(t, searchCmd.Flags().Lookup("lambda"))
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "ABL kinase")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Allosteric inhibition of ABL kinase (0.912)")
	assert.Contains(t, out, "PMID 38000001")
	assert.Contains(t, out, "ΔG -11.20 kcal/mol")
	assert.Contains(t, out, "myristoyl pocket")

	require.Len(t, testMocks.search.requests, 1)
	req := testMocks.search.requests[0]
	assert.Equal(t, "ABL kinase", req.Query)
	assert.Equal(t, domain.ModalityText, req.Modality)
	assert.Equal(t, 10, req.Limit)
	assert.Nil(t, req.MinAttribute)
	assert.Nil(t, req.DiversityLambda)
}

func TestSearchCmd_PassesFilters(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "-m", "molecule", "-n", "3", "--min-delta-g", "-8.5", "--lambda", "0.9", "CCO")

	require.NoError(t, err)
	require.Len(t, testMocks.search.requests, 1)
	req := testMocks.search.requests[0]
	assert.Equal(t, domain.ModalityMolecule, req.Modality)
	assert.Equal(t, 3, req.Limit)
	require.NotNil(t, req.MinAttribute)
	assert.Equal(t, -8.5, *req.MinAttribute)
	require.NotNil(t, req.DiversityLambda)
	assert.Equal(t, 0.9, *req.DiversityLambda)
}

func TestSearchCmd_UnknownModality(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "-m", "rna", "x")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, testMocks.search.requests)
}

func TestSearchCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "--json", "ABL")

	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testMocks.search.results = nil

	out, err := execute(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testMocks.search.err = errors.New("index offline")

	_, err := execute(t, "search", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed: index offline")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t c", 10))
	assert.Equal(t, "abcdefg...", snippet("abcdefghijklmnop", 10))
}
