package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearch_Plain(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.resp = &domain.SearchResponse{
		Hits:               []map[string]any{{"SF_Number": "SF001", "Client_Name": "Acme", "Industry": "Banking"}},
		EstimatedTotalHits: 1,
	}

	out, err := run(t, "search", "--limit", "25", "acme")

	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, ts.search.plain)
	assert.Equal(t, 25, ts.search.lastLimit)
	assert.Nil(t, ts.search.lastQuery)
	assert.Contains(t, out, "[1] SF001 Acme")
	assert.Contains(t, out, "Industry: Banking")
}

func TestSearch_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearch_FiltersUseAdvanced(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.page = &domain.SearchPage{
		Hits:       []map[string]any{{"SF_Number": "SF002"}},
		Pagination: domain.Pagination{Page: 2, PageSize: 10, Total: 11},
	}

	out, err := run(t, "search", "bank", "-f", "Industry=Banking", "-f", "Region=EMEA",
		"--sort", "updatedAt:desc", "--offset", "10", "-n", "10")

	require.NoError(t, err)
	require.NotNil(t, ts.search.lastQuery)
	q := ts.search.lastQuery
	assert.Equal(t, "bank", q.Query)
	assert.Equal(t, map[string]string{"Industry": "Banking", "Region": "EMEA"}, q.Filters)
	assert.Equal(t, []string{"updatedAt:desc"}, q.Sort)
	assert.Equal(t, 10, *q.Offset)
	assert.Empty(t, ts.search.plain)
	assert.Contains(t, out, "[11] SF002")
	assert.Contains(t, out, "Page 2, 11 results total")
}

func TestParseFilterFlags(t *testing.T) {
	filters, err := parseFilterFlags([]string{"Industry=Banking", " Region =EMEA=x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Industry": "Banking", "Region": "EMEA=x"}, filters)

	_, err = parseFilterFlags([]string{"Industry"})
	assert.Error(t, err)

	filters, err = parseFilterFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, filters)
}
