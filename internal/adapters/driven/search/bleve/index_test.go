package bleve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix := New("")
	t.Cleanup(func() { _ = ix.Close() })
	require.NoError(t, ix.EnsureIndex(context.Background(), "docs", "id"))
	return ix
}

func strPtr(s string) *string { return &s }

func testDocs() []domain.SearchDocument {
	return []domain.SearchDocument{
		{
			ID: 1, SFNumber: "SF001", ClientName: "Acme Corp", Industry: "Banking",
			UpdatedAt:      strPtr("2024-01-01T00:00:00.000Z"),
			HasAttachments: true,
			Filters:        domain.SearchFilters{Industry: "Banking", Region: "EMEA", HasAttachments: true},
		},
		{
			ID: 2, SFNumber: "SF002", ClientName: "Globex", Industry: "Retail",
			UpdatedAt: strPtr("2024-03-01T00:00:00.000Z"),
			Filters:   domain.SearchFilters{Industry: "Retail", Region: "EMEA"},
		},
		{
			ID: 3, SFNumber: "SF003", ClientName: "Acme Retail", Industry: "Retail",
			UpdatedAt: strPtr("2024-02-01T00:00:00.000Z"),
			Filters:   domain.SearchFilters{Industry: "Retail", Region: "APAC"},
		},
	}
}

func seed(t *testing.T, ix *Index) {
	t.Helper()
	task, err := ix.AddDocuments(context.Background(), "docs", testDocs())
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusSucceeded, task.Status)
}

func hitIDs(resp *domain.SearchResponse) []float64 {
	ids := make([]float64, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		ids = append(ids, h["id"].(float64))
	}
	return ids
}

func TestAddDocuments_StatsAndFieldDistribution(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	stats, err := ix.Stats(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.NumberOfDocuments)
	assert.False(t, stats.IsIndexing)
	assert.Equal(t, int64(3), stats.FieldDistribution["SF_Number"])
}

func TestAddDocuments_ReplacesByID(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	_, err := ix.AddDocuments(context.Background(), "docs", []domain.SearchDocument{
		{ID: 1, SFNumber: "SF001", ClientName: "Initech"},
	})
	require.NoError(t, err)

	stats, err := ix.Stats(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.NumberOfDocuments)

	resp, err := ix.Search(context.Background(), "docs", domain.SearchRequest{Query: "initech"})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "Initech", resp.Hits[0]["Client_Name"])
}

func TestSearch_MatchAllSortedByUpdatedAt(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	resp, err := ix.Search(context.Background(), "docs", domain.SearchRequest{
		Limit: 10,
		Sort:  []string{"updatedAt:desc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.EstimatedTotalHits)
	assert.Equal(t, []float64{2, 3, 1}, hitIDs(resp))
}

func TestSearch_TextAndFilter(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	resp, err := ix.Search(context.Background(), "docs", domain.SearchRequest{
		Query:   "acme",
		Filters: []domain.FieldFilter{{Field: "filters.Industry", Value: "Retail"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, hitIDs(resp))
	assert.Equal(t, "acme", resp.Query)
}

func TestSearch_BooleanFilter(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	resp, err := ix.Search(context.Background(), "docs", domain.SearchRequest{
		Filters: []domain.FieldFilter{{Field: "filters.has_attachments", Value: "true"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, hitIDs(resp))
	// Hits keep the original JSON types.
	assert.Equal(t, true, resp.Hits[0]["has_attachments"])
}

func TestSearch_Facets(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	resp, err := ix.Search(context.Background(), "docs", domain.SearchRequest{
		Facets: []string{"filters.*"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.FacetDistribution["filters.Industry"]["Retail"])
	assert.Equal(t, int64(1), resp.FacetDistribution["filters.Region"]["APAC"])
	assert.Equal(t, int64(2), resp.FacetDistribution["filters.has_attachments"]["false"])
}

func TestSearch_Pagination(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	resp, err := ix.Search(context.Background(), "docs", domain.SearchRequest{
		Limit: 1, Offset: 1, Sort: []string{"updatedAt:asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.EstimatedTotalHits)
	assert.Equal(t, []float64{3}, hitIDs(resp))
}

func TestDeleteDocument(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)

	_, err := ix.DeleteDocument(context.Background(), "docs", "2")
	require.NoError(t, err)
	_, err = ix.DeleteDocument(context.Background(), "docs", "99")
	require.NoError(t, err)

	stats, err := ix.Stats(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.NumberOfDocuments)
}

func TestDeleteAllDocuments_KeepsSettings(t *testing.T) {
	ix := newTestIndex(t)
	seed(t, ix)
	_, err := ix.UpdateSettings(context.Background(), "docs", domain.IndexSettings{
		DisplayedAttributes: []string{"*"},
	})
	require.NoError(t, err)

	_, err = ix.DeleteAllDocuments(context.Background(), "docs")
	require.NoError(t, err)

	stats, err := ix.Stats(context.Background(), "docs")
	require.NoError(t, err)
	assert.Zero(t, stats.NumberOfDocuments)

	settings, err := ix.Settings(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, settings.DisplayedAttributes)
}

func TestUpdateSettings_MergesNonNil(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	_, err := ix.UpdateSettings(ctx, "docs", domain.IndexSettings{
		SearchableAttributes: []string{"SF_Number"},
		SortableAttributes:   []string{"updatedAt"},
	})
	require.NoError(t, err)
	_, err = ix.UpdateSettings(ctx, "docs", domain.IndexSettings{
		SearchableAttributes: []string{"Client_Name"},
	})
	require.NoError(t, err)

	s, err := ix.Settings(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"Client_Name"}, s.SearchableAttributes)
	assert.Equal(t, []string{"updatedAt"}, s.SortableAttributes)
}

func TestWaitForTask(t *testing.T) {
	ix := newTestIndex(t)
	task, err := ix.AddDocuments(context.Background(), "docs", testDocs())
	require.NoError(t, err)

	got, err := ix.WaitForTask(context.Background(), task.UID, 0)
	require.NoError(t, err)
	assert.True(t, got.IsFinished())

	_, err = ix.WaitForTask(context.Background(), 999, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOnDisk_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ix := New(dir)
	_, err := ix.AddDocuments(ctx, "docs", testDocs())
	require.NoError(t, err)
	require.NoError(t, ix.Close())

	reopened := New(dir)
	defer reopened.Close()
	stats, err := reopened.Stats(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.NumberOfDocuments)
}

func TestClosed(t *testing.T) {
	ix := New("")
	require.NoError(t, ix.Close())

	assert.ErrorIs(t, ix.Health(context.Background()), ErrClosed)
	assert.ErrorIs(t, ix.EnsureIndex(context.Background(), "docs", "id"), ErrClosed)
	assert.NoError(t, ix.Close())
}

func TestInvalidName(t *testing.T) {
	ix := New("")
	defer ix.Close()
	assert.ErrorIs(t, ix.EnsureIndex(context.Background(), "../x", "id"), domain.ErrInvalidInput)
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, []string{"-updatedAt", "SF_Number", "Client_Name"},
		sortOrder([]string{"updatedAt:desc", "SF_Number:asc", "Client_Name", ":desc"}))
}
