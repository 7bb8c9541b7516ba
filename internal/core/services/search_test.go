package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func intPtr(v int) *int { return &v }

func TestSearchService_Search(t *testing.T) {
	index := newMockSearchIndex()
	svc := NewSearchService(index, "")

	resp, err := svc.Search(context.Background(), "  cloud  ", 0)

	require.NoError(t, err)
	assert.Equal(t, "cloud", resp.Query)
	assert.Equal(t, domain.DefaultSearchLimit, index.lastQuery.Limit)
	assert.Empty(t, index.lastQuery.Filters)

	_, err = svc.Search(context.Background(), "x", 5000)
	require.NoError(t, err)
	assert.Equal(t, 1000, index.lastQuery.Limit)
}

func TestSearchService_Unavailable(t *testing.T) {
	svc := NewSearchService(nil, "docs")

	_, err := svc.Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	_, err = svc.Advanced(context.Background(), domain.AdvancedSearchQuery{})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}

func TestSearchService_AdvancedDefaults(t *testing.T) {
	index := newMockSearchIndex()
	svc := NewSearchService(index, "docs")

	page, err := svc.Advanced(context.Background(), domain.AdvancedSearchQuery{Query: "bank"})

	require.NoError(t, err)
	req := index.lastQuery
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, 0, req.Offset)
	assert.Equal(t, []string{"updatedAt:desc"}, req.Sort)
	assert.Equal(t, []string{"filters.*"}, req.Facets)
	assert.Equal(t, domain.DefaultHighlightAttributes(), req.AttributesToHighlight)
	assert.Equal(t, []string{"Description", "description_text"}, req.AttributesToCrop)
	assert.Equal(t, 200, req.CropLength)

	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 20, page.Pagination.PageSize)
	assert.NotNil(t, page.Hits)
	assert.NotNil(t, page.Search.FacetDistribution)
}

func TestSearchService_AdvancedFiltersAndPaging(t *testing.T) {
	index := newMockSearchIndex()
	index.searchResp = &domain.SearchResponse{
		Hits:               []map[string]any{{"id": float64(1)}},
		EstimatedTotalHits: 45,
		Query:              "bank",
		ProcessingTimeMs:   3,
		FacetDistribution:  map[string]map[string]int64{"filters.Industry": {"Banking": 45}},
	}
	svc := NewSearchService(index, "docs")

	page, err := svc.Advanced(context.Background(), domain.AdvancedSearchQuery{
		Query:  "bank",
		Limit:  intPtr(10),
		Offset: intPtr(20),
		Filters: map[string]string{
			"Region":   "EMEA",
			"Industry": "Banking",
			"City":     "",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.FieldFilter{
		{Field: "filters.Industry", Value: "Banking"},
		{Field: "filters.Region", Value: "EMEA"},
	}, index.lastQuery.Filters)

	assert.Equal(t, 3, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.PageSize)
	assert.Equal(t, int64(45), page.Pagination.Total)
	assert.Equal(t, int64(3), page.Search.ProcessingTime)
	assert.Equal(t, int64(45), page.Search.FacetDistribution["filters.Industry"]["Banking"])
	assert.Len(t, page.Hits, 1)
}

func TestSearchService_AdvancedValidation(t *testing.T) {
	svc := NewSearchService(newMockSearchIndex(), "docs")
	ctx := context.Background()

	tests := []struct {
		name  string
		query domain.AdvancedSearchQuery
	}{
		{"zero limit", domain.AdvancedSearchQuery{Limit: intPtr(0)}},
		{"huge limit", domain.AdvancedSearchQuery{Limit: intPtr(1001)}},
		{"negative offset", domain.AdvancedSearchQuery{Offset: intPtr(-1)}},
		{"unknown filter", domain.AdvancedSearchQuery{Filters: map[string]string{"SF_Number": "SF001"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Advanced(ctx, tt.query)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSearchService_AdvancedEngineError(t *testing.T) {
	index := newMockSearchIndex()
	index.searchErr = errBoom
	svc := NewSearchService(index, "docs")

	_, err := svc.Advanced(context.Background(), domain.AdvancedSearchQuery{})
	assert.ErrorIs(t, err, errBoom)
}
