package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// maxSearchLimit caps the page size a caller may request.
const maxSearchLimit = 1000

// SearchService runs queries against the document index.
type SearchService struct {
	index     driven.SearchIndex
	indexName string
}

// NewSearchService creates a new search service.
func NewSearchService(index driven.SearchIndex, indexName string) *SearchService {
	if indexName == "" {
		indexName = domain.DefaultIndexName
	}
	return &SearchService{index: index, indexName: indexName}
}

// Search runs a plain query. A non-positive limit takes the default.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*domain.SearchResponse, error) {
	if s.index == nil {
		return nil, domain.ErrSearchUnavailable
	}
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	logger.Debug("search %q limit %d", query, limit)

	resp, err := s.index.Search(ctx, s.indexName, domain.SearchRequest{
		Query: strings.TrimSpace(query),
		Limit: min(limit, maxSearchLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resp, nil
}

// Advanced runs a faceted query. Filter keys must name fields of the filters
// namespace; empty filter values are skipped. Defaults are applied for
// limit, offset, sort, facets, highlighting and cropping.
func (s *SearchService) Advanced(ctx context.Context, q domain.AdvancedSearchQuery) (*domain.SearchPage, error) {
	if s.index == nil {
		return nil, domain.ErrSearchUnavailable
	}
	logger.Section("Advanced Search")

	req, err := buildAdvancedRequest(q)
	if err != nil {
		return nil, err
	}

	resp, err := s.index.Search(ctx, s.indexName, req)
	if err != nil {
		return nil, fmt.Errorf("advanced search: %w", err)
	}

	facets := resp.FacetDistribution
	if facets == nil {
		facets = map[string]map[string]int64{}
	}
	hits := resp.Hits
	if hits == nil {
		hits = []map[string]any{}
	}

	return &domain.SearchPage{
		Hits: hits,
		Pagination: domain.Pagination{
			Page:     req.Offset/req.Limit + 1,
			PageSize: req.Limit,
			Total:    resp.EstimatedTotalHits,
		},
		Search: domain.SearchMeta{
			Query:             resp.Query,
			ProcessingTime:    resp.ProcessingTimeMs,
			FacetDistribution: facets,
		},
	}, nil
}

func buildAdvancedRequest(q domain.AdvancedSearchQuery) (domain.SearchRequest, error) {
	limit := domain.DefaultSearchLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit < 1 || limit > maxSearchLimit {
		return domain.SearchRequest{}, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidInput, maxSearchLimit)
	}
	offset := 0
	if q.Offset != nil {
		offset = *q.Offset
	}
	if offset < 0 {
		return domain.SearchRequest{}, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidInput)
	}

	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	filters := make([]domain.FieldFilter, 0, len(keys))
	for _, key := range keys {
		if !domain.IsFilterField(key) {
			return domain.SearchRequest{}, fmt.Errorf("%w: unknown filter %q", domain.ErrInvalidInput, key)
		}
		value := q.Filters[key]
		if value == "" {
			continue
		}
		filters = append(filters, domain.FieldFilter{
			Field: domain.FiltersNamespace + "." + key,
			Value: value,
		})
	}

	sort := q.Sort
	if len(sort) == 0 {
		sort = domain.DefaultSearchSort()
	}
	facets := q.Facets
	if len(facets) == 0 {
		facets = domain.DefaultSearchFacets()
	}

	return domain.SearchRequest{
		Query:                 strings.TrimSpace(q.Query),
		Limit:                 limit,
		Offset:                offset,
		Filters:               filters,
		Sort:                  sort,
		Facets:                facets,
		AttributesToHighlight: domain.DefaultHighlightAttributes(),
		AttributesToCrop:      domain.DefaultCropAttributes(),
		CropLength:            domain.DefaultSearchCropLength,
	}, nil
}
