package domain

// FieldFilter is an equality constraint on a document attribute.
type FieldFilter struct {
	Field string
	Value string
}

// SearchRequest is an engine-neutral search query.
type SearchRequest struct {
	// Query is the free-text query; empty matches everything.
	Query string

	Limit  int
	Offset int

	// Filters are combined with AND.
	Filters []FieldFilter

	// Sort entries have the form "attribute:asc" or "attribute:desc".
	Sort []string

	// Facets lists attributes to compute value distributions for.
	// A trailing ".*" expands to every field under that prefix.
	Facets []string

	AttributesToHighlight []string
	AttributesToCrop      []string
	CropLength            int
}

// SearchResponse is an engine-neutral search result page.
type SearchResponse struct {
	Hits               []map[string]any            `json:"hits"`
	EstimatedTotalHits int64                       `json:"estimatedTotalHits"`
	Query              string                      `json:"query"`
	ProcessingTimeMs   int64                       `json:"processingTimeMs"`
	FacetDistribution  map[string]map[string]int64 `json:"facetDistribution"`
}

// Advanced search defaults.
const (
	DefaultSearchLimit      = 20
	DefaultSearchCropLength = 200
)

// DefaultSearchSort is applied when a query names no sort.
func DefaultSearchSort() []string {
	return []string{"updatedAt:desc"}
}

// DefaultSearchFacets is applied when a query names no facets.
func DefaultSearchFacets() []string {
	return []string{FiltersNamespace + ".*"}
}

// DefaultHighlightAttributes are highlighted in advanced search hits.
func DefaultHighlightAttributes() []string {
	return []string{FieldSFNumber, FieldClientName, "Description", FieldIndustry, FieldService}
}

// DefaultCropAttributes are cropped in advanced search hits.
func DefaultCropAttributes() []string {
	return []string{"Description", "description_text"}
}

// AdvancedSearchQuery is a caller query against the filters namespace.
type AdvancedSearchQuery struct {
	Query string

	// Limit and Offset default to 20 and 0 when nil.
	Limit  *int
	Offset *int

	// Filters maps filters-namespace keys to required values.
	// Empty values are ignored.
	Filters map[string]string

	Sort   []string
	Facets []string
}

// Pagination describes the position of a result page.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// SearchMeta carries query echo and engine metadata.
type SearchMeta struct {
	Query             string                      `json:"query"`
	ProcessingTime    int64                       `json:"processingTime"`
	FacetDistribution map[string]map[string]int64 `json:"facetDistribution"`
}

// SearchPage is the result of an advanced search.
type SearchPage struct {
	Hits       []map[string]any `json:"data"`
	Pagination Pagination       `json:"pagination"`
	Search     SearchMeta       `json:"search"`
}
