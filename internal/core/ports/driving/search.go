package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs a plain query with the given limit.
	Search(ctx context.Context, query string, limit int) (*domain.SearchResponse, error)

	// Advanced runs a faceted query against the filters namespace.
	Advanced(ctx context.Context, q domain.AdvancedSearchQuery) (*domain.SearchPage, error)
}
