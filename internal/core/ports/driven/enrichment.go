package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// EnrichmentClient fetches record data from the external enrichment API.
type EnrichmentClient interface {
	// FetchDocument returns the data held for an SF_Number.
	// Transient failures are retried by the implementation.
	FetchDocument(ctx context.Context, sfNumber string) (*domain.EnrichmentResult, error)

	// Health reports whether the API is reachable.
	Health(ctx context.Context) error
}
