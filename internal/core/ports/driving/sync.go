package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// IndexAdmin exposes the administrative index operations.
type IndexAdmin interface {
	// Refresh clears the index and rebuilds it from published records.
	Refresh(ctx context.Context) (*domain.RefreshResult, error)

	// Rebuild indexes every published record in batches.
	Rebuild(ctx context.Context) (*domain.RebuildResult, error)

	// Clear removes every document from the index.
	Clear(ctx context.Context) error

	// Configure applies the full settings bundle.
	Configure(ctx context.Context) error

	// ConfigureComplete applies the reference attribute set and reports the
	// resulting index state.
	ConfigureComplete(ctx context.Context) (*domain.ConfigureReport, error)

	// Stats returns index statistics and the applied attribute lists.
	Stats(ctx context.Context) (*domain.IndexStatsReport, error)
}

// RecordLifecycle receives record store events after they commit.
type RecordLifecycle interface {
	// AfterCreate is called once a record has been inserted.
	AfterCreate(ctx context.Context, rec *domain.Record) error

	// AfterUpdate is called once an update has been written.
	AfterUpdate(ctx context.Context, rec *domain.Record, op domain.Operation) error

	// AfterDelete is called once a record has been removed.
	AfterDelete(ctx context.Context, id int64) error
}
