package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// RecordService manages records and keeps the index in step with them.
type RecordService interface {
	// Create validates and inserts a record.
	Create(ctx context.Context, rec *domain.Record) (*domain.Record, error)

	// Update applies a patch. The returned result carries the committed
	// record even when the follow-up index write fails.
	Update(ctx context.Context, id int64, patch domain.RecordPatch) (*domain.UpdateResult, error)

	// Delete removes a record and its index document.
	Delete(ctx context.Context, id int64) error

	// Get retrieves a record.
	Get(ctx context.Context, id int64) (*domain.Record, error)

	// List returns a page of records and the total count.
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, int, error)

	// AutoPopulate fills a record's fields from the enrichment API.
	AutoPopulate(ctx context.Context, id int64) (*domain.UpdateResult, error)
}
