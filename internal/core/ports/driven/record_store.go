package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// RecordStore persists records and their attachments.
// It is the source of truth; the search index is derived from it.
type RecordStore interface {
	// Create inserts a record, assigning ID, DocumentID and timestamps.
	// Attachments are linked by ID.
	Create(ctx context.Context, rec *domain.Record) error

	// Update replaces the stored record with the same ID.
	// Returns domain.ErrNotFound if it does not exist.
	// A nil Attachments slice leaves the attachment relation unchanged;
	// otherwise the relation is replaced by the IDs of the given attachments.
	Update(ctx context.Context, rec *domain.Record) error

	// Delete removes a record. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error

	// Get retrieves a record with attachments populated.
	Get(ctx context.Context, id int64) (*domain.Record, error)

	// List returns records matching the filter, newest first.
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, int, error)

	// ListPublished returns every record whose stored publishedAt is set,
	// with attachments populated. This is the authoritative published query.
	ListPublished(ctx context.Context) ([]domain.Record, error)

	// FindBySFNumber returns the record holding sf, ignoring excludeID.
	// Returns nil and no error when none exists.
	FindBySFNumber(ctx context.Context, sf string, excludeID int64) (*domain.Record, error)

	// Attachments returns the attachments of a record.
	Attachments(ctx context.Context, id int64) ([]domain.Attachment, error)

	// SaveAttachment stores media metadata, assigning its ID.
	SaveAttachment(ctx context.Context, att *domain.Attachment) error
}
