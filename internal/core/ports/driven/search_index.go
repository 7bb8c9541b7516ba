package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SearchIndex is the search engine holding the document index.
// Write operations are asynchronous on engines that queue work; the returned
// task identifies the queued unit and may be passed to WaitForTask.
type SearchIndex interface {
	// EnsureIndex creates the index when absent and waits for the creation.
	// Idempotent.
	EnsureIndex(ctx context.Context, name, primaryKey string) error

	// UpdateSettings applies settings. Nil lists are left unchanged.
	UpdateSettings(ctx context.Context, name string, settings domain.IndexSettings) (domain.IndexTask, error)

	// Settings returns the settings currently applied.
	Settings(ctx context.Context, name string) (domain.IndexSettings, error)

	// AddDocuments adds or replaces documents by primary key.
	AddDocuments(ctx context.Context, name string, docs []domain.SearchDocument) (domain.IndexTask, error)

	// DeleteAllDocuments empties the index, keeping its settings.
	DeleteAllDocuments(ctx context.Context, name string) (domain.IndexTask, error)

	// DeleteDocument removes one document. Removing an absent id succeeds.
	DeleteDocument(ctx context.Context, name, id string) (domain.IndexTask, error)

	// Stats returns document count, indexing flag and field distribution.
	Stats(ctx context.Context, name string) (domain.IndexStats, error)

	// Search runs a query against the index.
	Search(ctx context.Context, name string, req domain.SearchRequest) (*domain.SearchResponse, error)

	// WaitForTask blocks until the task finishes or ctx is done.
	WaitForTask(ctx context.Context, taskUID int64, interval time.Duration) (domain.IndexTask, error)

	// Health reports whether the engine is reachable.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}
