package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure SyncCoordinator implements the interfaces.
var (
	_ driving.IndexAdmin      = (*SyncCoordinator)(nil)
	_ driving.RecordLifecycle = (*SyncCoordinator)(nil)
)

// SyncConfig tunes the sync coordinator.
type SyncConfig struct {
	// IndexName is the target index.
	IndexName string

	// PrimaryKey is the document attribute used as the index key.
	PrimaryKey string

	// BatchSize caps the number of documents per rebuild request.
	BatchSize int

	// PollInterval is the delay between index status checks.
	PollInterval time.Duration

	// SettleTimeout bounds how long Clear and ConfigureComplete wait for the
	// engine to finish queued work.
	SettleTimeout time.Duration
}

// DefaultSyncConfig returns the coordinator defaults.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		IndexName:     domain.DefaultIndexName,
		PrimaryKey:    domain.DefaultPrimaryKey,
		BatchSize:     100,
		PollInterval:  time.Second,
		SettleTimeout: 30 * time.Second,
	}
}

// SyncCoordinator keeps the search index in step with the record store.
// It owns the long-lived index client for the life of the process.
type SyncCoordinator struct {
	index       driven.SearchIndex
	store       driven.RecordStore
	transformer *Transformer
	config      SyncConfig
}

// NewSyncCoordinator creates a coordinator. Zero config values take defaults.
func NewSyncCoordinator(
	index driven.SearchIndex,
	store driven.RecordStore,
	transformer *Transformer,
	config SyncConfig,
) *SyncCoordinator {
	defaults := DefaultSyncConfig()
	if config.IndexName == "" {
		config.IndexName = defaults.IndexName
	}
	if config.PrimaryKey == "" {
		config.PrimaryKey = defaults.PrimaryKey
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.SettleTimeout <= 0 {
		config.SettleTimeout = defaults.SettleTimeout
	}
	if transformer == nil {
		transformer = NewTransformer()
	}
	return &SyncCoordinator{
		index:       index,
		store:       store,
		transformer: transformer,
		config:      config,
	}
}

// Config returns the effective configuration.
func (c *SyncCoordinator) Config() SyncConfig {
	return c.config
}

// Upsert writes a single record to the index, or removes it when the record
// is a draft. The add is enqueued and not waited for.
func (c *SyncCoordinator) Upsert(ctx context.Context, rec *domain.Record) error {
	if c.index == nil {
		return domain.ErrSearchUnavailable
	}
	if !rec.IsPublished() {
		logger.Debug("record %d is a draft, removing from index", rec.ID)
		return c.Remove(ctx, rec.ID)
	}

	if rec.Attachments == nil && c.store != nil {
		attachments, err := c.store.Attachments(ctx, rec.ID)
		if err != nil {
			logger.Warn("fetch attachments for record %d, indexing without them: %v", rec.ID, err)
		} else {
			rec = rec.Clone()
			rec.Attachments = attachments
		}
	}

	if err := c.index.EnsureIndex(ctx, c.config.IndexName, c.config.PrimaryKey); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	doc := c.transformer.Transform(rec)
	task, err := c.index.AddDocuments(ctx, c.config.IndexName, []domain.SearchDocument{doc})
	if err != nil {
		return fmt.Errorf("index record %d: %w", rec.ID, err)
	}

	logger.L().Debug().
		Int64("record_id", rec.ID).
		Int64("task_uid", task.UID).
		Int("attachments", doc.AttachmentsCount).
		Msg("record enqueued for indexing")
	return nil
}

// Remove deletes a record's document from the index.
func (c *SyncCoordinator) Remove(ctx context.Context, id int64) error {
	if c.index == nil {
		return domain.ErrSearchUnavailable
	}
	if _, err := c.index.DeleteDocument(ctx, c.config.IndexName, domain.DocumentKey(id)); err != nil {
		return fmt.Errorf("remove record %d: %w", id, err)
	}
	logger.Debug("record %d removed from index", id)
	return nil
}

// Clear removes every document and waits, bounded by SettleTimeout, for the
// engine to report that indexing has stopped. A timeout is logged and does
// not fail the call.
func (c *SyncCoordinator) Clear(ctx context.Context) error {
	if c.index == nil {
		return domain.ErrSearchUnavailable
	}
	if _, err := c.index.DeleteAllDocuments(ctx, c.config.IndexName); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	logger.Info("cleared all documents from index %s", c.config.IndexName)
	return c.waitIdle(ctx)
}

// waitIdle polls index stats until IsIndexing is false.
func (c *SyncCoordinator) waitIdle(ctx context.Context) error {
	deadline := time.Now().Add(c.config.SettleTimeout)
	for {
		stats, err := c.index.Stats(ctx, c.config.IndexName)
		if err != nil {
			logger.Warn("check index status: %v", err)
			return nil
		}
		if !stats.IsIndexing {
			return nil
		}
		if !time.Now().Before(deadline) {
			logger.Warn("index %s still indexing after %s, continuing", c.config.IndexName, c.config.SettleTimeout)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.config.PollInterval):
		}
	}
}

// Rebuild indexes every published record in sequential batches.
// A failed batch is counted as skipped and recorded; the remaining batches
// are still sent.
func (c *SyncCoordinator) Rebuild(ctx context.Context) (*domain.RebuildResult, error) {
	if c.index == nil {
		return nil, domain.ErrSearchUnavailable
	}

	result := &domain.RebuildResult{RunID: uuid.NewString()}
	log := logger.L().With().Str("run_id", result.RunID).Logger()
	logger.Section("Rebuild")

	if err := c.index.EnsureIndex(ctx, c.config.IndexName, c.config.PrimaryKey); err != nil {
		return nil, &domain.StepError{Step: domain.StepEnsureIndex, Err: err}
	}

	records, err := c.store.ListPublished(ctx)
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepFetch, Err: err}
	}
	if len(records) == 0 {
		log.Info().Msg("no published records to index")
		return result, nil
	}

	docs := make([]domain.SearchDocument, 0, len(records))
	for i := range records {
		docs = append(docs, c.transformer.Transform(&records[i]))
	}

	for start, batch := 0, 1; start < len(docs); start, batch = start+c.config.BatchSize, batch+1 {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := min(start+c.config.BatchSize, len(docs))
		chunk := docs[start:end]

		task, err := c.index.AddDocuments(ctx, c.config.IndexName, chunk)
		if err != nil {
			result.Skipped += len(chunk)
			result.Failures = append(result.Failures, domain.BatchFailure{
				Batch: batch,
				Size:  len(chunk),
				Err:   err.Error(),
			})
			log.Error().Err(err).Int("batch", batch).Int("size", len(chunk)).Msg("batch rejected")
			continue
		}
		result.Indexed += len(chunk)
		log.Debug().Int("batch", batch).Int("size", len(chunk)).Int64("task_uid", task.UID).Msg("batch indexed")
	}

	log.Info().Int("indexed", result.Indexed).Int("skipped", result.Skipped).Msg("rebuild complete")
	return result, nil
}

// Refresh clears the index and rebuilds it.
func (c *SyncCoordinator) Refresh(ctx context.Context) (*domain.RefreshResult, error) {
	if err := c.Clear(ctx); err != nil {
		return failedRefresh(&domain.StepError{Step: domain.StepClear, Err: err})
	}

	stats, err := c.Rebuild(ctx)
	if err != nil {
		var stepErr *domain.StepError
		if !errors.As(err, &stepErr) {
			err = &domain.StepError{Step: domain.StepRebuild, Err: err}
		}
		return failedRefresh(err)
	}

	return &domain.RefreshResult{
		Success: true,
		Message: fmt.Sprintf("Index refreshed successfully. Indexed %d documents.", stats.Indexed),
		Stats:   *stats,
	}, nil
}

func failedRefresh(err error) (*domain.RefreshResult, error) {
	logger.Error("index refresh failed: %v", err)
	return &domain.RefreshResult{
		Success: false,
		Message: fmt.Sprintf("Index refresh failed: %v", err),
	}, err
}

// Configure overwrites the index settings with the full bundle.
func (c *SyncCoordinator) Configure(ctx context.Context) error {
	if c.index == nil {
		return domain.ErrSearchUnavailable
	}
	if err := c.index.EnsureIndex(ctx, c.config.IndexName, c.config.PrimaryKey); err != nil {
		return &domain.StepError{Step: domain.StepEnsureIndex, Err: err}
	}
	if _, err := c.index.UpdateSettings(ctx, c.config.IndexName, domain.DefaultIndexSettings()); err != nil {
		return &domain.StepError{Step: domain.StepConfigure, Err: err}
	}
	logger.Info("index %s configuration updated", c.config.IndexName)
	return nil
}

// ConfigureComplete applies the reference attribute set, waits for the
// settings task within SettleTimeout, and reports the resulting state.
// A wait that does not finish in time is logged, not returned.
func (c *SyncCoordinator) ConfigureComplete(ctx context.Context) (*domain.ConfigureReport, error) {
	if c.index == nil {
		return nil, domain.ErrSearchUnavailable
	}

	task, err := c.index.UpdateSettings(ctx, c.config.IndexName, domain.CompleteIndexSettings())
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepConfigure, Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.config.SettleTimeout)
	done, err := c.index.WaitForTask(waitCtx, task.UID, c.config.PollInterval)
	cancel()
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("settings task %d did not finish: %v", task.UID, err)
	case done.Status == domain.TaskStatusFailed:
		return nil, &domain.StepError{Step: domain.StepWait, Err: errors.New(done.Error)}
	}

	settings, err := c.index.Settings(ctx, c.config.IndexName)
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepConfigure, Err: err}
	}
	stats, err := c.index.Stats(ctx, c.config.IndexName)
	if err != nil {
		return nil, &domain.StepError{Step: domain.StepStats, Err: err}
	}

	fields := make([]string, 0, len(stats.FieldDistribution))
	for name := range stats.FieldDistribution {
		fields = append(fields, name)
	}
	slices.Sort(fields)

	report := &domain.ConfigureReport{
		SearchableAttributesCount: len(settings.SearchableAttributes),
		FilterableAttributesCount: len(settings.FilterableAttributes),
		SortableAttributesCount:   len(settings.SortableAttributes),
		DocumentsCount:            stats.NumberOfDocuments,
		ConfiguredFields:          fields,
		DisplayedAttributes:       settings.DisplayedAttributes,
	}
	logger.L().Info().
		Int("searchable", report.SearchableAttributesCount).
		Int("filterable", report.FilterableAttributesCount).
		Int("sortable", report.SortableAttributesCount).
		Int64("documents", report.DocumentsCount).
		Msg("index configured")
	return report, nil
}

// Stats returns index statistics and the applied attribute lists.
func (c *SyncCoordinator) Stats(ctx context.Context) (*domain.IndexStatsReport, error) {
	if c.index == nil {
		return nil, domain.ErrSearchUnavailable
	}
	stats, err := c.index.Stats(ctx, c.config.IndexName)
	if err != nil {
		return nil, fmt.Errorf("get index stats: %w", err)
	}
	settings, err := c.index.Settings(ctx, c.config.IndexName)
	if err != nil {
		return nil, fmt.Errorf("get index settings: %w", err)
	}
	return &domain.IndexStatsReport{
		IndexStats: stats,
		Settings: domain.IndexSettings{
			SearchableAttributes: settings.SearchableAttributes,
			FilterableAttributes: settings.FilterableAttributes,
			SortableAttributes:   settings.SortableAttributes,
		},
	}, nil
}

// AfterCreate indexes a newly created record when it is published.
func (c *SyncCoordinator) AfterCreate(ctx context.Context, rec *domain.Record) error {
	if !rec.IsPublished() {
		return nil
	}
	return c.Upsert(ctx, rec)
}

// AfterUpdate applies an update to the index according to its operation.
func (c *SyncCoordinator) AfterUpdate(ctx context.Context, rec *domain.Record, op domain.Operation) error {
	switch op {
	case domain.OperationUnpublished:
		return c.Remove(ctx, rec.ID)
	case domain.OperationPublished:
		return c.Upsert(ctx, rec)
	default:
		// Upsert removes drafts, so it covers both states.
		return c.Upsert(ctx, rec)
	}
}

// AfterDelete removes a deleted record from the index.
func (c *SyncCoordinator) AfterDelete(ctx context.Context, id int64) error {
	return c.Remove(ctx, id)
}
