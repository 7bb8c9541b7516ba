package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService manages records and notifies the lifecycle after each
// committed write. The store and the index are not written atomically: an
// index failure after commit is reported as domain.ErrIndexSync next to the
// committed record.
type RecordService struct {
	store       driven.RecordStore
	lifecycle   driving.RecordLifecycle
	enrichment  driven.EnrichmentClient
	transformer *Transformer
}

// NewRecordService creates a record service.
// lifecycle and enrichment may be nil.
func NewRecordService(
	store driven.RecordStore,
	lifecycle driving.RecordLifecycle,
	enrichment driven.EnrichmentClient,
) *RecordService {
	return &RecordService{
		store:       store,
		lifecycle:   lifecycle,
		enrichment:  enrichment,
		transformer: NewTransformer(),
	}
}

// Create validates and inserts a record.
func (s *RecordService) Create(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	if rec.ManualOverride {
		return nil, fmt.Errorf("%w: manual override records cannot be created directly", domain.ErrInvalidInput)
	}
	if err := domain.ValidateSFNumber(rec.SFNumber); err != nil {
		return nil, err
	}
	if rec.SFNumber != "" {
		existing, err := s.store.FindBySFNumber(ctx, rec.SFNumber, 0)
		if err != nil {
			return nil, fmt.Errorf("check SF_Number: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: document with SF_Number %s already exists", domain.ErrAlreadyExists, rec.SFNumber)
		}
	}

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	created, err := s.store.Get(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("read created record %d: %w", rec.ID, err)
	}
	logger.Info("created record %d (%s)", created.ID, created.SFNumber)

	if s.lifecycle != nil {
		if err := s.lifecycle.AfterCreate(ctx, created); err != nil {
			logger.Error("index created record %d: %v", created.ID, err)
			return created, fmt.Errorf("%w: %w", domain.ErrIndexSync, err)
		}
	}
	return created, nil
}

// Update applies a patch to a record.
//
// The flow is: validate the uniqueness key, load the current record, check
// uniqueness excluding the record itself, apply the patch and publish
// directive, write, re-read and verify the stored publish state, then notify
// the lifecycle. A publish state that does not match the request is reported
// as a warning, never as an error.
func (s *RecordService) Update(ctx context.Context, id int64, patch domain.RecordPatch) (*domain.UpdateResult, error) {
	sf, hasSF := patch.SFNumber()
	if hasSF {
		if err := domain.ValidateSFNumber(sf); err != nil {
			return nil, err
		}
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}

	if hasSF && sf != "" {
		other, err := s.store.FindBySFNumber(ctx, sf, id)
		if err != nil {
			return nil, fmt.Errorf("check SF_Number: %w", err)
		}
		if other != nil {
			return nil, fmt.Errorf("%w: another document with SF_Number %s already exists", domain.ErrAlreadyExists, sf)
		}
	}

	next := current.Clone()
	if err := patch.Apply(next); err != nil {
		return nil, err
	}
	next.Attachments = nil
	if patch.AttachmentIDs != nil {
		next.Attachments = make([]domain.Attachment, 0, len(*patch.AttachmentIDs))
		for _, attID := range *patch.AttachmentIDs {
			next.Attachments = append(next.Attachments, domain.Attachment{ID: attID})
		}
	}

	if err := s.store.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("update record %d: %w", id, err)
	}

	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read updated record %d: %w", id, err)
	}

	op := patch.Publish.Operation()
	result := &domain.UpdateResult{Record: stored, Operation: op}
	if !patch.Publish.Matches(stored.PublishedAt) {
		warning := publishMismatch(op)
		result.Warnings = append(result.Warnings, warning)
		logger.Warn("record %d: %s", id, warning)
	}

	logger.L().Info().
		Int64("record_id", id).
		Str("operation", string(op)).
		Bool("published", stored.IsPublished()).
		Msg("record updated")

	if s.lifecycle == nil {
		return result, nil
	}
	if op == domain.OperationUpdated && !s.indexedChange(current, stored) {
		logger.Debug("record %d: no indexed field changed, skipping index", id)
		return result, nil
	}
	if err := s.lifecycle.AfterUpdate(ctx, stored, op); err != nil {
		logger.Error("index updated record %d: %v", id, err)
		return result, fmt.Errorf("%w: %w", domain.ErrIndexSync, err)
	}
	return result, nil
}

func publishMismatch(op domain.Operation) string {
	if op == domain.OperationUnpublished {
		return "requested unpublish but publishedAt is still set"
	}
	return "requested publish but stored publishedAt does not match"
}

// indexedChange reports whether an update changed the indexed projection or
// the publish state. updatedAt alone does not count.
func (s *RecordService) indexedChange(before, after *domain.Record) bool {
	if before.IsPublished() != after.IsPublished() {
		return true
	}
	a := s.transformer.Transform(before)
	b := s.transformer.Transform(after)
	a.UpdatedAt, b.UpdatedAt = nil, nil
	return !reflect.DeepEqual(a, b)
}

// Delete removes a record and its index document.
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	logger.Info("deleted record %d", id)

	if s.lifecycle != nil {
		if err := s.lifecycle.AfterDelete(ctx, id); err != nil {
			logger.Error("remove deleted record %d from index: %v", id, err)
			return fmt.Errorf("%w: %w", domain.ErrIndexSync, err)
		}
	}
	return nil
}

// Get retrieves a record.
func (s *RecordService) Get(ctx context.Context, id int64) (*domain.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// List returns a page of records and the total count.
func (s *RecordService) List(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, int, error) {
	if !filter.PublicationState.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown publication state %q", domain.ErrInvalidInput, filter.PublicationState)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, 0, fmt.Errorf("%w: negative pagination", domain.ErrInvalidInput)
	}
	return s.store.List(ctx, filter)
}

// AutoPopulate fetches a record's data from the enrichment API and applies
// it as an update marked as a manual override.
func (s *RecordService) AutoPopulate(ctx context.Context, id int64) (*domain.UpdateResult, error) {
	if s.enrichment == nil {
		return nil, domain.ErrEnrichmentUnavailable
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	if rec.SFNumber == "" {
		return nil, fmt.Errorf("%w: document must have SF_Number to auto-populate", domain.ErrInvalidInput)
	}

	data, err := s.enrichment.FetchDocument(ctx, rec.SFNumber)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEnrichmentFailed, err)
	}
	if data == nil || !data.Success {
		return nil, fmt.Errorf("%w: failed to fetch data from external API", domain.ErrEnrichmentFailed)
	}

	logger.Info("auto-populating record %d from %s", id, rec.SFNumber)
	return s.Update(ctx, id, domain.PatchFromEnrichment(data.Data))
}
