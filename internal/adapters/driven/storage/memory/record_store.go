package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu          sync.RWMutex
	records     map[int64]*domain.Record
	attachments map[int64]domain.Attachment
	links       map[int64][]int64
	nextID      int64
	nextAttID   int64
	now         func() time.Time
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records:     make(map[int64]*domain.Record),
		attachments: make(map[int64]domain.Attachment),
		links:       make(map[int64][]int64),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a record, assigning ID, DocumentID and timestamps.
func (s *RecordStore) Create(_ context.Context, rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	rec.ID = s.nextID
	if rec.DocumentID == "" {
		rec.DocumentID = uuid.NewString()
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := rec.Clone()
	s.links[rec.ID] = stored.AttachmentIDs()
	stored.Attachments = nil
	s.records[rec.ID] = stored
	return nil
}

// Update replaces a stored record.
func (s *RecordStore) Update(_ context.Context, rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[rec.ID]
	if !ok {
		return domain.ErrNotFound
	}

	rec.DocumentID = existing.DocumentID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = s.now()

	stored := rec.Clone()
	if rec.Attachments != nil {
		s.links[rec.ID] = stored.AttachmentIDs()
	}
	stored.Attachments = nil
	s.records[rec.ID] = stored
	return nil
}

// Delete removes a record and its attachment links.
func (s *RecordStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	delete(s.links, id)
	return nil
}

// Get retrieves a record with attachments populated.
func (s *RecordStore) Get(_ context.Context, id int64) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.hydrate(rec), nil
}

// List returns records matching the filter, newest first.
func (s *RecordStore) List(_ context.Context, filter domain.RecordFilter) ([]domain.Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Record, 0, len(s.records))
	for _, rec := range s.records {
		if filter.PublicationState == domain.PublicationLive && !rec.IsPublished() {
			continue
		}
		matched = append(matched, *s.hydrate(rec))
	}
	sortNewestFirst(matched)

	total := len(matched)
	if filter.Offset >= total {
		return []domain.Record{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// ListPublished returns every record with publishedAt set, oldest ID first.
func (s *RecordStore) ListPublished(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.IsPublished() {
			result = append(result, *s.hydrate(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// FindBySFNumber returns the record holding sf, ignoring excludeID.
func (s *RecordStore) FindBySFNumber(_ context.Context, sf string, excludeID int64) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, rec := range s.records {
		if id != excludeID && rec.SFNumber == sf {
			return s.hydrate(rec), nil
		}
	}
	return nil, nil
}

// Attachments returns the attachments linked to a record.
func (s *RecordStore) Attachments(_ context.Context, id int64) ([]domain.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.records[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return s.linked(id), nil
}

// SaveAttachment stores media metadata, assigning an ID when unset.
func (s *RecordStore) SaveAttachment(_ context.Context, att *domain.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if att.ID == 0 {
		s.nextAttID++
		att.ID = s.nextAttID
	} else if att.ID > s.nextAttID {
		s.nextAttID = att.ID
	}
	s.attachments[att.ID] = *att
	return nil
}

// hydrate copies a stored record and fills its attachments.
// Callers must hold the lock.
func (s *RecordStore) hydrate(rec *domain.Record) *domain.Record {
	out := rec.Clone()
	out.Attachments = s.linked(rec.ID)
	return out
}

// linked resolves attachment links, dropping IDs with no stored media.
func (s *RecordStore) linked(id int64) []domain.Attachment {
	ids := s.links[id]
	out := make([]domain.Attachment, 0, len(ids))
	for _, attID := range ids {
		if att, ok := s.attachments[attID]; ok {
			out = append(out, att)
		}
	}
	return out
}

func sortNewestFirst(records []domain.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
