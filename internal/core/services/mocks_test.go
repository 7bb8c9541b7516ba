package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

var errBoom = errors.New("boom")

// --- mockSearchIndex ---

// mockSearchIndex implements driven.SearchIndex for testing.
type mockSearchIndex struct {
	mu sync.Mutex

	docs      map[string]domain.SearchDocument
	addCalls  [][]domain.SearchDocument
	deleted   []string
	cleared   int
	ensured   int
	settings  domain.IndexSettings
	nextTask  int64
	lastQuery domain.SearchRequest

	// failAddCall fails the nth AddDocuments call (1-based); zero disables.
	failAddCall int

	ensureErr   error
	addErr      error
	deleteErr   error
	clearErr    error
	settingsErr error
	statsErr    error
	searchErr   error
	healthErr   error
	waitErr     error
	waitStatus  string

	// indexingPolls is the number of Stats calls that report IsIndexing.
	indexingPolls int
	statsCalls    int

	searchResp *domain.SearchResponse
}

var _ driven.SearchIndex = (*mockSearchIndex)(nil)

func newMockSearchIndex() *mockSearchIndex {
	return &mockSearchIndex{docs: make(map[string]domain.SearchDocument)}
}

func (m *mockSearchIndex) task() domain.IndexTask {
	m.nextTask++
	return domain.IndexTask{UID: m.nextTask, Status: domain.TaskStatusEnqueued}
}

func (m *mockSearchIndex) EnsureIndex(_ context.Context, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured++
	return m.ensureErr
}

func (m *mockSearchIndex) UpdateSettings(_ context.Context, _ string, s domain.IndexSettings) (domain.IndexTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settingsErr != nil {
		return domain.IndexTask{}, m.settingsErr
	}
	if s.SearchableAttributes != nil {
		m.settings.SearchableAttributes = s.SearchableAttributes
	}
	if s.FilterableAttributes != nil {
		m.settings.FilterableAttributes = s.FilterableAttributes
	}
	if s.SortableAttributes != nil {
		m.settings.SortableAttributes = s.SortableAttributes
	}
	if s.DisplayedAttributes != nil {
		m.settings.DisplayedAttributes = s.DisplayedAttributes
	}
	if s.RankingRules != nil {
		m.settings.RankingRules = s.RankingRules
	}
	if s.Synonyms != nil {
		m.settings.Synonyms = s.Synonyms
	}
	return m.task(), nil
}

func (m *mockSearchIndex) Settings(_ context.Context, _ string) (domain.IndexSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settingsErr != nil {
		return domain.IndexSettings{}, m.settingsErr
	}
	return m.settings, nil
}

func (m *mockSearchIndex) AddDocuments(_ context.Context, _ string, docs []domain.SearchDocument) (domain.IndexTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls = append(m.addCalls, docs)
	if m.addErr != nil {
		return domain.IndexTask{}, m.addErr
	}
	if m.failAddCall == len(m.addCalls) {
		return domain.IndexTask{}, errBoom
	}
	for _, d := range docs {
		m.docs[domain.DocumentKey(d.ID)] = d
	}
	return m.task(), nil
}

func (m *mockSearchIndex) DeleteAllDocuments(_ context.Context, _ string) (domain.IndexTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return domain.IndexTask{}, m.clearErr
	}
	m.cleared++
	m.docs = make(map[string]domain.SearchDocument)
	return m.task(), nil
}

func (m *mockSearchIndex) DeleteDocument(_ context.Context, _ string, id string) (domain.IndexTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return domain.IndexTask{}, m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	delete(m.docs, id)
	return m.task(), nil
}

func (m *mockSearchIndex) Stats(_ context.Context, _ string) (domain.IndexStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	if m.statsErr != nil {
		return domain.IndexStats{}, m.statsErr
	}
	fields := make(map[string]int64)
	for range m.docs {
		fields[domain.FieldSFNumber]++
		fields["id"]++
	}
	return domain.IndexStats{
		NumberOfDocuments: int64(len(m.docs)),
		IsIndexing:        m.statsCalls <= m.indexingPolls,
		FieldDistribution: fields,
	}, nil
}

func (m *mockSearchIndex) Search(_ context.Context, _ string, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = req
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchResp != nil {
		return m.searchResp, nil
	}
	return &domain.SearchResponse{Query: req.Query}, nil
}

func (m *mockSearchIndex) WaitForTask(ctx context.Context, uid int64, _ time.Duration) (domain.IndexTask, error) {
	if m.waitErr != nil {
		return domain.IndexTask{}, m.waitErr
	}
	if err := ctx.Err(); err != nil {
		return domain.IndexTask{}, err
	}
	status := m.waitStatus
	if status == "" {
		status = domain.TaskStatusSucceeded
	}
	task := domain.IndexTask{UID: uid, Status: status}
	if status == domain.TaskStatusFailed {
		task.Error = "invalid settings"
	}
	return task, nil
}

func (m *mockSearchIndex) Health(_ context.Context) error {
	return m.healthErr
}

func (m *mockSearchIndex) Close() error {
	return nil
}

func (m *mockSearchIndex) indexed(id int64) (domain.SearchDocument, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[domain.DocumentKey(id)]
	return d, ok
}

// --- mockEnrichment ---

// mockEnrichment implements driven.EnrichmentClient for testing.
type mockEnrichment struct {
	result    *domain.EnrichmentResult
	err       error
	healthErr error
	requested []string
}

var _ driven.EnrichmentClient = (*mockEnrichment)(nil)

func (m *mockEnrichment) FetchDocument(_ context.Context, sf string) (*domain.EnrichmentResult, error) {
	m.requested = append(m.requested, sf)
	return m.result, m.err
}

func (m *mockEnrichment) Health(_ context.Context) error {
	return m.healthErr
}

// --- mockLifecycle ---

type lifecycleCall struct {
	kind string
	id   int64
	op   domain.Operation
}

// mockLifecycle records lifecycle notifications.
type mockLifecycle struct {
	calls []lifecycleCall
	err   error
}

func (m *mockLifecycle) AfterCreate(_ context.Context, rec *domain.Record) error {
	m.calls = append(m.calls, lifecycleCall{kind: "create", id: rec.ID})
	return m.err
}

func (m *mockLifecycle) AfterUpdate(_ context.Context, rec *domain.Record, op domain.Operation) error {
	m.calls = append(m.calls, lifecycleCall{kind: "update", id: rec.ID, op: op})
	return m.err
}

func (m *mockLifecycle) AfterDelete(_ context.Context, id int64) error {
	m.calls = append(m.calls, lifecycleCall{kind: "delete", id: id})
	return m.err
}
