package httpapi

import (
	"context"
	"errors"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

type mockRecordService struct {
	record  *domain.Record
	records []domain.Record
	result  *domain.UpdateResult
	err     error

	created    *domain.Record
	patch      domain.RecordPatch
	lastID     int64
	lastFilter domain.RecordFilter
	deleted    []int64
}

func (m *mockRecordService) Create(_ context.Context, rec *domain.Record) (*domain.Record, error) {
	m.created = rec
	out := rec.Clone()
	out.ID = 1
	if errors.Is(m.err, domain.ErrIndexSync) {
		return out, m.err
	}
	if m.err != nil {
		return nil, m.err
	}
	return out, nil
}

func (m *mockRecordService) Update(_ context.Context, id int64, patch domain.RecordPatch) (*domain.UpdateResult, error) {
	m.lastID = id
	m.patch = patch
	if errors.Is(m.err, domain.ErrIndexSync) {
		return m.result, m.err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockRecordService) Delete(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockRecordService) Get(_ context.Context, id int64) (*domain.Record, error) {
	m.lastID = id
	if m.record == nil {
		return nil, domain.ErrNotFound
	}
	return m.record, nil
}

func (m *mockRecordService) List(_ context.Context, filter domain.RecordFilter) ([]domain.Record, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.records, len(m.records), nil
}

func (m *mockRecordService) AutoPopulate(_ context.Context, id int64) (*domain.UpdateResult, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockSearchService struct {
	page      *domain.SearchPage
	err       error
	lastQuery domain.AdvancedSearchQuery
}

func (m *mockSearchService) Search(context.Context, string, int) (*domain.SearchResponse, error) {
	return &domain.SearchResponse{}, m.err
}

func (m *mockSearchService) Advanced(_ context.Context, q domain.AdvancedSearchQuery) (*domain.SearchPage, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

type mockIndexAdmin struct {
	calls   []string
	refresh *domain.RefreshResult
	rebuild *domain.RebuildResult
	report  *domain.ConfigureReport
	stats   *domain.IndexStatsReport
	err     error
}

func (m *mockIndexAdmin) Refresh(context.Context) (*domain.RefreshResult, error) {
	m.calls = append(m.calls, "refresh")
	return m.refresh, m.err
}

func (m *mockIndexAdmin) Rebuild(context.Context) (*domain.RebuildResult, error) {
	m.calls = append(m.calls, "rebuild")
	return m.rebuild, m.err
}

func (m *mockIndexAdmin) Clear(context.Context) error {
	m.calls = append(m.calls, "clear")
	return m.err
}

func (m *mockIndexAdmin) Configure(context.Context) error {
	m.calls = append(m.calls, "configure")
	return m.err
}

func (m *mockIndexAdmin) ConfigureComplete(context.Context) (*domain.ConfigureReport, error) {
	m.calls = append(m.calls, "configure-complete")
	return m.report, m.err
}

func (m *mockIndexAdmin) Stats(context.Context) (*domain.IndexStatsReport, error) {
	m.calls = append(m.calls, "stats")
	return m.stats, m.err
}

type mockHealthService struct {
	statuses []domain.HealthStatus
}

func (m *mockHealthService) Check(context.Context) []domain.HealthStatus {
	return m.statuses
}
