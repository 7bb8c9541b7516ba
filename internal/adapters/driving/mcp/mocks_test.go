package mcp

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	page      *domain.SearchPage
	err       error
	lastQuery domain.AdvancedSearchQuery
}

func (m *mockSearchService) Search(_ context.Context, _ string, _ int) (*domain.SearchResponse, error) {
	return &domain.SearchResponse{}, m.err
}

func (m *mockSearchService) Advanced(_ context.Context, q domain.AdvancedSearchQuery) (*domain.SearchPage, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

// mockIndexAdmin is a mock implementation of driving.IndexAdmin.
type mockIndexAdmin struct {
	calls   []string
	refresh *domain.RefreshResult
	rebuild *domain.RebuildResult
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
	return &domain.ConfigureReport{}, m.err
}

func (m *mockIndexAdmin) Stats(context.Context) (*domain.IndexStatsReport, error) {
	m.calls = append(m.calls, "stats")
	return m.stats, m.err
}

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	records []domain.Record
	record  *domain.Record
	err     error
}

func (m *mockRecordService) Create(_ context.Context, rec *domain.Record) (*domain.Record, error) {
	return rec, m.err
}

func (m *mockRecordService) Update(_ context.Context, _ int64, _ domain.RecordPatch) (*domain.UpdateResult, error) {
	return &domain.UpdateResult{Record: m.record}, m.err
}

func (m *mockRecordService) Delete(context.Context, int64) error {
	return m.err
}

func (m *mockRecordService) Get(_ context.Context, _ int64) (*domain.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *mockRecordService) List(_ context.Context, _ domain.RecordFilter) ([]domain.Record, int, error) {
	return m.records, len(m.records), m.err
}

func (m *mockRecordService) AutoPopulate(_ context.Context, _ int64) (*domain.UpdateResult, error) {
	return &domain.UpdateResult{Record: m.record}, m.err
}

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	statuses []domain.HealthStatus
}

func (m *mockHealthService) Check(context.Context) []domain.HealthStatus {
	return m.statuses
}
