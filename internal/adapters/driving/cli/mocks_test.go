package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

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
	populated  []int64
}

func (m *mockRecordService) Create(_ context.Context, rec *domain.Record) (*domain.Record, error) {
	m.created = rec
	out := rec.Clone()
	out.ID = 42
	if m.err != nil {
		return out, m.err
	}
	return out, nil
}

func (m *mockRecordService) Update(_ context.Context, id int64, patch domain.RecordPatch) (*domain.UpdateResult, error) {
	m.lastID = id
	m.patch = patch
	res := m.result
	if res == nil {
		rec := &domain.Record{ID: id}
		patch.Publish.Apply(rec)
		res = &domain.UpdateResult{Record: rec, Operation: patch.Publish.Operation()}
	}
	return res, m.err
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
	return m.records, len(m.records), m.err
}

func (m *mockRecordService) AutoPopulate(_ context.Context, id int64) (*domain.UpdateResult, error) {
	m.populated = append(m.populated, id)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.UpdateResult{Record: &domain.Record{ID: id}, Operation: domain.OperationUpdated}, nil
}

type mockSearchService struct {
	resp      *domain.SearchResponse
	page      *domain.SearchPage
	err       error
	plain     []string
	lastLimit int
	lastQuery *domain.AdvancedSearchQuery
}

func (m *mockSearchService) Search(_ context.Context, query string, limit int) (*domain.SearchResponse, error) {
	m.plain = append(m.plain, query)
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockSearchService) Advanced(_ context.Context, q domain.AdvancedSearchQuery) (*domain.SearchPage, error) {
	m.lastQuery = &q
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

type mockIndexAdmin struct {
	calls []string
	err   error
}

func (m *mockIndexAdmin) Refresh(context.Context) (*domain.RefreshResult, error) {
	m.calls = append(m.calls, "refresh")
	if m.err != nil {
		return &domain.RefreshResult{Success: false}, m.err
	}
	return &domain.RefreshResult{
		Success: true,
		Message: "Index refreshed successfully. Indexed 3 documents.",
		Stats:   domain.RebuildResult{Indexed: 3},
	}, nil
}

func (m *mockIndexAdmin) Rebuild(context.Context) (*domain.RebuildResult, error) {
	m.calls = append(m.calls, "rebuild")
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RebuildResult{
		RunID:    "run-1",
		Indexed:  5,
		Skipped:  1,
		Failures: []domain.BatchFailure{{Batch: 2, Size: 100, Err: "timeout"}},
	}, nil
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
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ConfigureReport{SearchableAttributesCount: 26, DocumentsCount: 9}, nil
}

func (m *mockIndexAdmin) Stats(context.Context) (*domain.IndexStatsReport, error) {
	m.calls = append(m.calls, "stats")
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IndexStatsReport{IndexStats: domain.IndexStats{NumberOfDocuments: 12}}, nil
}

type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEngine(kind domain.EngineKind, host, apiKey string) error {
	m.settings.Engine.Kind, m.settings.Engine.Host, m.settings.Engine.APIKey = kind, host, apiKey
	return nil
}

func (m *mockSettingsService) SetEnrichment(baseURL, token string) error {
	m.settings.Enrichment.BaseURL, m.settings.Enrichment.Token = baseURL, token
	return nil
}

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) SchedulerConfig() domain.SchedulerConfig {
	return domain.DefaultSchedulerConfig()
}

type mockConfigStore struct {
	values map[string]any
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

type testServices struct {
	records  *mockRecordService
	search   *mockSearchService
	index    *mockIndexAdmin
	settings *mockSettingsService
	config   *mockConfigStore
}

// setupTestServices wires mocks into the commands and restores the
// previous state, flags included, when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		records:  &mockRecordService{},
		search:   &mockSearchService{resp: &domain.SearchResponse{}},
		index:    &mockIndexAdmin{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
		config:   &mockConfigStore{values: map[string]any{}},
	}
	SetServices(Services{
		Records:  ts.records,
		Search:   ts.search,
		Index:    ts.index,
		Settings: ts.settings,
		Config:   ts.config,
	})

	prevNow := now
	now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	t.Cleanup(func() {
		SetServices(Services{})
		now = prevNow
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	})
	return ts
}

// resetFlags restores every flag to its default so state does not leak
// between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
