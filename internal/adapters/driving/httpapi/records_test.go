package httpapi

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func publishedRecord() *domain.Record {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Record{ID: 7, SFNumber: "SF007", ClientName: "Acme", PublishedAt: &at}
}

func TestListRecords(t *testing.T) {
	f := newFixture(t)
	f.records.records = []domain.Record{{ID: 1, SFNumber: "SF001"}, {ID: 2, SFNumber: "SF002"}}

	status, body := f.do(t, http.MethodGet,
		"/document-stores?publicationState=live&pagination[limit]=10&offset=5", "")

	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)
	assert.Equal(t, domain.PublicationLive, f.records.lastFilter.PublicationState)
	assert.Equal(t, 10, f.records.lastFilter.Limit)
	assert.Equal(t, 5, f.records.lastFilter.Offset)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["pagination"].(map[string]any)["total"])
}

func TestListRecords_EmptyIsArray(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodGet, "/document-stores", "")
	assert.Equal(t, []any{}, body["data"])
}

func TestListRecords_BadLimit(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/document-stores?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, codeInvalidInput, body["code"])
}

func TestGetRecord(t *testing.T) {
	f := newFixture(t)
	f.records.record = publishedRecord()

	status, body := f.do(t, http.MethodGet, "/document-stores/7", "")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(7), f.records.lastID)
	assert.Equal(t, "SF007", body["data"].(map[string]any)["SF_Number"])
}

func TestGetRecord_NotFound(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/document-stores/99", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, codeNotFound, body["code"])
}

func TestGetRecord_InvalidID(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/document-stores/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, codeInvalidID, body["code"])
}

func TestCreateRecord(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/document-stores", `{"data": {
		"SF_Number": "SF001",
		"Client_Name": "Acme",
		"locale": "en",
		"Description": [{"type": "paragraph", "children": [{"type": "text", "text": "hi"}]}],
		"Attachments": [3, 4],
		"publishedAt": true
	}}`)

	require.Equal(t, http.StatusCreated, status)
	created := f.records.created
	require.NotNil(t, created)
	assert.Equal(t, "SF001", created.SFNumber)
	assert.Equal(t, "Acme", created.ClientName)
	assert.Equal(t, "en", created.Locale)
	assert.Equal(t, []int64{3, 4}, created.AttachmentIDs())
	require.NotNil(t, created.PublishedAt)
	assert.True(t, created.PublishedAt.Equal(fixedNow))
	assert.Equal(t, float64(1), body["data"].(map[string]any)["id"])
}

func TestCreateRecord_RejectsManualOverride(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/document-stores",
		`{"data": {"SF_Number": "SF001", "manualOverride": true}}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Manual upload")
	assert.Nil(t, f.records.created)
}

func TestCreateRecord_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{"data":`, nil, http.StatusBadRequest},
		{"missing data", `{}`, nil, http.StatusBadRequest},
		{"unknown top-level key", `{"data": {}, "extra": 1}`, nil, http.StatusBadRequest},
		{"unknown field", `{"data": {"Colour": "red"}}`, nil, http.StatusBadRequest},
		{"bad publishedAt", `{"data": {"publishedAt": "yesterday"}}`, nil, http.StatusBadRequest},
		{"bad attachments", `{"data": {"Attachments": "x"}}`, nil, http.StatusBadRequest},
		{"invalid key", `{"data": {"SF_Number": "X1"}}`,
			fmt.Errorf("%w: SF_Number must match SF###", domain.ErrInvalidInput), http.StatusBadRequest},
		{"duplicate", `{"data": {"SF_Number": "SF001"}}`,
			fmt.Errorf("%w: document with SF_Number SF001 already exists", domain.ErrAlreadyExists), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.records.err = tt.err

			status, body := f.do(t, http.MethodPost, "/document-stores", tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUpdateRecord_Publish(t *testing.T) {
	f := newFixture(t)
	f.records.result = &domain.UpdateResult{Record: publishedRecord(), Operation: domain.OperationPublished}

	status, body := f.do(t, http.MethodPut, "/document-stores/7",
		`{"data": {"Client_Name": "Acme", "publishedAt": "2025-01-02T03:04:05.000Z"}}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(7), f.records.lastID)
	assert.Equal(t, "Acme", f.records.patch.Fields["Client_Name"])
	assert.Equal(t, domain.PublishSet, f.records.patch.Publish.Action)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, "published", meta["operation"])
	assert.Equal(t, "published", meta["newState"])
}

func TestUpdateRecord_Directives(t *testing.T) {
	tests := []struct {
		body   string
		action domain.PublishAction
	}{
		{`{"data": {"City": "Paris"}}`, domain.PublishUnchanged},
		{`{"data": {"publishedAt": null}}`, domain.PublishClear},
		{`{"data": {"publishedAt": false}}`, domain.PublishClear},
		{`{"data": {"publishedAt": ""}}`, domain.PublishClear},
		{`{"data": {"publishedAt": "true"}}`, domain.PublishSet},
		{`{"data": {"publishedAt": 1748000000000}}`, domain.PublishSet},
		{`{"data": {"publishedAt": 0}}`, domain.PublishClear},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			f := newFixture(t)
			f.records.result = &domain.UpdateResult{Record: &domain.Record{ID: 7}, Operation: domain.OperationUpdated}

			status, body := f.do(t, http.MethodPut, "/document-stores/7", tt.body)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.action, f.records.patch.Publish.Action)
			assert.Equal(t, "draft", body["meta"].(map[string]any)["newState"])
		})
	}
}

func TestUpdateRecord_NullFieldClears(t *testing.T) {
	f := newFixture(t)
	f.records.result = &domain.UpdateResult{Record: &domain.Record{ID: 7}}

	status, _ := f.do(t, http.MethodPut, "/document-stores/7", `{"data": {"City": null, "Attachments": []}}`)

	require.Equal(t, http.StatusOK, status)
	value, ok := f.records.patch.Fields["City"]
	assert.True(t, ok)
	assert.Empty(t, value)
	require.NotNil(t, f.records.patch.AttachmentIDs)
	assert.Empty(t, *f.records.patch.AttachmentIDs)
}

func TestUpdateRecord_ReportsWarnings(t *testing.T) {
	f := newFixture(t)
	f.records.result = &domain.UpdateResult{
		Record:    publishedRecord(),
		Operation: domain.OperationUnpublished,
		Warnings:  []string{"requested unpublish but publishedAt is still set"},
	}

	_, body := f.do(t, http.MethodPut, "/document-stores/7", `{"data": {"publishedAt": null}}`)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, "published", meta["newState"])
	assert.Len(t, meta["warnings"], 1)
}

func TestUpdateRecord_IndexSyncFailure(t *testing.T) {
	f := newFixture(t)
	f.records.err = fmt.Errorf("%w: meilisearch down", domain.ErrIndexSync)

	status, body := f.do(t, http.MethodPut, "/document-stores/7", `{"data": {"City": "Rome"}}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, codeIndexSync, body["code"])
}

func TestCreateRecord_IndexSyncKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.records.err = fmt.Errorf("%w: meilisearch down", domain.ErrIndexSync)

	status, body := f.do(t, http.MethodPost, "/document-stores", `{"data": {"SF_Number": "SF001"}}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, codeIndexSync, body["code"])
	assert.Equal(t, "SF001", body["data"].(map[string]any)["SF_Number"])
}

func TestDeleteRecord_IndexSyncKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.records.record = publishedRecord()
	f.records.err = fmt.Errorf("%w: meilisearch down", domain.ErrIndexSync)

	status, body := f.do(t, http.MethodDelete, "/document-stores/7", "")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, codeIndexSync, body["code"])
	assert.Equal(t, "SF007", body["data"].(map[string]any)["SF_Number"])
}

func TestDeleteRecord(t *testing.T) {
	f := newFixture(t)
	f.records.record = publishedRecord()

	status, body := f.do(t, http.MethodDelete, "/document-stores/7", "")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int64{7}, f.records.deleted)
	assert.Equal(t, "SF007", body["data"].(map[string]any)["SF_Number"])
}

func TestDeleteRecord_NotFound(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodDelete, "/document-stores/7", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Empty(t, f.records.deleted)
}

func TestAutoPopulate(t *testing.T) {
	f := newFixture(t)
	f.records.result = &domain.UpdateResult{Record: publishedRecord(), Operation: domain.OperationUpdated}

	status, body := f.do(t, http.MethodPost, "/document-stores/7/auto-populate", "")

	require.Equal(t, http.StatusOK, status)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "Document auto-populated successfully", meta["message"])
	assert.Equal(t, "manual_trigger", meta["source"])
	assert.Equal(t, "updated", meta["operation"])
}

func TestAutoPopulate_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: failed to fetch data from external API", domain.ErrEnrichmentFailed), http.StatusBadRequest},
		{domain.ErrEnrichmentUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("get record 7: %w", domain.ErrNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.records.err = tt.err

			status, _ := f.do(t, http.MethodPost, "/document-stores/7/auto-populate", "")
			assert.Equal(t, tt.status, status)
		})
	}
}
