package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func newResourceServer(t *testing.T, records *mockRecordService, health *mockHealthService) *Server {
	t.Helper()
	ports := &Ports{Search: &mockSearchService{}, Index: &mockIndexAdmin{}}
	if records != nil {
		ports.Records = records
	}
	if health != nil {
		ports.Health = health
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestExtractRecordID(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		wantID int64
		wantOK bool
	}{
		{"valid record URI", "docsync://records/42", 42, true},
		{"invalid prefix", "file://records/42", 0, false},
		{"not a number", "docsync://records/abc", 0, false},
		{"zero id", "docsync://records/0", 0, false},
		{"empty id", "docsync://records/", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := extractRecordID(tt.uri)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestHandleRecordsResource(t *testing.T) {
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("lists records", func(t *testing.T) {
		records := &mockRecordService{records: []domain.Record{
			{ID: 1, SFNumber: "SF001", ClientName: "Acme", PublishedAt: &published},
			{ID: 2, SFNumber: "SF002", ClientName: "Globex"},
		}}
		server := newResourceServer(t, records, nil)

		res, err := server.handleRecordsResource(context.Background(), makeReadResourceRequest("docsync://records"))
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)

		var body struct {
			Total   int `json:"total"`
			Records []struct {
				ID        int64 `json:"id"`
				Published bool  `json:"published"`
			} `json:"records"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &body))
		assert.Equal(t, 2, body.Total)
		assert.True(t, body.Records[0].Published)
		assert.False(t, body.Records[1].Published)
	})

	t.Run("empty without record service", func(t *testing.T) {
		server := newResourceServer(t, nil, nil)

		res, err := server.handleRecordsResource(context.Background(), makeReadResourceRequest("docsync://records"))
		require.NoError(t, err)
		assert.Equal(t, "[]", res.Contents[0].Text)
	})
}

func TestHandleRecordResource(t *testing.T) {
	t.Run("returns the record", func(t *testing.T) {
		records := &mockRecordService{record: &domain.Record{ID: 7, SFNumber: "SF007"}}
		server := newResourceServer(t, records, nil)

		res, err := server.handleRecordResource(context.Background(), makeReadResourceRequest("docsync://records/7"))
		require.NoError(t, err)
		assert.Contains(t, res.Contents[0].Text, `"SF007"`)
		assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	})

	t.Run("unknown record is not found", func(t *testing.T) {
		server := newResourceServer(t, &mockRecordService{err: domain.ErrNotFound}, nil)

		_, err := server.handleRecordResource(context.Background(), makeReadResourceRequest("docsync://records/9"))
		assert.Error(t, err)
	})

	t.Run("bad uri is not found", func(t *testing.T) {
		server := newResourceServer(t, &mockRecordService{}, nil)

		_, err := server.handleRecordResource(context.Background(), makeReadResourceRequest("docsync://records/x"))
		assert.Error(t, err)
	})
}

func TestHandleHealthResource(t *testing.T) {
	health := &mockHealthService{statuses: []domain.HealthStatus{
		{Name: "search", Healthy: true},
		{Name: "enrichment", Healthy: false, Error: "unreachable"},
	}}
	server := newResourceServer(t, nil, health)

	res, err := server.handleHealthResource(context.Background(), makeReadResourceRequest("docsync://health"))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"unreachable"`)
}
