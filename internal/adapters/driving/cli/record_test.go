package cli

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestRecordGet(t *testing.T) {
	ts := setupTestServices(t)
	ts.records.record = &domain.Record{
		ID: 7, SFNumber: "SF007", ClientName: "Acme",
		Attachments: []domain.Attachment{{ID: 3, Name: "deck.pdf", URL: "/uploads/deck.pdf"}},
	}

	out, err := run(t, "record", "get", "7")

	require.NoError(t, err)
	assert.Equal(t, int64(7), ts.records.lastID)
	assert.Contains(t, out, "Record 7")
	assert.Contains(t, out, "draft")
	assert.Contains(t, out, "SF007")
	assert.Contains(t, out, "[3] deck.pdf")
}

func TestRecordGet_InvalidID(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "record", "get", "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid record id")
}

func TestRecordGet_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "record", "get", "9")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordList(t *testing.T) {
	ts := setupTestServices(t)
	ts.records.records = []domain.Record{{ID: 1, SFNumber: "SF001"}, {ID: 2, SFNumber: "SF002"}}

	out, err := run(t, "record", "list", "--state", "live", "-n", "5", "--offset", "10")

	require.NoError(t, err)
	assert.Equal(t, domain.PublicationLive, ts.records.lastFilter.PublicationState)
	assert.Equal(t, 5, ts.records.lastFilter.Limit)
	assert.Equal(t, 10, ts.records.lastFilter.Offset)
	assert.Contains(t, out, "Showing 2 of 2 records")
}

func TestRecordCreate(t *testing.T) {
	ts := setupTestServices(t)

	out, err := run(t, "record", "create",
		"--set", "SF_Number=SF042", "--set", "Client_Name=Acme", "--locale", "en",
		"--attachments", "3,4", "--publish")

	require.NoError(t, err)
	rec := ts.records.created
	require.NotNil(t, rec)
	assert.Equal(t, "SF042", rec.SFNumber)
	assert.Equal(t, "Acme", rec.ClientName)
	assert.Equal(t, "en", rec.Locale)
	assert.Equal(t, []int64{3, 4}, rec.AttachmentIDs())
	require.NotNil(t, rec.PublishedAt)
	assert.Contains(t, out, "Created record 42 (published 2025-03-01T12:00:00Z)")
}

func TestRecordCreate_UnknownField(t *testing.T) {
	ts := setupTestServices(t)

	_, err := run(t, "record", "create", "--set", "Colour=red")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "Colour"`)
	assert.Nil(t, ts.records.created)
}

func TestRecordCreate_IndexSyncIsReported(t *testing.T) {
	ts := setupTestServices(t)
	ts.records.err = fmt.Errorf("%w: engine down", domain.ErrIndexSync)

	out, err := run(t, "record", "create", "--set", "SF_Number=SF042")

	require.NoError(t, err)
	assert.Contains(t, out, "Created record 42, but the index was not updated")
}

func TestRecordUpdate(t *testing.T) {
	ts := setupTestServices(t)

	out, err := run(t, "record", "update", "7", "--set", "City=Paris")

	require.NoError(t, err)
	assert.Equal(t, int64(7), ts.records.lastID)
	assert.Equal(t, map[string]string{"City": "Paris"}, ts.records.patch.Fields)
	assert.Nil(t, ts.records.patch.Locale)
	assert.Nil(t, ts.records.patch.AttachmentIDs)
	assert.Equal(t, domain.PublishUnchanged, ts.records.patch.Publish.Action)
	assert.Contains(t, out, "Record 7 updated (draft)")
}

func TestRecordPublish(t *testing.T) {
	ts := setupTestServices(t)

	out, err := run(t, "record", "publish", "7")

	require.NoError(t, err)
	assert.Equal(t, domain.PublishSet, ts.records.patch.Publish.Action)
	assert.True(t, ts.records.patch.Publish.At.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Contains(t, out, "Record 7 published")
}

func TestRecordPublish_At(t *testing.T) {
	ts := setupTestServices(t)

	_, err := run(t, "record", "publish", "7", "--at", "2024-06-01T08:00:00.000Z")

	require.NoError(t, err)
	assert.True(t, ts.records.patch.Publish.At.Equal(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)))
}

func TestRecordPublish_BadDate(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "record", "publish", "7", "--at", "soon")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordUnpublish_ReportsWarnings(t *testing.T) {
	ts := setupTestServices(t)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.records.result = &domain.UpdateResult{
		Record:    &domain.Record{ID: 7, PublishedAt: &at},
		Operation: domain.OperationUnpublished,
		Warnings:  []string{"requested unpublish but publishedAt is still set"},
	}

	out, err := run(t, "record", "unpublish", "7")

	require.NoError(t, err)
	assert.Equal(t, domain.PublishClear, ts.records.patch.Publish.Action)
	assert.Contains(t, out, "Warning: requested unpublish")
}

func TestRecordDelete(t *testing.T) {
	ts := setupTestServices(t)

	out, err := run(t, "record", "delete", "7")

	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ts.records.deleted)
	assert.Contains(t, out, "Deleted record 7")
}

func TestRecordAutoPopulate(t *testing.T) {
	ts := setupTestServices(t)

	out, err := run(t, "record", "auto-populate", "7")

	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ts.records.populated)
	assert.Contains(t, out, "Record 7 updated")
}

func TestRecordAutoPopulate_Failure(t *testing.T) {
	ts := setupTestServices(t)
	ts.records.err = fmt.Errorf("%w: failed to fetch data from external API", domain.ErrEnrichmentFailed)

	_, err := run(t, "record", "auto-populate", "7")

	assert.ErrorIs(t, err, domain.ErrEnrichmentFailed)
}
