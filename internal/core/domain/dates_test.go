package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"garbage", "not-a-date", nil},
		{"rfc3339 utc", "2025-03-04T05:06:07Z", strPtr("2025-03-04T05:06:07.000Z")},
		{"rfc3339 millis", "2025-03-04T05:06:07.123Z", strPtr("2025-03-04T05:06:07.123Z")},
		{"offset converted to utc", "2025-03-04T07:06:07+02:00", strPtr("2025-03-04T05:06:07.000Z")},
		{"no zone", "2025-03-04T05:06:07", strPtr("2025-03-04T05:06:07.000Z")},
		{"sql datetime", "2025-03-04 05:06:07", strPtr("2025-03-04T05:06:07.000Z")},
		{"date only", "2025-03-04", strPtr("2025-03-04T00:00:00.000Z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalDate(tt.raw))
		})
	}
}

func TestNormalizeDate_ReportsAbsence(t *testing.T) {
	_, ok := NormalizeDate("")
	assert.False(t, ok)

	got, ok := NormalizeDate("2025-03-04T05:06:07Z")
	assert.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
}

func TestFormatDate(t *testing.T) {
	assert.Nil(t, FormatDate(nil))

	zero := time.Time{}
	assert.Nil(t, FormatDate(&zero))

	at := time.Date(2025, 12, 31, 23, 59, 59, 999_999_999, time.UTC)
	assert.Equal(t, "2025-12-31T23:59:59.999Z", *FormatDate(&at))
}

func strPtr(s string) *string {
	return &s
}
