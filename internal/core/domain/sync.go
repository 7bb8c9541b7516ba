package domain

import (
	"fmt"
	"time"
)

// Index task statuses reported by the search engine.
const (
	TaskStatusEnqueued   = "enqueued"
	TaskStatusProcessing = "processing"
	TaskStatusSucceeded  = "succeeded"
	TaskStatusFailed     = "failed"
	TaskStatusCanceled   = "canceled"
)

// IndexTask is an asynchronous unit of work accepted by the search engine.
type IndexTask struct {
	UID        int64     `json:"taskUid"`
	IndexUID   string    `json:"indexUid"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	EnqueuedAt time.Time `json:"enqueuedAt"`

	// Error is set when a waited-for task ends in failure.
	Error string `json:"error,omitempty"`
}

// IsFinished reports whether the task reached a terminal status.
func (t IndexTask) IsFinished() bool {
	switch t.Status {
	case TaskStatusSucceeded, TaskStatusFailed, TaskStatusCanceled:
		return true
	default:
		return false
	}
}

// IndexStats is a snapshot of the index as reported by the engine.
type IndexStats struct {
	NumberOfDocuments int64            `json:"numberOfDocuments"`
	IsIndexing        bool             `json:"isIndexing"`
	FieldDistribution map[string]int64 `json:"fieldDistribution"`
}

// IndexStatsReport is IndexStats plus the attribute lists currently applied.
type IndexStatsReport struct {
	IndexStats
	Settings IndexSettings `json:"settings"`
}

// BatchFailure records a rebuild batch the engine rejected.
type BatchFailure struct {
	Batch int    `json:"batch"`
	Size  int    `json:"size"`
	Err   string `json:"error"`
}

// RebuildResult summarises a full rebuild.
// Indexed + Skipped equals the number of published records read.
type RebuildResult struct {
	RunID    string         `json:"runId,omitempty"`
	Indexed  int            `json:"indexed"`
	Skipped  int            `json:"skipped"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// Message describes a completed rebuild. Rejected batches do not fail the
// rebuild; they are reported through Skipped and Failures.
func (r *RebuildResult) Message() string {
	msg := fmt.Sprintf("Index rebuilt successfully. Indexed %d documents.", r.Indexed)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" Skipped %d documents in %d batches.", r.Skipped, len(r.Failures))
	}
	return msg
}

// RefreshResult summarises a clear followed by a rebuild.
type RefreshResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Stats   RebuildResult `json:"stats"`
}

// ConfigureReport describes the index after a complete settings apply.
type ConfigureReport struct {
	SearchableAttributesCount int      `json:"searchableAttributesCount"`
	FilterableAttributesCount int      `json:"filterableAttributesCount"`
	SortableAttributesCount   int      `json:"sortableAttributesCount"`
	DocumentsCount            int64    `json:"documentsCount"`
	ConfiguredFields          []string `json:"configuredFields"`
	DisplayedAttributes       []string `json:"displayedAttributes"`
}
