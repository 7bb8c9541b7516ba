package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PublishAction is the kind of publish-state change an update requests.
type PublishAction int

// Publish actions.
const (
	// PublishUnchanged leaves the stored publishedAt untouched.
	PublishUnchanged PublishAction = iota

	// PublishClear unpublishes the record.
	PublishClear

	// PublishSet publishes the record at PublishDirective.At.
	PublishSet
)

// String returns the string representation.
func (a PublishAction) String() string {
	switch a {
	case PublishUnchanged:
		return "unchanged"
	case PublishClear:
		return "clear"
	case PublishSet:
		return "set"
	default:
		return "unknown"
	}
}

// PublishDirective is the typed publish intent of an update request.
type PublishDirective struct {
	Action PublishAction
	At     time.Time
}

// Operation names the lifecycle operation a write performed.
type Operation string

// Lifecycle operations.
const (
	OperationCreated     Operation = "created"
	OperationUpdated     Operation = "updated"
	OperationPublished   Operation = "published"
	OperationUnpublished Operation = "unpublished"
	OperationDeleted     Operation = "deleted"
)

// Operation returns the lifecycle operation an update with this directive
// performs.
func (d PublishDirective) Operation() Operation {
	switch d.Action {
	case PublishClear:
		return OperationUnpublished
	case PublishSet:
		return OperationPublished
	default:
		return OperationUpdated
	}
}

// Apply writes the directive onto rec.
func (d PublishDirective) Apply(rec *Record) {
	switch d.Action {
	case PublishClear:
		rec.PublishedAt = nil
	case PublishSet:
		at := d.At.UTC()
		rec.PublishedAt = &at
	}
}

// Matches reports whether the stored value honours the directive.
// Instants are compared at millisecond precision, the resolution of the
// canonical date format.
func (d PublishDirective) Matches(stored *time.Time) bool {
	switch d.Action {
	case PublishClear:
		return stored == nil || stored.IsZero()
	case PublishSet:
		if stored == nil {
			return false
		}
		return stored.UTC().Truncate(time.Millisecond).Equal(d.At.UTC().Truncate(time.Millisecond))
	default:
		return true
	}
}

// ParsePublishDirective builds a directive from the raw publishedAt value of
// an update payload. present is false when the key was omitted.
//
//   - absent               → Unchanged
//   - nil, "", false       → Clear
//   - true, "true", "1"    → Set(now)
//   - other string         → Set(parsed instant)
//   - 0                    → Clear
//   - positive number      → Set(epoch milliseconds)
//
// Any other value, or a string that is not a date, is invalid input.
func ParsePublishDirective(present bool, raw any, now time.Time) (PublishDirective, error) {
	if !present {
		return PublishDirective{Action: PublishUnchanged}, nil
	}

	switch v := raw.(type) {
	case nil:
		return PublishDirective{Action: PublishClear}, nil
	case bool:
		if v {
			return PublishDirective{Action: PublishSet, At: now.UTC()}, nil
		}
		return PublishDirective{Action: PublishClear}, nil
	case string:
		s := strings.TrimSpace(v)
		switch s {
		case "":
			return PublishDirective{Action: PublishClear}, nil
		case "true", "1":
			return PublishDirective{Action: PublishSet, At: now.UTC()}, nil
		}
		at, ok := NormalizeDate(s)
		if !ok {
			return PublishDirective{}, fmt.Errorf("%w: publishedAt %q is not a valid date", ErrInvalidInput, v)
		}
		return PublishDirective{Action: PublishSet, At: at}, nil
	case float64:
		return epochDirective(v)
	case int:
		return epochDirective(float64(v))
	case int64:
		return epochDirective(float64(v))
	default:
		return PublishDirective{}, fmt.Errorf("%w: publishedAt has unsupported type %T", ErrInvalidInput, raw)
	}
}

// epochDirective treats ms as milliseconds since the Unix epoch.
func epochDirective(ms float64) (PublishDirective, error) {
	switch {
	case ms == 0:
		return PublishDirective{Action: PublishClear}, nil
	case ms < 0 || math.IsInf(ms, 0) || math.IsNaN(ms):
		return PublishDirective{}, fmt.Errorf("%w: publishedAt %v is not a valid timestamp", ErrInvalidInput, ms)
	}
	return PublishDirective{Action: PublishSet, At: time.UnixMilli(int64(ms)).UTC()}, nil
}
