package domain

import (
	"fmt"
	"time"
)

// EnrichmentResult is the response of the enrichment API for one key.
type EnrichmentResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Message string         `json:"message,omitempty"`
}

// RecordPatch is a partial update of a record.
// Only non-nil fields are written.
type RecordPatch struct {
	// Fields maps business field names to their new values.
	Fields map[string]string

	Locale      *string
	Description *[]Block

	// AttachmentIDs replaces the attachment relation when non-nil.
	AttachmentIDs *[]int64

	ManualOverride *bool

	// Publish is the publish-state intent of the update.
	Publish PublishDirective
}

// Apply writes the patch onto rec. Unknown field names are invalid input.
func (p RecordPatch) Apply(rec *Record) error {
	for name, value := range p.Fields {
		if !rec.SetField(name, value) {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, name)
		}
	}
	if p.Locale != nil {
		rec.Locale = *p.Locale
	}
	if p.Description != nil {
		rec.Description = *p.Description
	}
	if p.ManualOverride != nil {
		rec.ManualOverride = *p.ManualOverride
	}
	p.Publish.Apply(rec)
	return nil
}

// SFNumber returns the patched uniqueness key, if the patch sets one.
func (p RecordPatch) SFNumber() (string, bool) {
	v, ok := p.Fields[FieldSFNumber]
	return v, ok
}

// PatchFromEnrichment maps enrichment data onto a patch of business fields.
// Non-string values are rendered with fmt; unknown keys are ignored.
func PatchFromEnrichment(data map[string]any) RecordPatch {
	fields := make(map[string]string)
	for key, value := range data {
		if !IsBusinessField(key) || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			fields[key] = v
		case float64:
			fields[key] = fmt.Sprintf("%g", v)
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	override := true
	return RecordPatch{Fields: fields, ManualOverride: &override}
}

// UpdateResult is the outcome of a record update.
type UpdateResult struct {
	Record    *Record   `json:"record"`
	Operation Operation `json:"operation"`

	// Warnings lists non-fatal anomalies, such as a stored publishedAt that
	// does not match the requested directive.
	Warnings []string `json:"warnings,omitempty"`
}

// HealthStatus reports reachability of one dependency.
type HealthStatus struct {
	Name      string        `json:"name"`
	Healthy   bool          `json:"healthy"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency"`
	CheckedAt time.Time     `json:"checkedAt"`
}
