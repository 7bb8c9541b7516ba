package httpapi

import (
	"errors"

	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// ErrMissingRecordService is returned when Ports has no RecordService.
var ErrMissingRecordService = errors.New("httpapi: record service is required")

// Ports holds the driving ports the HTTP API calls into.
type Ports struct {
	Records driving.RecordService

	// Search and Index are optional; their routes answer 503 when nil.
	Search driving.SearchService
	Index  driving.IndexAdmin

	Health driving.HealthService
}

// Validate checks that the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Records == nil {
		return ErrMissingRecordService
	}
	return nil
}
