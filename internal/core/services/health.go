package services

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure HealthService implements the interface.
var _ driving.HealthService = (*HealthService)(nil)

// Dependency names reported by health checks.
const (
	HealthSearch     = "search"
	HealthEnrichment = "enrichment"
)

// healthProbeTimeout bounds each dependency probe.
const healthProbeTimeout = 5 * time.Second

// HealthService probes external dependencies.
type HealthService struct {
	index      driven.SearchIndex
	enrichment driven.EnrichmentClient
}

// NewHealthService creates a health service. Either dependency may be nil,
// in which case it is reported as unhealthy with an explanatory error.
func NewHealthService(index driven.SearchIndex, enrichment driven.EnrichmentClient) *HealthService {
	return &HealthService{index: index, enrichment: enrichment}
}

// Check probes every dependency in turn.
func (h *HealthService) Check(ctx context.Context) []domain.HealthStatus {
	statuses := make([]domain.HealthStatus, 0, 2)

	if h.enrichment == nil {
		statuses = append(statuses, unavailable(HealthEnrichment, domain.ErrEnrichmentUnavailable))
	} else {
		statuses = append(statuses, probe(ctx, HealthEnrichment, h.enrichment.Health))
	}

	if h.index == nil {
		statuses = append(statuses, unavailable(HealthSearch, domain.ErrSearchUnavailable))
	} else {
		statuses = append(statuses, probe(ctx, HealthSearch, h.index.Health))
	}

	return statuses
}

// Healthy reports whether every status is healthy.
func Healthy(statuses []domain.HealthStatus) bool {
	for _, s := range statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

func probe(ctx context.Context, name string, check func(context.Context) error) domain.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	status := domain.HealthStatus{
		Name:      name,
		Healthy:   err == nil,
		Latency:   time.Since(start),
		CheckedAt: start,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

func unavailable(name string, err error) domain.HealthStatus {
	return domain.HealthStatus{
		Name:      name,
		Error:     err.Error(),
		CheckedAt: time.Now(),
	}
}
