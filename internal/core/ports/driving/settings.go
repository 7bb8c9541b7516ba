package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEngine selects the search engine.
	SetEngine(kind domain.EngineKind, host, apiKey string) error

	// SetEnrichment configures the enrichment API.
	SetEnrichment(baseURL, token string) error

	// Validate checks that the settings can build a working service.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// SchedulerConfig returns the configured background tasks.
	SchedulerConfig() domain.SchedulerConfig
}

// HealthService reports reachability of external dependencies.
type HealthService interface {
	// Check probes every configured dependency.
	Check(ctx context.Context) []domain.HealthStatus
}
