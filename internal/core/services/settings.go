package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEngine            = "search.engine"
	KeySearchHost        = "search.host"
	KeySearchAPIKey      = "search.api_key"
	KeySearchIndex       = "search.index"
	KeyEnrichmentURL     = "enrichment.base_url"
	KeyEnrichmentToken   = "enrichment.token"
	KeyEnrichmentTimeout = "enrichment.timeout"
	KeyEnrichmentRPS     = "enrichment.requests_per_second"
	KeyServerAddr        = "server.addr"
	KeyServerMCPAddr     = "server.mcp_addr"
	KeyDataDir           = "data_dir"
	KeyVerbose           = "verbose"
	KeySchedulerEnabled  = "scheduler.enabled"
	KeyReconcileEnabled  = "scheduler.reconcile.enabled"
	KeyReconcileInterval = "scheduler.reconcile.interval"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Engine: domain.SearchEngineSettings{
			Kind:      s.getEngine(defaults.Engine.Kind),
			Host:      s.getString(KeySearchHost, defaults.Engine.Host),
			APIKey:    s.configStore.GetString(KeySearchAPIKey),
			IndexName: s.getString(KeySearchIndex, defaults.Engine.IndexName),
		},
		Enrichment: domain.EnrichmentSettings{
			BaseURL:           s.configStore.GetString(KeyEnrichmentURL),
			Token:             s.configStore.GetString(KeyEnrichmentToken),
			Timeout:           s.getDuration(KeyEnrichmentTimeout, defaults.Enrichment.Timeout),
			RequestsPerSecond: s.getFloat(KeyEnrichmentRPS, defaults.Enrichment.RequestsPerSecond),
		},
		Server: domain.ServerSettings{
			Addr:    s.getString(KeyServerAddr, defaults.Server.Addr),
			MCPAddr: s.configStore.GetString(KeyServerMCPAddr),
		},
		DataDir: s.configStore.GetString(KeyDataDir),
		Verbose: s.getBool(KeyVerbose, defaults.Verbose),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyEngine, settings.Engine.Kind.String()},
		{KeySearchHost, settings.Engine.Host},
		{KeySearchIndex, settings.Engine.IndexName},
		{KeyEnrichmentURL, settings.Enrichment.BaseURL},
		{KeyEnrichmentTimeout, settings.Enrichment.Timeout.String()},
		{KeyEnrichmentRPS, settings.Enrichment.RequestsPerSecond},
		{KeyServerAddr, settings.Server.Addr},
		{KeyServerMCPAddr, settings.Server.MCPAddr},
		{KeyVerbose, settings.Verbose},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so a save never erases them.
	if settings.Engine.APIKey != "" {
		if err := s.configStore.Set(KeySearchAPIKey, settings.Engine.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeySearchAPIKey, err)
		}
	}
	if settings.Enrichment.Token != "" {
		if err := s.configStore.Set(KeyEnrichmentToken, settings.Enrichment.Token); err != nil {
			return fmt.Errorf("save %s: %w", KeyEnrichmentToken, err)
		}
	}
	if settings.DataDir != "" {
		if err := s.configStore.Set(KeyDataDir, settings.DataDir); err != nil {
			return fmt.Errorf("save %s: %w", KeyDataDir, err)
		}
	}

	return nil
}

// SetEngine selects the search engine.
func (s *SettingsService) SetEngine(kind domain.EngineKind, host, apiKey string) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: invalid search engine: %s", domain.ErrInvalidInput, kind)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Engine.Kind = kind
	if host != "" {
		if err := validateURL(host); err != nil {
			return err
		}
		settings.Engine.Host = host
	}
	settings.Engine.APIKey = apiKey

	return s.Save(settings)
}

// SetEnrichment configures the enrichment API.
func (s *SettingsService) SetEnrichment(baseURL, token string) error {
	if err := validateURL(baseURL); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Enrichment.BaseURL = baseURL
	settings.Enrichment.Token = token

	return s.Save(settings)
}

// Validate checks that the settings can build a working service.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Engine.Kind.IsValid() {
		return fmt.Errorf("invalid search engine: %s", settings.Engine.Kind)
	}
	if !settings.Engine.IsConfigured() {
		return fmt.Errorf("search engine %q is not fully configured", settings.Engine.Kind.Description())
	}
	if settings.Engine.Kind == domain.EngineMeilisearch {
		if err := validateURL(settings.Engine.Host); err != nil {
			return err
		}
	}
	if settings.Enrichment.IsConfigured() {
		if err := validateURL(settings.Enrichment.BaseURL); err != nil {
			return err
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// SchedulerConfig returns the configured background tasks.
func (s *SettingsService) SchedulerConfig() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()
	cfg.Enabled = s.getBool(KeySchedulerEnabled, cfg.Enabled)

	reconcile := cfg.GetTaskConfig(domain.TaskIDIndexReconcile)
	reconcile.Enabled = s.getBool(KeyReconcileEnabled, reconcile.Enabled)
	reconcile.Interval = s.getDuration(KeyReconcileInterval, reconcile.Interval)
	cfg.TaskConfigs[domain.TaskIDIndexReconcile] = reconcile

	return cfg
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", domain.ErrInvalidInput, raw)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getEngine(defaultVal domain.EngineKind) domain.EngineKind {
	val := s.configStore.GetString(KeyEngine)
	if val == "" {
		return defaultVal
	}
	kind := domain.EngineKind(val)
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
