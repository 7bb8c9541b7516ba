package domain

import (
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// EngineKind selects the search engine behind the index port.
type EngineKind string

// Available search engines.
const (
	// EngineMeilisearch talks to a Meilisearch server over HTTP.
	EngineMeilisearch EngineKind = "meilisearch"

	// EngineEmbedded runs an embedded full-text index in process.
	EngineEmbedded EngineKind = "embedded"
)

// IsValid returns true if the engine kind is recognised.
func (k EngineKind) IsValid() bool {
	switch k {
	case EngineMeilisearch, EngineEmbedded:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k EngineKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the engine.
func (k EngineKind) Description() string {
	switch k {
	case EngineMeilisearch:
		return "Meilisearch (remote server)"
	case EngineEmbedded:
		return "Embedded (in-process index)"
	default:
		return unknownDescription
	}
}

// SearchEngineSettings holds search engine connection configuration.
type SearchEngineSettings struct {
	// Kind is the engine implementation.
	Kind EngineKind

	// Host is the Meilisearch base URL.
	Host string

	// APIKey authenticates against Meilisearch.
	APIKey string

	// IndexName is the name of the document index.
	IndexName string
}

// IsConfigured returns true if the engine can be constructed.
func (s SearchEngineSettings) IsConfigured() bool {
	switch s.Kind {
	case EngineMeilisearch:
		return strings.TrimSpace(s.Host) != "" && s.IndexName != ""
	case EngineEmbedded:
		return s.IndexName != ""
	default:
		return false
	}
}

// EnrichmentSettings holds enrichment API configuration.
type EnrichmentSettings struct {
	// BaseURL is the API root; empty disables enrichment.
	BaseURL string

	// Token is the bearer credential.
	Token string

	// Timeout bounds each request.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls.
	RequestsPerSecond float64
}

// IsConfigured returns true if enrichment requests can be made.
func (e EnrichmentSettings) IsConfigured() bool {
	return strings.TrimSpace(e.BaseURL) != ""
}

// ServerSettings holds listener configuration for serve.
type ServerSettings struct {
	// Addr is the HTTP API listen address.
	Addr string

	// MCPAddr is the MCP streamable-HTTP listen address; empty disables it.
	MCPAddr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Engine holds search engine settings.
	Engine SearchEngineSettings

	// Enrichment holds enrichment API settings.
	Enrichment EnrichmentSettings

	// Server holds listener settings.
	Server ServerSettings

	// DataDir holds the record database and the embedded index.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool
}

// Default settings values.
const (
	DefaultMeilisearchHost = "http://localhost:7700"
	DefaultIndexName       = "document_stores"
	DefaultPrimaryKey      = "id"
	DefaultServerAddr      = ":1337"
	DefaultEnrichmentRPS   = 5.0
	DefaultEnrichmentWait  = 10 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// Enrichment is left unconfigured; the MCP listener is off.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Engine: SearchEngineSettings{
			Kind:      EngineMeilisearch,
			Host:      DefaultMeilisearchHost,
			IndexName: DefaultIndexName,
		},
		Enrichment: EnrichmentSettings{
			Timeout:           DefaultEnrichmentWait,
			RequestsPerSecond: DefaultEnrichmentRPS,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// AllEngineKinds returns all available engines.
func AllEngineKinds() []EngineKind {
	return []EngineKind{EngineMeilisearch, EngineEmbedded}
}
