// Package auth provides token providers for outbound API credentials.
package auth

import (
	"context"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure ConfigTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ConfigTokenProvider)(nil)

// ConfigTokenProvider serves a static bearer token held in configuration.
// The key is read on every call, so a rotated token is used as soon as the
// config store reloads.
type ConfigTokenProvider struct {
	store driven.ConfigStore
	key   string
}

// NewConfigTokenProvider creates a provider reading key from store.
func NewConfigTokenProvider(store driven.ConfigStore, key string) *ConfigTokenProvider {
	return &ConfigTokenProvider{store: store, key: key}
}

// GetToken returns the configured token, or "" when none is set.
func (p *ConfigTokenProvider) GetToken(_ context.Context) (string, error) {
	return strings.TrimSpace(p.store.GetString(p.key)), nil
}

// IsAuthenticated returns true if a non-empty token is configured.
func (p *ConfigTokenProvider) IsAuthenticated() bool {
	return strings.TrimSpace(p.store.GetString(p.key)) != ""
}
