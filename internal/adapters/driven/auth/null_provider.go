package auth

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider is used when the enrichment API needs no credential.
type NullTokenProvider struct{}

// NewNullTokenProvider creates a provider that never returns a token.
func NewNullTokenProvider() *NullTokenProvider {
	return &NullTokenProvider{}
}

// GetToken returns an empty string.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	return "", nil
}

// IsAuthenticated always returns false; requests are sent without a header.
func (p *NullTokenProvider) IsAuthenticated() bool {
	return false
}
