package driven

import "context"

// TokenProvider supplies the bearer credential for the enrichment API.
// Implementations read the credential on every call so a rotated token is
// picked up without a restart.
type TokenProvider interface {
	// GetToken returns the current access token.
	// Returns an empty string when no credential is configured.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a credential is available.
	IsAuthenticated() bool
}
