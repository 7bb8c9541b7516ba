package enrichment

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// errNoToken is returned by the token source when no credential is set.
var errNoToken = errors.New("no enrichment token configured")

// tokenSource adapts a TokenProvider to oauth2.TokenSource.
// It is not wrapped in oauth2.ReuseTokenSource, so every request asks the
// provider again and picks up rotated tokens.
type tokenSource struct {
	provider driven.TokenProvider
	ctx      context.Context
}

func newTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return &tokenSource{provider: provider, ctx: ctx}
}

// Token implements oauth2.TokenSource.
func (t *tokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, errNoToken
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}, nil
}
