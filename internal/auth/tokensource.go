package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource returns a source for long-lived clients. It hands out initial
// until that comes within ExpirySkew of expiry, then goes back through
// EnsureValidCredential, which refreshes and persists a new credential.
// ctx bounds those refreshes.
func (e *Engine) TokenSource(ctx context.Context, initial *Credential) oauth2.TokenSource {
	var tok *oauth2.Token
	if initial != nil {
		tok = initial.Token()
	}
	return oauth2.ReuseTokenSourceWithExpiry(tok, &engineTokenSource{ctx: ctx, engine: e}, ExpirySkew)
}

type engineTokenSource struct {
	ctx    context.Context
	engine *Engine
}

func (s *engineTokenSource) Token() (*oauth2.Token, error) {
	cred, err := s.engine.EnsureValidCredential(s.ctx)
	if err != nil {
		return nil, err
	}
	return cred.Token(), nil
}
