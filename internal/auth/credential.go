package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// ExpirySkew is subtracted from a credential's expiry when judging validity so a
// token is not handed out seconds before GitLab starts rejecting it
const ExpirySkew = 30 * time.Second

// defaultTokenLifetime applies when the token response carries no expires_in
const defaultTokenLifetime = 7200 * time.Second

// Credential is the persisted OAuth2 grant for one GitLab host
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`

	Host     string `json:"host,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Expired reports whether the credential must be refreshed before use at now
func (c *Credential) Expired(now time.Time) bool {
	return !now.Before(c.Expiry.Add(-ExpirySkew))
}

// Refreshable reports whether a refresh grant can be attempted
func (c *Credential) Refreshable() bool {
	return c.RefreshToken != ""
}

// Token converts the credential for use with an oauth2.TokenSource
func (c *Credential) Token() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    tokenType,
		Expiry:       c.Expiry,
	}
}

// TokenSource returns a source that always yields this credential's access
// token, for one-off requests. Clients that outlive the token use
// Engine.TokenSource.
func (c *Credential) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(c.Token())
}

func credentialFromToken(tok *oauth2.Token, now time.Time) *Credential {
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = now.Add(defaultTokenLifetime)
	}
	// strip the monotonic reading so the value survives a JSON round trip unchanged
	expiry = expiry.Round(0).UTC()
	return &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       expiry,
	}
}
