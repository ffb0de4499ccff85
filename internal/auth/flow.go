package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Prompter shows the user where to approve a pending device authorization
type Prompter interface {
	DeviceCode(ctx context.Context, code DeviceCode)
}

// PrompterFunc adapts a function to the Prompter interface
type PrompterFunc func(ctx context.Context, code DeviceCode)

func (f PrompterFunc) DeviceCode(ctx context.Context, code DeviceCode) {
	f(ctx, code)
}

// DeviceCode is what the user needs to complete authorization in a browser
type DeviceCode struct {
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
	Expiry                  time.Time
}

// EngineConfig describes the OAuth application and GitLab instance
type EngineConfig struct {
	Host     string
	ClientID string
	Scopes   []string

	// MaxRefreshAttempts bounds refresh grants before falling back to the device
	// flow. Zero means one attempt.
	MaxRefreshAttempts int

	// HTTPClient is used for all OAuth requests; nil uses http.DefaultClient
	HTTPClient *http.Client
}

// Engine produces a usable credential, authenticating interactively only when
// the stored one is missing or cannot be refreshed
type Engine struct {
	store              Store
	prompter           Prompter
	oauth              *oauth2.Config
	host               string
	maxRefreshAttempts int
	httpClient         *http.Client
}

func NewEngine(cfg EngineConfig, store Store, prompter Prompter) *Engine {
	host := strings.TrimRight(cfg.Host, "/")
	maxRefresh := cfg.MaxRefreshAttempts
	if maxRefresh <= 0 {
		maxRefresh = 1
	}

	return &Engine{
		store:    store,
		prompter: prompter,
		oauth: &oauth2.Config{
			ClientID: cfg.ClientID,
			Scopes:   cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:       host + "/oauth/authorize",
				DeviceAuthURL: host + "/oauth/authorize_device",
				TokenURL:      host + "/oauth/token",
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		host:               host,
		maxRefreshAttempts: maxRefresh,
		httpClient:         cfg.HTTPClient,
	}
}

func (e *Engine) oauthContext(ctx context.Context) context.Context {
	if e.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}

// EnsureValidCredential returns a credential that is valid right now. A valid
// stored credential is returned without network access. An expired one is
// refreshed. When the server rejects the refresh token the credential is
// cleared and the device flow runs; any other refresh failure is returned
// with the credential kept. Storage corruption is returned as-is so the user
// decides whether to re-authenticate.
func (e *Engine) EnsureValidCredential(ctx context.Context) (*Credential, error) {
	logger := zerolog.Ctx(ctx)

	cred, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	if cred != nil && cred.Host != "" && cred.Host != e.host {
		logger.Debug().Str("stored_host", cred.Host).Str("host", e.host).Msg("stored credential belongs to another host")
		cred = nil
	}

	if cred == nil {
		logger.Debug().Msg("no stored credential, starting device authorization")
		return e.Login(ctx)
	}

	if !cred.Expired(time.Now()) {
		return cred, nil
	}

	if cred.Refreshable() {
		refreshed, err := e.Refresh(ctx, cred)
		if err == nil {
			return refreshed, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// a refresh token that may still work is kept for the next attempt
		if !irrecoverable(err) {
			return nil, err
		}

		logger.Warn().Err(err).Msg("refresh token rejected, falling back to device authorization")
		if err := e.store.Clear(); err != nil {
			return nil, err
		}
	}

	return e.Login(ctx)
}

// Refresh exchanges the credential's refresh token for a new access token and
// persists the result
func (e *Engine) Refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	if !cred.Refreshable() {
		return nil, newAuthError(KindRefreshFailed, errors.New("credential has no refresh token"))
	}

	logger := zerolog.Ctx(ctx)
	octx := e.oauthContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= e.maxRefreshAttempts; attempt++ {
		// an empty access token forces the source to run the refresh grant
		source := e.oauth.TokenSource(octx, &oauth2.Token{RefreshToken: cred.RefreshToken})
		tok, err := source.Token()
		if err == nil {
			next := credentialFromToken(tok, time.Now())
			next.Host = e.host
			next.ClientID = e.oauth.ClientID
			next.Username = cred.Username
			if name := usernameFromToken(tok); name != "" {
				next.Username = name
			}

			if err := e.store.Save(next); err != nil {
				return nil, err
			}
			logger.Debug().Time("expiry", next.Expiry).Msg("refreshed access token")
			return next, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		logger.Debug().Int("attempt", attempt).Err(err).Msg("refresh attempt failed")
	}

	return nil, newAuthError(KindRefreshFailed, lastErr)
}

// Login runs the device authorization grant unconditionally and stores the
// resulting credential
func (e *Engine) Login(ctx context.Context) (*Credential, error) {
	logger := zerolog.Ctx(ctx)
	octx := e.oauthContext(ctx)

	resp, err := e.oauth.DeviceAuth(octx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		kind := KindAuthDenied
		if !isRetrieveError(err) {
			kind = KindNetwork
		}
		return nil, newAuthError(kind, fmt.Errorf("failed to request device code: %w", err))
	}

	if e.prompter != nil {
		e.prompter.DeviceCode(ctx, DeviceCode{
			UserCode:                resp.UserCode,
			VerificationURI:         resp.VerificationURI,
			VerificationURIComplete: resp.VerificationURIComplete,
			Expiry:                  resp.Expiry,
		})
	}

	logger.Debug().Int64("interval", resp.Interval).Time("expiry", resp.Expiry).Msg("polling for device authorization")

	tok, err := e.oauth.DeviceAccessToken(octx, resp)
	if err != nil {
		return nil, e.classifyDeviceError(ctx, err)
	}

	cred := credentialFromToken(tok, time.Now())
	cred.Host = e.host
	cred.ClientID = e.oauth.ClientID
	cred.Username = usernameFromToken(tok)

	if err := e.store.Save(cred); err != nil {
		return nil, err
	}
	return cred, nil
}

func (e *Engine) classifyDeviceError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// DeviceAccessToken bounds polling with a deadline at the device code's expiry
	if errors.Is(err, context.DeadlineExceeded) {
		return newAuthError(KindAuthExpired, errors.New("device code expired before authorization completed"))
	}

	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return newAuthError(KindNetwork, err)
	}
	if rerr.ErrorCode == "expired_token" {
		return newAuthError(KindAuthExpired, err)
	}

	return newAuthError(KindAuthDenied, err)
}

func isRetrieveError(err error) bool {
	var rerr *oauth2.RetrieveError
	return errors.As(err, &rerr)
}

// irrecoverable reports whether the token endpoint rejected the refresh
// token itself, as opposed to the request never getting an answer
func irrecoverable(err error) bool {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return false
	}
	switch rerr.ErrorCode {
	case "invalid_grant", "invalid_client", "unauthorized_client":
		return true
	case "":
		return rerr.Response != nil && rerr.Response.StatusCode >= 400 && rerr.Response.StatusCode < 500
	default:
		return false
	}
}

// Status returns the stored credential without touching the network
func (e *Engine) Status() (*Credential, error) {
	cred, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if cred == nil || (cred.Host != "" && cred.Host != e.host) {
		return nil, ErrNoCredential
	}
	return cred, nil
}

// Logout forgets the stored credential
func (e *Engine) Logout() error {
	return e.store.Clear()
}
