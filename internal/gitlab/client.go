// Package gitlab is a thin client for the GitLab REST v4 API, covering the
// merge request, pipeline, job and issue endpoints the CLI uses.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-querystring/query"
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const userAgent = "gitlab-cli"

// Client talks to one GitLab instance
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for apiURL (for example https://gitlab.com/api/v4)
// with the following transport stack:
//  1. oauth2 (Bearer token from ts)
//  2. go-github-ratelimit (sleeps on 429 with Retry-After)
//  3. httpcache (ETag-based conditional requests)
func NewClient(apiURL string, ts oauth2.TokenSource) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: tokenSource{ts},
			Base:   rateLimitClient.Transport,
		},
	}
	return NewClientWithHTTPClient(httpClient, apiURL)
}

// tokenSource marks token failures so do() can tell them apart from network
// errors
type tokenSource struct {
	src oauth2.TokenSource
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, &TokenError{Err: err}
	}
	return tok, nil
}

// NewClientWithHTTPClient creates a Client with a caller-supplied http.Client.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, apiURL string) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL %q: %w", apiURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API URL %q must be absolute", apiURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{baseURL: u, httpClient: httpClient}, nil
}

// projectPath returns "projects/<id>" with the project's full path escaped so
// "group/sub/proj" stays a single path segment
func projectPath(project string) string {
	return "projects/" + url.PathEscape(project)
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts any, body any) (*http.Request, error) {
	u, err := c.baseURL.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL for %s: %w", path, err)
	}

	if opts != nil {
		values, err := query.Values(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query for %s: %w", path, err)
		}
		u.RawQuery = values.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body for %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and returns the raw body of a 2xx response. Failures come back
// as *APIError, except context cancellation which is returned unwrapped.
func (c *Client) do(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	logger := zerolog.Ctx(ctx)
	path := req.URL.EscapedPath()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var tokErr *TokenError
		if errors.As(err, &tokErr) {
			return nil, &APIError{Method: req.Method, Path: path, Kind: Permanent, Err: tokErr}
		}
		return nil, &APIError{Method: req.Method, Path: path, Kind: Transient, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{Method: req.Method, Path: path, StatusCode: resp.StatusCode, Kind: Transient, Err: err}
	}

	logger.Debug().Str("method", req.Method).Str("path", path).Int("status", resp.StatusCode).Msg("gitlab api")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Kind:       ClassifyStatus(resp.StatusCode),
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

func (c *Client) call(ctx context.Context, method, path string, opts, body, out any) error {
	req, err := c.newRequest(ctx, method, path, opts, body)
	if err != nil {
		return err
	}

	data, err := c.do(req)
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{
			Method:     method,
			Path:       req.URL.EscapedPath(),
			StatusCode: http.StatusOK,
			Kind:       Permanent,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// CurrentUser returns the user the token belongs to
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, "user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
