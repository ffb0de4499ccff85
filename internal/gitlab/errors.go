package gitlab

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind separates failures worth retrying from those that are not
type ErrorKind int

const (
	// Transient failures are expected to succeed on retry: network errors,
	// 5xx, 408 and 429
	Transient ErrorKind = iota + 1
	// Permanent failures will not: 401, 403, 404 and other 4xx
	Permanent
)

func (k ErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// APIError is returned for every failed GitLab API call other than context cancellation
type APIError struct {
	Method     string
	Path       string
	StatusCode int // zero when no response was received
	Kind       ErrorKind
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: ", e.Method, e.Path)
	if e.StatusCode == 0 {
		b.WriteString("request failed")
	} else {
		fmt.Fprintf(&b, "%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyStatus maps an HTTP status code to an ErrorKind
func ClassifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return Transient
	case code >= 500:
		return Transient
	default:
		return Permanent
	}
}

func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == Transient
}

func IsPermanent(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == Permanent
}

func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports a rejected token, or one that could not be obtained
// before sending the request
func IsUnauthorized(err error) bool {
	var tokErr *TokenError
	return hasStatus(err, http.StatusUnauthorized) || errors.As(err, &tokErr)
}

// TokenError is a failure of the client's token source. The request was
// never sent.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	return "failed to obtain access token: " + e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// errorMessage extracts GitLab's error text from a response body. GitLab uses
// {"message": "..."}, {"message": {"field": ["..."]}} and {"error": "..."}.
func errorMessage(body []byte) string {
	var payload struct {
		Message          json.RawMessage `json:"message"`
		Error            string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}

	if len(payload.Message) > 0 {
		var s string
		if err := json.Unmarshal(payload.Message, &s); err == nil {
			return s
		}
		return string(payload.Message)
	}
	if payload.ErrorDescription != "" {
		return payload.Error + ": " + payload.ErrorDescription
	}
	return payload.Error
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
