package auth

import (
	"fmt"
)

// ErrorKind classifies why a usable credential could not be produced
type ErrorKind int

const (
	KindNoCredential ErrorKind = iota + 1
	KindAuthExpired
	KindAuthDenied
	KindRefreshFailed
	KindStorage
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoCredential:
		return "no credential"
	case KindAuthExpired:
		return "device authorization expired"
	case KindAuthDenied:
		return "authorization denied"
	case KindRefreshFailed:
		return "token refresh failed"
	case KindStorage:
		return "credential storage error"
	case KindNetwork:
		return "authorization server unreachable"
	default:
		return "authentication error"
	}
}

// AuthError is returned for every authentication failure. Compare kinds with
// errors.Is against the Err* values below.
type AuthError struct {
	Kind ErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNoCredential  = &AuthError{Kind: KindNoCredential}
	ErrAuthExpired   = &AuthError{Kind: KindAuthExpired}
	ErrAuthDenied    = &AuthError{Kind: KindAuthDenied}
	ErrRefreshFailed = &AuthError{Kind: KindRefreshFailed}
	ErrStorage       = &AuthError{Kind: KindStorage}
	ErrNetwork       = &AuthError{Kind: KindNetwork}
)

func newAuthError(kind ErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// StorageError reports an unreadable or corrupt credential file at path
func StorageError(path string, err error) *AuthError {
	return newAuthError(KindStorage, fmt.Errorf("%s: %w", path, err))
}
