package auth

import (
	"errors"
	"fmt"

	errs "github.com/jrsteele09/spamscope/internal/errors"
)

var (
	ErrRedirect            = fmt.Errorf("redirect listener failed: %w", errs.ErrNetwork)
	ErrMalformedRedirect   = fmt.Errorf("malformed redirect request: %w", errs.ErrProtocol)
	ErrAuthorizationDenied = fmt.Errorf("authorization denied: %w", errs.ErrAuthRejected)
	ErrStateMismatch       = fmt.Errorf("redirect state mismatch: %w", errs.ErrProtocol)
	ErrMissingCode         = fmt.Errorf("no authorization code in redirect: %w", errs.ErrNotFound)
	ErrTokenNetwork        = fmt.Errorf("token endpoint unreachable: %w", errs.ErrNetwork)
	ErrTokenDecode         = fmt.Errorf("unreadable token response: %w", errs.ErrDecode)
	ErrCallbackTimeout     = fmt.Errorf("timed out waiting for redirect: %w", errs.ErrNetwork)
	ErrLoginInProgress     = errors.New("login already in progress")
)

// TokenExchangeError is a non-success answer from the token endpoint.
type TokenExchangeError struct {
	StatusCode int
	Body       string

	// ErrorCode is the OAuth2 "error" field when the body carried one.
	ErrorCode string
}

func (e *TokenExchangeError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.ErrorCode)
	}
	return fmt.Sprintf("token exchange failed with status %d", e.StatusCode)
}

func (e *TokenExchangeError) Unwrap() error {
	return errs.ErrAuthRejected
}
