package oauthmodel

import (
	"net/url"
	"strings"
)

// PKCE verifier and challenge bounds from RFC 7636.
const (
	minPKCELength = 43
	maxPKCELength = 128
)

// AuthorizationParameters are the query parameters of an authorization request
// sent to the identity provider.
type AuthorizationParameters struct {
	// ClientID identifies the registered public client.
	ClientID string

	ResponseType ResponseType

	// RedirectURI must match the URI registered for the client exactly,
	// including the trailing slash.
	RedirectURI string

	ResponseMode ResponseModeType

	// Scope lists the permissions requested; sent space separated.
	Scope []string

	// State is echoed back on the redirect and checked against the session.
	State string

	CodeChallenge       string
	CodeChallengeMethod CodeMethodType
}

// ScopeString returns the scopes in their wire form.
func (p *AuthorizationParameters) ScopeString() string {
	return strings.Join(p.Scope, " ")
}

// Validate checks the parameters before they are sent. Only S256 challenges
// are accepted for the public client.
func (p *AuthorizationParameters) Validate() error {
	if strings.TrimSpace(p.ClientID) == "" {
		return ErrInvalidClientID
	}
	if !responseTypeValid(p.ResponseType) {
		return ErrInvalidResponseType
	}
	if !responseModeValid(p.ResponseMode) {
		return ErrInvalidResponseMode
	}
	if !redirectValid(p.RedirectURI) {
		return ErrInvalidRedirectUri
	}
	if len(p.Scope) == 0 {
		return ErrMissingScope
	}
	if p.State == "" {
		return ErrMissingState
	}
	if len(p.CodeChallenge) < minPKCELength || len(p.CodeChallenge) > maxPKCELength {
		return ErrInvalidCodeChallenge
	}
	if p.CodeChallengeMethod != CodeMethodTypeS256 {
		return ErrInvalidCodeChallengeMethod
	}
	return nil
}

func responseModeValid(responseMode ResponseModeType) bool {
	if strings.TrimSpace(string(responseMode)) == "" {
		return true
	}
	return responseMode == QueryResponseMode
}

func responseTypeValid(responseType ResponseType) bool {
	return responseType == CodeResponseType
}

func redirectValid(redirectURI string) bool {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return false
	}
	return u.Scheme == "http" && u.Host != ""
}
