package config

import (
	"fmt"
	"net/url"
	"time"

	errs "github.com/jrsteele09/spamscope/internal/errors"
)

const (
	MicrosoftAuthorizeURL = "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"
	MicrosoftTokenURL     = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
	LoopbackListenAddr    = "127.0.0.1:15678"
	LoopbackRedirectURI   = "http://localhost:15678/"
	ScopeMailRead         = "https://graph.microsoft.com/Mail.Read"
	ScopeUserRead         = "https://graph.microsoft.com/User.Read"
)

type OAuthConfig interface {
	GetAuthorizeURL() string
	GetTokenURL() string
	GetListenAddr() string
	GetRedirectURI() string
	GetScopes() []string
	GetCallbackTimeout() time.Duration
}

// OAuth describes the identity provider and the loopback redirect used by the login flow.
type OAuth struct {
	AuthorizeURL string
	TokenURL     string

	// ListenAddr is where the one-shot redirect listener binds.
	ListenAddr string

	// RedirectURI must exactly match the URI registered for the public client.
	// Empty means it is derived from the bound listener, which tests rely on with port 0.
	RedirectURI string

	Scopes []string

	// CallbackTimeout bounds how long the listener waits for the browser. Zero disables it.
	CallbackTimeout time.Duration
}

var _ OAuthConfig = OAuth{}

func DefaultOAuth() OAuth {
	return OAuth{
		AuthorizeURL:    MicrosoftAuthorizeURL,
		TokenURL:        MicrosoftTokenURL,
		ListenAddr:      LoopbackListenAddr,
		RedirectURI:     LoopbackRedirectURI,
		Scopes:          []string{ScopeMailRead, ScopeUserRead},
		CallbackTimeout: 5 * time.Minute,
	}
}

func (o OAuth) GetAuthorizeURL() string {
	return o.AuthorizeURL
}

func (o OAuth) GetTokenURL() string {
	return o.TokenURL
}

func (o OAuth) GetListenAddr() string {
	return o.ListenAddr
}

func (o OAuth) GetRedirectURI() string {
	return o.RedirectURI
}

func (o OAuth) GetScopes() []string {
	return append([]string(nil), o.Scopes...)
}

func (o OAuth) GetCallbackTimeout() time.Duration {
	return o.CallbackTimeout
}

// ValidateOAuth checks the static OAuth settings; every failure wraps ErrConfig.
func ValidateOAuth(c OAuthConfig) error {
	for _, endpoint := range []struct{ name, raw string }{
		{"authorize url", c.GetAuthorizeURL()},
		{"token url", c.GetTokenURL()},
	} {
		if err := validateAbsoluteURL(endpoint.raw); err != nil {
			return fmt.Errorf("%w: %s %q: %v", errs.ErrConfig, endpoint.name, endpoint.raw, err)
		}
	}
	if redirect := c.GetRedirectURI(); redirect != "" {
		if err := validateAbsoluteURL(redirect); err != nil {
			return fmt.Errorf("%w: redirect uri %q: %v", errs.ErrConfig, redirect, err)
		}
	}
	if c.GetListenAddr() == "" {
		return fmt.Errorf("%w: listen address is empty", errs.ErrConfig)
	}
	if len(c.GetScopes()) == 0 {
		return fmt.Errorf("%w: no scopes configured", errs.ErrConfig)
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("not an absolute url")
	}
	return nil
}
