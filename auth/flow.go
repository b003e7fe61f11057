// Package auth runs the interactive OAuth2 Authorization Code + PKCE login
// against the identity provider, capturing the redirect on a one-shot
// loopback listener.
package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/spamscope/internal/config"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/internal/metrics"
	"github.com/jrsteele09/spamscope/oauthmodel"
	"github.com/jrsteele09/spamscope/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Flow performs logins. Only one login may run at a time.
type Flow struct {
	cfg        config.OAuthConfig
	ui         UI
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    metrics.Recorder
	nowTime    func() time.Time

	inFlight sync.Mutex
}

// FlowOption defines a function type to modify the Flow instance.
type FlowOption func(*Flow)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) FlowOption {
	return func(f *Flow) {
		f.nowTime = nowFunc
	}
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(c *http.Client) FlowOption {
	return func(f *Flow) {
		f.httpClient = c
	}
}

func WithLogger(l zerolog.Logger) FlowOption {
	return func(f *Flow) {
		f.logger = l
	}
}

func WithMetrics(r metrics.Recorder) FlowOption {
	return func(f *Flow) {
		f.metrics = r
	}
}

// NewFlow creates a login flow for the given provider settings. ui must not be nil.
func NewFlow(cfg config.OAuthConfig, ui UI, opts ...FlowOption) *Flow {
	f := &Flow{
		cfg:        cfg,
		ui:         ui,
		httpClient: http.DefaultClient,
		logger:     log.Logger,
		metrics:    metrics.Nop{},
		nowTime:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With().Str("component", "auth").Logger()
	return f
}

// Login runs one complete authorization and returns the access token.
//
// The redirect listener is bound before the authorization URL is shown so
// that the redirect cannot arrive ahead of it. A second call while a login is
// running fails immediately with ErrLoginInProgress.
func (f *Flow) Login(ctx context.Context, clientID string) (string, error) {
	if !f.inFlight.TryLock() {
		return "", ErrLoginInProgress
	}
	defer f.inFlight.Unlock()

	start := f.nowTime()
	accessToken, err := f.login(ctx, clientID)
	f.metrics.RecordLogin(metrics.Outcome(err), f.nowTime().Sub(start))
	if err != nil {
		f.logger.Warn().Err(err).Msg("login failed")
		return "", err
	}
	f.logger.Info().Object("token", token.Describe(accessToken)).Msg("login complete")
	return accessToken, nil
}

func (f *Flow) login(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", errs.Join(errs.ErrInvalidArgument, oauthmodel.ErrInvalidClientID)
	}
	if err := config.ValidateOAuth(f.cfg); err != nil {
		return "", err
	}

	listener, err := listenRedirect(ctx, f.cfg.GetListenAddr(), f.cfg.GetRedirectURI())
	if err != nil {
		return "", err
	}
	defer listener.Close()

	oauthCfg := f.oauthConfig(clientID, listener.redirectURI)
	session, err := newSession(oauthCfg, f.nowTime())
	if err != nil {
		return "", err
	}
	logger := f.logger.With().Str("session_id", session.ID).Logger()
	logger.Info().
		Str("listen_addr", listener.Addr().String()).
		Str("redirect_uri", session.Params.RedirectURI).
		Msg("waiting for authorization redirect")

	if window := f.present(logger, session.AuthURL); window != nil {
		defer func() {
			if err := window.Close(); err != nil {
				logger.Debug().Err(err).Msg("closing login window")
			}
		}()
	}

	conn, err := listener.accept(ctx, f.cfg.GetCallbackTimeout())
	if err != nil {
		return "", err
	}
	defer conn.Close()

	accessToken, err := f.complete(ctx, conn, oauthCfg, session)
	if respErr := respond(conn, err == nil); respErr != nil {
		logger.Debug().Err(respErr).Msg("writing redirect response")
	}
	return accessToken, err
}

// complete reads the redirect from conn and exchanges its code.
func (f *Flow) complete(ctx context.Context, conn net.Conn, oauthCfg *oauth2.Config, session *AuthorizationSession) (string, error) {
	query, err := readRedirectQuery(conn)
	if err != nil {
		return "", err
	}
	code, err := authorizationCode(query, session)
	if err != nil {
		return "", err
	}
	return f.exchange(ctx, oauthCfg, session.tokenRequest(code))
}

// present opens the login window, falling back to emitting the URL.
func (f *Flow) present(logger zerolog.Logger, authURL string) Window {
	window, err := f.ui.OpenLoginWindow(authURL)
	if err == nil {
		return window
	}
	logger.Warn().Err(err).Msg("could not open login window, emitting authorization url")
	f.ui.EmitAuthURL(authURL)
	return nil
}

func (f *Flow) exchange(ctx context.Context, oauthCfg *oauth2.Config, req oauthmodel.TokenRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", errs.Join(errs.ErrInvalidArgument, err)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)

	tok, err := oauthCfg.Exchange(ctx, req.Code, oauth2.VerifierOption(req.CodeVerifier))
	if err != nil {
		return "", classifyExchangeError(err)
	}
	return tok.AccessToken, nil
}

func (f *Flow) oauthConfig(clientID, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.cfg.GetAuthorizeURL(),
			TokenURL:  f.cfg.GetTokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURI,
		Scopes:      f.cfg.GetScopes(),
	}
}

func classifyExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		// x/oauth2 also reports a 2xx body carrying "error" and no access_token this way
		if r := retrieveErr.Response; r != nil && r.StatusCode >= 200 && r.StatusCode < 300 {
			return errs.Join(ErrTokenDecode, err)
		}
		exchangeErr := &TokenExchangeError{
			Body:      string(retrieveErr.Body),
			ErrorCode: retrieveErr.ErrorCode,
		}
		if retrieveErr.Response != nil {
			exchangeErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return exchangeErr
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errs.Join(ErrTokenNetwork, err)
	}
	return errs.Join(ErrTokenDecode, err)
}
