// Package graph reads the signed-in user's profile and junk folder from Microsoft Graph.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/spamscope/internal/config"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/internal/metrics"
	"github.com/jrsteele09/spamscope/junk"
	"github.com/jrsteele09/spamscope/oauthmodel"
	"github.com/jrsteele09/spamscope/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	endpointMe   = "me"
	endpointJunk = "junk"

	junkMessagesPath = "/me/mailFolders/junkEmail/messages"
	junkSelect       = "sender,subject,internetMessageHeaders"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4 << 10
)

type Client struct {
	baseURL    string
	pageSize   int
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    metrics.Recorder
	nowTime    func() time.Time
}

type ClientOption func(*Client)

// WithHTTPClient sets the base client; the bearer token is layered on top of its transport.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) {
		g.httpClient = c
	}
}

func WithLogger(l zerolog.Logger) ClientOption {
	return func(g *Client) {
		g.logger = l
	}
}

func WithMetrics(r metrics.Recorder) ClientOption {
	return func(g *Client) {
		g.metrics = r
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(g *Client) {
		g.nowTime = nowFunc
	}
}

func New(cfg config.GraphConfig, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.GetGraphBaseURL(), "/"),
		pageSize:   cfg.GetJunkPageSize(),
		timeout:    cfg.GetGraphRequestTimeout(),
		httpClient: http.DefaultClient,
		logger:     log.Logger,
		metrics:    metrics.Nop{},
		nowTime:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "graph").Logger()
	return c
}

// GetUserProfile fetches /me.
func (c *Client) GetUserProfile(ctx context.Context, accessToken string) (*UserProfile, error) {
	var resp userResponse
	if err := c.get(ctx, accessToken, endpointMe, "/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.DisplayName == nil {
		return nil, fmt.Errorf("%w: profile has no displayName", ErrDecode)
	}
	return &UserProfile{
		DisplayName:       *resp.DisplayName,
		Mail:              resp.Mail,
		UserPrincipalName: resp.UserPrincipalName,
	}, nil
}

// GetJunkMessages fetches one page of the junk folder and maps every message.
// A limit between zero and the page size shrinks the page; anything else is ignored.
func (c *Client) GetJunkMessages(ctx context.Context, accessToken string, limit int) ([]junk.Email, error) {
	top := c.pageSize
	if limit > 0 && limit < top {
		top = limit
	}
	query := url.Values{
		"$select": {junkSelect},
		"$top":    {strconv.Itoa(top)},
	}

	var resp messagesResponse
	if err := c.get(ctx, accessToken, endpointJunk, junkMessagesPath, query, &resp); err != nil {
		return nil, err
	}

	emails := make([]junk.Email, 0, len(resp.Value))
	for _, m := range resp.Value {
		emails = append(emails, junk.Map(m.toJunk()))
	}
	return emails, nil
}

func (c *Client) get(ctx context.Context, accessToken, endpoint, path string, query url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errs.Join(errs.ErrConfig, err)
	}
	req.Header.Set("Accept", "application/json")

	start := c.nowTime()
	resp, err := c.authorizedClient(ctx, accessToken).Do(req)
	if err != nil {
		c.metrics.RecordGraphRequest(endpoint, 0, c.nowTime().Sub(start))
		return errs.Join(ErrRequest, err)
	}
	defer resp.Body.Close()

	elapsed := c.nowTime().Sub(start)
	c.metrics.RecordGraphRequest(endpoint, resp.StatusCode, elapsed)
	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("token", token.Fingerprint(accessToken)).
		Msg("graph request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return remoteError(endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return errs.Join(ErrRequest, err)
		}
		return errs.Join(ErrDecode, err)
	}
	return nil
}

// authorizedClient wraps the base client so every request carries the bearer token.
func (c *Client) authorizedClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   oauthmodel.TokenTypeBearer,
	}))
}
