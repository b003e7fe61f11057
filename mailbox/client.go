// Package mailbox reads junk folders over IMAP with a username and password,
// for accounts that still allow LOGIN.
package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/jrsteele09/spamscope/internal/config"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/internal/logging"
	"github.com/jrsteele09/spamscope/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultPort is IMAP over implicit TLS.
const DefaultPort = 993

// Credentials identify a mailbox and the server holding it.
type Credentials struct {
	Email    string
	Password string
	Server   string
	Port     int
}

func (c Credentials) port() int {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

func (c Credentials) validate() error {
	switch {
	case c.Email == "":
		return fmt.Errorf("%w: email is required", errs.ErrInvalidArgument)
	case c.Server == "":
		return fmt.Errorf("%w: server is required", errs.ErrInvalidArgument)
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", errs.ErrInvalidArgument, c.Port)
	}
	return nil
}

type Client struct {
	dialTimeout time.Duration
	junkFolders []string
	tlsConfig   *tls.Config
	logger      zerolog.Logger
	metrics     metrics.Recorder
}

type ClientOption func(*Client)

// WithTLSConfig sets the base TLS configuration. ServerName is filled in per connection when empty.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

func WithMetrics(r metrics.Recorder) ClientOption {
	return func(c *Client) {
		c.metrics = r
	}
}

func New(cfg config.IMAPConfig, opts ...ClientOption) *Client {
	c := &Client{
		dialTimeout: cfg.GetIMAPDialTimeout(),
		junkFolders: cfg.GetJunkFolders(),
		logger:      log.Logger,
		metrics:     metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "imap").Logger()
	return c
}

// Connect dials server, completes the TLS handshake, reads the greeting and
// the capability list. A server advertising LOGINDISABLED is rejected before
// any credentials are sent. The session is closed when ctx is done.
func (c *Client) Connect(ctx context.Context, server string, port int) (*Session, error) {
	addr := net.JoinHostPort(server, strconv.Itoa(port))
	logger := c.logger.With().Str("server", addr).Logger()

	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.Join(ErrConnect, err)
	}

	tlsConn := tls.Client(conn, c.tlsClientConfig(server))
	handshakeCtx := ctx
	if c.dialTimeout > 0 {
		var cancel context.CancelFunc
		handshakeCtx, cancel = context.WithTimeout(ctx, c.dialTimeout)
		defer cancel()
	}
	if err := tlsConn.HandshakeContext(handshakeCtx); err != nil {
		conn.Close()
		return nil, errs.Join(ErrTLS, err)
	}

	options := &imapclient.Options{}
	if logger.Trace().Enabled() {
		options.DebugWriter = debugWriter{logger: logger}
	}
	client := imapclient.New(tlsConn, options)
	session := &Session{
		client:      client,
		junkFolders: c.junkFolders,
		logger:      logger,
		stop:        context.AfterFunc(ctx, func() { client.Close() }),
	}

	if err := client.WaitGreeting(); err != nil {
		session.Close()
		return nil, errs.Join(ErrConnect, err)
	}
	caps, err := client.Capability().Wait()
	if err != nil {
		session.Close()
		return nil, errs.Join(ErrCapabilities, err)
	}
	if caps.Has(imap.CapLoginDisabled) {
		session.Logout()
		return nil, ErrLoginDisabled
	}

	logger.Debug().Msg("connected")
	return session, nil
}

func (c *Client) tlsClientConfig(server string) *tls.Config {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.tlsConfig != nil {
		cfg = c.tlsConfig.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = server
	}
	return cfg
}

// login connects and authenticates. The caller owns the returned session.
func (c *Client) login(ctx context.Context, creds Credentials) (*Session, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	s, err := c.Connect(ctx, creds.Server, creds.port())
	if err != nil {
		return nil, err
	}
	if err := s.Login(creds.Email, creds.Password); err != nil {
		s.Logout()
		return nil, err
	}
	s.logger.Info().Str("user", logging.MaskEmail(creds.Email)).Msg("logged in")
	return s, nil
}

// record reports the outcome of one operation to metrics and the log.
func (c *Client) record(operation string, creds Credentials, err error) {
	c.metrics.RecordIMAPSession(operation, metrics.Outcome(err))
	if err != nil {
		c.logger.Warn().Err(err).
			Str("operation", operation).
			Str("user", logging.MaskEmail(creds.Email)).
			Msg("imap operation failed")
	}
}
