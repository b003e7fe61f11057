// Package server exposes the command surface as a JSON API on a loopback
// port, for hosts that cannot link the Go packages directly.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/spamscope/commands"
	"github.com/jrsteele09/spamscope/internal/config"
	"github.com/jrsteele09/spamscope/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthURLSource reports the authorization URL most recently presented to the user.
type AuthURLSource interface {
	LastAuthURL() (string, bool)
}

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	commands *commands.Commands
	authURLs AuthURLSource
	logger   zerolog.Logger
	metrics  metrics.Recorder
	gatherer prometheus.Gatherer
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics records API request metrics to r and serves gatherer on /metrics.
// A nil gatherer leaves /metrics unregistered.
func WithMetrics(r metrics.Recorder, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = r
		s.gatherer = gatherer
	}
}

func New(cfg config.Config, cmds *commands.Commands, authURLs AuthURLSource, opts ...Option) *Server {
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		commands: cmds,
		authURLs: authURLs,
		logger:   log.Logger,
		metrics:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "api").Logger()

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes returns the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	s.logger.Info().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
