package server

import (
	"net/http"

	"github.com/jrsteele09/spamscope/internal/metrics"
)

func (s *Server) initRoutes() {
	// Preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+RouteAPI, ChainMiddleware(notFound, s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthURL, ChainMiddleware(s.OAuthURLHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteSpam, ChainMiddleware(s.SpamHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteHandler("GET "+RouteSpamReport, ChainMiddleware(s.SpamReportHandler(), s.APIMiddleware(s.RequireBearer())...))
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireBearer())...))

	s.RegisterRouteHandler("POST "+RouteIMAPCheck, ChainMiddleware(s.IMAPCheckHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteIMAPSenders, ChainMiddleware(s.IMAPSendersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteIMAPJunk, ChainMiddleware(s.IMAPJunkHandler(), s.APIMiddleware()...))

	if s.gatherer != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler(s.gatherer))
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, "not found", http.StatusNotFound)
}
