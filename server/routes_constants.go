package server

// Route path constants
const (
	RouteAPI = "/api/"

	RouteLogin    = "/api/login"
	RouteOAuthURL = "/api/oauth-url"

	// Graph routes, Bearer token required
	RouteSpam       = "/api/spam"
	RouteSpamReport = "/api/spam/report"
	RouteMe         = "/api/me"

	// IMAP routes, credentials in the body
	RouteIMAPCheck   = "/api/imap/check"
	RouteIMAPSenders = "/api/imap/senders"
	RouteIMAPJunk    = "/api/imap/junk"

	RouteMetrics = "/metrics"
)
