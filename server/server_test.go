package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/spamscope/auth"
	"github.com/jrsteele09/spamscope/commands"
	"github.com/jrsteele09/spamscope/commands/commandsfakes"
	"github.com/jrsteele09/spamscope/graph"
	"github.com/jrsteele09/spamscope/internal/config"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/internal/metrics"
	"github.com/jrsteele09/spamscope/internal/utils"
	"github.com/jrsteele09/spamscope/junk"
	"github.com/jrsteele09/spamscope/mailbox"
	"github.com/jrsteele09/spamscope/server"
	"github.com/jrsteele09/spamscope/ui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*server.Server
	auth    *commandsfakes.FakeAuthenticator
	graph   *commandsfakes.FakeGraphReader
	mailbox *commandsfakes.FakeMailboxReader
	emitter *ui.Emitter
}

func newTestServer(t *testing.T, opts ...server.Option) *testServer {
	t.Helper()
	ts := &testServer{
		auth: &commandsfakes.FakeAuthenticator{Token: "tok-abc"},
		graph: &commandsfakes.FakeGraphReader{
			Profile: &graph.UserProfile{DisplayName: "Jane Doe", UserPrincipalName: utils.Ptr("jane@contoso.example")},
			Emails: []junk.Email{
				{Subject: "one", SenderName: "A", SenderAddress: "a@x.deals.example", DKIMDomain: utils.Ptr("x.deals.example")},
				{Subject: "two", SenderName: "B", SenderAddress: "b@other.example"},
			},
		},
		mailbox: &commandsfakes.FakeMailboxReader{Senders: []string{"a@x.deals.example"}},
		emitter: ui.NewEmitter(nil),
	}
	cmds := commands.New(ts.auth, ts.graph, ts.mailbox)
	opts = append([]server.Option{server.WithLogger(zerolog.Nop())}, opts...)
	ts.Server = server.New(config.Defaults(), cmds, ts.emitter, opts...)
	return ts
}

func (ts *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, server.RouteLogin, `{"client_id":"client-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	resp := decode[map[string]string](t, w)
	require.Equal(t, "tok-abc", resp["access_token"])
	require.Equal(t, "Bearer", resp["token_type"])
	require.Equal(t, []string{"client-1"}, ts.auth.ClientIDs())
}

func TestLogin_ConfiguredClientID(t *testing.T) {
	t.Setenv("SPAMSCOPE_CLIENT_ID", "configured-client")
	cfg, err := config.Load("")
	require.NoError(t, err)

	a := &commandsfakes.FakeAuthenticator{Token: "tok"}
	s := server.New(cfg, commands.New(a, &commandsfakes.FakeGraphReader{}, &commandsfakes.FakeMailboxReader{}), nil,
		server.WithLogger(zerolog.Nop()))

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodPost, server.RouteLogin, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"configured-client"}, a.ClientIDs())
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{"no client id", nil, `{}`, http.StatusBadRequest},
		{"bad body", nil, `{"client_id":`, http.StatusBadRequest},
		{"unknown field", nil, `{"clientId":"x"}`, http.StatusBadRequest},
		{"in progress", auth.ErrLoginInProgress, `{"client_id":"c"}`, http.StatusConflict},
		{"rejected", &auth.TokenExchangeError{StatusCode: 400, ErrorCode: "invalid_grant"}, `{"client_id":"c"}`, http.StatusUnauthorized},
		{"missing code", auth.ErrMissingCode, `{"client_id":"c"}`, http.StatusNotFound},
		{"timeout", auth.ErrCallbackTimeout, `{"client_id":"c"}`, http.StatusBadGateway},
		{"config", errs.Join(errs.ErrConfig, nil), `{"client_id":"c"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.auth.Err = tt.err

			w := ts.do(http.MethodPost, server.RouteLogin, tt.body)
			require.Equal(t, tt.status, w.Code)
			require.NotEmpty(t, decode[server.ErrorResponse](t, w).Error)
		})
	}
}

func TestOAuthURL(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, server.RouteOAuthURL, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	ts.emitter.EmitAuthURL("https://login.example/authorize?state=abc")
	w = ts.do(http.MethodGet, server.RouteOAuthURL, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "https://login.example/authorize?state=abc", decode[map[string]string](t, w)["url"])
}

func TestSpam(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, server.RouteSpam+"?limit=1", "", "Authorization", "Bearer tok-abc")
	require.Equal(t, http.StatusOK, w.Code)

	emails := decode[[]junk.Email](t, w)
	require.Len(t, emails, 1)
	require.Equal(t, "x.deals.example", utils.Value(emails[0].DKIMDomain))
	require.Equal(t, []string{"tok-abc"}, ts.graph.Tokens())
	require.Equal(t, []int{1}, ts.graph.Limits())
}

func TestSpam_RequiresBearer(t *testing.T) {
	ts := newTestServer(t)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer"} {
		var w *httptest.ResponseRecorder
		if header == "" {
			w = ts.do(http.MethodGet, server.RouteSpam, "")
		} else {
			w = ts.do(http.MethodGet, server.RouteSpam, "", "Authorization", header)
		}
		require.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
	require.Empty(t, ts.graph.Tokens())
}

func TestSpam_ExpiredToken(t *testing.T) {
	ts := newTestServer(t)

	expired, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"scp": "Mail.Read",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	w := ts.do(http.MethodGet, server.RouteSpam, "", "Authorization", "Bearer "+expired)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "access token expired", decode[server.ErrorResponse](t, w).Error)
	require.Empty(t, ts.graph.Tokens())

	w = ts.do(http.MethodGet, server.RouteSpam, "", "Authorization", "Bearer opaque-token")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSpam_BadLimit(t *testing.T) {
	ts := newTestServer(t)

	for _, limit := range []string{"abc", "-1"} {
		w := ts.do(http.MethodGet, server.RouteSpam+"?limit="+limit, "", "Authorization", "Bearer tok")
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestSpamReport(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, server.RouteSpamReport, "", "Authorization", "Bearer tok")
	require.Equal(t, http.StatusOK, w.Code)

	report := decode[commands.Report](t, w)
	require.Len(t, report.Groups, 2)
	require.Equal(t, "deals.example", report.Groups[0].Domain)
	require.Equal(t, junk.SourceDKIM, report.Groups[0].SourceType)
	require.Equal(t, 2, report.Stats.Total)
	require.Equal(t, 1, report.Stats.DKIMCount)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, server.RouteMe, "", "Authorization", "bearer tok")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	require.Equal(t, "Jane Doe", body["displayName"])
	require.Equal(t, "jane@contoso.example", body["userPrincipalName"])
}

func TestMe_GraphErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&graph.RemoteError{Kind: errs.ErrRemote, Op: "graph me", StatusCode: 401}, http.StatusUnauthorized},
		{&graph.RemoteError{Kind: errs.ErrRemote, Op: "graph me", StatusCode: 403}, http.StatusUnauthorized},
		{&graph.RemoteError{Kind: errs.ErrRemote, Op: "graph me", StatusCode: 503}, http.StatusBadGateway},
		{errs.Join(graph.ErrDecode, nil), http.StatusBadGateway},
		{errs.Join(graph.ErrRequest, nil), http.StatusBadGateway},
	}
	for _, tt := range tests {
		ts := newTestServer(t)
		ts.graph.Err = tt.err

		w := ts.do(http.MethodGet, server.RouteMe, "", "Authorization", "Bearer tok")
		require.Equal(t, tt.status, w.Code, tt.err.Error())
	}
}

func TestIMAPRoutes(t *testing.T) {
	ts := newTestServer(t)
	body := `{"email":"jane@example.com","password":"p","server":"imap.example.com","port":993}`

	w := ts.do(http.MethodPost, server.RouteIMAPCheck, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, commands.LoginSuccessful, decode[map[string]string](t, w)["message"])

	w = ts.do(http.MethodPost, server.RouteIMAPSenders, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"a@x.deals.example"}, decode[[]string](t, w))

	w = ts.do(http.MethodPost, server.RouteIMAPJunk, body)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, []mailbox.Credentials{
		{Email: "jane@example.com", Password: "p", Server: "imap.example.com", Port: 993},
		{Email: "jane@example.com", Password: "p", Server: "imap.example.com", Port: 993},
		{Email: "jane@example.com", Password: "p", Server: "imap.example.com", Port: 993},
	}, ts.mailbox.Credentials())
}

func TestIMAPRoutes_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{mailbox.ErrLoginDisabled, http.StatusUnauthorized},
		{errs.Join(mailbox.ErrLoginFailed, nil), http.StatusUnauthorized},
		{mailbox.ErrFolderNotFound, http.StatusNotFound},
		{mailbox.ErrTLS, http.StatusBadGateway},
		{mailbox.ErrConnect, http.StatusBadGateway},
	}
	for _, tt := range tests {
		ts := newTestServer(t)
		ts.mailbox.Err = tt.err

		w := ts.do(http.MethodPost, server.RouteIMAPJunk, `{"email":"jane@example.com","server":"imap.example.com"}`)
		require.Equal(t, tt.status, w.Code, tt.err.Error())
	}

	ts := newTestServer(t)
	w := ts.do(http.MethodPost, server.RouteIMAPCheck, "")
	require.Equal(t, http.StatusBadRequest, w.Code, "body is required")
}

func TestCors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodOptions, server.RouteSpam, "", "Origin", "tauri://localhost")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "tauri://localhost", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = ts.do(http.MethodOptions, server.RouteSpam, "", "Origin", "https://evil.example")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = ts.do(http.MethodGet, server.RouteOAuthURL, "", "Origin", "tauri://localhost")
	require.Equal(t, "tauri://localhost", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_Reused(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, server.RouteOAuthURL, "", "X-Request-ID", "req-42")
	require.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestRecoverMiddleware(t *testing.T) {
	ts := newTestServer(t)
	h := server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, ts.APIMiddleware()...)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "internal error", decode[server.ErrorResponse](t, w).Error)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newTestServer(t, server.WithMetrics(metrics.NewCollector(reg), reg))

	ts.do(http.MethodGet, server.RouteMe, "", "Authorization", "Bearer tok")
	ts.do(http.MethodGet, server.RouteMe, "")

	w := ts.do(http.MethodGet, server.RouteMetrics, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `spamscope_api_requests_total{route="GET /api/me",status_code="200"} 1`)
	require.Contains(t, body, `spamscope_api_requests_total{route="GET /api/me",status_code="401"} 1`)
}

func TestRoutes_NoMetricsWithoutGatherer(t *testing.T) {
	ts := newTestServer(t)
	require.NotContains(t, ts.Routes(), "GET "+server.RouteMetrics)

	w := ts.do(http.MethodGet, server.RouteMetrics, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
