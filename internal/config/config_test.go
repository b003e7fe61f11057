package config_test

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/spamscope/internal/config"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := config.Defaults()

	require.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/authorize", c.GetAuthorizeURL())
	require.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/token", c.GetTokenURL())
	require.Equal(t, "127.0.0.1:15678", c.GetListenAddr())
	require.Equal(t, "http://localhost:15678/", c.GetRedirectURI())
	require.Equal(t, []string{
		"https://graph.microsoft.com/Mail.Read",
		"https://graph.microsoft.com/User.Read",
	}, c.GetScopes())
	require.Equal(t, "https://graph.microsoft.com/v1.0", c.GetGraphBaseURL())
	require.Equal(t, 50, c.GetJunkPageSize())
	require.Equal(t, []string{"Junk", "Junk Email"}, c.GetJunkFolders())
	require.Equal(t, "127.0.0.1:8787", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("tauri://localhost"))
	require.NoError(t, config.ValidateOAuth(c))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPAMSCOPE_PORT", "9999")
	t.Setenv("SPAMSCOPE_CLIENT_ID", "client-from-env")
	t.Setenv("SPAMSCOPE_OAUTH_CALLBACK_TIMEOUT", "90s")
	t.Setenv("SPAMSCOPE_GRAPH_JUNK_PAGE_SIZE", "20")

	c, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", c.GetPort())
	require.Equal(t, "client-from-env", c.GetClientID())
	require.Equal(t, 90*time.Second, c.GetCallbackTimeout())
	require.Equal(t, 20, c.GetJunkPageSize())
}

func TestEnvVars_GetPortStaysOnLoopback(t *testing.T) {
	tests := []struct {
		port string
		want string
	}{
		{"", "127.0.0.1:8787"},
		{"9000", "127.0.0.1:9000"},
		{":9000", "127.0.0.1:9000"},
		{"localhost:9000", "localhost:9000"},
		{"[::1]:9000", "[::1]:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			require.Equal(t, tt.want, config.EnvVars{Port: tt.port}.GetPort())
		})
	}

	ln, err := net.Listen("tcp", config.EnvVars{Port: "0"}.GetPort())
	require.NoError(t, err)
	defer ln.Close()
	require.True(t, ln.Addr().(*net.TCPAddr).IP.IsLoopback())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spamscope.yaml")
	err := os.WriteFile(path, []byte(`
env: prod
log_level: debug
graph:
  junk_page_size: 500
imap:
  junk_folders:
    - Spam
    - "[Gmail]/Spam"
`), 0o600)
	require.NoError(t, err)

	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, "debug", c.GetLogLevel())
	require.Equal(t, 50, c.GetJunkPageSize(), "page size is capped")
	require.Equal(t, []string{"Spam", "[Gmail]/Spam"}, c.GetJunkFolders())
}

func TestLoad_FlagsWin(t *testing.T) {
	t.Setenv("SPAMSCOPE_CLIENT_ID", "client-from-env")
	t.Setenv("SPAMSCOPE_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("client-id", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--client-id", "client-from-flag"}))

	c, err := config.Load("",
		config.WithFlag("client_id", flags.Lookup("client-id")),
		config.WithFlag("log_level", flags.Lookup("log-level")),
		config.WithFlag("port", flags.Lookup("no-such-flag")),
	)
	require.NoError(t, err)

	require.Equal(t, "client-from-flag", c.GetClientID())
	require.Equal(t, "warn", c.GetLogLevel(), "an unset flag does not hide the environment")
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph: [unclosed"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestValidateOAuth(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *config.OAuth)
	}{
		{"relative authorize url", func(o *config.OAuth) { o.AuthorizeURL = "/authorize" }},
		{"broken token url", func(o *config.OAuth) { o.TokenURL = "http://[::1" }},
		{"relative redirect", func(o *config.OAuth) { o.RedirectURI = "localhost" }},
		{"no listen address", func(o *config.OAuth) { o.ListenAddr = "" }},
		{"no scopes", func(o *config.OAuth) { o.Scopes = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := config.DefaultOAuth()
			tt.mutate(&o)
			err := config.ValidateOAuth(o)
			require.Error(t, err)
			require.True(t, errors.Is(err, errs.ErrConfig))
		})
	}

	t.Run("authorize url reported first", func(t *testing.T) {
		o := config.DefaultOAuth()
		o.AuthorizeURL = "/authorize"
		o.TokenURL = "/token"
		for range 10 {
			err := config.ValidateOAuth(o)
			require.ErrorContains(t, err, "authorize url")
			require.NotContains(t, err.Error(), "token url")
		}
	})

	t.Run("empty redirect is derived later", func(t *testing.T) {
		o := config.DefaultOAuth()
		o.RedirectURI = ""
		require.NoError(t, config.ValidateOAuth(o))
	})
}
