package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SPAMSCOPE"

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	GraphConfig
	IMAPConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetClientID() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Graph
	IMAP
}

// New returns the configuration built from defaults and SPAMSCOPE_* environment variables.
func New() Config {
	cfg, err := Load("")
	if err != nil {
		// Load only fails on an explicit file path
		panic(err)
	}
	return cfg
}

// LoadOption adjusts the viper instance before the configuration is read.
type LoadOption func(v *viper.Viper) error

// WithFlag binds a command line flag to key. A flag that was set on the
// command line wins over the file and the environment. A nil flag is ignored.
func WithFlag(key string, flag *pflag.Flag) LoadOption {
	return func(v *viper.Viper) error {
		if flag == nil {
			return nil
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
		return nil
	}
}

// Load reads defaults, then the optional YAML file at path, then SPAMSCOPE_* environment variables.
func Load(path string, opts ...LoadOption) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}
	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	defaults := defaultConfig()

	v.SetDefault("port", defaults.EnvVars.Port)
	v.SetDefault("app_name", defaults.EnvVars.AppName)
	v.SetDefault("env", defaults.EnvVars.Env)
	v.SetDefault("log_level", defaults.EnvVars.LogLevel)
	v.SetDefault("client_id", defaults.EnvVars.ClientID)

	v.SetDefault("cors.allowed_origins", defaults.Cors.Origins)

	v.SetDefault("oauth.authorize_url", defaults.OAuth.AuthorizeURL)
	v.SetDefault("oauth.token_url", defaults.OAuth.TokenURL)
	v.SetDefault("oauth.listen_addr", defaults.OAuth.ListenAddr)
	v.SetDefault("oauth.redirect_uri", defaults.OAuth.RedirectURI)
	v.SetDefault("oauth.scopes", defaults.OAuth.Scopes)
	v.SetDefault("oauth.callback_timeout", defaults.OAuth.CallbackTimeout)

	v.SetDefault("graph.base_url", defaults.Graph.BaseURL)
	v.SetDefault("graph.junk_page_size", defaults.Graph.JunkPageSize)
	v.SetDefault("graph.request_timeout", defaults.Graph.RequestTimeout)

	v.SetDefault("imap.dial_timeout", defaults.IMAP.DialTimeout)
	v.SetDefault("imap.junk_folders", defaults.IMAP.JunkFolders)
}

func fromViper(v *viper.Viper) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{
			Port:     v.GetString("port"),
			AppName:  v.GetString("app_name"),
			Env:      v.GetString("env"),
			LogLevel: v.GetString("log_level"),
			ClientID: v.GetString("client_id"),
		},
		Cors: Cors{
			Origins: v.GetStringSlice("cors.allowed_origins"),
		},
		OAuth: OAuth{
			AuthorizeURL:    v.GetString("oauth.authorize_url"),
			TokenURL:        v.GetString("oauth.token_url"),
			ListenAddr:      v.GetString("oauth.listen_addr"),
			RedirectURI:     v.GetString("oauth.redirect_uri"),
			Scopes:          v.GetStringSlice("oauth.scopes"),
			CallbackTimeout: v.GetDuration("oauth.callback_timeout"),
		},
		Graph: Graph{
			BaseURL:        v.GetString("graph.base_url"),
			JunkPageSize:   v.GetInt("graph.junk_page_size"),
			RequestTimeout: v.GetDuration("graph.request_timeout"),
		},
		IMAP: IMAP{
			DialTimeout: v.GetDuration("imap.dial_timeout"),
			JunkFolders: v.GetStringSlice("imap.junk_folders"),
		},
	}
}

// Defaults returns the fixed production values without reading the environment.
func Defaults() Config {
	return defaultConfig()
}

func defaultConfig() mainConfig {
	return mainConfig{
		EnvVars: EnvVars{
			Port:     "8787",
			AppName:  "Spam Scope",
			Env:      "DEV",
			LogLevel: "info",
		},
		Cors: Cors{
			Origins: []string{"tauri://localhost", "http://localhost:1420"},
		},
		OAuth: DefaultOAuth(),
		Graph: DefaultGraph(),
		IMAP:  DefaultIMAP(),
	}
}
