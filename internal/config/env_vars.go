package config

import (
	"net"
	"strings"
)

// DefaultAPIHost keeps the local API off the network unless an address names another host.
const DefaultAPIHost = "127.0.0.1"

type EnvVars struct {
	Port     string
	AppName  string
	Env      string
	LogLevel string
	ClientID string
}

var _ EnvConfig = EnvVars{}

// GetPort returns the API listen address. A bare port, or ":port", binds the loopback host.
func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8787"
	}
	host, p, err := net.SplitHostPort(port)
	if err != nil {
		return net.JoinHostPort(DefaultAPIHost, port)
	}
	if host == "" {
		host = DefaultAPIHost
	}
	return net.JoinHostPort(host, p)
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	if e.LogLevel == "" {
		return "info"
	}
	return e.LogLevel
}

// GetClientID returns the Azure application (client) ID used when the caller supplies none.
func (e EnvVars) GetClientID() string {
	return e.ClientID
}
