package config

import "time"

const (
	GraphBaseURL        = "https://graph.microsoft.com/v1.0"
	DefaultJunkPageSize = 50
)

type GraphConfig interface {
	GetGraphBaseURL() string
	GetJunkPageSize() int
	GetGraphRequestTimeout() time.Duration
}

type Graph struct {
	BaseURL        string
	JunkPageSize   int
	RequestTimeout time.Duration
}

var _ GraphConfig = Graph{}

func DefaultGraph() Graph {
	return Graph{
		BaseURL:        GraphBaseURL,
		JunkPageSize:   DefaultJunkPageSize,
		RequestTimeout: 30 * time.Second,
	}
}

func (g Graph) GetGraphBaseURL() string {
	if g.BaseURL == "" {
		return GraphBaseURL
	}
	return g.BaseURL
}

// GetJunkPageSize is capped at 50, the page size the junk listing is designed around.
func (g Graph) GetJunkPageSize() int {
	if g.JunkPageSize <= 0 || g.JunkPageSize > DefaultJunkPageSize {
		return DefaultJunkPageSize
	}
	return g.JunkPageSize
}

func (g Graph) GetGraphRequestTimeout() time.Duration {
	return g.RequestTimeout
}
