// Package metrics exposes Prometheus counters for logins, Graph calls, IMAP
// sessions and the local API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder is what the components report to. Nop discards everything.
type Recorder interface {
	RecordLogin(outcome string, duration time.Duration)
	RecordGraphRequest(endpoint string, statusCode int, duration time.Duration)
	RecordIMAPSession(operation, outcome string)
	RecordAPIRequest(route string, statusCode int, duration time.Duration)
}

type Collector struct {
	logins       *prometheus.CounterVec
	loginLatency prometheus.Histogram
	graphStatus  *prometheus.CounterVec
	graphLatency *prometheus.HistogramVec
	imapSessions *prometheus.CounterVec
	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spamscope_logins_total",
			Help: "Completed OAuth login flows by outcome",
		}, []string{"outcome"}),
		loginLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spamscope_login_duration_seconds",
			Help:    "Time from binding the redirect listener to the token exchange result",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		graphStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spamscope_graph_requests_total",
			Help: "Microsoft Graph responses by endpoint and status code",
		}, []string{"endpoint", "status_code"}),
		graphLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spamscope_graph_request_duration_seconds",
			Help:    "Microsoft Graph request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		imapSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spamscope_imap_sessions_total",
			Help: "IMAP sessions by operation and outcome",
		}, []string{"operation", "outcome"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spamscope_api_requests_total",
			Help: "Local API requests by route and status code",
		}, []string{"route", "status_code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spamscope_api_request_duration_seconds",
			Help:    "Local API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.logins,
		c.loginLatency,
		c.graphStatus,
		c.graphLatency,
		c.imapSessions,
		c.apiRequests,
		c.apiLatency,
	)
	return c
}

func (c *Collector) RecordLogin(outcome string, duration time.Duration) {
	c.logins.WithLabelValues(outcome).Inc()
	c.loginLatency.Observe(duration.Seconds())
}

// RecordGraphRequest records a Graph response. A status of 0 means the request never got one.
func (c *Collector) RecordGraphRequest(endpoint string, statusCode int, duration time.Duration) {
	c.graphStatus.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.graphLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (c *Collector) RecordIMAPSession(operation, outcome string) {
	c.imapSessions.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordAPIRequest(route string, statusCode int, duration time.Duration) {
	c.apiRequests.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	c.apiLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Nop is a Recorder that records nothing.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordLogin(string, time.Duration)             {}
func (Nop) RecordGraphRequest(string, int, time.Duration) {}
func (Nop) RecordIMAPSession(string, string)              {}
func (Nop) RecordAPIRequest(string, int, time.Duration)   {}

// Outcome maps an error to OutcomeSuccess or OutcomeFailure.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
