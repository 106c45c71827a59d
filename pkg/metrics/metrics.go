package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Outbound HTTP
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_external_requests_total",
			Help: "Outbound HTTP requests by host and outcome",
		},
		[]string{"host", "status"}, // status: 2xx|3xx|4xx|5xx|error
	)

	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocklens_external_request_seconds",
			Help:    "Outbound HTTP latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30},
		},
		[]string{"host"},
	)

	// Series acquisition
	SeriesAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_series_attempts_total",
			Help: "Price series backend attempts",
		},
		[]string{"backend", "status"}, // status: success|error
	)

	SeriesResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_series_resolutions_total",
			Help: "Symbol resolutions by outcome",
		},
		[]string{"status"}, // status: resolved|unavailable
	)

	// Scoring
	Verdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_verdicts_total",
			Help: "Composite verdicts by label and news mode",
		},
		[]string{"label", "mode"},
	)

	NewsFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_news_fetches_total",
			Help: "News source fetches by source and outcome",
		},
		[]string{"source", "status"},
	)

	// Scheduler
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocklens_job_runs_total",
			Help: "Scheduled job executions",
		},
		[]string{"job", "status"},
	)
)

var initOnce sync.Once

// Init registers all collectors with the default registry.
// Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(ExternalRequests)
		prometheus.MustRegister(ExternalLatency)
		prometheus.MustRegister(SeriesAttempts)
		prometheus.MustRegister(SeriesResolutions)
		prometheus.MustRegister(Verdicts)
		prometheus.MustRegister(NewsFetches)
		prometheus.MustRegister(JobRuns)
	})
}

// Handler returns the /metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// StatusClass buckets an HTTP status code for labels
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "error"
	}
}
