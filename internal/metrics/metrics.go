package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"sync"
)

const (
	OutcomeSuccess         = "success"
	OutcomeCredentialError = "credential_error"
	OutcomeParseFailure    = "parse_failure"
	OutcomeTransportError  = "transport_error"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solon_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RecommendationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solon_recommendations_total",
			Help: "Total number of recommendation requests by outcome.",
		},
		[]string{"outcome"},
	)
	RecommendationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solon_recommendation_duration_seconds",
			Help:    "Duration of the reasoning service call in seconds.",
			Buckets: []float64{1, 5, 10, 20, 40, 60, 120},
		},
	)
	ReturnedJobs = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "solon_returned_jobs",
			Help:       "Number of job entries returned per request and channel.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"channel"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "solon_active_sessions",
			Help: "Number of chat sessions held in memory.",
		},
	)
	CredentialValid = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "solon_shared_credential_valid",
			Help: "1 if the last check of the shared api key succeeded.",
		},
	)
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(RecommendationsCounter)
		prometheus.MustRegister(RecommendationDuration)
		prometheus.MustRegister(ReturnedJobs)
		prometheus.MustRegister(ActiveSessions)
		prometheus.MustRegister(CredentialValid)
	})
}

// NewServer registers the collectors and returns the /metrics server, the caller runs it.
func NewServer(address string) *http.Server {

	register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Infof("metrics will be served on %v/metrics", address)
	return &http.Server{Addr: address, Handler: mux}
}
