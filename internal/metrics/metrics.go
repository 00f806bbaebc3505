package metrics

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers every collector with the default registry exactly once.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func init() {
	register(
		providerCalls,
		generations,
		generationDuration,
		pollAttempts,
		supersededSessions,
	)
}

var (
	providerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inova_provider_calls_total",
			Help: "Calls made to external AI providers by operation and outcome.",
		},
		[]string{"provider", "operation", "outcome"},
	)

	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inova_generations_total",
			Help: "Completed generate flows by result.",
		},
		[]string{"result"}, // ok|config|invalid|upstream|job_failed|malformed|timeout|superseded|error
	)

	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inova_generation_duration_seconds",
			Help:    "Wall time of the generate flow.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9), // 1s..256s
		},
	)

	pollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inova_image_poll_attempts",
			Help:    "Status fetches needed before an image job reached a terminal state.",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160, 300},
		},
	)

	supersededSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inova_superseded_generations_total",
			Help: "In-flight generations cancelled by a newer submission in the same session.",
		},
	)
)

// ProviderCall counts one provider request.
func ProviderCall(provider, operation, outcome string) {
	providerCalls.WithLabelValues(norm(provider), norm(operation), norm(outcome)).Inc()
}

// ObserveGeneration records the outcome and duration of one generate flow.
func ObserveGeneration(result string, d time.Duration) {
	generations.WithLabelValues(norm(result)).Inc()
	generationDuration.Observe(d.Seconds())
}

// ObservePollAttempts records how many status fetches a job needed.
func ObservePollAttempts(n int) {
	pollAttempts.Observe(float64(n))
}

// IncSuperseded counts a generation cancelled by a newer one.
func IncSuperseded() {
	supersededSessions.Inc()
}

func norm(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return "unknown"
	}
	return v
}
