// Package metrics holds the Prometheus collectors shared by the chat
// pipeline and the HTTP layer. Collectors register with the default registry
// on package init and are exposed through promhttp on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Model call outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeTimeout    = "timeout"
	OutcomeUnparsable = "unparsable"
)

var (
	// chatTurnsTotal counts chat turns by the extractor that produced the result.
	// Labels: source (model, rules)
	chatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "remedy",
		Name:      "chat_turns_total",
		Help:      "Chat turns handled, by extraction source",
	}, []string{"source"})

	// modelCallsTotal counts calls to the language model backend.
	// Labels: backend (gemini, ollama), outcome (ok, error, timeout, unparsable)
	modelCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "remedy",
		Name:      "model_calls_total",
		Help:      "Language model calls by backend and outcome",
	}, []string{"backend", "outcome"})

	modelLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "remedy",
		Name:      "model_latency_seconds",
		Help:      "Language model call latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	}, []string{"backend"})

	// matchedEntriesTotal counts matcher output entries.
	// Labels: result (matched, unmatched)
	matchedEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "remedy",
		Name:      "matched_entries_total",
		Help:      "Symptom matcher entries by result",
	}, []string{"result"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "remedy",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})
)

// RecordChatTurn counts one completed chat turn.
func RecordChatTurn(source string) {
	chatTurnsTotal.WithLabelValues(source).Inc()
}

// RecordModelCall counts a model call and observes its latency.
func RecordModelCall(backend, outcome string, elapsed time.Duration) {
	modelCallsTotal.WithLabelValues(backend, outcome).Inc()
	modelLatencySeconds.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// RecordMatches counts matched and unmatched entries of one turn.
func RecordMatches(matched, unmatched int) {
	if matched > 0 {
		matchedEntriesTotal.WithLabelValues("matched").Add(float64(matched))
	}
	if unmatched > 0 {
		matchedEntriesTotal.WithLabelValues("unmatched").Add(float64(unmatched))
	}
}

// RecordHTTPRequest counts a served request. route is the chi route pattern,
// not the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
