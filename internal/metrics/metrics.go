// Package metrics exposes the engine's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed counts inbound scammer messages by verdict.
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeypot",
		Name:      "messages_processed_total",
		Help:      "Inbound messages processed, labeled by scoring verdict.",
	}, []string{"verdict"})

	// TurnDuration observes end-to-end turn processing time.
	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "honeypot",
		Name:      "turn_duration_seconds",
		Help:      "Time to process one conversation turn.",
		Buckets:   prometheus.DefBuckets,
	})

	// ArtifactsExtracted counts newly merged artifacts by category.
	ArtifactsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeypot",
		Name:      "artifacts_extracted_total",
		Help:      "New intelligence artifacts merged into session bundles.",
	}, []string{"category"})

	// Deflections counts bot-accusation deflections by strategy.
	Deflections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeypot",
		Name:      "deflections_total",
		Help:      "Bot accusation deflections, labeled by strategy.",
	}, []string{"strategy"})

	// StateTransitions counts dialogue state entries.
	StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeypot",
		Name:      "state_transitions_total",
		Help:      "Dialogue state machine transitions, labeled by target state.",
	}, []string{"state"})

	// SessionsFinalized counts finished sessions by report outcome.
	SessionsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeypot",
		Name:      "sessions_finalized_total",
		Help:      "Sessions that hit the message ceiling, labeled by delivery outcome.",
	}, []string{"delivery"})

	// ModelCalls counts model analysis outcomes.
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "honeypot",
		Name:      "model_calls_total",
		Help:      "Model analysis attempts, labeled by outcome.",
	}, []string{"outcome"})
)
