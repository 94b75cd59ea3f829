// Package metrics holds the domain-level Prometheus collectors. HTTP
// traffic is instrumented separately by middleware.Metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OfferTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubal_offer_transitions_total",
			Help: "Design offer status transitions.",
		},
		[]string{"from", "to"},
	)

	RequestTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubal_service_request_transitions_total",
			Help: "Service request status transitions.",
		},
		[]string{"from", "to"},
	)

	AIGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubal_ai_generations_total",
			Help: "AI room-design generations by outcome.",
		},
		[]string{"outcome"},
	)

	MessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hubal_messages_sent_total",
			Help: "Chat messages persisted.",
		},
	)

	RealtimeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hubal_realtime_connections",
			Help: "Open WebSocket connections on this instance.",
		},
	)
)

func init() {
	prometheus.MustRegister(OfferTransitions, RequestTransitions, AIGenerations, MessagesSent, RealtimeConnections)
}
