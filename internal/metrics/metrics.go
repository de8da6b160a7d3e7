// Package metrics defines the Prometheus instruments of the matching
// service. Every method is safe to call on a nil *Metrics, which is what
// tests and tools that do not export metrics pass around.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for matching, capacity and notifications.
type Metrics struct {
	// Proposal attempts by trigger and outcome
	Proposals *prometheus.CounterVec

	// Match status transitions by resulting status
	Transitions *prometheus.CounterVec

	// Accepts refused because the provider had no capacity left
	CapacityRejections prometheus.Counter

	// Auto-match trigger invocations by trigger and outcome
	Triggers *prometheus.CounterVec

	// Notification intent deliveries by type and outcome
	IntentDeliveries *prometheus.CounterVec

	// Time spent delivering one intent to the sink
	DeliveryLatency prometheus.Histogram
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a Metrics instance registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Proposals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mesalib_match_proposals_total",
			Help: "Match proposal attempts by trigger and outcome",
		}, []string{"trigger", "outcome"}), // outcome: "created", "skipped", "none"

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mesalib_match_transitions_total",
			Help: "Match status transitions by resulting status",
		}, []string{"status"}),

		CapacityRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesalib_capacity_rejections_total",
			Help: "Accepts refused because the provider had no remaining capacity",
		}),

		Triggers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mesalib_automatch_triggers_total",
			Help: "Auto-match trigger invocations by trigger and outcome",
		}, []string{"trigger", "outcome"}), // outcome: "ok", "error"

		IntentDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mesalib_intent_deliveries_total",
			Help: "Notification intent delivery attempts by type and outcome",
		}, []string{"type", "outcome"}), // outcome: "delivered", "retry", "failed", "dropped"

		DeliveryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mesalib_intent_delivery_duration_seconds",
			Help:    "Duration of a single intent delivery to the outbound sink",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementProposal records the outcome of one proposal attempt.
func (m *Metrics) IncrementProposal(trigger, outcome string) {
	if m != nil {
		m.Proposals.WithLabelValues(trigger, outcome).Inc()
	}
}

// IncrementTransition records a match moving to status.
func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.Transitions.WithLabelValues(status).Inc()
	}
}

// IncrementCapacityRejection records an accept refused for lack of capacity.
func (m *Metrics) IncrementCapacityRejection() {
	if m != nil {
		m.CapacityRejections.Inc()
	}
}

// IncrementTrigger records one auto-match trigger invocation.
func (m *Metrics) IncrementTrigger(trigger, outcome string) {
	if m != nil {
		m.Triggers.WithLabelValues(trigger, outcome).Inc()
	}
}

// IncrementDelivery records one delivery attempt.
func (m *Metrics) IncrementDelivery(intentType, outcome string) {
	if m != nil {
		m.IntentDeliveries.WithLabelValues(intentType, outcome).Inc()
	}
}

// ObserveDeliveryLatency records how long one delivery took.
func (m *Metrics) ObserveDeliveryLatency(d time.Duration) {
	if m != nil {
		m.DeliveryLatency.Observe(d.Seconds())
	}
}
