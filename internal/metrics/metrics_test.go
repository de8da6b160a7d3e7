package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementProposal("requester_created", "created")
	m.IncrementProposal("requester_created", "created")
	m.IncrementTransition("accepted")
	m.IncrementCapacityRejection()
	m.IncrementTrigger("match_declined", "error")
	m.IncrementDelivery("match_created", "delivered")
	m.ObserveDeliveryLatency(5 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Proposals.WithLabelValues("requester_created", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapacityRejections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Triggers.WithLabelValues("match_declined", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntentDeliveries.WithLabelValues("match_created", "delivered")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DeliveryLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementProposal("x", "y")
		m.IncrementTransition("accepted")
		m.IncrementCapacityRejection()
		m.IncrementTrigger("x", "ok")
		m.IncrementDelivery("x", "failed")
		m.ObserveDeliveryLatency(time.Second)
	})
}
