package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProposer struct {
	bestCalls     []uuid.UUID
	providerCalls []uuid.UUID
	err           error
}

func (s *stubProposer) ProposeBestMatch(_ context.Context, id uuid.UUID) (*ProposalResult, error) {
	s.bestCalls = append(s.bestCalls, id)
	if s.err != nil {
		return nil, s.err
	}
	return &ProposalResult{Reason: ReasonNoCandidates}, nil
}

func (s *stubProposer) ProposeForNewProvider(_ context.Context, id uuid.UUID) (*ProposalResult, error) {
	s.providerCalls = append(s.providerCalls, id)
	if s.err != nil {
		return nil, s.err
	}
	return &ProposalResult{}, nil
}

func TestAutoMatcher_RoutesTriggers(t *testing.T) {
	t.Parallel()

	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	proposer := &stubProposer{}
	auto := NewAutoMatcher(proposer, m, nil)
	ctx := context.Background()

	requesterID, providerID, declinedFor := uuid.New(), uuid.New(), uuid.New()
	auto.RequesterCreated(ctx, requesterID)
	auto.ProviderCreated(ctx, providerID)
	auto.MatchDeclined(ctx, declinedFor)

	assert.Equal(t, []uuid.UUID{requesterID, declinedFor}, proposer.bestCalls)
	assert.Equal(t, []uuid.UUID{providerID}, proposer.providerCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Triggers.WithLabelValues(TriggerRequesterCreated, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Triggers.WithLabelValues(TriggerProviderCreated, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Triggers.WithLabelValues(TriggerMatchDeclined, "ok")))
}

func TestAutoMatcher_SwallowsErrors(t *testing.T) {
	t.Parallel()

	log, buf := logger.GetTestLogger(t)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	auto := NewAutoMatcher(&stubProposer{err: errors.New("postgres://app:hunter22@db/mesalib unreachable")}, m, log)

	assert.NotPanics(t, func() {
		auto.RequesterCreated(context.Background(), uuid.New())
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Triggers.WithLabelValues(TriggerRequesterCreated, "error")))
	failures := buf.EntriesWithMessage("auto-match failed")
	require.Len(t, failures, 1)
	assert.Equal(t, TriggerRequesterCreated, failures[0]["trigger"])
	assert.Equal(t, "ERROR", failures[0]["level"])
	assert.NotContains(t, buf.String(), "hunter22")
}

func TestNewAutoMatcher_PanicsOnNilProposer(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewAutoMatcher(nil, nil, nil) })
}
