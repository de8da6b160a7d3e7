package service

import (
	"context"
	"log/slog"

	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/redact"
	"github.com/google/uuid"
)

// Trigger names used in logs and metrics.
const (
	TriggerRequesterCreated = "requester_created"
	TriggerProviderCreated  = "provider_created"
	TriggerMatchDeclined    = "match_declined"
)

// Proposer is the part of the match lifecycle the auto-matcher drives.
type Proposer interface {
	ProposeBestMatch(ctx context.Context, requesterID uuid.UUID) (*ProposalResult, error)
	ProposeForNewProvider(ctx context.Context, providerID uuid.UUID) (*ProposalResult, error)
}

// AutoMatcher creates proposals without a human asking for them: when a
// profile is created and when a match is declined. Failures are logged and
// counted, never returned, so the event that fired the trigger always
// succeeds on its own.
type AutoMatcher struct {
	proposer Proposer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ Rematcher = (*AutoMatcher)(nil)

// NewAutoMatcher creates an AutoMatcher. It panics if proposer is nil.
func NewAutoMatcher(proposer Proposer, m *metrics.Metrics, logger *slog.Logger) *AutoMatcher {
	if proposer == nil {
		panic("proposer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoMatcher{
		proposer: proposer,
		metrics:  m,
		logger:   logger.With("component", "auto_matcher"),
	}
}

// RequesterCreated proposes the best provider to a new requester.
func (a *AutoMatcher) RequesterCreated(ctx context.Context, requesterID uuid.UUID) {
	result, err := a.proposer.ProposeBestMatch(ctx, requesterID)
	a.finish(ctx, TriggerRequesterCreated, requesterID, result, err)
}

// ProviderCreated proposes waiting requesters to a new provider.
func (a *AutoMatcher) ProviderCreated(ctx context.Context, providerID uuid.UUID) {
	result, err := a.proposer.ProposeForNewProvider(ctx, providerID)
	a.finish(ctx, TriggerProviderCreated, providerID, result, err)
}

// MatchDeclined implements Rematcher by proposing a replacement provider.
func (a *AutoMatcher) MatchDeclined(ctx context.Context, requesterID uuid.UUID) {
	result, err := a.proposer.ProposeBestMatch(ctx, requesterID)
	a.finish(ctx, TriggerMatchDeclined, requesterID, result, err)
}

func (a *AutoMatcher) finish(
	ctx context.Context,
	trigger string,
	subjectID uuid.UUID,
	result *ProposalResult,
	err error,
) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	if err != nil {
		a.metrics.IncrementTrigger(trigger, "error")
		log.Error("auto-match failed",
			"trigger", trigger,
			"subject_id", subjectID,
			"error", redact.Error(err))
		return
	}

	a.metrics.IncrementTrigger(trigger, "ok")
	log.Debug("auto-match finished",
		"trigger", trigger,
		"subject_id", subjectID,
		"created", len(result.Created),
		"reason", result.Reason)
}
