package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/domain/matching"
	"github.com/dutrus/MESALIB/internal/metrics"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/redact"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// DefaultMaxPendingPerRequester caps how many pending matches a requester
// may hold at once.
const DefaultMaxPendingPerRequester = 3

// Reasons reported in a skipped or empty ProposalResult.
const (
	ReasonAlreadyMatched = "requester_already_matched"
	ReasonPendingCap     = "pending_cap_reached"
	ReasonNoCandidates   = "no_candidates"
	ReasonNoCapacity     = "no_spare_capacity"
)

// Metric label values for proposal entry points.
const (
	proposalBestMatch   = "best_match"
	proposalNewProvider = "new_provider"
	proposalManual      = "manual"
)

// IntentEmitter hands notification intents to the delivery pipeline.
// Emit must not block on delivery and never fails the caller.
type IntentEmitter interface {
	Emit(ctx context.Context, intent *domain.NotificationIntent)
}

// Rematcher is told when a requester lost a pending match to a decline.
type Rematcher interface {
	MatchDeclined(ctx context.Context, requesterID uuid.UUID)
}

// ProposalResult describes what a proposal attempt did.
type ProposalResult struct {
	// Created holds the new pending matches, best first.
	Created []*domain.Match
	// Skipped is true when the attempt did not look for candidates at all.
	Skipped bool
	// Reason explains a skipped or empty result.
	Reason string
}

// MatchLifecycle defines the operations that create and resolve matches.
type MatchLifecycle interface {
	// ProposeBestMatch proposes the best eligible provider to a requester.
	ProposeBestMatch(ctx context.Context, requesterID uuid.UUID) (*ProposalResult, error)

	// ProposeForNewProvider proposes unmatched requesters to a provider, up
	// to its spare capacity.
	ProposeForNewProvider(ctx context.Context, providerID uuid.UUID) (*ProposalResult, error)

	// ProposeManual creates a pending match for a pair chosen by an
	// operator.
	ProposeManual(ctx context.Context, requesterID, providerID uuid.UUID) (*domain.Match, error)

	// Accept accepts a pending match on behalf of its provider, reserving
	// capacity and declining the requester's other pending matches.
	Accept(ctx context.Context, matchID, actingProviderID uuid.UUID) (*domain.Match, error)

	// Decline declines a pending match on behalf of its provider and asks
	// for a new proposal for the requester.
	Decline(ctx context.Context, matchID, actingProviderID uuid.UUID) (*domain.Match, error)

	// Get retrieves a match by ID.
	Get(ctx context.Context, matchID uuid.UUID) (*domain.Match, error)

	// ListPendingForProvider returns a provider's pending matches, newest first.
	ListPendingForProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.Match, error)

	// ListAcceptedForProvider returns a provider's accepted matches, newest first.
	ListAcceptedForProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.Match, error)

	// ListForRequester returns every match of a requester, newest first.
	ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.Match, error)
}

// LifecycleConfig holds the tunables of the match lifecycle.
type LifecycleConfig struct {
	MaxPendingPerRequester int
}

// MatchLifecycleService implements MatchLifecycle on top of a store.Backend.
type MatchLifecycleService struct {
	backend    store.Backend
	scorer     matching.Service
	ledger     *CapacityLedger
	emitter    IntentEmitter
	rematcher  Rematcher
	metrics    *metrics.Metrics
	maxPending int
	now        func() time.Time
	logger     *slog.Logger
}

var _ MatchLifecycle = (*MatchLifecycleService)(nil)

// NewMatchLifecycleService creates a MatchLifecycleService.
// It returns an error if any of the required dependencies are nil.
func NewMatchLifecycleService(
	backend store.Backend,
	scorer matching.Service,
	emitter IntentEmitter,
	m *metrics.Metrics,
	cfg LifecycleConfig,
	logger *slog.Logger,
) (*MatchLifecycleService, error) {
	if backend == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "backend cannot be nil"}
	}
	if scorer == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "scorer cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	maxPending := cfg.MaxPendingPerRequester
	if maxPending <= 0 {
		maxPending = DefaultMaxPendingPerRequester
	}

	return &MatchLifecycleService{
		backend:    backend,
		scorer:     scorer,
		ledger:     NewCapacityLedger(backend.Stores().Providers, m, logger),
		emitter:    emitter,
		metrics:    m,
		maxPending: maxPending,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With("component", "match_lifecycle"),
	}, nil
}

// SetRematcher registers the component told about declines. It must be
// called before the service handles requests.
func (s *MatchLifecycleService) SetRematcher(r Rematcher) {
	s.rematcher = r
}

// ProposeBestMatch implements MatchLifecycle.ProposeBestMatch.
// It proposes at most one provider: the best scored one that has spare
// capacity, passes the budget prefilter and was never paired with the
// requester before, whatever the status of that earlier match.
func (s *MatchLifecycleService) ProposeBestMatch(
	ctx context.Context,
	requesterID uuid.UUID,
) (*ProposalResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		result  *ProposalResult
		intents []*domain.NotificationIntent
	)
	err := s.withRetry(ctx, "propose_best_match", func() error {
		result = &ProposalResult{}
		intents = nil

		return s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
			requester, err := st.Requesters.LockByID(ctx, requesterID)
			if err != nil {
				return err
			}

			if reason, err := s.proposalBlocked(ctx, st.Matches, requesterID); err != nil || reason != "" {
				result.Skipped = reason != ""
				result.Reason = reason
				return err
			}

			providers, err := st.Providers.ListWithSpareCapacity(ctx)
			if err != nil {
				return err
			}
			paired, err := st.Matches.ProviderIDsForRequester(ctx, requesterID)
			if err != nil {
				return err
			}
			providers = slices.DeleteFunc(providers, func(p *domain.ProviderProfile) bool {
				return slices.Contains(paired, p.ID)
			})

			ranked := s.scorer.RankProviders(requester, providers)
			if len(ranked) == 0 {
				result.Reason = ReasonNoCandidates
				return nil
			}

			best := ranked[0]
			match, created, err := s.createMatch(ctx, st.Matches, requester.ID, best.Provider.ID, best.Score)
			if err != nil || !created {
				return err
			}

			intent, err := domain.MatchCreatedIntent(match, best.Provider, requester)
			if err != nil {
				return err
			}
			result.Created = append(result.Created, match)
			intents = append(intents, intent)
			return nil
		})
	})
	if err != nil {
		log.Error("failed to propose match",
			"error", redact.Error(err),
			"requester_id", requesterID)
		return nil, NewServiceError("propose_best_match", "failed to propose match", err)
	}

	s.recordProposal(proposalBestMatch, result)
	s.emit(ctx, intents)

	if len(result.Created) > 0 {
		log.Info("match proposed",
			"requester_id", requesterID,
			"match_id", result.Created[0].ID,
			"provider_id", result.Created[0].ProviderID,
			"score", result.Created[0].Score)
	} else {
		log.Debug("no match proposed",
			"requester_id", requesterID,
			"reason", result.Reason)
	}

	return result, nil
}

// ProposeForNewProvider implements MatchLifecycle.ProposeForNewProvider.
// Candidates are requesters without an accepted match, ranked high urgency
// first. Each candidate is locked and re-checked against the pending cap
// before its match is written.
func (s *MatchLifecycleService) ProposeForNewProvider(
	ctx context.Context,
	providerID uuid.UUID,
) (*ProposalResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		result  *ProposalResult
		intents []*domain.NotificationIntent
	)
	err := s.withRetry(ctx, "propose_for_new_provider", func() error {
		result = &ProposalResult{}
		intents = nil

		return s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
			provider, err := st.Providers.LockByID(ctx, providerID)
			if err != nil {
				return err
			}

			spare := provider.SpareCapacity()
			if spare == 0 {
				result.Skipped = true
				result.Reason = ReasonNoCapacity
				return nil
			}

			requesters, err := st.Requesters.ListUnmatched(ctx)
			if err != nil {
				return err
			}
			paired, err := st.Matches.RequesterIDsForProvider(ctx, providerID)
			if err != nil {
				return err
			}
			requesters = slices.DeleteFunc(requesters, func(r *domain.RequesterProfile) bool {
				return slices.Contains(paired, r.ID)
			})

			for _, candidate := range s.scorer.RankRequesters(provider, requesters) {
				if len(result.Created) >= spare {
					break
				}

				requester, err := st.Requesters.LockByID(ctx, candidate.Requester.ID)
				if err != nil {
					return err
				}
				reason, err := s.proposalBlocked(ctx, st.Matches, requester.ID)
				if err != nil {
					return err
				}
				if reason != "" {
					continue
				}

				match, created, err := s.createMatch(ctx, st.Matches, requester.ID, providerID, candidate.Score)
				if err != nil {
					return err
				}
				if !created {
					continue
				}

				intent, err := domain.MatchCreatedIntent(match, provider, requester)
				if err != nil {
					return err
				}
				result.Created = append(result.Created, match)
				intents = append(intents, intent)
			}

			if len(result.Created) == 0 {
				result.Reason = ReasonNoCandidates
			}
			return nil
		})
	})
	if err != nil {
		log.Error("failed to propose requesters to provider",
			"error", redact.Error(err),
			"provider_id", providerID)
		return nil, NewServiceError("propose_for_new_provider", "failed to propose matches", err)
	}

	s.recordProposal(proposalNewProvider, result)
	s.emit(ctx, intents)

	log.Info("proposals for provider finished",
		"provider_id", providerID,
		"created", len(result.Created),
		"reason", result.Reason)

	return result, nil
}

// ProposeManual implements MatchLifecycle.ProposeManual.
// The pair skips ranking and the budget prefilter, but every other gate of
// the automatic proposals holds: the provider needs spare capacity, the
// requester must have no accepted match and be under the pending cap, and a
// pair is only ever matched once. The score is still computed and stored.
func (s *MatchLifecycleService) ProposeManual(
	ctx context.Context,
	requesterID, providerID uuid.UUID,
) (*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		match  *domain.Match
		intent *domain.NotificationIntent
	)
	err := s.withRetry(ctx, "propose_manual", func() error {
		match, intent = nil, nil

		return s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
			provider, err := st.Providers.LockByID(ctx, providerID)
			if err != nil {
				return err
			}
			if !provider.HasSpareCapacity() {
				return domain.ErrCapacityExhausted
			}

			requester, err := st.Requesters.LockByID(ctx, requesterID)
			if err != nil {
				return err
			}
			reason, err := s.proposalBlocked(ctx, st.Matches, requesterID)
			if err != nil {
				return err
			}
			switch reason {
			case ReasonAlreadyMatched:
				return ErrRequesterAlreadyMatched
			case ReasonPendingCap:
				return ErrPendingCapReached
			}

			m, created, err := s.createMatch(ctx, st.Matches, requesterID, providerID,
				s.scorer.Score(requester, provider))
			if err != nil {
				return err
			}
			if !created {
				return ErrPairAlreadyMatched
			}

			intent, err = domain.MatchCreatedIntent(m, provider, requester)
			if err != nil {
				return err
			}
			match = m
			return nil
		})
	})
	if err != nil {
		log.Warn("failed to create manual match",
			"error", redact.Error(err),
			"requester_id", requesterID,
			"provider_id", providerID)
		return nil, NewServiceError("propose_manual", "failed to create match", err)
	}

	s.metrics.IncrementProposal(proposalManual, "created")
	s.emit(ctx, []*domain.NotificationIntent{intent})

	log.Info("manual match proposed",
		"match_id", match.ID,
		"requester_id", requesterID,
		"provider_id", providerID,
		"score", match.Score)

	return match, nil
}

// Accept implements MatchLifecycle.Accept.
// The status change, the capacity reservation and the decline of the
// requester's other pending matches commit together or not at all.
// Accepting an already accepted match returns it unchanged.
func (s *MatchLifecycleService) Accept(
	ctx context.Context,
	matchID, actingProviderID uuid.UUID,
) (*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		match    *domain.Match
		declined []*domain.Match
		changed  bool
		intents  []*domain.NotificationIntent
	)
	err := s.withRetry(ctx, "accept_match", func() error {
		match, declined, changed, intents = nil, nil, false, nil

		return s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
			now := s.now()

			m, err := st.Matches.Transition(ctx, matchID, actingProviderID,
				domain.MatchPending, domain.MatchAccepted, now)
			if err != nil {
				return err
			}
			if m == nil {
				match, err = classifyMiss(ctx, st.Matches, matchID, actingProviderID, domain.MatchAccepted)
				return err
			}

			if err := s.ledger.WithStore(st.Providers).Reserve(ctx, actingProviderID); err != nil {
				return err
			}

			// Proposals hold this lock while they insert, so no pending
			// match can slip in after the siblings are declined.
			requester, err := st.Requesters.LockByID(ctx, m.RequesterID)
			if err != nil {
				return err
			}

			others, err := st.Matches.DeclineOtherPending(ctx, m.RequesterID, m.ID, now)
			if err != nil {
				return err
			}

			provider, err := st.Providers.GetByID(ctx, actingProviderID)
			if err != nil {
				return err
			}

			// Siblings declined here are superseded, not refused, so only the
			// acceptance is announced.
			intent, err := domain.MatchDecisionIntent(m, provider, requester)
			if err != nil {
				return err
			}

			match, declined, changed, intents = m, others, true, []*domain.NotificationIntent{intent}
			return nil
		})
	})
	if err != nil {
		log.Warn("failed to accept match",
			"error", redact.Error(err),
			"match_id", matchID,
			"provider_id", actingProviderID)
		return nil, NewServiceError("accept_match", "failed to accept match", err)
	}

	if !changed {
		log.Debug("match already accepted", "match_id", matchID)
		return match, nil
	}

	s.metrics.IncrementTransition(string(domain.MatchAccepted))
	for range declined {
		s.metrics.IncrementTransition(string(domain.MatchDeclined))
	}
	s.emit(ctx, intents)

	log.Info("match accepted",
		"match_id", match.ID,
		"requester_id", match.RequesterID,
		"provider_id", match.ProviderID,
		"auto_declined", len(declined))

	return match, nil
}

// Decline implements MatchLifecycle.Decline.
// A successful decline triggers exactly one re-match attempt for the
// requester after commit. Declining an already declined match returns it
// unchanged and triggers nothing.
func (s *MatchLifecycleService) Decline(
	ctx context.Context,
	matchID, actingProviderID uuid.UUID,
) (*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		match   *domain.Match
		changed bool
		intents []*domain.NotificationIntent
	)
	err := s.withRetry(ctx, "decline_match", func() error {
		match, changed, intents = nil, false, nil

		return s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
			m, err := st.Matches.Transition(ctx, matchID, actingProviderID,
				domain.MatchPending, domain.MatchDeclined, s.now())
			if err != nil {
				return err
			}
			if m == nil {
				match, err = classifyMiss(ctx, st.Matches, matchID, actingProviderID, domain.MatchDeclined)
				return err
			}

			requester, err := st.Requesters.GetByID(ctx, m.RequesterID)
			if err != nil {
				return err
			}
			provider, err := st.Providers.GetByID(ctx, actingProviderID)
			if err != nil {
				return err
			}
			intent, err := domain.MatchDecisionIntent(m, provider, requester)
			if err != nil {
				return err
			}

			match, changed, intents = m, true, []*domain.NotificationIntent{intent}
			return nil
		})
	})
	if err != nil {
		log.Warn("failed to decline match",
			"error", redact.Error(err),
			"match_id", matchID,
			"provider_id", actingProviderID)
		return nil, NewServiceError("decline_match", "failed to decline match", err)
	}

	if !changed {
		log.Debug("match already declined", "match_id", matchID)
		return match, nil
	}

	s.metrics.IncrementTransition(string(domain.MatchDeclined))
	s.emit(ctx, intents)

	log.Info("match declined",
		"match_id", match.ID,
		"requester_id", match.RequesterID,
		"provider_id", match.ProviderID)

	if s.rematcher != nil {
		s.rematcher.MatchDeclined(ctx, match.RequesterID)
	}

	return match, nil
}

// Get implements MatchLifecycle.Get.
func (s *MatchLifecycleService) Get(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	m, err := s.backend.Stores().Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, NewServiceError("get_match", "failed to retrieve match", err)
	}
	return m, nil
}

// ListPendingForProvider implements MatchLifecycle.ListPendingForProvider.
func (s *MatchLifecycleService) ListPendingForProvider(
	ctx context.Context,
	providerID uuid.UUID,
) ([]*domain.Match, error) {
	return s.listForProvider(ctx, providerID, domain.MatchPending)
}

// ListAcceptedForProvider implements MatchLifecycle.ListAcceptedForProvider.
func (s *MatchLifecycleService) ListAcceptedForProvider(
	ctx context.Context,
	providerID uuid.UUID,
) ([]*domain.Match, error) {
	return s.listForProvider(ctx, providerID, domain.MatchAccepted)
}

// ListForRequester implements MatchLifecycle.ListForRequester.
func (s *MatchLifecycleService) ListForRequester(
	ctx context.Context,
	requesterID uuid.UUID,
) ([]*domain.Match, error) {
	matches, err := s.backend.Stores().Matches.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, NewServiceError("list_requester_matches", "failed to list matches", err)
	}
	return matches, nil
}

func (s *MatchLifecycleService) listForProvider(
	ctx context.Context,
	providerID uuid.UUID,
	status domain.MatchStatus,
) ([]*domain.Match, error) {
	matches, err := s.backend.Stores().Matches.ListByProvider(ctx, providerID, status)
	if err != nil {
		return nil, NewServiceError("list_provider_matches", "failed to list matches", err)
	}
	return matches, nil
}

// proposalBlocked returns a non-empty reason when the requester must not
// receive another proposal.
func (s *MatchLifecycleService) proposalBlocked(
	ctx context.Context,
	matches store.MatchStore,
	requesterID uuid.UUID,
) (string, error) {
	accepted, err := matches.CountByRequester(ctx, requesterID, domain.MatchAccepted)
	if err != nil {
		return "", err
	}
	if accepted > 0 {
		return ReasonAlreadyMatched, nil
	}

	pending, err := matches.CountByRequester(ctx, requesterID, domain.MatchPending)
	if err != nil {
		return "", err
	}
	if pending >= s.maxPending {
		return ReasonPendingCap, nil
	}
	return "", nil
}

func (s *MatchLifecycleService) createMatch(
	ctx context.Context,
	matches store.MatchStore,
	requesterID, providerID uuid.UUID,
	score int,
) (*domain.Match, bool, error) {
	m, err := domain.NewMatch(requesterID, providerID, score)
	if err != nil {
		return nil, false, err
	}
	m.CreatedAt = s.now()

	created, err := matches.Create(ctx, m)
	if err != nil {
		return nil, false, err
	}
	return m, created, nil
}

// classifyMiss explains why a guarded transition to target touched no row.
// A match already in target is returned as is.
func classifyMiss(
	ctx context.Context,
	matches store.MatchStore,
	matchID, actingProviderID uuid.UUID,
	target domain.MatchStatus,
) (*domain.Match, error) {
	m, err := matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.ProviderID != actingProviderID {
		return nil, ErrNotMatchProvider
	}

	switch m.Status {
	case target:
		return m, nil
	case domain.MatchDeclined:
		return nil, ErrMatchAlreadyDeclined
	case domain.MatchAccepted:
		return nil, ErrMatchAlreadyAccepted
	case domain.MatchCompleted:
		return nil, ErrMatchClosed
	default:
		return nil, fmt.Errorf("%w: match %s changed concurrently", domain.ErrConflict, matchID)
	}
}

// withRetry runs fn once more when it failed with a transient store error.
func (s *MatchLifecycleService) withRetry(ctx context.Context, operation string, fn func() error) error {
	err := fn()
	if err == nil || !store.IsTransientError(err) {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Warn("retrying after transient store failure",
		"operation", operation,
		"error", redact.Error(err))
	return fn()
}

func (s *MatchLifecycleService) recordProposal(trigger string, result *ProposalResult) {
	switch {
	case len(result.Created) > 0:
		s.metrics.IncrementProposal(trigger, "created")
	case result.Skipped:
		s.metrics.IncrementProposal(trigger, "skipped")
	default:
		s.metrics.IncrementProposal(trigger, "none")
	}
}

func (s *MatchLifecycleService) emit(ctx context.Context, intents []*domain.NotificationIntent) {
	for _, intent := range intents {
		s.emitter.Emit(ctx, intent)
	}
}
