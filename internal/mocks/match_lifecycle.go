package mocks

import (
	"context"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/service"
	"github.com/google/uuid"
)

// MockMatchLifecycle implements service.MatchLifecycle for testing
type MockMatchLifecycle struct {
	ProposeBestMatchFn        func(ctx context.Context, requesterID uuid.UUID) (*service.ProposalResult, error)
	ProposeForNewProviderFn   func(ctx context.Context, providerID uuid.UUID) (*service.ProposalResult, error)
	AcceptFn                  func(ctx context.Context, matchID, actingProviderID uuid.UUID) (*domain.Match, error)
	DeclineFn                 func(ctx context.Context, matchID, actingProviderID uuid.UUID) (*domain.Match, error)
	GetFn                     func(ctx context.Context, matchID uuid.UUID) (*domain.Match, error)
	ListPendingForProviderFn  func(ctx context.Context, providerID uuid.UUID) ([]*domain.Match, error)
	ListAcceptedForProviderFn func(ctx context.Context, providerID uuid.UUID) ([]*domain.Match, error)
	ListForRequesterFn        func(ctx context.Context, requesterID uuid.UUID) ([]*domain.Match, error)
	ProposeManualFn           func(ctx context.Context, requesterID, providerID uuid.UUID) (*domain.Match, error)

	// Default return values
	Result       *service.ProposalResult
	Match        *domain.Match
	Matches      []*domain.Match
	DefaultError error
}

var _ service.MatchLifecycle = (*MockMatchLifecycle)(nil)

// ProposeBestMatch implements service.MatchLifecycle.ProposeBestMatch
func (m *MockMatchLifecycle) ProposeBestMatch(ctx context.Context, requesterID uuid.UUID) (*service.ProposalResult, error) {
	if m.ProposeBestMatchFn != nil {
		return m.ProposeBestMatchFn(ctx, requesterID)
	}
	return m.Result, m.DefaultError
}

// ProposeForNewProvider implements service.MatchLifecycle.ProposeForNewProvider
func (m *MockMatchLifecycle) ProposeForNewProvider(
	ctx context.Context,
	providerID uuid.UUID,
) (*service.ProposalResult, error) {
	if m.ProposeForNewProviderFn != nil {
		return m.ProposeForNewProviderFn(ctx, providerID)
	}
	return m.Result, m.DefaultError
}

// ProposeManual implements service.MatchLifecycle.ProposeManual
func (m *MockMatchLifecycle) ProposeManual(ctx context.Context, requesterID, providerID uuid.UUID) (*domain.Match, error) {
	if m.ProposeManualFn != nil {
		return m.ProposeManualFn(ctx, requesterID, providerID)
	}
	return m.Match, m.DefaultError
}

// Accept implements service.MatchLifecycle.Accept
func (m *MockMatchLifecycle) Accept(ctx context.Context, matchID, actingProviderID uuid.UUID) (*domain.Match, error) {
	if m.AcceptFn != nil {
		return m.AcceptFn(ctx, matchID, actingProviderID)
	}
	return m.Match, m.DefaultError
}

// Decline implements service.MatchLifecycle.Decline
func (m *MockMatchLifecycle) Decline(ctx context.Context, matchID, actingProviderID uuid.UUID) (*domain.Match, error) {
	if m.DeclineFn != nil {
		return m.DeclineFn(ctx, matchID, actingProviderID)
	}
	return m.Match, m.DefaultError
}

// Get implements service.MatchLifecycle.Get
func (m *MockMatchLifecycle) Get(ctx context.Context, matchID uuid.UUID) (*domain.Match, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, matchID)
	}
	return m.Match, m.DefaultError
}

// ListPendingForProvider implements service.MatchLifecycle.ListPendingForProvider
func (m *MockMatchLifecycle) ListPendingForProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.Match, error) {
	if m.ListPendingForProviderFn != nil {
		return m.ListPendingForProviderFn(ctx, providerID)
	}
	return m.Matches, m.DefaultError
}

// ListAcceptedForProvider implements service.MatchLifecycle.ListAcceptedForProvider
func (m *MockMatchLifecycle) ListAcceptedForProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.Match, error) {
	if m.ListAcceptedForProviderFn != nil {
		return m.ListAcceptedForProviderFn(ctx, providerID)
	}
	return m.Matches, m.DefaultError
}

// ListForRequester implements service.MatchLifecycle.ListForRequester
func (m *MockMatchLifecycle) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.Match, error) {
	if m.ListForRequesterFn != nil {
		return m.ListForRequesterFn(ctx, requesterID)
	}
	return m.Matches, m.DefaultError
}
