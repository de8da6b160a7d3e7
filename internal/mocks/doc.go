// Package mocks provides hand-written test doubles for the service
// interfaces consumed by the HTTP layer.
//
// Each mock has one function field per interface method. A nil function
// falls back to the mock's default fields, so a test only sets what it
// exercises:
//
//	lifecycle := &mocks.MockMatchLifecycle{
//	    AcceptFn: func(ctx context.Context, matchID, providerID uuid.UUID) (*domain.Match, error) {
//	        return nil, domain.ErrCapacityExhausted
//	    },
//	}
//	profiles := &mocks.MockProfileService{Provider: provider}
//
// MockJWTService additionally offers TokenFor, which accepts any bearer
// token as the given user.
package mocks
