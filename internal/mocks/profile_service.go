package mocks

import (
	"context"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/service"
	"github.com/google/uuid"
)

// MockProfileService implements service.ProfileService for testing
type MockProfileService struct {
	CreateRequesterProfileFn func(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.RequesterFields,
	) (*domain.RequesterProfile, bool, error)
	CreateProviderProfileFn func(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.ProviderFields,
	) (*domain.ProviderProfile, bool, error)
	GetRequesterByOwnerFn    func(ctx context.Context, ownerID uuid.UUID) (*domain.RequesterProfile, error)
	GetProviderByOwnerFn     func(ctx context.Context, ownerID uuid.UUID) (*domain.ProviderProfile, error)
	GetProviderFn            func(ctx context.Context, providerID uuid.UUID) (*domain.ProviderProfile, error)
	UpdateRequesterProfileFn func(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.RequesterFields,
	) (*domain.RequesterProfile, error)
	UpdateProviderProfileFn func(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.ProviderFields,
	) (*domain.ProviderProfile, error)
	ListUnmatchedRequestersFn func(ctx context.Context) ([]*domain.RequesterProfile, error)
	ListProvidersFn           func(ctx context.Context) ([]*domain.ProviderProfile, error)

	// Default return values
	Requester    *domain.RequesterProfile
	Provider     *domain.ProviderProfile
	Requesters   []*domain.RequesterProfile
	Providers    []*domain.ProviderProfile
	Created      bool
	DefaultError error
}

var _ service.ProfileService = (*MockProfileService)(nil)

// CreateRequesterProfile implements service.ProfileService.CreateRequesterProfile
func (m *MockProfileService) CreateRequesterProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.RequesterFields,
) (*domain.RequesterProfile, bool, error) {
	if m.CreateRequesterProfileFn != nil {
		return m.CreateRequesterProfileFn(ctx, ownerID, fields)
	}
	return m.Requester, m.Created, m.DefaultError
}

// CreateProviderProfile implements service.ProfileService.CreateProviderProfile
func (m *MockProfileService) CreateProviderProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.ProviderFields,
) (*domain.ProviderProfile, bool, error) {
	if m.CreateProviderProfileFn != nil {
		return m.CreateProviderProfileFn(ctx, ownerID, fields)
	}
	return m.Provider, m.Created, m.DefaultError
}

// GetRequesterByOwner implements service.ProfileService.GetRequesterByOwner
func (m *MockProfileService) GetRequesterByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.RequesterProfile, error) {
	if m.GetRequesterByOwnerFn != nil {
		return m.GetRequesterByOwnerFn(ctx, ownerID)
	}
	return m.Requester, m.DefaultError
}

// GetProviderByOwner implements service.ProfileService.GetProviderByOwner
func (m *MockProfileService) GetProviderByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.ProviderProfile, error) {
	if m.GetProviderByOwnerFn != nil {
		return m.GetProviderByOwnerFn(ctx, ownerID)
	}
	return m.Provider, m.DefaultError
}

// GetProvider implements service.ProfileService.GetProvider
func (m *MockProfileService) GetProvider(ctx context.Context, providerID uuid.UUID) (*domain.ProviderProfile, error) {
	if m.GetProviderFn != nil {
		return m.GetProviderFn(ctx, providerID)
	}
	return m.Provider, m.DefaultError
}

// UpdateRequesterProfile implements service.ProfileService.UpdateRequesterProfile
func (m *MockProfileService) UpdateRequesterProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.RequesterFields,
) (*domain.RequesterProfile, error) {
	if m.UpdateRequesterProfileFn != nil {
		return m.UpdateRequesterProfileFn(ctx, ownerID, fields)
	}
	return m.Requester, m.DefaultError
}

// UpdateProviderProfile implements service.ProfileService.UpdateProviderProfile
func (m *MockProfileService) UpdateProviderProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.ProviderFields,
) (*domain.ProviderProfile, error) {
	if m.UpdateProviderProfileFn != nil {
		return m.UpdateProviderProfileFn(ctx, ownerID, fields)
	}
	return m.Provider, m.DefaultError
}

// ListUnmatchedRequesters implements service.ProfileService.ListUnmatchedRequesters
func (m *MockProfileService) ListUnmatchedRequesters(ctx context.Context) ([]*domain.RequesterProfile, error) {
	if m.ListUnmatchedRequestersFn != nil {
		return m.ListUnmatchedRequestersFn(ctx)
	}
	return m.Requesters, m.DefaultError
}

// ListProviders implements service.ProfileService.ListProviders
func (m *MockProfileService) ListProviders(ctx context.Context) ([]*domain.ProviderProfile, error) {
	if m.ListProvidersFn != nil {
		return m.ListProvidersFn(ctx)
	}
	return m.Providers, m.DefaultError
}
