package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/dutrus/MESALIB/internal/platform/logger"
	"github.com/dutrus/MESALIB/internal/redact"
	"github.com/dutrus/MESALIB/internal/store"
	"github.com/google/uuid"
)

// ProfileTriggers is told about newly created profiles.
type ProfileTriggers interface {
	RequesterCreated(ctx context.Context, requesterID uuid.UUID)
	ProviderCreated(ctx context.Context, providerID uuid.UUID)
}

// ProfileService defines the operations on requester and provider profiles.
type ProfileService interface {
	// CreateRequesterProfile creates the owner's requester profile. If the
	// owner already has one it is returned with created set to false.
	CreateRequesterProfile(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.RequesterFields,
	) (profile *domain.RequesterProfile, created bool, err error)

	// CreateProviderProfile creates the owner's provider profile. If the
	// owner already has one it is returned with created set to false.
	CreateProviderProfile(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.ProviderFields,
	) (profile *domain.ProviderProfile, created bool, err error)

	// GetRequesterByOwner retrieves the owner's requester profile.
	GetRequesterByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.RequesterProfile, error)

	// GetProviderByOwner retrieves the owner's provider profile.
	GetProviderByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.ProviderProfile, error)

	// GetProvider retrieves a provider profile by ID.
	GetProvider(ctx context.Context, providerID uuid.UUID) (*domain.ProviderProfile, error)

	// UpdateRequesterProfile replaces the owner-editable fields. It fails
	// with ErrProfileLocked once the requester has an accepted match.
	UpdateRequesterProfile(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.RequesterFields,
	) (*domain.RequesterProfile, error)

	// UpdateProviderProfile replaces the owner-editable fields. It fails
	// with ErrMaxLoadBelowLoad when max_load would drop below current_load.
	UpdateProviderProfile(
		ctx context.Context,
		ownerID uuid.UUID,
		fields domain.ProviderFields,
	) (*domain.ProviderProfile, error)

	// ListUnmatchedRequesters returns requesters without an accepted match,
	// oldest first.
	ListUnmatchedRequesters(ctx context.Context) ([]*domain.RequesterProfile, error)

	// ListProviders returns every provider profile, newest first.
	ListProviders(ctx context.Context) ([]*domain.ProviderProfile, error)
}

// profileServiceImpl implements the ProfileService interface
type profileServiceImpl struct {
	backend  store.Backend
	triggers ProfileTriggers
	logger   *slog.Logger
}

// NewProfileService creates a new ProfileService.
// It returns an error if any of the required dependencies are nil.
func NewProfileService(
	backend store.Backend,
	triggers ProfileTriggers,
	logger *slog.Logger,
) (ProfileService, error) {
	if backend == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "backend cannot be nil"}
	}
	if triggers == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "triggers cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &profileServiceImpl{
		backend:  backend,
		triggers: triggers,
		logger:   logger.With("component", "profile_service"),
	}, nil
}

// CreateRequesterProfile implements ProfileService.CreateRequesterProfile.
func (s *profileServiceImpl) CreateRequesterProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.RequesterFields,
) (*domain.RequesterProfile, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	requesters := s.backend.Stores().Requesters

	existing, err := requesters.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		return existing, false, nil
	case !store.IsNotFoundError(err):
		return nil, false, NewServiceError("create_requester", "failed to look up profile", err)
	}

	profile, err := domain.NewRequesterProfile(ownerID, fields)
	if err != nil {
		return nil, false, err
	}

	if err := requesters.Create(ctx, profile); err != nil {
		if errors.Is(err, store.ErrProfileExists) {
			existing, getErr := requesters.GetByOwner(ctx, ownerID)
			if getErr != nil {
				return nil, false, NewServiceError("create_requester", "failed to look up profile", getErr)
			}
			return existing, false, nil
		}
		log.Error("failed to create requester profile",
			"error", redact.Error(err),
			"owner_id", ownerID)
		return nil, false, NewServiceError("create_requester", "failed to save profile", err)
	}

	log.Info("requester profile created",
		"requester_id", profile.ID,
		"owner_id", ownerID)

	s.triggers.RequesterCreated(ctx, profile.ID)
	return profile, true, nil
}

// CreateProviderProfile implements ProfileService.CreateProviderProfile.
func (s *profileServiceImpl) CreateProviderProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.ProviderFields,
) (*domain.ProviderProfile, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	providers := s.backend.Stores().Providers

	existing, err := providers.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		return existing, false, nil
	case !store.IsNotFoundError(err):
		return nil, false, NewServiceError("create_provider", "failed to look up profile", err)
	}

	profile, err := domain.NewProviderProfile(ownerID, fields)
	if err != nil {
		return nil, false, err
	}

	if err := providers.Create(ctx, profile); err != nil {
		if errors.Is(err, store.ErrProfileExists) {
			existing, getErr := providers.GetByOwner(ctx, ownerID)
			if getErr != nil {
				return nil, false, NewServiceError("create_provider", "failed to look up profile", getErr)
			}
			return existing, false, nil
		}
		log.Error("failed to create provider profile",
			"error", redact.Error(err),
			"owner_id", ownerID)
		return nil, false, NewServiceError("create_provider", "failed to save profile", err)
	}

	log.Info("provider profile created",
		"provider_id", profile.ID,
		"owner_id", ownerID,
		"max_load", profile.MaxLoad)

	s.triggers.ProviderCreated(ctx, profile.ID)
	return profile, true, nil
}

// GetRequesterByOwner implements ProfileService.GetRequesterByOwner.
func (s *profileServiceImpl) GetRequesterByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) (*domain.RequesterProfile, error) {
	p, err := s.backend.Stores().Requesters.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewServiceError("get_requester", "failed to retrieve profile", err)
	}
	return p, nil
}

// GetProviderByOwner implements ProfileService.GetProviderByOwner.
func (s *profileServiceImpl) GetProviderByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) (*domain.ProviderProfile, error) {
	p, err := s.backend.Stores().Providers.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewServiceError("get_provider", "failed to retrieve profile", err)
	}
	return p, nil
}

// GetProvider implements ProfileService.GetProvider.
func (s *profileServiceImpl) GetProvider(ctx context.Context, providerID uuid.UUID) (*domain.ProviderProfile, error) {
	p, err := s.backend.Stores().Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, NewServiceError("get_provider", "failed to retrieve profile", err)
	}
	return p, nil
}

// ListUnmatchedRequesters implements ProfileService.ListUnmatchedRequesters
func (s *profileServiceImpl) ListUnmatchedRequesters(ctx context.Context) ([]*domain.RequesterProfile, error) {
	requesters, err := s.backend.Stores().Requesters.ListUnmatched(ctx)
	if err != nil {
		return nil, NewServiceError("list_unmatched_requesters", "failed to list requesters", err)
	}
	return requesters, nil
}

// ListProviders implements ProfileService.ListProviders
func (s *profileServiceImpl) ListProviders(ctx context.Context) ([]*domain.ProviderProfile, error) {
	providers, err := s.backend.Stores().Providers.List(ctx)
	if err != nil {
		return nil, NewServiceError("list_providers", "failed to list providers", err)
	}
	return providers, nil
}

// UpdateRequesterProfile implements ProfileService.UpdateRequesterProfile.
func (s *profileServiceImpl) UpdateRequesterProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.RequesterFields,
) (*domain.RequesterProfile, error) {
	var updated *domain.RequesterProfile

	err := s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		current, err := st.Requesters.GetByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		profile, err := st.Requesters.LockByID(ctx, current.ID)
		if err != nil {
			return err
		}

		accepted, err := st.Matches.CountByRequester(ctx, profile.ID, domain.MatchAccepted)
		if err != nil {
			return err
		}
		if accepted > 0 {
			return ErrProfileLocked
		}

		if err := profile.ApplyUpdate(fields); err != nil {
			return err
		}
		if err := st.Requesters.Update(ctx, profile); err != nil {
			return err
		}
		updated = profile
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_requester", "failed to update profile", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("requester profile updated",
		"requester_id", updated.ID)
	return updated, nil
}

// UpdateProviderProfile implements ProfileService.UpdateProviderProfile.
// Load is left to the capacity ledger; the stored current_load is kept.
func (s *profileServiceImpl) UpdateProviderProfile(
	ctx context.Context,
	ownerID uuid.UUID,
	fields domain.ProviderFields,
) (*domain.ProviderProfile, error) {
	var updated *domain.ProviderProfile

	err := s.backend.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		current, err := st.Providers.GetByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		profile, err := st.Providers.LockByID(ctx, current.ID)
		if err != nil {
			return err
		}

		if fields.MaxLoad < profile.CurrentLoad {
			return ErrMaxLoadBelowLoad
		}
		if err := profile.ApplyUpdate(fields); err != nil {
			return err
		}

		ok, err := st.Providers.Update(ctx, profile)
		if err != nil {
			return err
		}
		if !ok {
			return ErrMaxLoadBelowLoad
		}
		updated = profile
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_provider", "failed to update profile", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("provider profile updated",
		"provider_id", updated.ID,
		"max_load", updated.MaxLoad)
	return updated, nil
}
