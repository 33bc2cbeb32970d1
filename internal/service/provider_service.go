package service

import (
	"context"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type ProviderRequest struct {
	Name                     string `json:"name" binding:"required"`
	Role                     string `json:"role"`
	DefaultCommissionPercent int    `json:"default_commission_percent"`
}

type ProviderResponse struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	Role                     string `json:"role"`
	DefaultCommissionPercent int    `json:"default_commission_percent"`
	Active                   bool   `json:"active"`
}

// --- Interface ---

type ProviderService interface {
	Create(ctx context.Context, req ProviderRequest) (ProviderResponse, error)
	Update(ctx context.Context, id string, req ProviderRequest) (ProviderResponse, error)
	// ToggleActive flips the active flag. Providers referenced by ledger
	// entries are deactivated, never deleted.
	ToggleActive(ctx context.Context, id string) (ProviderResponse, error)
	Get(ctx context.Context, id string) (ProviderResponse, error)
	List(ctx context.Context, activeOnly bool) ([]ProviderResponse, error)
}

type providerService struct {
	providerRepo repository.ProviderRepository
}

func NewProviderService(providerRepo repository.ProviderRepository) ProviderService {
	return &providerService{providerRepo: providerRepo}
}

// --- Implementation ---

func (s *providerService) Create(ctx context.Context, req ProviderRequest) (ProviderResponse, error) {
	if req.Name == "" {
		return ProviderResponse{}, apperror.Validation("name is required")
	}
	role := req.Role
	if role == "" {
		role = "Dentista"
	}
	provider := model.Provider{
		Name:                     req.Name,
		Role:                     role,
		DefaultCommissionPercent: model.ClampPercent(req.DefaultCommissionPercent),
		Active:                   true,
	}
	if err := s.providerRepo.Create(ctx, &provider); err != nil {
		return ProviderResponse{}, apperror.Integrity("failed to create provider", err)
	}
	return toProviderResponse(provider), nil
}

func (s *providerService) Update(ctx context.Context, id string, req ProviderRequest) (ProviderResponse, error) {
	provider, err := s.findProvider(ctx, id)
	if err != nil {
		return ProviderResponse{}, err
	}
	if req.Name == "" {
		return ProviderResponse{}, apperror.Validation("name is required")
	}
	provider.Name = req.Name
	if req.Role != "" {
		provider.Role = req.Role
	}
	provider.DefaultCommissionPercent = model.ClampPercent(req.DefaultCommissionPercent)
	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return ProviderResponse{}, apperror.Integrity("failed to update provider", err)
	}
	return toProviderResponse(*provider), nil
}

func (s *providerService) ToggleActive(ctx context.Context, id string) (ProviderResponse, error) {
	provider, err := s.findProvider(ctx, id)
	if err != nil {
		return ProviderResponse{}, err
	}
	provider.Active = !provider.Active
	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return ProviderResponse{}, apperror.Integrity("failed to toggle provider", err)
	}
	return toProviderResponse(*provider), nil
}

func (s *providerService) Get(ctx context.Context, id string) (ProviderResponse, error) {
	provider, err := s.findProvider(ctx, id)
	if err != nil {
		return ProviderResponse{}, err
	}
	return toProviderResponse(*provider), nil
}

func (s *providerService) List(ctx context.Context, activeOnly bool) ([]ProviderResponse, error) {
	providers, err := s.providerRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, apperror.Integrity("failed to list providers", err)
	}
	out := make([]ProviderResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, toProviderResponse(p))
	}
	return out, nil
}

func (s *providerService) findProvider(ctx context.Context, id string) (*model.Provider, error) {
	providerID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid provider id")
	}
	provider, err := s.providerRepo.FindByID(ctx, providerID)
	if err != nil {
		return nil, apperror.NotFound("provider not found")
	}
	return provider, nil
}

func toProviderResponse(p model.Provider) ProviderResponse {
	return ProviderResponse{
		ID:                       p.ID.String(),
		Name:                     p.Name,
		Role:                     p.Role,
		DefaultCommissionPercent: p.DefaultCommissionPercent,
		Active:                   p.Active,
	}
}
