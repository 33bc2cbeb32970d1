package repository

import (
	"context"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProviderRepository interface {
	Create(ctx context.Context, provider *model.Provider) error
	Update(ctx context.Context, provider *model.Provider) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	List(ctx context.Context, activeOnly bool) ([]model.Provider, error)
}

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(ctx context.Context, provider *model.Provider) error {
	return GetDB(ctx, r.db).Create(provider).Error
}

func (r *providerRepository) Update(ctx context.Context, provider *model.Provider) error {
	return GetDB(ctx, r.db).Save(provider).Error
}

func (r *providerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var provider model.Provider
	if err := GetDB(ctx, r.db).First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) List(ctx context.Context, activeOnly bool) ([]model.Provider, error) {
	var providers []model.Provider
	q := GetDB(ctx, r.db).Order("active DESC, name ASC")
	if activeOnly {
		q = q.Where("active = true")
	}
	if err := q.Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}
