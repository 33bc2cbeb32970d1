package repository

import (
	"context"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrthoFilter narrows maintenance listings.
type OrthoFilter struct {
	Search        string // patient name, patient document, work description
	PatientID     *uuid.UUID
	PaymentStatus string // paid, pending
}

type OrthoRepository interface {
	Create(ctx context.Context, record *model.OrthoMaintenance) error
	Update(ctx context.Context, record *model.OrthoMaintenance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OrthoMaintenance, error)
	// FindByIDForUpdate locks the record row so concurrent edits cannot both
	// decide to create a ledger link.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.OrthoMaintenance, error)
	List(ctx context.Context, filter OrthoFilter, limit int) ([]model.OrthoMaintenance, error)
}

type orthoRepository struct {
	db *gorm.DB
}

func NewOrthoRepository(db *gorm.DB) OrthoRepository {
	return &orthoRepository{db: db}
}

func (r *orthoRepository) Create(ctx context.Context, record *model.OrthoMaintenance) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *orthoRepository) Update(ctx context.Context, record *model.OrthoMaintenance) error {
	return GetDB(ctx, r.db).Save(record).Error
}

func (r *orthoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.OrthoMaintenance, error) {
	var record model.OrthoMaintenance
	err := GetDB(ctx, r.db).
		Preload("Patient").Preload("Provider").
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *orthoRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.OrthoMaintenance, error) {
	var record model.OrthoMaintenance
	err := GetDB(ctx, r.db).
		Clauses(forUpdate()).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *orthoRepository) List(ctx context.Context, filter OrthoFilter, limit int) ([]model.OrthoMaintenance, error) {
	var records []model.OrthoMaintenance
	q := GetDB(ctx, r.db).Model(&model.OrthoMaintenance{}).
		Preload("Patient").Preload("Provider").
		Order("ortho_maintenances.maintenance_date DESC, ortho_maintenances.id DESC")
	if filter.Search != "" {
		pat := "%" + filter.Search + "%"
		q = q.Joins("JOIN patients ON patients.id = ortho_maintenances.patient_id").
			Where("patients.name ILIKE ? OR patients.document ILIKE ? OR ortho_maintenances.work_done ILIKE ?", pat, pat, pat)
	}
	if filter.PatientID != nil {
		q = q.Where("ortho_maintenances.patient_id = ?", *filter.PatientID)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("ortho_maintenances.payment_status = ?", filter.PaymentStatus)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
