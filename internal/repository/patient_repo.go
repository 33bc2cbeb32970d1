package repository

import (
	"context"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Patient, int64, error)
	MarkOrtho(ctx context.Context, id uuid.UUID) error
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return GetDB(ctx, r.db).Create(patient).Error
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return GetDB(ctx, r.db).Save(patient).Error
}

// Delete is a soft delete; gorm.DeletedAt keeps the row for history.
func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Patient{}).Error
}

func (r *patientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := GetDB(ctx, r.db).First(&patient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, search string, page, limit int) ([]model.Patient, int64, error) {
	var patients []model.Patient
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Patient{})
	if search != "" {
		pat := "%" + search + "%"
		query = query.Where("name ILIKE ? OR document ILIKE ? OR phone ILIKE ?", pat, pat, pat)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// MarkOrtho flags a patient as an orthodontic patient. Set once on the first
// maintenance record; never unset automatically.
func (r *patientRepository) MarkOrtho(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Patient{}).
		Where("id = ?", id).
		Update("is_ortho", true).Error
}
