package repository

import (
	"context"
	"time"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]model.Appointment, error)
	CountOnDay(ctx context.Context, day time.Time) (int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return GetDB(ctx, r.db).Create(appointment).Error
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]model.Appointment, error) {
	var appointments []model.Appointment
	q := GetDB(ctx, r.db).
		Where("patient_id = ?", patientID).
		Order("start_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountOnDay(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Appointment{}).
		Where("start_at >= ? AND start_at < ?", start, end).
		Count(&count).Error
	return count, err
}
