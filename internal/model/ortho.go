package model

import (
	"time"

	"github.com/google/uuid"
)

// OrthoMaintenance is one orthodontic maintenance visit. The record owns at
// most one derived ledger entry (created lazily when the amount is non-zero)
// and at most one calendar appointment (created only on request, never edited
// afterwards). Clinical fields belong to the record; payment method and dates
// belong to the ledger entry once it exists — the bridge keeps both aligned.
type OrthoMaintenance struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	Patient    *Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	ProviderID *uuid.UUID `gorm:"type:uuid;index" json:"provider_id"`
	Provider   *Provider  `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`

	MaintenanceDate time.Time `gorm:"type:date;not null;index" json:"maintenance_date"`
	WorkDone        string    `gorm:"type:text" json:"work_done"`

	AmountCents   int64      `gorm:"not null;default:0" json:"amount_cents"`
	PaymentStatus string     `gorm:"type:varchar(10);not null;default:'pending';index" json:"payment_status"` // paid, pending
	PaymentMethod string     `gorm:"type:varchar(20);not null;default:'pix'" json:"payment_method"`
	DueDate       *time.Time `gorm:"type:date" json:"due_date"`
	PaidAt        *time.Time `gorm:"type:date" json:"paid_at"`

	// Next-appointment hint; only materialized in the calendar on request.
	NextDate *time.Time `gorm:"type:date;index" json:"next_date"`
	NextTime string     `gorm:"type:varchar(5)" json:"next_time"` // HH:MM
	NextNote string     `gorm:"type:text" json:"next_note"`

	LedgerEntryID *uuid.UUID `gorm:"type:uuid;index" json:"ledger_entry_id"`
	AppointmentID *uuid.UUID `gorm:"type:uuid" json:"appointment_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
