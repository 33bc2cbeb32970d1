package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a calendar entry. The financial core only ever creates these
// (ortho bridge next-visit booking); full agenda management belongs to the
// panel UI layer.
type Appointment struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	Patient    *Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	ProviderID *uuid.UUID `gorm:"type:uuid;index" json:"provider_id"`
	Title      string     `gorm:"type:varchar(255);not null;default:'Consulta'" json:"title"`
	StartAt    time.Time  `gorm:"not null;index" json:"start_at"`
	EndAt      *time.Time `json:"end_at"`
	Note       string     `gorm:"type:text" json:"note"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
