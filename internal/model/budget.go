package model

import (
	"time"

	"github.com/google/uuid"
)

// BudgetStatus enum constants
const (
	BudgetOpen     = "open"
	BudgetApproved = "approved"
	BudgetRejected = "rejected"
)

// Budget is a priced proposal presented to a patient. Approving it converts it
// into exactly one treatment-plan item.
type Budget struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Status      string    `gorm:"type:varchar(10);not null;default:'open';index" json:"status"` // open, approved, rejected
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PlanItem is one procedure on a patient's treatment plan, optionally spawned
// from an approved budget (at most one item per budget).
type PlanItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	BudgetID    *uuid.UUID `gorm:"type:uuid;index" json:"budget_id"`
	Tooth       string     `gorm:"type:varchar(10)" json:"tooth"`
	Procedure   string     `gorm:"type:text;not null" json:"procedure"`
	AmountCents int64      `gorm:"not null;default:0" json:"amount_cents"`
	Done        bool       `gorm:"not null;default:false" json:"done"`
	DoneAt      *time.Time `json:"done_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
