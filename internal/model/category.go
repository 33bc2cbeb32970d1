package model

import (
	"time"

	"github.com/google/uuid"
)

// CategoryKind enum constants
const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
	CategoryBoth    = "both"
)

// Category groups ledger entries for reporting. Names are unique; categories
// are toggled inactive rather than deleted.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Kind      string    `gorm:"type:varchar(10);not null;default:'both'" json:"kind"` // income, expense, both
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
