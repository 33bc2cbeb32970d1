package model

import (
	"time"

	"github.com/google/uuid"
)

// Provider is a clinical professional (dentist by default). Providers are
// deactivated instead of deleted while ledger entries reference them. The
// default commission percent seeds new ledger entries only — changing it never
// rewrites existing entries.
type Provider struct {
	ID                       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                     string    `gorm:"type:varchar(255);not null" json:"name"`
	Role                     string    `gorm:"type:varchar(100);not null;default:'Dentista'" json:"role"`
	DefaultCommissionPercent int       `gorm:"not null;default:0" json:"default_commission_percent"` // 0..100
	Active                   bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ClampPercent bounds a commission percentage to [0,100].
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
