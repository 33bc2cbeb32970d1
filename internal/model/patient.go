package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is the clinic registry record the financial core links against.
// Clinical documents (anamnesis, odontogram, records) live with their own
// callers and are not part of this backend.
type Patient struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Document  string         `gorm:"type:varchar(20);index" json:"document"` // CPF
	Address   string         `gorm:"type:text" json:"address"`
	BirthDate *time.Time     `gorm:"type:date" json:"birth_date"`
	IsOrtho   bool           `gorm:"not null;default:false;index" json:"is_ortho"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
