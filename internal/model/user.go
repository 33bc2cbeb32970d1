package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a panel operator account. Access to the financial routes requires an
// additional unlock on top of login (see middleware.RequireFinanceUnlock).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
