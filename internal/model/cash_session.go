package model

import (
	"time"

	"github.com/google/uuid"
)

// CashSession is one till period: opened with a counted balance, closed once
// against a declared balance. At most one row may have ClosedAt == NULL —
// enforced by a partial unique index plus a locked check inside the opening
// transaction, not by application code alone.
type CashSession struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OpenedAt             time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt             *time.Time `gorm:"index" json:"closed_at"`
	OpeningBalanceCents  int64      `gorm:"not null;default:0" json:"opening_balance_cents"`
	ClosingBalanceCents  *int64     `json:"closing_balance_cents"`
	ExpectedBalanceCents *int64     `json:"expected_balance_cents"`
	Notes                string     `gorm:"type:text" json:"notes"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// IsOpen reports whether the session has not been closed yet.
func (s *CashSession) IsOpen() bool { return s.ClosedAt == nil }
