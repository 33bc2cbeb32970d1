package model

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind enum constants
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// EntryStatus enum constants
const (
	StatusPaid    = "paid"
	StatusPending = "pending"
)

// PaymentMethod enum constants
const (
	PayCash       = "cash"
	PayPix        = "pix"
	PayCardCredit = "card_credit"
	PayCardDebit  = "card_debit"
	PayTransfer   = "transfer"
	PayOther      = "other"

	// payLegacyCard is what old panel versions stored for any card payment.
	// It is folded into card_credit on read; new rows never carry it.
	payLegacyCard = "card"
)

// PaymentMethods lists the canonical methods in display order.
var PaymentMethods = []string{PayCash, PayPix, PayCardCredit, PayCardDebit, PayTransfer, PayOther}

// NormalizePaymentMethod folds the legacy "card" alias into card_credit and
// coerces anything unknown to "other".
func NormalizePaymentMethod(pm string) string {
	if pm == payLegacyCard {
		return PayCardCredit
	}
	for _, known := range PaymentMethods {
		if pm == known {
			return pm
		}
	}
	return PayOther
}

// IsPaymentMethodFilter reports whether pm is acceptable as a list filter value
// (canonical methods plus the legacy alias).
func IsPaymentMethodFilter(pm string) bool {
	if pm == payLegacyCard {
		return true
	}
	for _, known := range PaymentMethods {
		if pm == known {
			return true
		}
	}
	return false
}

// LedgerEntry is one income or expense record in the financial journal.
//
// EffectiveDate is the payment date while paid; DueDate holds the expected date
// while pending. CashSessionID is stamped only when the entry is paid in cash
// while a till is open, and never rewritten by later sessions.
type LedgerEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind          string     `gorm:"type:varchar(10);not null;index" json:"kind"`    // income, expense
	Status        string     `gorm:"type:varchar(10);not null;index" json:"status"`  // paid, pending
	EffectiveDate time.Time  `gorm:"type:date;not null;index" json:"effective_date"` // payment date (paid) or ordering date (pending)
	DueDate       *time.Time `gorm:"type:date;index" json:"due_date"`
	AmountCents   int64      `gorm:"not null" json:"amount_cents"`
	PaymentMethod string     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Description   string     `gorm:"type:text" json:"description"`

	PatientID     *uuid.UUID `gorm:"type:uuid;index" json:"patient_id"`
	Patient       *Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	CategoryID    *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category      *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ProviderID    *uuid.UUID `gorm:"type:uuid;index" json:"provider_id"`
	Provider      *Provider  `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	CashSessionID *uuid.UUID `gorm:"type:uuid;index" json:"cash_session_id"`

	CommissionPercent int        `gorm:"not null;default:0" json:"commission_percent"` // 0..100
	CommissionSettled bool       `gorm:"not null;default:false;index" json:"commission_settled"`
	CommissionPaidAt  *time.Time `json:"commission_paid_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
