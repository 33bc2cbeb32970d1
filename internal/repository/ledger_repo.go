package repository

import (
	"context"
	"time"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerFilter narrows ledger queries. Zero values mean "no restriction"; all
// set predicates are ANDed.
type LedgerFilter struct {
	Kind          string // income, expense
	Status        string // paid, pending
	PaymentMethod string // canonical method; card_credit also matches legacy "card" rows
	Search        string // free text over description, patient name, patient document
	From          *time.Time
	To            *time.Time
	PatientID     *uuid.UUID
	CategoryID    *uuid.UUID
	ProviderID    *uuid.UUID
}

// LedgerTotals aggregates the filtered set for report rendering.
type LedgerTotals struct {
	IncomeCents  int64
	ExpenseCents int64
	PendingCents int64
}

type LedgerRepository interface {
	Create(ctx context.Context, entry *model.LedgerEntry) error
	Update(ctx context.Context, entry *model.LedgerEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error)
	List(ctx context.Context, filter LedgerFilter, limit int) ([]model.LedgerEntry, error)
	Sum(ctx context.Context, filter LedgerFilter) (int64, error)
	Totals(ctx context.Context, filter LedgerFilter) (LedgerTotals, error)
	IncomeByPaymentMethod(ctx context.Context, filter LedgerFilter) (map[string]int64, error)
	SumCashBySession(ctx context.Context, sessionID uuid.UUID) (incomes, expenses int64, err error)
	SumCommissionOwed(ctx context.Context, providerID uuid.UUID, from *time.Time) (int64, error)
	SumCommissionPending(ctx context.Context, providerID uuid.UUID) (int64, error)
	ListCommissionPending(ctx context.Context, limit int) ([]model.LedgerEntry, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *ledgerRepository) Update(ctx context.Context, entry *model.LedgerEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *ledgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.LedgerEntry{}).Error
}

func (r *ledgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := GetDB(ctx, r.db).
		Preload("Patient").Preload("Category").Preload("Provider").
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByIDForUpdate locks the row for the remainder of the surrounding
// transaction. Used by the ortho bridge so two concurrent edits serialize.
func (r *ledgerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	var entry model.LedgerEntry
	err := GetDB(ctx, r.db).
		Clauses(forUpdate()).
		First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// applyFilter translates a LedgerFilter into WHERE clauses. The patients join
// is added only when the free-text predicate needs it.
func applyFilter(db *gorm.DB, f LedgerFilter) *gorm.DB {
	q := db
	if f.Kind != "" {
		q = q.Where("ledger_entries.kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("ledger_entries.status = ?", f.Status)
	}
	if f.PaymentMethod != "" {
		// Old rows may still carry the legacy "card" method; it reads as credit.
		if f.PaymentMethod == model.PayCardCredit {
			q = q.Where("ledger_entries.payment_method IN ('card_credit', 'card')")
		} else {
			q = q.Where("ledger_entries.payment_method = ?", f.PaymentMethod)
		}
	}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Joins("LEFT JOIN patients ON patients.id = ledger_entries.patient_id").
			Where("ledger_entries.description ILIKE ? OR patients.name ILIKE ? OR patients.document ILIKE ?", pat, pat, pat)
	}
	if f.From != nil {
		q = q.Where("ledger_entries.effective_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("ledger_entries.effective_date <= ?", *f.To)
	}
	if f.PatientID != nil {
		q = q.Where("ledger_entries.patient_id = ?", *f.PatientID)
	}
	if f.CategoryID != nil {
		q = q.Where("ledger_entries.category_id = ?", *f.CategoryID)
	}
	if f.ProviderID != nil {
		q = q.Where("ledger_entries.provider_id = ?", *f.ProviderID)
	}
	return q
}

func (r *ledgerRepository) List(ctx context.Context, filter LedgerFilter, limit int) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	q := applyFilter(GetDB(ctx, r.db).Model(&model.LedgerEntry{}), filter).
		Preload("Patient").Preload("Category").Preload("Provider").
		Order("ledger_entries.effective_date DESC, ledger_entries.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) Sum(ctx context.Context, filter LedgerFilter) (int64, error) {
	var total int64
	err := applyFilter(GetDB(ctx, r.db).Model(&model.LedgerEntry{}), filter).
		Select("COALESCE(SUM(ledger_entries.amount_cents), 0)").
		Scan(&total).Error
	return total, err
}

func (r *ledgerRepository) Totals(ctx context.Context, filter LedgerFilter) (LedgerTotals, error) {
	var row struct {
		IncomeCents  int64 `gorm:"column:income_cents"`
		ExpenseCents int64 `gorm:"column:expense_cents"`
		PendingCents int64 `gorm:"column:pending_cents"`
	}
	err := applyFilter(GetDB(ctx, r.db).Model(&model.LedgerEntry{}), filter).
		Select(`
			COALESCE(SUM(CASE WHEN ledger_entries.kind = 'income' THEN ledger_entries.amount_cents ELSE 0 END), 0) AS income_cents,
			COALESCE(SUM(CASE WHEN ledger_entries.kind = 'expense' THEN ledger_entries.amount_cents ELSE 0 END), 0) AS expense_cents,
			COALESCE(SUM(CASE WHEN ledger_entries.status = 'pending' THEN ledger_entries.amount_cents ELSE 0 END), 0) AS pending_cents`).
		Scan(&row).Error
	if err != nil {
		return LedgerTotals{}, err
	}
	return LedgerTotals{
		IncomeCents:  row.IncomeCents,
		ExpenseCents: row.ExpenseCents,
		PendingCents: row.PendingCents,
	}, nil
}

// IncomeByPaymentMethod breaks down income in the filtered set per canonical
// payment method, folding legacy "card" rows into card_credit.
func (r *ledgerRepository) IncomeByPaymentMethod(ctx context.Context, filter LedgerFilter) (map[string]int64, error) {
	var rows []struct {
		Method string `gorm:"column:method"`
		Total  int64  `gorm:"column:total"`
	}
	err := applyFilter(GetDB(ctx, r.db).Model(&model.LedgerEntry{}), filter).
		Where("ledger_entries.kind = ?", model.KindIncome).
		Select(`CASE WHEN ledger_entries.payment_method = 'card' THEN 'card_credit' ELSE ledger_entries.payment_method END AS method,
			COALESCE(SUM(ledger_entries.amount_cents), 0) AS total`).
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(model.PaymentMethods))
	for _, pm := range model.PaymentMethods {
		out[pm] = 0
	}
	for _, row := range rows {
		pm := model.NormalizePaymentMethod(row.Method)
		out[pm] += row.Total
	}
	return out, nil
}

func (r *ledgerRepository) SumCashBySession(ctx context.Context, sessionID uuid.UUID) (int64, int64, error) {
	var rows []struct {
		Kind  string `gorm:"column:kind"`
		Total int64  `gorm:"column:total"`
	}
	err := GetDB(ctx, r.db).Model(&model.LedgerEntry{}).
		Select("kind, COALESCE(SUM(amount_cents), 0) AS total").
		Where("status = ? AND payment_method = ? AND cash_session_id = ?",
			model.StatusPaid, model.PayCash, sessionID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	var incomes, expenses int64
	for _, row := range rows {
		if row.Kind == model.KindIncome {
			incomes = row.Total
		} else {
			expenses = row.Total
		}
	}
	return incomes, expenses, nil
}

// SumCommissionOwed totals floor(amount*percent/100) over paid income entries
// for the provider, optionally restricted to effective dates >= from. The
// division happens on bigints, so Postgres truncates exactly like the panel's
// historical arithmetic.
func (r *ledgerRepository) SumCommissionOwed(ctx context.Context, providerID uuid.UUID, from *time.Time) (int64, error) {
	q := GetDB(ctx, r.db).Model(&model.LedgerEntry{}).
		Where("provider_id = ? AND kind = ? AND status = ?", providerID, model.KindIncome, model.StatusPaid)
	if from != nil {
		q = q.Where("effective_date >= ?", *from)
	}
	var total int64
	err := q.Select("COALESCE(SUM((amount_cents * commission_percent) / 100), 0)").Scan(&total).Error
	return total, err
}

func (r *ledgerRepository) SumCommissionPending(ctx context.Context, providerID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.LedgerEntry{}).
		Where("provider_id = ? AND kind = ? AND status = ? AND commission_settled = false",
			providerID, model.KindIncome, model.StatusPaid).
		Select("COALESCE(SUM((amount_cents * commission_percent) / 100), 0)").
		Scan(&total).Error
	return total, err
}

func (r *ledgerRepository) ListCommissionPending(ctx context.Context, limit int) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := GetDB(ctx, r.db).Model(&model.LedgerEntry{}).
		Preload("Patient").Preload("Provider").
		Where("kind = ? AND status = ? AND commission_percent > 0 AND commission_settled = false",
			model.KindIncome, model.StatusPaid).
		Order("effective_date DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
