package service

import (
	"context"
	"fmt"
	"time"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"
	"clinicpanel/pkg/money"

	"github.com/google/uuid"
)

const (
	dateLayout       = "2006-01-02"
	defaultListLimit = 300
)

// --- DTOs ---

type LedgerEntryRequest struct {
	Kind              string `json:"kind"`   // income (default), expense
	Status            string `json:"status"` // paid (default), pending
	Date              string `json:"date"`   // YYYY-MM-DD, payment date when paid
	DueDate           string `json:"due_date"`
	Amount            string `json:"amount" binding:"required"` // "1.234,56"
	PaymentMethod     string `json:"payment_method"`
	Description       string `json:"description"`
	PatientID         string `json:"patient_id"`
	CategoryID        string `json:"category_id"`
	ProviderID        string `json:"provider_id"`
	CommissionPercent *int   `json:"commission_percent"` // nil pulls the provider default
}

type LedgerEntryResponse struct {
	ID                string  `json:"id"`
	Kind              string  `json:"kind"`
	Status            string  `json:"status"`
	Date              string  `json:"date"`
	DueDate           *string `json:"due_date"`
	AmountCents       int64   `json:"amount_cents"`
	Amount            string  `json:"amount"`
	PaymentMethod     string  `json:"payment_method"`
	Description       string  `json:"description"`
	PatientID         *string `json:"patient_id"`
	PatientName       string  `json:"patient_name,omitempty"`
	CategoryID        *string `json:"category_id"`
	CategoryName      string  `json:"category_name,omitempty"`
	ProviderID        *string `json:"provider_id"`
	ProviderName      string  `json:"provider_name,omitempty"`
	CashSessionID     *string `json:"cash_session_id"`
	CommissionPercent int     `json:"commission_percent"`
	CommissionSettled bool    `json:"commission_settled"`
	CreatedAt         string  `json:"created_at"`
}

type LedgerListFilter struct {
	Kind          string
	Status        string
	PaymentMethod string
	Search        string
	From          string
	To            string
	PatientID     string
	CategoryID    string
	Limit         int
}

type LedgerListResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Totals  LedgerTotalsResponse  `json:"totals"`
	// IncomeByMethod breaks income down per canonical payment method.
	IncomeByMethod map[string]string `json:"income_by_method"`
}

type LedgerTotalsResponse struct {
	IncomeCents  int64  `json:"income_cents"`
	Income       string `json:"income"`
	ExpenseCents int64  `json:"expense_cents"`
	Expense      string `json:"expense"`
	PendingCents int64  `json:"pending_cents"`
	Pending      string `json:"pending"`
}

type SettleEntryRequest struct {
	PaymentMethod string `json:"payment_method"`
	Date          string `json:"date"` // payment date, defaults to today
}

// --- Interface ---

type LedgerService interface {
	Create(ctx context.Context, req LedgerEntryRequest) (LedgerEntryResponse, error)
	Update(ctx context.Context, id string, req LedgerEntryRequest) (LedgerEntryResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (LedgerEntryResponse, error)
	List(ctx context.Context, filter LedgerListFilter) (LedgerListResponse, error)
	Sum(ctx context.Context, filter LedgerListFilter) (int64, error)
	// Settle marks a pending entry as paid with the given method and date.
	Settle(ctx context.Context, id string, req SettleEntryRequest) (LedgerEntryResponse, error)
}

type ledgerService struct {
	ledgerRepo   repository.LedgerRepository
	cashRepo     repository.CashSessionRepository
	providerRepo repository.ProviderRepository
	txManager    repository.TransactionManager
}

func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	cashRepo repository.CashSessionRepository,
	providerRepo repository.ProviderRepository,
	txManager repository.TransactionManager,
) LedgerService {
	return &ledgerService{
		ledgerRepo:   ledgerRepo,
		cashRepo:     cashRepo,
		providerRepo: providerRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *ledgerService) Create(ctx context.Context, req LedgerEntryRequest) (LedgerEntryResponse, error) {
	entry := &model.LedgerEntry{}
	if err := s.applyRequest(ctx, entry, req); err != nil {
		return LedgerEntryResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// The open till is resolved inside the same transaction that stores
		// the entry, so the stamp reflects the till open at payment time.
		if err := stampCashSession(txCtx, s.cashRepo, entry, nil); err != nil {
			return err
		}
		if err := s.ledgerRepo.Create(txCtx, entry); err != nil {
			return apperror.Integrity("failed to create ledger entry", err)
		}
		return nil
	})
	if err != nil {
		return LedgerEntryResponse{}, err
	}
	return toLedgerResponse(*entry), nil
}

func (s *ledgerService) Update(ctx context.Context, id string, req LedgerEntryRequest) (LedgerEntryResponse, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return LedgerEntryResponse{}, apperror.Validation("invalid entry id")
	}

	var updated model.LedgerEntry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entry, findErr := s.ledgerRepo.FindByIDForUpdate(txCtx, entryID)
		if findErr != nil {
			return apperror.NotFound("ledger entry not found")
		}
		previous := *entry

		if applyErr := s.applyRequest(txCtx, entry, req); applyErr != nil {
			return applyErr
		}
		if stampErr := stampCashSession(txCtx, s.cashRepo, entry, &previous); stampErr != nil {
			return stampErr
		}
		if saveErr := s.ledgerRepo.Update(txCtx, entry); saveErr != nil {
			return apperror.Integrity("failed to update ledger entry", saveErr)
		}
		updated = *entry
		return nil
	})
	if err != nil {
		return LedgerEntryResponse{}, err
	}
	return toLedgerResponse(updated), nil
}

func (s *ledgerService) Delete(ctx context.Context, id string) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid entry id")
	}
	if _, err := s.ledgerRepo.FindByID(ctx, entryID); err != nil {
		return apperror.NotFound("ledger entry not found")
	}
	if err := s.ledgerRepo.Delete(ctx, entryID); err != nil {
		return apperror.Integrity("failed to delete ledger entry", err)
	}
	return nil
}

func (s *ledgerService) Get(ctx context.Context, id string) (LedgerEntryResponse, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return LedgerEntryResponse{}, apperror.Validation("invalid entry id")
	}
	entry, err := s.ledgerRepo.FindByID(ctx, entryID)
	if err != nil {
		return LedgerEntryResponse{}, apperror.NotFound("ledger entry not found")
	}
	return toLedgerResponse(*entry), nil
}

func (s *ledgerService) List(ctx context.Context, filter LedgerListFilter) (LedgerListResponse, error) {
	repoFilter, err := buildLedgerFilter(filter)
	if err != nil {
		return LedgerListResponse{}, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	entries, err := s.ledgerRepo.List(ctx, repoFilter, limit)
	if err != nil {
		return LedgerListResponse{}, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	totals, err := s.ledgerRepo.Totals(ctx, repoFilter)
	if err != nil {
		return LedgerListResponse{}, fmt.Errorf("failed to total ledger entries: %w", err)
	}
	byMethod, err := s.ledgerRepo.IncomeByPaymentMethod(ctx, repoFilter)
	if err != nil {
		return LedgerListResponse{}, fmt.Errorf("failed to break down income: %w", err)
	}

	resp := LedgerListResponse{
		Entries: make([]LedgerEntryResponse, 0, len(entries)),
		Totals: LedgerTotalsResponse{
			IncomeCents:  totals.IncomeCents,
			Income:       money.FormatCents(totals.IncomeCents),
			ExpenseCents: totals.ExpenseCents,
			Expense:      money.FormatCents(totals.ExpenseCents),
			PendingCents: totals.PendingCents,
			Pending:      money.FormatCents(totals.PendingCents),
		},
		IncomeByMethod: make(map[string]string, len(byMethod)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toLedgerResponse(e))
	}
	for pm, cents := range byMethod {
		resp.IncomeByMethod[pm] = money.FormatCents(cents)
	}
	return resp, nil
}

func (s *ledgerService) Sum(ctx context.Context, filter LedgerListFilter) (int64, error) {
	repoFilter, err := buildLedgerFilter(filter)
	if err != nil {
		return 0, err
	}
	return s.ledgerRepo.Sum(ctx, repoFilter)
}

func (s *ledgerService) Settle(ctx context.Context, id string, req SettleEntryRequest) (LedgerEntryResponse, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return LedgerEntryResponse{}, apperror.Validation("invalid entry id")
	}

	paidAt, err := parseDateOrToday(req.Date)
	if err != nil {
		return LedgerEntryResponse{}, err
	}
	method := model.NormalizePaymentMethod(req.PaymentMethod)

	var updated model.LedgerEntry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entry, findErr := s.ledgerRepo.FindByIDForUpdate(txCtx, entryID)
		if findErr != nil {
			return apperror.NotFound("ledger entry not found")
		}
		previous := *entry

		entry.Status = model.StatusPaid
		entry.PaymentMethod = method
		entry.EffectiveDate = paidAt
		entry.DueDate = nil

		if stampErr := stampCashSession(txCtx, s.cashRepo, entry, &previous); stampErr != nil {
			return stampErr
		}
		if saveErr := s.ledgerRepo.Update(txCtx, entry); saveErr != nil {
			return apperror.Integrity("failed to settle ledger entry", saveErr)
		}
		updated = *entry
		return nil
	})
	if err != nil {
		return LedgerEntryResponse{}, err
	}
	return toLedgerResponse(updated), nil
}

// applyRequest validates the request and copies it onto the entry. It does not
// touch the cash-session stamp; stampCashSession does that inside the write
// transaction.
func (s *ledgerService) applyRequest(ctx context.Context, entry *model.LedgerEntry, req LedgerEntryRequest) error {
	kind := req.Kind
	if kind == "" {
		kind = model.KindIncome
	}
	if kind != model.KindIncome && kind != model.KindExpense {
		return apperror.Validation("kind must be income or expense")
	}

	status := req.Status
	if status == "" {
		status = model.StatusPaid
	}
	if status != model.StatusPaid && status != model.StatusPending {
		return apperror.Validation("status must be paid or pending")
	}

	amount := money.ParseCents(req.Amount)
	if amount == 0 {
		return apperror.Validation("amount must be non-zero")
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		return err
	}
	var due *time.Time
	if req.DueDate != "" {
		d, parseErr := parseDate(req.DueDate)
		if parseErr != nil {
			return parseErr
		}
		due = &d
	}

	// Paid entries carry only the payment date; pending entries carry the due
	// date and use it for ordering.
	if status == model.StatusPaid {
		entry.EffectiveDate = date
		entry.DueDate = nil
	} else {
		if due == nil {
			due = &date
		}
		entry.DueDate = due
		entry.EffectiveDate = *due
	}

	entry.Kind = kind
	entry.Status = status
	entry.AmountCents = amount
	entry.PaymentMethod = model.NormalizePaymentMethod(req.PaymentMethod)
	entry.Description = req.Description

	entry.PatientID, err = parseOptionalUUID(req.PatientID, "patient_id")
	if err != nil {
		return err
	}
	entry.CategoryID, err = parseOptionalUUID(req.CategoryID, "category_id")
	if err != nil {
		return err
	}
	entry.ProviderID, err = parseOptionalUUID(req.ProviderID, "provider_id")
	if err != nil {
		return err
	}

	if req.CommissionPercent != nil {
		entry.CommissionPercent = model.ClampPercent(*req.CommissionPercent)
	} else if entry.ProviderID != nil {
		provider, provErr := s.providerRepo.FindByID(ctx, *entry.ProviderID)
		if provErr != nil {
			return apperror.Validation("provider not found")
		}
		entry.CommissionPercent = model.ClampPercent(provider.DefaultCommissionPercent)
	}
	return nil
}

// stampCashSession maintains the invariant: CashSessionID is set iff the entry
// is paid in cash, and records the till open at the moment the entry became a
// cash payment. An already-stamped entry keeps its stamp; a later till never
// adopts older entries. Must run inside the transaction that writes the entry.
func stampCashSession(ctx context.Context, cashRepo repository.CashSessionRepository, entry *model.LedgerEntry, previous *model.LedgerEntry) error {
	isCashPaid := entry.Status == model.StatusPaid && entry.PaymentMethod == model.PayCash
	if !isCashPaid {
		entry.CashSessionID = nil
		return nil
	}
	wasCashPaid := previous != nil &&
		previous.Status == model.StatusPaid &&
		previous.PaymentMethod == model.PayCash
	if wasCashPaid {
		entry.CashSessionID = previous.CashSessionID
		return nil
	}
	open, err := cashRepo.FindOpen(ctx)
	if err != nil {
		return apperror.Integrity("failed to resolve open cash session", err)
	}
	if open == nil {
		// Cash received outside an open till is allowed but not reconciled.
		entry.CashSessionID = nil
		return nil
	}
	entry.CashSessionID = &open.ID
	return nil
}

// --- Helpers ---

func buildLedgerFilter(f LedgerListFilter) (repository.LedgerFilter, error) {
	out := repository.LedgerFilter{Search: f.Search}

	if f.Kind != "" {
		if f.Kind != model.KindIncome && f.Kind != model.KindExpense {
			return out, apperror.Validation("kind must be income or expense")
		}
		out.Kind = f.Kind
	}
	if f.Status != "" {
		if f.Status != model.StatusPaid && f.Status != model.StatusPending {
			return out, apperror.Validation("status must be paid or pending")
		}
		out.Status = f.Status
	}
	if f.PaymentMethod != "" {
		if !model.IsPaymentMethodFilter(f.PaymentMethod) {
			return out, apperror.Validation("unknown payment method %q", f.PaymentMethod)
		}
		out.PaymentMethod = model.NormalizePaymentMethod(f.PaymentMethod)
	}
	if f.From != "" {
		d, err := parseDate(f.From)
		if err != nil {
			return out, err
		}
		out.From = &d
	}
	if f.To != "" {
		d, err := parseDate(f.To)
		if err != nil {
			return out, err
		}
		out.To = &d
	}
	var err error
	out.PatientID, err = parseOptionalUUID(f.PatientID, "patient_id")
	if err != nil {
		return out, err
	}
	out.CategoryID, err = parseOptionalUUID(f.CategoryID, "category_id")
	if err != nil {
		return out, err
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperror.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

func parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate(s)
}

func parseOptionalUUID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperror.Validation("invalid %s", field)
	}
	return &id, nil
}

func toLedgerResponse(e model.LedgerEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:                e.ID.String(),
		Kind:              e.Kind,
		Status:            e.Status,
		Date:              e.EffectiveDate.Format(dateLayout),
		AmountCents:       e.AmountCents,
		Amount:            money.FormatCents(e.AmountCents),
		PaymentMethod:     model.NormalizePaymentMethod(e.PaymentMethod),
		Description:       e.Description,
		CommissionPercent: e.CommissionPercent,
		CommissionSettled: e.CommissionSettled,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
	if e.DueDate != nil {
		d := e.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	if e.PatientID != nil {
		id := e.PatientID.String()
		resp.PatientID = &id
	}
	if e.Patient != nil {
		resp.PatientName = e.Patient.Name
	}
	if e.CategoryID != nil {
		id := e.CategoryID.String()
		resp.CategoryID = &id
	}
	if e.Category != nil {
		resp.CategoryName = e.Category.Name
	}
	if e.ProviderID != nil {
		id := e.ProviderID.String()
		resp.ProviderID = &id
	}
	if e.Provider != nil {
		resp.ProviderName = e.Provider.Name
	}
	if e.CashSessionID != nil {
		id := e.CashSessionID.String()
		resp.CashSessionID = &id
	}
	return resp
}
