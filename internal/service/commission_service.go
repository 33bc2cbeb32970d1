package service

import (
	"context"
	"time"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"
	"clinicpanel/pkg/money"

	"github.com/google/uuid"
)

// --- DTOs ---

type CommissionAmountResponse struct {
	ProviderID string `json:"provider_id"`
	Cents      int64  `json:"cents"`
	Amount     string `json:"amount"`
}

// ProviderCommissionSummary is one row of the commissions overview: what each
// active provider earned this period and what is still unsettled.
type ProviderCommissionSummary struct {
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	OwedCents    int64  `json:"owed_cents"`
	Owed         string `json:"owed"`
	PendingCents int64  `json:"pending_cents"`
	Pending      string `json:"pending"`
}

type CommissionPendingEntry struct {
	EntryID           string `json:"entry_id"`
	Date              string `json:"date"`
	Description       string `json:"description"`
	PatientName       string `json:"patient_name,omitempty"`
	ProviderName      string `json:"provider_name,omitempty"`
	AmountCents       int64  `json:"amount_cents"`
	Amount            string `json:"amount"`
	CommissionPercent int    `json:"commission_percent"`
	CommissionCents   int64  `json:"commission_cents"`
	Commission        string `json:"commission"`
}

// --- Interface ---

type CommissionService interface {
	// Owed totals commissions on paid income entries for the provider with
	// effective dates on or after periodStart (zero time = unbounded).
	Owed(ctx context.Context, providerID string, periodStart string) (CommissionAmountResponse, error)
	// Pending totals commissions not yet settled, over all time.
	Pending(ctx context.Context, providerID string) (CommissionAmountResponse, error)
	// Settle marks one entry's commission as paid out. Idempotent.
	Settle(ctx context.Context, entryID string) error
	// Summary lists every active provider with this-month owed and open pending.
	Summary(ctx context.Context) ([]ProviderCommissionSummary, error)
	// PendingDetail lists the individual unsettled entries.
	PendingDetail(ctx context.Context, limit int) ([]CommissionPendingEntry, error)
}

type commissionService struct {
	ledgerRepo   repository.LedgerRepository
	providerRepo repository.ProviderRepository
}

func NewCommissionService(ledgerRepo repository.LedgerRepository, providerRepo repository.ProviderRepository) CommissionService {
	return &commissionService{ledgerRepo: ledgerRepo, providerRepo: providerRepo}
}

// --- Implementation ---

func (s *commissionService) Owed(ctx context.Context, providerID string, periodStart string) (CommissionAmountResponse, error) {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return CommissionAmountResponse{}, apperror.Validation("invalid provider id")
	}
	var from *time.Time
	if periodStart != "" {
		d, parseErr := parseDate(periodStart)
		if parseErr != nil {
			return CommissionAmountResponse{}, parseErr
		}
		from = &d
	}
	cents, err := s.ledgerRepo.SumCommissionOwed(ctx, id, from)
	if err != nil {
		return CommissionAmountResponse{}, apperror.Integrity("failed to total commissions", err)
	}
	return CommissionAmountResponse{ProviderID: providerID, Cents: cents, Amount: money.FormatCents(cents)}, nil
}

func (s *commissionService) Pending(ctx context.Context, providerID string) (CommissionAmountResponse, error) {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return CommissionAmountResponse{}, apperror.Validation("invalid provider id")
	}
	cents, err := s.ledgerRepo.SumCommissionPending(ctx, id)
	if err != nil {
		return CommissionAmountResponse{}, apperror.Integrity("failed to total pending commissions", err)
	}
	return CommissionAmountResponse{ProviderID: providerID, Cents: cents, Amount: money.FormatCents(cents)}, nil
}

func (s *commissionService) Settle(ctx context.Context, entryID string) error {
	id, err := uuid.Parse(entryID)
	if err != nil {
		return apperror.Validation("invalid entry id")
	}
	entry, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return apperror.NotFound("ledger entry not found")
	}
	if entry.CommissionSettled {
		// Settling twice is a no-op, not an error.
		return nil
	}
	now := time.Now()
	entry.CommissionSettled = true
	entry.CommissionPaidAt = &now
	if err := s.ledgerRepo.Update(ctx, entry); err != nil {
		return apperror.Integrity("failed to settle commission", err)
	}
	return nil
}

func (s *commissionService) Summary(ctx context.Context) ([]ProviderCommissionSummary, error) {
	providers, err := s.providerRepo.List(ctx, true)
	if err != nil {
		return nil, apperror.Integrity("failed to list providers", err)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	out := make([]ProviderCommissionSummary, 0, len(providers))
	for _, provider := range providers {
		owed, sumErr := s.ledgerRepo.SumCommissionOwed(ctx, provider.ID, &monthStart)
		if sumErr != nil {
			return nil, apperror.Integrity("failed to total commissions", sumErr)
		}
		pending, sumErr := s.ledgerRepo.SumCommissionPending(ctx, provider.ID)
		if sumErr != nil {
			return nil, apperror.Integrity("failed to total pending commissions", sumErr)
		}
		out = append(out, ProviderCommissionSummary{
			ProviderID:   provider.ID.String(),
			ProviderName: provider.Name,
			OwedCents:    owed,
			Owed:         money.FormatCents(owed),
			PendingCents: pending,
			Pending:      money.FormatCents(pending),
		})
	}
	return out, nil
}

func (s *commissionService) PendingDetail(ctx context.Context, limit int) ([]CommissionPendingEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	entries, err := s.ledgerRepo.ListCommissionPending(ctx, limit)
	if err != nil {
		return nil, apperror.Integrity("failed to list pending commissions", err)
	}
	out := make([]CommissionPendingEntry, 0, len(entries))
	for _, e := range entries {
		commission := CommissionCents(e.AmountCents, e.CommissionPercent)
		row := CommissionPendingEntry{
			EntryID:           e.ID.String(),
			Date:              e.EffectiveDate.Format(dateLayout),
			Description:       e.Description,
			AmountCents:       e.AmountCents,
			Amount:            money.FormatCents(e.AmountCents),
			CommissionPercent: e.CommissionPercent,
			CommissionCents:   commission,
			Commission:        money.FormatCents(commission),
		}
		if e.Patient != nil {
			row.PatientName = e.Patient.Name
		}
		if e.Provider != nil {
			row.ProviderName = e.Provider.Name
		}
		out = append(out, row)
	}
	return out, nil
}

// CommissionCents computes the provider share of one entry: amount * percent
// / 100 with truncating integer division, the same arithmetic the store uses
// when aggregating.
func CommissionCents(amountCents int64, percent int) int64 {
	return (amountCents * int64(model.ClampPercent(percent))) / 100
}
