package service

import (
	"context"
	"time"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/repository"
	"clinicpanel/pkg/money"
)

// DashboardStats is the landing-page snapshot: current-month totals plus
// today's schedule load.
type DashboardStats struct {
	MonthIncomeCents  int64  `json:"month_income_cents"`
	MonthIncome       string `json:"month_income"`
	MonthExpenseCents int64  `json:"month_expense_cents"`
	MonthExpense      string `json:"month_expense"`
	PendingCents      int64  `json:"pending_cents"`
	Pending           string `json:"pending"`
	AppointmentsToday int64  `json:"appointments_today"`
	CashOpen          bool   `json:"cash_open"`
}

type StatsService interface {
	Dashboard(ctx context.Context) (DashboardStats, error)
}

type statsService struct {
	ledgerRepo      repository.LedgerRepository
	appointmentRepo repository.AppointmentRepository
	cashRepo        repository.CashSessionRepository
}

func NewStatsService(
	ledgerRepo repository.LedgerRepository,
	appointmentRepo repository.AppointmentRepository,
	cashRepo repository.CashSessionRepository,
) StatsService {
	return &statsService{ledgerRepo: ledgerRepo, appointmentRepo: appointmentRepo, cashRepo: cashRepo}
}

func (s *statsService) Dashboard(ctx context.Context) (DashboardStats, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	totals, err := s.ledgerRepo.Totals(ctx, repository.LedgerFilter{From: &monthStart, To: &monthEnd})
	if err != nil {
		return DashboardStats{}, apperror.Integrity("failed to total the month", err)
	}

	appointments, err := s.appointmentRepo.CountOnDay(ctx, now)
	if err != nil {
		return DashboardStats{}, apperror.Integrity("failed to count appointments", err)
	}

	open, err := s.cashRepo.FindOpen(ctx)
	if err != nil {
		return DashboardStats{}, apperror.Integrity("failed to check cash session", err)
	}

	return DashboardStats{
		MonthIncomeCents:  totals.IncomeCents,
		MonthIncome:       money.FormatCents(totals.IncomeCents),
		MonthExpenseCents: totals.ExpenseCents,
		MonthExpense:      money.FormatCents(totals.ExpenseCents),
		PendingCents:      totals.PendingCents,
		Pending:           money.FormatCents(totals.PendingCents),
		AppointmentsToday: appointments,
		CashOpen:          open != nil,
	}, nil
}
