package service

import (
	"context"
	"time"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"
	"clinicpanel/pkg/money"
)

// --- DTOs ---

type OpenCashRequest struct {
	OpeningBalance string `json:"opening_balance"` // "100,00"
	Notes          string `json:"notes"`
}

type CloseCashRequest struct {
	DeclaredBalance string `json:"declared_balance" binding:"required"`
	Notes           string `json:"notes"`
}

type CashSessionResponse struct {
	ID                   string  `json:"id"`
	OpenedAt             string  `json:"opened_at"`
	ClosedAt             *string `json:"closed_at"`
	OpeningBalanceCents  int64   `json:"opening_balance_cents"`
	OpeningBalance       string  `json:"opening_balance"`
	ClosingBalanceCents  *int64  `json:"closing_balance_cents"`
	ClosingBalance       *string `json:"closing_balance"`
	ExpectedBalanceCents *int64  `json:"expected_balance_cents"`
	ExpectedBalance      *string `json:"expected_balance"`
	Notes                string  `json:"notes"`
}

// CashCloseResponse reports the closed session plus the discrepancy between
// the declared and the expected balance. The discrepancy is not stored — it is
// always recoverable as closing_balance - expected_balance.
type CashCloseResponse struct {
	Session          CashSessionResponse `json:"session"`
	DiscrepancyCents int64               `json:"discrepancy_cents"`
	Discrepancy      string              `json:"discrepancy"`
}

// CashCurrentResponse describes the open till and its running expected
// balance, or Open=false when no till is open.
type CashCurrentResponse struct {
	Open                 bool                 `json:"open"`
	Session              *CashSessionResponse `json:"session,omitempty"`
	ExpectedBalanceCents int64                `json:"expected_balance_cents,omitempty"`
	ExpectedBalance      string               `json:"expected_balance,omitempty"`
	CashIncomeCents      int64                `json:"cash_income_cents,omitempty"`
	CashExpenseCents     int64                `json:"cash_expense_cents,omitempty"`
}

// --- Interface ---

type CashService interface {
	Open(ctx context.Context, req OpenCashRequest) (CashSessionResponse, error)
	Close(ctx context.Context, req CloseCashRequest) (CashCloseResponse, error)
	Current(ctx context.Context) (CashCurrentResponse, error)
	History(ctx context.Context, limit int) ([]CashSessionResponse, error)
}

type cashService struct {
	cashRepo   repository.CashSessionRepository
	ledgerRepo repository.LedgerRepository
	txManager  repository.TransactionManager
}

func NewCashService(
	cashRepo repository.CashSessionRepository,
	ledgerRepo repository.LedgerRepository,
	txManager repository.TransactionManager,
) CashService {
	return &cashService{cashRepo: cashRepo, ledgerRepo: ledgerRepo, txManager: txManager}
}

// --- Implementation ---

func (s *cashService) Open(ctx context.Context, req OpenCashRequest) (CashSessionResponse, error) {
	opening := money.ParseCents(req.OpeningBalance)
	if opening < 0 {
		return CashSessionResponse{}, apperror.Validation("opening balance cannot be negative")
	}

	var created model.CashSession
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Locked check inside the same transaction as the insert; the partial
		// unique index on open sessions backs it against concurrent openers.
		open, err := s.cashRepo.FindOpenForUpdate(txCtx)
		if err != nil {
			return apperror.Integrity("failed to check open cash session", err)
		}
		if open != nil {
			return apperror.Conflict("a cash session is already open")
		}
		created = model.CashSession{
			OpenedAt:            time.Now(),
			OpeningBalanceCents: opening,
			Notes:               req.Notes,
		}
		if err := s.cashRepo.Create(txCtx, &created); err != nil {
			return apperror.Integrity("failed to open cash session", err)
		}
		return nil
	})
	if err != nil {
		return CashSessionResponse{}, err
	}
	return toCashSessionResponse(created), nil
}

func (s *cashService) Close(ctx context.Context, req CloseCashRequest) (CashCloseResponse, error) {
	declared := money.ParseCents(req.DeclaredBalance)

	var closed model.CashSession
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		open, err := s.cashRepo.FindOpenForUpdate(txCtx)
		if err != nil {
			return apperror.Integrity("failed to check open cash session", err)
		}
		if open == nil {
			return apperror.NotFound("no cash session is open")
		}

		incomes, expenses, err := s.ledgerRepo.SumCashBySession(txCtx, open.ID)
		if err != nil {
			return apperror.Integrity("failed to total cash movements", err)
		}
		expected := open.OpeningBalanceCents + incomes - expenses

		now := time.Now()
		open.ClosedAt = &now
		open.ClosingBalanceCents = &declared
		open.ExpectedBalanceCents = &expected
		if req.Notes != "" {
			if open.Notes != "" {
				open.Notes += "\n"
			}
			open.Notes += req.Notes
		}
		if err := s.cashRepo.Update(txCtx, open); err != nil {
			return apperror.Integrity("failed to close cash session", err)
		}
		closed = *open
		return nil
	})
	if err != nil {
		return CashCloseResponse{}, err
	}

	discrepancy := declared - *closed.ExpectedBalanceCents
	return CashCloseResponse{
		Session:          toCashSessionResponse(closed),
		DiscrepancyCents: discrepancy,
		Discrepancy:      money.FormatCents(discrepancy),
	}, nil
}

func (s *cashService) Current(ctx context.Context) (CashCurrentResponse, error) {
	open, err := s.cashRepo.FindOpen(ctx)
	if err != nil {
		return CashCurrentResponse{}, apperror.Integrity("failed to check open cash session", err)
	}
	if open == nil {
		return CashCurrentResponse{Open: false}, nil
	}

	incomes, expenses, err := s.ledgerRepo.SumCashBySession(ctx, open.ID)
	if err != nil {
		return CashCurrentResponse{}, apperror.Integrity("failed to total cash movements", err)
	}
	expected := open.OpeningBalanceCents + incomes - expenses

	resp := toCashSessionResponse(*open)
	return CashCurrentResponse{
		Open:                 true,
		Session:              &resp,
		ExpectedBalanceCents: expected,
		ExpectedBalance:      money.FormatCents(expected),
		CashIncomeCents:      incomes,
		CashExpenseCents:     expenses,
	}, nil
}

func (s *cashService) History(ctx context.Context, limit int) ([]CashSessionResponse, error) {
	if limit <= 0 || limit > 60 {
		limit = 60
	}
	sessions, err := s.cashRepo.History(ctx, limit)
	if err != nil {
		return nil, apperror.Integrity("failed to list cash sessions", err)
	}
	out := make([]CashSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toCashSessionResponse(session))
	}
	return out, nil
}

// --- Helpers ---

func toCashSessionResponse(s model.CashSession) CashSessionResponse {
	resp := CashSessionResponse{
		ID:                  s.ID.String(),
		OpenedAt:            s.OpenedAt.Format(time.RFC3339),
		OpeningBalanceCents: s.OpeningBalanceCents,
		OpeningBalance:      money.FormatCents(s.OpeningBalanceCents),
		Notes:               s.Notes,
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	if s.ClosingBalanceCents != nil {
		cents := *s.ClosingBalanceCents
		formatted := money.FormatCents(cents)
		resp.ClosingBalanceCents = &cents
		resp.ClosingBalance = &formatted
	}
	if s.ExpectedBalanceCents != nil {
		cents := *s.ExpectedBalanceCents
		formatted := money.FormatCents(cents)
		resp.ExpectedBalanceCents = &cents
		resp.ExpectedBalance = &formatted
	}
	return resp
}
