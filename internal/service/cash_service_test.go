package service

import (
	"context"
	"testing"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
)

func newCashServiceForTest() (CashService, *fakeCashRepo, *fakeLedgerRepo) {
	cashRepo := newFakeCashRepo()
	ledgerRepo := newFakeLedgerRepo()
	return NewCashService(cashRepo, ledgerRepo, fakeTxManager{}), cashRepo, ledgerRepo
}

func TestOpenCashRejectsSecondOpen(t *testing.T) {
	svc, _, _ := newCashServiceForTest()
	ctx := context.Background()

	if _, err := svc.Open(ctx, OpenCashRequest{OpeningBalance: "100,00"}); err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	_, err := svc.Open(ctx, OpenCashRequest{OpeningBalance: "50,00"})
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict on second open, got %v", err)
	}
}

func TestOpenCashRejectsNegativeBalance(t *testing.T) {
	svc, _, _ := newCashServiceForTest()

	_, err := svc.Open(context.Background(), OpenCashRequest{OpeningBalance: "-10,00"})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCloseCashComputesExpectedAndDiscrepancy(t *testing.T) {
	svc, _, ledgerRepo := newCashServiceForTest()
	ctx := context.Background()

	opened, err := svc.Open(ctx, OpenCashRequest{OpeningBalance: "100,00"})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	sessionID := mustUUID(t, opened.ID)

	// Cash income 50,00 and cash expense 20,00 inside the session; a pix
	// income must not count toward the till.
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindIncome, Status: model.StatusPaid,
		PaymentMethod: model.PayCash, AmountCents: 5000, CashSessionID: &sessionID,
	})
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindExpense, Status: model.StatusPaid,
		PaymentMethod: model.PayCash, AmountCents: 2000, CashSessionID: &sessionID,
	})
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindIncome, Status: model.StatusPaid,
		PaymentMethod: model.PayPix, AmountCents: 9999,
	})

	result, err := svc.Close(ctx, CloseCashRequest{DeclaredBalance: "125,00"})
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if result.Session.ExpectedBalanceCents == nil || *result.Session.ExpectedBalanceCents != 13000 {
		t.Fatalf("expected balance 13000, got %v", result.Session.ExpectedBalanceCents)
	}
	if result.DiscrepancyCents != -500 {
		t.Fatalf("expected discrepancy -500, got %d", result.DiscrepancyCents)
	}
	if result.Session.ClosedAt == nil {
		t.Fatal("session should be closed")
	}
}

func TestCloseCashWithoutOpenSession(t *testing.T) {
	svc, _, _ := newCashServiceForTest()

	_, err := svc.Close(context.Background(), CloseCashRequest{DeclaredBalance: "0,00"})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCurrentReportsRunningBalance(t *testing.T) {
	svc, _, ledgerRepo := newCashServiceForTest()
	ctx := context.Background()

	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if current.Open {
		t.Fatal("no session should be open")
	}

	opened, err := svc.Open(ctx, OpenCashRequest{OpeningBalance: "30,00"})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	sessionID := mustUUID(t, opened.ID)
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindIncome, Status: model.StatusPaid,
		PaymentMethod: model.PayCash, AmountCents: 1500, CashSessionID: &sessionID,
	})

	current, err = svc.Current(ctx)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if !current.Open {
		t.Fatal("session should be open")
	}
	if current.ExpectedBalanceCents != 4500 {
		t.Fatalf("expected running balance 4500, got %d", current.ExpectedBalanceCents)
	}
}

// A reopened till must not adopt cash entries from earlier sessions.
func TestNewSessionIgnoresOlderCashEntries(t *testing.T) {
	svc, _, ledgerRepo := newCashServiceForTest()
	ctx := context.Background()

	opened, err := svc.Open(ctx, OpenCashRequest{OpeningBalance: "0,00"})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	firstID := mustUUID(t, opened.ID)
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindIncome, Status: model.StatusPaid,
		PaymentMethod: model.PayCash, AmountCents: 7000, CashSessionID: &firstID,
	})
	if _, err := svc.Close(ctx, CloseCashRequest{DeclaredBalance: "70,00"}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, err := svc.Open(ctx, OpenCashRequest{OpeningBalance: "10,00"}); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if current.ExpectedBalanceCents != 1000 {
		t.Fatalf("new session should start from its own opening balance, got %d", current.ExpectedBalanceCents)
	}
}
