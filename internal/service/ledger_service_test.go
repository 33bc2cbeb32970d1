package service

import (
	"context"
	"testing"
	"time"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
)

func newLedgerServiceForTest() (LedgerService, *fakeLedgerRepo, *fakeCashRepo, *fakeProviderRepo) {
	ledgerRepo := newFakeLedgerRepo()
	cashRepo := newFakeCashRepo()
	providerRepo := newFakeProviderRepo()
	svc := NewLedgerService(ledgerRepo, cashRepo, providerRepo, fakeTxManager{})
	return svc, ledgerRepo, cashRepo, providerRepo
}

func openTestSession(t *testing.T, cashRepo *fakeCashRepo) model.CashSession {
	t.Helper()
	session := model.CashSession{OpenedAt: time.Now()}
	if err := cashRepo.Create(context.Background(), &session); err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

func TestCreateEntryDefaults(t *testing.T) {
	svc, _, _, _ := newLedgerServiceForTest()

	entry, err := svc.Create(context.Background(), LedgerEntryRequest{
		Amount: "1.234,56",
		Date:   "2026-08-10",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if entry.Kind != model.KindIncome || entry.Status != model.StatusPaid {
		t.Fatalf("expected paid income by default, got %s/%s", entry.Kind, entry.Status)
	}
	if entry.AmountCents != 123456 {
		t.Fatalf("expected 123456 cents, got %d", entry.AmountCents)
	}
	if entry.DueDate != nil {
		t.Fatal("paid entry must not carry a due date")
	}
}

func TestCreatePendingEntryOrdersByDueDate(t *testing.T) {
	svc, _, _, _ := newLedgerServiceForTest()

	entry, err := svc.Create(context.Background(), LedgerEntryRequest{
		Amount:  "80,00",
		Status:  model.StatusPending,
		Date:    "2026-08-01",
		DueDate: "2026-09-15",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if entry.DueDate == nil || *entry.DueDate != "2026-09-15" {
		t.Fatalf("expected due date 2026-09-15, got %v", entry.DueDate)
	}
	if entry.Date != "2026-09-15" {
		t.Fatalf("pending entry should sort by its due date, got %s", entry.Date)
	}
}

func TestCreateEntryRejectsZeroAmount(t *testing.T) {
	svc, _, _, _ := newLedgerServiceForTest()

	_, err := svc.Create(context.Background(), LedgerEntryRequest{Amount: "garbage"})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for unparseable amount, got %v", err)
	}
}

func TestLegacyCardMethodNormalized(t *testing.T) {
	svc, _, _, _ := newLedgerServiceForTest()

	entry, err := svc.Create(context.Background(), LedgerEntryRequest{
		Amount:        "10,00",
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if entry.PaymentMethod != model.PayCardCredit {
		t.Fatalf("legacy card should read as card_credit, got %s", entry.PaymentMethod)
	}
}

func TestCashEntryStampedWithOpenSession(t *testing.T) {
	svc, ledgerRepo, cashRepo, _ := newLedgerServiceForTest()
	ctx := context.Background()
	session := openTestSession(t, cashRepo)

	created, err := svc.Create(ctx, LedgerEntryRequest{
		Amount:        "60,00",
		PaymentMethod: model.PayCash,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	stored, _ := ledgerRepo.FindByID(ctx, mustUUID(t, created.ID))
	if stored.CashSessionID == nil || *stored.CashSessionID != session.ID {
		t.Fatal("paid cash entry should be stamped with the open session")
	}
}

func TestNonCashAndPendingEntriesNotStamped(t *testing.T) {
	svc, ledgerRepo, cashRepo, _ := newLedgerServiceForTest()
	ctx := context.Background()
	openTestSession(t, cashRepo)

	pix, err := svc.Create(ctx, LedgerEntryRequest{Amount: "10,00", PaymentMethod: model.PayPix})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	pending, err := svc.Create(ctx, LedgerEntryRequest{
		Amount: "10,00", PaymentMethod: model.PayCash, Status: model.StatusPending,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for _, id := range []string{pix.ID, pending.ID} {
		stored, _ := ledgerRepo.FindByID(ctx, mustUUID(t, id))
		if stored.CashSessionID != nil {
			t.Fatalf("entry %s must not carry a session stamp", id)
		}
	}
}

func TestSettleStampsAtPaymentMoment(t *testing.T) {
	svc, ledgerRepo, cashRepo, _ := newLedgerServiceForTest()
	ctx := context.Background()

	// Pending while no till is open.
	pending, err := svc.Create(ctx, LedgerEntryRequest{
		Amount: "45,00", PaymentMethod: model.PayCash, Status: model.StatusPending,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The till opens before the payment lands.
	session := openTestSession(t, cashRepo)

	settled, err := svc.Settle(ctx, pending.ID, SettleEntryRequest{PaymentMethod: model.PayCash})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if settled.Status != model.StatusPaid {
		t.Fatalf("expected paid after settle, got %s", settled.Status)
	}
	stored, _ := ledgerRepo.FindByID(ctx, mustUUID(t, pending.ID))
	if stored.CashSessionID == nil || *stored.CashSessionID != session.ID {
		t.Fatal("settlement should stamp the session open at payment time")
	}
	if stored.DueDate != nil {
		t.Fatal("settled entry must drop its due date")
	}
}

func TestUpdateKeepsOriginalSessionStamp(t *testing.T) {
	svc, ledgerRepo, cashRepo, _ := newLedgerServiceForTest()
	ctx := context.Background()

	first := openTestSession(t, cashRepo)
	created, err := svc.Create(ctx, LedgerEntryRequest{
		Amount: "30,00", PaymentMethod: model.PayCash, Description: "consulta",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Close the first till and open a second one.
	now := time.Now()
	stored, _ := cashRepo.FindByID(ctx, first.ID)
	stored.ClosedAt = &now
	if err := cashRepo.Update(ctx, stored); err != nil {
		t.Fatalf("close session: %v", err)
	}
	openTestSession(t, cashRepo)

	// Editing the description must not move the entry to the new till.
	if _, err := svc.Update(ctx, created.ID, LedgerEntryRequest{
		Amount: "30,00", PaymentMethod: model.PayCash, Description: "consulta inicial",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	entry, _ := ledgerRepo.FindByID(ctx, mustUUID(t, created.ID))
	if entry.CashSessionID == nil || *entry.CashSessionID != first.ID {
		t.Fatal("an already-stamped entry must keep its original session")
	}
}

func TestCommissionDefaultsFromProvider(t *testing.T) {
	svc, _, _, providerRepo := newLedgerServiceForTest()
	ctx := context.Background()

	provider := model.Provider{Name: "Dra. Lima", DefaultCommissionPercent: 40, Active: true}
	if err := providerRepo.Create(ctx, &provider); err != nil {
		t.Fatalf("seed provider: %v", err)
	}

	entry, err := svc.Create(ctx, LedgerEntryRequest{
		Amount:     "200,00",
		ProviderID: provider.ID.String(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if entry.CommissionPercent != 40 {
		t.Fatalf("expected provider default 40%%, got %d", entry.CommissionPercent)
	}

	override := 15
	entry, err = svc.Create(ctx, LedgerEntryRequest{
		Amount:            "200,00",
		ProviderID:        provider.ID.String(),
		CommissionPercent: &override,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if entry.CommissionPercent != 15 {
		t.Fatalf("explicit percent should win, got %d", entry.CommissionPercent)
	}
}
