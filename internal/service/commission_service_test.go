package service

import (
	"context"
	"testing"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
)

func TestCommissionCentsTruncates(t *testing.T) {
	tests := []struct {
		amount  int64
		percent int
		want    int64
	}{
		{10050, 10, 1005},
		{999, 33, 329}, // floor(329.67)
		{100, 0, 0},
		{100, 150, 100},  // percent clamped to 100
		{12345, -5, 0},   // negative percent clamped to 0
		{1, 50, 0},       // floor(0.5)
	}
	for _, tt := range tests {
		if got := CommissionCents(tt.amount, tt.percent); got != tt.want {
			t.Errorf("CommissionCents(%d, %d) = %d, want %d", tt.amount, tt.percent, got, tt.want)
		}
	}
}

func TestCommissionOwedOnlyCountsPaidIncome(t *testing.T) {
	ledgerRepo := newFakeLedgerRepo()
	providerRepo := newFakeProviderRepo()
	svc := NewCommissionService(ledgerRepo, providerRepo)
	ctx := context.Background()

	providerID := uuid.New()
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindIncome, Status: model.StatusPaid,
		AmountCents: 10000, ProviderID: &providerID, CommissionPercent: 30,
	})
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindIncome, Status: model.StatusPending,
		AmountCents: 50000, ProviderID: &providerID, CommissionPercent: 30,
	})
	seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindExpense, Status: model.StatusPaid,
		AmountCents: 20000, ProviderID: &providerID, CommissionPercent: 30,
	})

	owed, err := svc.Owed(ctx, providerID.String(), "")
	if err != nil {
		t.Fatalf("owed failed: %v", err)
	}
	if owed.Cents != 3000 {
		t.Fatalf("expected 3000 owed, got %d", owed.Cents)
	}
}

func TestSettleCommissionIsIdempotent(t *testing.T) {
	ledgerRepo := newFakeLedgerRepo()
	svc := NewCommissionService(ledgerRepo, newFakeProviderRepo())
	ctx := context.Background()

	providerID := uuid.New()
	entryID := seedEntry(t, ledgerRepo, model.LedgerEntry{
		Kind: model.KindIncome, Status: model.StatusPaid,
		AmountCents: 10000, ProviderID: &providerID, CommissionPercent: 25,
	})

	if err := svc.Settle(ctx, entryID.String()); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	entry, _ := ledgerRepo.FindByID(ctx, entryID)
	if !entry.CommissionSettled || entry.CommissionPaidAt == nil {
		t.Fatal("commission should be marked settled")
	}
	firstPaidAt := *entry.CommissionPaidAt
	updatesAfterFirst := ledgerRepo.updates

	if err := svc.Settle(ctx, entryID.String()); err != nil {
		t.Fatalf("second settle should be a no-op, got %v", err)
	}
	if ledgerRepo.updates != updatesAfterFirst {
		t.Fatal("second settle must not write")
	}
	entry, _ = ledgerRepo.FindByID(ctx, entryID)
	if !entry.CommissionPaidAt.Equal(firstPaidAt) {
		t.Fatal("settlement timestamp must not move")
	}

	pending, err := svc.Pending(ctx, providerID.String())
	if err != nil {
		t.Fatalf("pending failed: %v", err)
	}
	if pending.Cents != 0 {
		t.Fatalf("settled commission should not be pending, got %d", pending.Cents)
	}
}
