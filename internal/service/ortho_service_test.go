package service

import (
	"context"
	"testing"
	"time"

	"clinicpanel/internal/model"
)

type orthoTestEnv struct {
	svc         OrthoService
	orthoRepo   *fakeOrthoRepo
	ledgerRepo  *fakeLedgerRepo
	cashRepo    *fakeCashRepo
	patientRepo *fakePatientRepo
	provider    model.Provider
	patient     model.Patient
}

func newOrthoTestEnv(t *testing.T) *orthoTestEnv {
	t.Helper()
	env := &orthoTestEnv{
		orthoRepo:   newFakeOrthoRepo(),
		ledgerRepo:  newFakeLedgerRepo(),
		cashRepo:    newFakeCashRepo(),
		patientRepo: newFakePatientRepo(),
	}
	categoryRepo := newFakeCategoryRepo()
	providerRepo := newFakeProviderRepo()
	appointmentRepo := newFakeAppointmentRepo()

	env.patient = model.Patient{Name: "Marina Costa"}
	if err := env.patientRepo.Create(context.Background(), &env.patient); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	env.provider = model.Provider{Name: "Dr. Nunes", DefaultCommissionPercent: 30, Active: true}
	if err := providerRepo.Create(context.Background(), &env.provider); err != nil {
		t.Fatalf("seed provider: %v", err)
	}

	env.svc = NewOrthoService(
		env.orthoRepo, env.ledgerRepo, env.cashRepo, categoryRepo,
		providerRepo, env.patientRepo, appointmentRepo, fakeTxManager{},
	)
	return env
}

func TestOrthoCreateLinksSingleEntry(t *testing.T) {
	env := newOrthoTestEnv(t)
	ctx := context.Background()

	record, err := env.svc.Upsert(ctx, OrthoMaintenanceRequest{
		PatientID:       env.patient.ID.String(),
		ProviderID:      env.provider.ID.String(),
		MaintenanceDate: "2026-08-20",
		WorkDone:        "Troca de fio",
		Amount:          "150,00",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if record.LedgerEntryID == nil {
		t.Fatal("charged visit should own a ledger entry")
	}
	if len(env.ledgerRepo.entries) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(env.ledgerRepo.entries))
	}

	entry, _ := env.ledgerRepo.FindByID(ctx, mustUUID(t, *record.LedgerEntryID))
	if entry.Kind != model.KindIncome || entry.AmountCents != 15000 {
		t.Fatalf("unexpected linked entry: %s %d", entry.Kind, entry.AmountCents)
	}
	if entry.CommissionPercent != 30 {
		t.Fatalf("commission should default from provider, got %d", entry.CommissionPercent)
	}
	if entry.Status != model.StatusPending || entry.DueDate == nil {
		t.Fatal("unpaid visit should produce a pending entry with a due date")
	}

	// The patient is flagged as an ortho patient on the first visit.
	patient, _ := env.patientRepo.FindByID(ctx, env.patient.ID)
	if !patient.IsOrtho {
		t.Fatal("patient should be flagged as ortho")
	}
}

func TestOrthoZeroAmountHasNoEntry(t *testing.T) {
	env := newOrthoTestEnv(t)

	record, err := env.svc.Upsert(context.Background(), OrthoMaintenanceRequest{
		PatientID: env.patient.ID.String(),
		WorkDone:  "Avaliação",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if record.LedgerEntryID != nil {
		t.Fatal("free visit must not create a ledger entry")
	}
	if len(env.ledgerRepo.entries) != 0 {
		t.Fatalf("expected no ledger entries, got %d", len(env.ledgerRepo.entries))
	}
}

func TestOrthoUpdateNeverDuplicatesEntry(t *testing.T) {
	env := newOrthoTestEnv(t)
	ctx := context.Background()

	record, err := env.svc.Upsert(ctx, OrthoMaintenanceRequest{
		PatientID:       env.patient.ID.String(),
		MaintenanceDate: "2026-08-20",
		Amount:          "150,00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	firstEntryID := *record.LedgerEntryID

	updated, err := env.svc.Upsert(ctx, OrthoMaintenanceRequest{
		ID:              record.ID,
		PatientID:       env.patient.ID.String(),
		MaintenanceDate: "2026-08-20",
		Amount:          "200,00",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(env.ledgerRepo.entries) != 1 {
		t.Fatalf("expected one entry after edit, got %d", len(env.ledgerRepo.entries))
	}
	if *updated.LedgerEntryID != firstEntryID {
		t.Fatal("edit must update the owned entry, not replace it")
	}
	entry, _ := env.ledgerRepo.FindByID(ctx, mustUUID(t, firstEntryID))
	if entry.AmountCents != 20000 {
		t.Fatalf("linked entry should follow the new amount, got %d", entry.AmountCents)
	}
}

func TestOrthoLateChargeCreatesEntryOnce(t *testing.T) {
	env := newOrthoTestEnv(t)
	ctx := context.Background()

	// Free visit first, charged on a later edit.
	record, err := env.svc.Upsert(ctx, OrthoMaintenanceRequest{
		PatientID:       env.patient.ID.String(),
		MaintenanceDate: "2026-08-20",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := env.svc.Upsert(ctx, OrthoMaintenanceRequest{
		ID:              record.ID,
		PatientID:       env.patient.ID.String(),
		MaintenanceDate: "2026-08-20",
		Amount:          "90,00",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.LedgerEntryID == nil || len(env.ledgerRepo.entries) != 1 {
		t.Fatalf("late charge should create exactly one entry, got %d", len(env.ledgerRepo.entries))
	}
}

func TestOrthoConfirmPaymentIsIdempotent(t *testing.T) {
	env := newOrthoTestEnv(t)
	ctx := context.Background()

	record, err := env.svc.Upsert(ctx, OrthoMaintenanceRequest{
		PatientID:       env.patient.ID.String(),
		MaintenanceDate: "2026-08-20",
		Amount:          "100,00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	confirmed, err := env.svc.ConfirmPayment(ctx, record.ID, ConfirmPaymentRequest{
		PaymentMethod: model.PayPix,
		PaidAt:        "2026-08-25",
	})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.PaymentStatus != model.StatusPaid {
		t.Fatalf("expected paid, got %s", confirmed.PaymentStatus)
	}
	if confirmed.DueDate != nil {
		t.Fatal("confirmed visit must drop its due date")
	}
	entry, _ := env.ledgerRepo.FindByID(ctx, mustUUID(t, *confirmed.LedgerEntryID))
	if entry.Status != model.StatusPaid || entry.DueDate != nil {
		t.Fatal("linked entry should be paid with no due date")
	}
	updatesAfterFirst := env.ledgerRepo.updates

	again, err := env.svc.ConfirmPayment(ctx, record.ID, ConfirmPaymentRequest{PaymentMethod: model.PayCash})
	if err != nil {
		t.Fatalf("second confirm should be a no-op, got %v", err)
	}
	if env.ledgerRepo.updates != updatesAfterFirst {
		t.Fatal("second confirm must not rewrite the ledger")
	}
	if again.PaymentMethod != model.PayPix {
		t.Fatalf("second confirm must not change the method, got %s", again.PaymentMethod)
	}
	if len(env.ledgerRepo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(env.ledgerRepo.entries))
	}
}

func TestOrthoConfirmCashStampsOpenTill(t *testing.T) {
	env := newOrthoTestEnv(t)
	ctx := context.Background()

	record, err := env.svc.Upsert(ctx, OrthoMaintenanceRequest{
		PatientID:       env.patient.ID.String(),
		MaintenanceDate: "2026-08-20",
		Amount:          "100,00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	session := model.CashSession{OpenedAt: time.Now()}
	if err := env.cashRepo.Create(ctx, &session); err != nil {
		t.Fatalf("open session: %v", err)
	}

	confirmed, err := env.svc.ConfirmPayment(ctx, record.ID, ConfirmPaymentRequest{PaymentMethod: model.PayCash})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	entry, _ := env.ledgerRepo.FindByID(ctx, mustUUID(t, *confirmed.LedgerEntryID))
	if entry.CashSessionID == nil || *entry.CashSessionID != session.ID {
		t.Fatal("cash confirmation should stamp the open till")
	}
}

func TestOrthoConfirmWithoutLinkCreatesPaidEntry(t *testing.T) {
	env := newOrthoTestEnv(t)
	ctx := context.Background()

	// Simulate an old record that carries an amount but never got its entry.
	record := model.OrthoMaintenance{
		PatientID:       env.patient.ID,
		MaintenanceDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		AmountCents:     8000,
		PaymentStatus:   model.StatusPending,
	}
	if err := env.orthoRepo.Create(ctx, &record); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	confirmed, err := env.svc.ConfirmPayment(ctx, record.ID.String(), ConfirmPaymentRequest{PaymentMethod: model.PayPix})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.LedgerEntryID == nil || len(env.ledgerRepo.entries) != 1 {
		t.Fatal("confirmation should lazily create the missing entry")
	}
	entry, _ := env.ledgerRepo.FindByID(ctx, mustUUID(t, *confirmed.LedgerEntryID))
	if entry.Status != model.StatusPaid || entry.AmountCents != 8000 {
		t.Fatalf("unexpected lazily created entry: %s %d", entry.Status, entry.AmountCents)
	}
}
