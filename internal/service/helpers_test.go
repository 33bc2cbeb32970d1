package service

import (
	"context"
	"testing"
	"time"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", s, err)
	}
	return id
}

func seedEntry(t *testing.T, repo *fakeLedgerRepo, entry model.LedgerEntry) uuid.UUID {
	t.Helper()
	if entry.EffectiveDate.IsZero() {
		entry.EffectiveDate = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	if err := repo.Create(context.Background(), &entry); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry.ID
}
