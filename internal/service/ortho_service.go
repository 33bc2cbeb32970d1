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

const (
	orthoCategoryName   = "Ortodontia"
	orthoDefaultTime    = "09:00"
	appointmentDuration = 30 * time.Minute
	maxWorkDescription  = 80
)

// --- DTOs ---

type OrthoMaintenanceRequest struct {
	ID                string `json:"id"` // empty on create
	PatientID         string `json:"patient_id"`
	ProviderID        string `json:"provider_id"`
	MaintenanceDate   string `json:"maintenance_date"` // YYYY-MM-DD, defaults to today
	WorkDone          string `json:"work_done"`
	Amount            string `json:"amount"` // "150,00"; 0 means no charge
	PaymentStatus     string `json:"payment_status"` // pending (default), paid
	PaymentMethod     string `json:"payment_method"`
	DueDate           string `json:"due_date"`
	PaidAt            string `json:"paid_at"`
	NextDate          string `json:"next_date"` // YYYY-MM-DD
	NextTime          string `json:"next_time"` // HH:MM
	NextNote          string `json:"next_note"`
	CreateAppointment bool   `json:"create_appointment"`
}

type OrthoMaintenanceResponse struct {
	ID              string  `json:"id"`
	PatientID       string  `json:"patient_id"`
	PatientName     string  `json:"patient_name,omitempty"`
	ProviderID      *string `json:"provider_id"`
	ProviderName    string  `json:"provider_name,omitempty"`
	MaintenanceDate string  `json:"maintenance_date"`
	WorkDone        string  `json:"work_done"`
	AmountCents     int64   `json:"amount_cents"`
	Amount          string  `json:"amount"`
	PaymentStatus   string  `json:"payment_status"`
	PaymentMethod   string  `json:"payment_method"`
	DueDate         *string `json:"due_date"`
	PaidAt          *string `json:"paid_at"`
	NextDate        *string `json:"next_date"`
	NextTime        string  `json:"next_time,omitempty"`
	NextNote        string  `json:"next_note,omitempty"`
	LedgerEntryID   *string `json:"ledger_entry_id"`
	AppointmentID   *string `json:"appointment_id"`
}

type OrthoListFilter struct {
	Search        string
	PatientID     string
	PaymentStatus string
	Limit         int
}

type ConfirmPaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaidAt        string `json:"paid_at"` // defaults to today
}

// --- Interface ---

// OrthoService is the bridge between clinical maintenance records and the
// financial ledger. Each record owns at most one ledger entry; the bridge
// decides link-or-update inside one transaction so concurrent edits cannot
// produce duplicates.
type OrthoService interface {
	Upsert(ctx context.Context, req OrthoMaintenanceRequest) (OrthoMaintenanceResponse, error)
	ConfirmPayment(ctx context.Context, id string, req ConfirmPaymentRequest) (OrthoMaintenanceResponse, error)
	Get(ctx context.Context, id string) (OrthoMaintenanceResponse, error)
	List(ctx context.Context, filter OrthoListFilter) ([]OrthoMaintenanceResponse, error)
}

type orthoService struct {
	orthoRepo       repository.OrthoRepository
	ledgerRepo      repository.LedgerRepository
	cashRepo        repository.CashSessionRepository
	categoryRepo    repository.CategoryRepository
	providerRepo    repository.ProviderRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	txManager       repository.TransactionManager
}

func NewOrthoService(
	orthoRepo repository.OrthoRepository,
	ledgerRepo repository.LedgerRepository,
	cashRepo repository.CashSessionRepository,
	categoryRepo repository.CategoryRepository,
	providerRepo repository.ProviderRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	txManager repository.TransactionManager,
) OrthoService {
	return &orthoService{
		orthoRepo:       orthoRepo,
		ledgerRepo:      ledgerRepo,
		cashRepo:        cashRepo,
		categoryRepo:    categoryRepo,
		providerRepo:    providerRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *orthoService) Upsert(ctx context.Context, req OrthoMaintenanceRequest) (OrthoMaintenanceResponse, error) {
	if req.ID == "" {
		return s.create(ctx, req)
	}
	return s.update(ctx, req)
}

func (s *orthoService) create(ctx context.Context, req OrthoMaintenanceRequest) (OrthoMaintenanceResponse, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return OrthoMaintenanceResponse{}, apperror.Validation("patient_id is required")
	}
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return OrthoMaintenanceResponse{}, apperror.NotFound("patient not found")
	}

	fields, err := normalizeOrthoRequest(req)
	if err != nil {
		return OrthoMaintenanceResponse{}, err
	}

	record := model.OrthoMaintenance{
		PatientID:       patientID,
		ProviderID:      fields.providerID,
		MaintenanceDate: fields.maintenanceDate,
		WorkDone:        req.WorkDone,
		AmountCents:     fields.amountCents,
		PaymentStatus:   fields.status,
		PaymentMethod:   fields.method,
		DueDate:         fields.dueDate,
		PaidAt:          fields.paidAt,
		NextDate:        fields.nextDate,
		NextTime:        fields.nextTime,
		NextNote:        req.NextNote,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if record.AmountCents > 0 {
			entry, linkErr := s.createLinkedEntry(txCtx, &record, fields)
			if linkErr != nil {
				return linkErr
			}
			record.LedgerEntryID = &entry.ID
		}
		if req.CreateAppointment && record.NextDate != nil {
			appt, apptErr := s.createNextAppointment(txCtx, &record)
			if apptErr != nil {
				return apptErr
			}
			record.AppointmentID = &appt.ID
		}
		if markErr := s.patientRepo.MarkOrtho(txCtx, record.PatientID); markErr != nil {
			return apperror.Integrity("failed to flag ortho patient", markErr)
		}
		if createErr := s.orthoRepo.Create(txCtx, &record); createErr != nil {
			return apperror.Integrity("failed to create maintenance record", createErr)
		}
		return nil
	})
	if err != nil {
		return OrthoMaintenanceResponse{}, err
	}
	return s.Get(ctx, record.ID.String())
}

func (s *orthoService) update(ctx context.Context, req OrthoMaintenanceRequest) (OrthoMaintenanceResponse, error) {
	recordID, err := uuid.Parse(req.ID)
	if err != nil {
		return OrthoMaintenanceResponse{}, apperror.Validation("invalid record id")
	}
	fields, err := normalizeOrthoRequest(req)
	if err != nil {
		return OrthoMaintenanceResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Locking the record serializes concurrent edits, so only one of them
		// can take the "no link yet" branch.
		record, findErr := s.orthoRepo.FindByIDForUpdate(txCtx, recordID)
		if findErr != nil {
			return apperror.NotFound("maintenance record not found")
		}

		record.ProviderID = fields.providerID
		record.MaintenanceDate = fields.maintenanceDate
		record.WorkDone = req.WorkDone
		record.AmountCents = fields.amountCents
		record.PaymentStatus = fields.status
		record.PaymentMethod = fields.method
		record.DueDate = fields.dueDate
		record.PaidAt = fields.paidAt
		record.NextDate = fields.nextDate
		record.NextTime = fields.nextTime
		record.NextNote = req.NextNote

		if record.LedgerEntryID != nil {
			if syncErr := s.syncLinkedEntry(txCtx, record, fields); syncErr != nil {
				return syncErr
			}
		} else if record.AmountCents > 0 {
			entry, linkErr := s.createLinkedEntry(txCtx, record, fields)
			if linkErr != nil {
				return linkErr
			}
			record.LedgerEntryID = &entry.ID
		}

		if req.CreateAppointment && record.NextDate != nil && record.AppointmentID == nil {
			appt, apptErr := s.createNextAppointment(txCtx, record)
			if apptErr != nil {
				return apptErr
			}
			record.AppointmentID = &appt.ID
		}

		if saveErr := s.orthoRepo.Update(txCtx, record); saveErr != nil {
			return apperror.Integrity("failed to update maintenance record", saveErr)
		}
		return nil
	})
	if err != nil {
		return OrthoMaintenanceResponse{}, err
	}
	return s.Get(ctx, req.ID)
}

func (s *orthoService) ConfirmPayment(ctx context.Context, id string, req ConfirmPaymentRequest) (OrthoMaintenanceResponse, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return OrthoMaintenanceResponse{}, apperror.Validation("invalid record id")
	}
	paidAt, err := parseDateOrToday(req.PaidAt)
	if err != nil {
		return OrthoMaintenanceResponse{}, err
	}
	method := model.NormalizePaymentMethod(req.PaymentMethod)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		record, findErr := s.orthoRepo.FindByIDForUpdate(txCtx, recordID)
		if findErr != nil {
			return apperror.NotFound("maintenance record not found")
		}
		if record.PaymentStatus == model.StatusPaid {
			// Already confirmed; repeating is harmless.
			return nil
		}

		if record.LedgerEntryID != nil {
			entry, entryErr := s.ledgerRepo.FindByIDForUpdate(txCtx, *record.LedgerEntryID)
			if entryErr != nil {
				return apperror.Integrity("linked ledger entry missing", entryErr)
			}
			previous := *entry
			entry.Status = model.StatusPaid
			entry.EffectiveDate = paidAt
			entry.DueDate = nil
			entry.PaymentMethod = method
			if stampErr := stampCashSession(txCtx, s.cashRepo, entry, &previous); stampErr != nil {
				return stampErr
			}
			if saveErr := s.ledgerRepo.Update(txCtx, entry); saveErr != nil {
				return apperror.Integrity("failed to update linked ledger entry", saveErr)
			}
		} else if record.AmountCents > 0 {
			fields := orthoFields{
				providerID:      record.ProviderID,
				maintenanceDate: record.MaintenanceDate,
				amountCents:     record.AmountCents,
				status:          model.StatusPaid,
				method:          method,
				effectiveDate:   paidAt,
			}
			entry, linkErr := s.createLinkedEntry(txCtx, record, fields)
			if linkErr != nil {
				return linkErr
			}
			record.LedgerEntryID = &entry.ID
		}

		record.PaymentStatus = model.StatusPaid
		record.PaymentMethod = method
		record.PaidAt = &paidAt
		record.DueDate = nil
		if saveErr := s.orthoRepo.Update(txCtx, record); saveErr != nil {
			return apperror.Integrity("failed to update maintenance record", saveErr)
		}
		return nil
	})
	if err != nil {
		return OrthoMaintenanceResponse{}, err
	}
	return s.Get(ctx, id)
}

func (s *orthoService) Get(ctx context.Context, id string) (OrthoMaintenanceResponse, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return OrthoMaintenanceResponse{}, apperror.Validation("invalid record id")
	}
	record, err := s.orthoRepo.FindByID(ctx, recordID)
	if err != nil {
		return OrthoMaintenanceResponse{}, apperror.NotFound("maintenance record not found")
	}
	return toOrthoResponse(*record), nil
}

func (s *orthoService) List(ctx context.Context, filter OrthoListFilter) ([]OrthoMaintenanceResponse, error) {
	repoFilter := repository.OrthoFilter{Search: filter.Search}
	if filter.PatientID != "" {
		id, err := uuid.Parse(filter.PatientID)
		if err != nil {
			return nil, apperror.Validation("invalid patient_id")
		}
		repoFilter.PatientID = &id
	}
	if filter.PaymentStatus != "" {
		if filter.PaymentStatus != model.StatusPaid && filter.PaymentStatus != model.StatusPending {
			return nil, apperror.Validation("status must be paid or pending")
		}
		repoFilter.PaymentStatus = filter.PaymentStatus
	}
	limit := filter.Limit
	if limit <= 0 || limit > 400 {
		limit = 400
	}

	records, err := s.orthoRepo.List(ctx, repoFilter, limit)
	if err != nil {
		return nil, apperror.Integrity("failed to list maintenance records", err)
	}
	out := make([]OrthoMaintenanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toOrthoResponse(r))
	}
	return out, nil
}

// --- internals ---

// orthoFields is the normalized, validated payment shape shared by the
// create/update/confirm paths.
type orthoFields struct {
	providerID      *uuid.UUID
	maintenanceDate time.Time
	amountCents     int64
	status          string
	method          string
	dueDate         *time.Time
	paidAt          *time.Time
	effectiveDate   time.Time
	nextDate        *time.Time
	nextTime        string
}

// normalizeOrthoRequest applies the date defaulting rules: a paid record pays
// on paid_at (default: maintenance date) and drops its due date; a pending
// record falls due on due_date (default: maintenance date), which also orders
// the ledger.
func normalizeOrthoRequest(req OrthoMaintenanceRequest) (orthoFields, error) {
	var f orthoFields
	var err error

	f.providerID, err = parseOptionalUUID(req.ProviderID, "provider_id")
	if err != nil {
		return f, err
	}
	f.maintenanceDate, err = parseDateOrToday(req.MaintenanceDate)
	if err != nil {
		return f, err
	}
	f.amountCents = money.ParseCents(req.Amount)
	if f.amountCents < 0 {
		return f, apperror.Validation("amount cannot be negative")
	}

	f.status = req.PaymentStatus
	if f.status == "" {
		f.status = model.StatusPending
	}
	if f.status != model.StatusPaid && f.status != model.StatusPending {
		return f, apperror.Validation("payment_status must be paid or pending")
	}
	f.method = model.NormalizePaymentMethod(req.PaymentMethod)

	var due, paid *time.Time
	if req.DueDate != "" {
		d, parseErr := parseDate(req.DueDate)
		if parseErr != nil {
			return f, parseErr
		}
		due = &d
	}
	if req.PaidAt != "" {
		d, parseErr := parseDate(req.PaidAt)
		if parseErr != nil {
			return f, parseErr
		}
		paid = &d
	}

	if f.status == model.StatusPaid {
		if paid == nil {
			paid = &f.maintenanceDate
		}
		f.paidAt = paid
		f.dueDate = nil
		f.effectiveDate = *paid
	} else {
		if due == nil {
			due = &f.maintenanceDate
		}
		f.dueDate = due
		f.paidAt = nil
		f.effectiveDate = *due
	}

	if req.NextDate != "" {
		d, parseErr := parseDate(req.NextDate)
		if parseErr != nil {
			return f, parseErr
		}
		f.nextDate = &d
		f.nextTime = req.NextTime
		if f.nextTime == "" {
			f.nextTime = orthoDefaultTime
		}
		if _, timeErr := time.Parse("15:04", f.nextTime); timeErr != nil {
			f.nextTime = orthoDefaultTime
		}
	}
	return f, nil
}

// createLinkedEntry materializes the record's ledger entry: income, category
// "Ortodontia" (created on demand), commission defaulted from the provider,
// cash-session stamp resolved inside the caller's transaction.
func (s *orthoService) createLinkedEntry(ctx context.Context, record *model.OrthoMaintenance, f orthoFields) (*model.LedgerEntry, error) {
	category, err := s.categoryRepo.FindOrCreateByName(ctx, orthoCategoryName, model.CategoryIncome)
	if err != nil {
		return nil, apperror.Integrity("failed to resolve ortho category", err)
	}

	commission := 0
	if f.providerID != nil {
		provider, provErr := s.providerRepo.FindByID(ctx, *f.providerID)
		if provErr != nil {
			return nil, apperror.Validation("provider not found")
		}
		commission = model.ClampPercent(provider.DefaultCommissionPercent)
	}

	entry := &model.LedgerEntry{
		Kind:              model.KindIncome,
		Status:            f.status,
		EffectiveDate:     f.effectiveDate,
		AmountCents:       f.amountCents,
		PaymentMethod:     f.method,
		Description:       orthoDescription(record.WorkDone),
		PatientID:         &record.PatientID,
		CategoryID:        &category.ID,
		ProviderID:        f.providerID,
		CommissionPercent: commission,
	}
	if f.status == model.StatusPending {
		entry.DueDate = f.dueDate
	}
	if err := stampCashSession(ctx, s.cashRepo, entry, nil); err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return nil, apperror.Integrity("failed to create linked ledger entry", err)
	}
	return entry, nil
}

// syncLinkedEntry pushes the record's payment state onto its existing ledger
// entry. The record never creates a second entry for the same maintenance.
func (s *orthoService) syncLinkedEntry(ctx context.Context, record *model.OrthoMaintenance, f orthoFields) error {
	entry, err := s.ledgerRepo.FindByIDForUpdate(ctx, *record.LedgerEntryID)
	if err != nil {
		return apperror.Integrity("linked ledger entry missing", err)
	}
	previous := *entry

	entry.Status = f.status
	entry.EffectiveDate = f.effectiveDate
	if f.status == model.StatusPending {
		entry.DueDate = f.dueDate
	} else {
		entry.DueDate = nil
	}
	entry.AmountCents = f.amountCents
	entry.PaymentMethod = f.method
	entry.ProviderID = f.providerID

	if err := stampCashSession(ctx, s.cashRepo, entry, &previous); err != nil {
		return err
	}
	if err := s.ledgerRepo.Update(ctx, entry); err != nil {
		return apperror.Integrity("failed to update linked ledger entry", err)
	}
	return nil
}

func (s *orthoService) createNextAppointment(ctx context.Context, record *model.OrthoMaintenance) (*model.Appointment, error) {
	hhmm, err := time.Parse("15:04", record.NextTime)
	if err != nil {
		hhmm, _ = time.Parse("15:04", orthoDefaultTime)
	}
	d := *record.NextDate
	start := time.Date(d.Year(), d.Month(), d.Day(), hhmm.Hour(), hhmm.Minute(), 0, 0, time.UTC)
	end := start.Add(appointmentDuration)

	note := record.NextNote
	if note == "" {
		note = "Retorno ortodôntico"
	}
	appt := &model.Appointment{
		PatientID:  record.PatientID,
		ProviderID: record.ProviderID,
		Title:      "Manutenção ortodôntica",
		StartAt:    start,
		EndAt:      &end,
		Note:       note,
	}
	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, apperror.Integrity("failed to create appointment", err)
	}
	return appt, nil
}

// orthoDescription builds the ledger description from the clinical work
// summary, truncated so the journal stays scannable.
func orthoDescription(workDone string) string {
	if workDone == "" {
		return "Ortodontia • Manutenção"
	}
	short := workDone
	if len([]rune(short)) > maxWorkDescription {
		short = string([]rune(short)[:maxWorkDescription]) + "…"
	}
	return "Ortodontia • " + short
}

func toOrthoResponse(r model.OrthoMaintenance) OrthoMaintenanceResponse {
	resp := OrthoMaintenanceResponse{
		ID:              r.ID.String(),
		PatientID:       r.PatientID.String(),
		MaintenanceDate: r.MaintenanceDate.Format(dateLayout),
		WorkDone:        r.WorkDone,
		AmountCents:     r.AmountCents,
		Amount:          money.FormatCents(r.AmountCents),
		PaymentStatus:   r.PaymentStatus,
		PaymentMethod:   model.NormalizePaymentMethod(r.PaymentMethod),
		NextTime:        r.NextTime,
		NextNote:        r.NextNote,
	}
	if r.Patient != nil {
		resp.PatientName = r.Patient.Name
	}
	if r.ProviderID != nil {
		id := r.ProviderID.String()
		resp.ProviderID = &id
	}
	if r.Provider != nil {
		resp.ProviderName = r.Provider.Name
	}
	if r.DueDate != nil {
		d := r.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	if r.PaidAt != nil {
		d := r.PaidAt.Format(dateLayout)
		resp.PaidAt = &d
	}
	if r.NextDate != nil {
		d := r.NextDate.Format(dateLayout)
		resp.NextDate = &d
	}
	if r.LedgerEntryID != nil {
		id := r.LedgerEntryID.String()
		resp.LedgerEntryID = &id
	}
	if r.AppointmentID != nil {
		id := r.AppointmentID.String()
		resp.AppointmentID = &id
	}
	return resp
}
