package service

// In-memory repository fakes. They reproduce the store's aggregate semantics
// (including the truncating bigint commission division) so service behavior
// can be exercised without a database.

import (
	"context"
	"errors"
	"time"

	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"

	"github.com/google/uuid"
)

var errFakeNotFound = errors.New("record not found")

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- ledger ---

type fakeLedgerRepo struct {
	entries map[uuid.UUID]*model.LedgerEntry
	updates int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: make(map[uuid.UUID]*model.LedgerEntry)}
}

func (r *fakeLedgerRepo) Create(_ context.Context, entry *model.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	stored := *entry
	r.entries[entry.ID] = &stored
	return nil
}

func (r *fakeLedgerRepo) Update(_ context.Context, entry *model.LedgerEntry) error {
	if _, ok := r.entries[entry.ID]; !ok {
		return errFakeNotFound
	}
	stored := *entry
	r.entries[entry.ID] = &stored
	r.updates++
	return nil
}

func (r *fakeLedgerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.entries, id)
	return nil
}

func (r *fakeLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *fakeLedgerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeLedgerRepo) matches(e *model.LedgerEntry, f repository.LedgerFilter) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.PaymentMethod != "" && model.NormalizePaymentMethod(e.PaymentMethod) != f.PaymentMethod {
		return false
	}
	if f.From != nil && e.EffectiveDate.Before(*f.From) {
		return false
	}
	if f.To != nil && e.EffectiveDate.After(*f.To) {
		return false
	}
	if f.PatientID != nil && (e.PatientID == nil || *e.PatientID != *f.PatientID) {
		return false
	}
	if f.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *f.CategoryID) {
		return false
	}
	if f.ProviderID != nil && (e.ProviderID == nil || *e.ProviderID != *f.ProviderID) {
		return false
	}
	return true
}

func (r *fakeLedgerRepo) List(_ context.Context, filter repository.LedgerFilter, limit int) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if r.matches(e, filter) {
			out = append(out, *e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) Sum(_ context.Context, filter repository.LedgerFilter) (int64, error) {
	var total int64
	for _, e := range r.entries {
		if r.matches(e, filter) {
			total += e.AmountCents
		}
	}
	return total, nil
}

func (r *fakeLedgerRepo) Totals(_ context.Context, filter repository.LedgerFilter) (repository.LedgerTotals, error) {
	var totals repository.LedgerTotals
	for _, e := range r.entries {
		if !r.matches(e, filter) {
			continue
		}
		if e.Kind == model.KindIncome {
			totals.IncomeCents += e.AmountCents
		} else {
			totals.ExpenseCents += e.AmountCents
		}
		if e.Status == model.StatusPending {
			totals.PendingCents += e.AmountCents
		}
	}
	return totals, nil
}

func (r *fakeLedgerRepo) IncomeByPaymentMethod(_ context.Context, filter repository.LedgerFilter) (map[string]int64, error) {
	out := make(map[string]int64, len(model.PaymentMethods))
	for _, pm := range model.PaymentMethods {
		out[pm] = 0
	}
	for _, e := range r.entries {
		if r.matches(e, filter) && e.Kind == model.KindIncome {
			out[model.NormalizePaymentMethod(e.PaymentMethod)] += e.AmountCents
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) SumCashBySession(_ context.Context, sessionID uuid.UUID) (int64, int64, error) {
	var incomes, expenses int64
	for _, e := range r.entries {
		if e.CashSessionID == nil || *e.CashSessionID != sessionID {
			continue
		}
		if e.Status != model.StatusPaid || e.PaymentMethod != model.PayCash {
			continue
		}
		if e.Kind == model.KindIncome {
			incomes += e.AmountCents
		} else {
			expenses += e.AmountCents
		}
	}
	return incomes, expenses, nil
}

func (r *fakeLedgerRepo) SumCommissionOwed(_ context.Context, providerID uuid.UUID, from *time.Time) (int64, error) {
	var total int64
	for _, e := range r.entries {
		if e.ProviderID == nil || *e.ProviderID != providerID {
			continue
		}
		if e.Kind != model.KindIncome || e.Status != model.StatusPaid {
			continue
		}
		if from != nil && e.EffectiveDate.Before(*from) {
			continue
		}
		total += (e.AmountCents * int64(e.CommissionPercent)) / 100
	}
	return total, nil
}

func (r *fakeLedgerRepo) SumCommissionPending(_ context.Context, providerID uuid.UUID) (int64, error) {
	var total int64
	for _, e := range r.entries {
		if e.ProviderID == nil || *e.ProviderID != providerID {
			continue
		}
		if e.Kind != model.KindIncome || e.Status != model.StatusPaid || e.CommissionSettled {
			continue
		}
		total += (e.AmountCents * int64(e.CommissionPercent)) / 100
	}
	return total, nil
}

func (r *fakeLedgerRepo) ListCommissionPending(_ context.Context, limit int) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if e.Kind == model.KindIncome && e.Status == model.StatusPaid &&
			e.CommissionPercent > 0 && !e.CommissionSettled {
			out = append(out, *e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- cash sessions ---

type fakeCashRepo struct {
	sessions map[uuid.UUID]*model.CashSession
}

func newFakeCashRepo() *fakeCashRepo {
	return &fakeCashRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

func (r *fakeCashRepo) Create(_ context.Context, session *model.CashSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *fakeCashRepo) Update(_ context.Context, session *model.CashSession) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return errFakeNotFound
	}
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *fakeCashRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeCashRepo) FindOpen(_ context.Context) (*model.CashSession, error) {
	for _, session := range r.sessions {
		if session.ClosedAt == nil {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCashRepo) FindOpenForUpdate(ctx context.Context) (*model.CashSession, error) {
	return r.FindOpen(ctx)
}

func (r *fakeCashRepo) History(_ context.Context, limit int) ([]model.CashSession, error) {
	var out []model.CashSession
	for _, session := range r.sessions {
		out = append(out, *session)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- ortho ---

type fakeOrthoRepo struct {
	records map[uuid.UUID]*model.OrthoMaintenance
}

func newFakeOrthoRepo() *fakeOrthoRepo {
	return &fakeOrthoRepo{records: make(map[uuid.UUID]*model.OrthoMaintenance)}
}

func (r *fakeOrthoRepo) Create(_ context.Context, record *model.OrthoMaintenance) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	stored := *record
	r.records[record.ID] = &stored
	return nil
}

func (r *fakeOrthoRepo) Update(_ context.Context, record *model.OrthoMaintenance) error {
	if _, ok := r.records[record.ID]; !ok {
		return errFakeNotFound
	}
	stored := *record
	r.records[record.ID] = &stored
	return nil
}

func (r *fakeOrthoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.OrthoMaintenance, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeOrthoRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.OrthoMaintenance, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrthoRepo) List(_ context.Context, filter repository.OrthoFilter, limit int) ([]model.OrthoMaintenance, error) {
	var out []model.OrthoMaintenance
	for _, record := range r.records {
		if filter.PatientID != nil && record.PatientID != *filter.PatientID {
			continue
		}
		if filter.PaymentStatus != "" && record.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, *record)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- categories ---

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	stored := *category
	r.categories[category.ID] = &stored
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *model.Category) error {
	stored := *category
	r.categories[category.ID] = &stored
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *category
	return &copied, nil
}

func (r *fakeCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, category := range r.categories {
		if category.Name == name {
			copied := *category
			return &copied, nil
		}
	}
	return nil, errFakeNotFound
}

func (r *fakeCategoryRepo) FindOrCreateByName(ctx context.Context, name, kind string) (*model.Category, error) {
	if category, err := r.FindByName(ctx, name); err == nil {
		return category, nil
	}
	category := &model.Category{Name: name, Kind: kind, Active: true}
	if err := r.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (r *fakeCategoryRepo) List(_ context.Context, activeOnly bool) ([]model.Category, error) {
	var out []model.Category
	for _, category := range r.categories {
		if activeOnly && !category.Active {
			continue
		}
		out = append(out, *category)
	}
	return out, nil
}

// --- providers ---

type fakeProviderRepo struct {
	providers map[uuid.UUID]*model.Provider
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{providers: make(map[uuid.UUID]*model.Provider)}
}

func (r *fakeProviderRepo) Create(_ context.Context, provider *model.Provider) error {
	if provider.ID == uuid.Nil {
		provider.ID = uuid.New()
	}
	stored := *provider
	r.providers[provider.ID] = &stored
	return nil
}

func (r *fakeProviderRepo) Update(_ context.Context, provider *model.Provider) error {
	stored := *provider
	r.providers[provider.ID] = &stored
	return nil
}

func (r *fakeProviderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Provider, error) {
	provider, ok := r.providers[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *provider
	return &copied, nil
}

func (r *fakeProviderRepo) List(_ context.Context, activeOnly bool) ([]model.Provider, error) {
	var out []model.Provider
	for _, provider := range r.providers {
		if activeOnly && !provider.Active {
			continue
		}
		out = append(out, *provider)
	}
	return out, nil
}

// --- patients ---

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, patient *model.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	stored := *patient
	r.patients[patient.ID] = &stored
	return nil
}

func (r *fakePatientRepo) Update(_ context.Context, patient *model.Patient) error {
	stored := *patient
	r.patients[patient.ID] = &stored
	return nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.patients, id)
	return nil
}

func (r *fakePatientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, ok := r.patients[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *patient
	return &copied, nil
}

func (r *fakePatientRepo) List(_ context.Context, _ string, _, _ int) ([]model.Patient, int64, error) {
	var out []model.Patient
	for _, patient := range r.patients {
		out = append(out, *patient)
	}
	return out, int64(len(out)), nil
}

func (r *fakePatientRepo) MarkOrtho(_ context.Context, id uuid.UUID) error {
	if patient, ok := r.patients[id]; ok {
		patient.IsOrtho = true
	}
	return nil
}

// --- appointments ---

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appointment *model.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	stored := *appointment
	r.appointments[appointment.ID] = &stored
	return nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit int) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, appointment := range r.appointments {
		if appointment.PatientID == patientID {
			out = append(out, *appointment)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountOnDay(_ context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var count int64
	for _, appointment := range r.appointments {
		if !appointment.StartAt.Before(start) && appointment.StartAt.Before(end) {
			count++
		}
	}
	return count, nil
}

// --- budgets ---

type fakeBudgetRepo struct {
	budgets map[uuid.UUID]*model.Budget
	items   map[uuid.UUID]*model.PlanItem
}

func newFakeBudgetRepo() *fakeBudgetRepo {
	return &fakeBudgetRepo{
		budgets: make(map[uuid.UUID]*model.Budget),
		items:   make(map[uuid.UUID]*model.PlanItem),
	}
}

func (r *fakeBudgetRepo) Create(_ context.Context, budget *model.Budget) error {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	stored := *budget
	r.budgets[budget.ID] = &stored
	return nil
}

func (r *fakeBudgetRepo) Update(_ context.Context, budget *model.Budget) error {
	stored := *budget
	r.budgets[budget.ID] = &stored
	return nil
}

func (r *fakeBudgetRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Budget, error) {
	budget, ok := r.budgets[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *budget
	return &copied, nil
}

func (r *fakeBudgetRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBudgetRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]model.Budget, error) {
	var out []model.Budget
	for _, budget := range r.budgets {
		if budget.PatientID == patientID {
			out = append(out, *budget)
		}
	}
	return out, nil
}

func (r *fakeBudgetRepo) CreatePlanItem(_ context.Context, item *model.PlanItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeBudgetRepo) UpdatePlanItem(_ context.Context, item *model.PlanItem) error {
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeBudgetRepo) FindPlanItemByID(_ context.Context, id uuid.UUID) (*model.PlanItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, errFakeNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeBudgetRepo) FindPlanItemByBudget(_ context.Context, budgetID uuid.UUID) (*model.PlanItem, error) {
	for _, item := range r.items {
		if item.BudgetID != nil && *item.BudgetID == budgetID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeBudgetRepo) ListPlanItemsByPatient(_ context.Context, patientID uuid.UUID) ([]model.PlanItem, error) {
	var out []model.PlanItem
	for _, item := range r.items {
		if item.PatientID == patientID {
			out = append(out, *item)
		}
	}
	return out, nil
}
