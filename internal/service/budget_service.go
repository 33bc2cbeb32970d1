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

type BudgetRequest struct {
	PatientID   string `json:"patient_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"` // BRL formatted
}

type BudgetResponse struct {
	ID          string `json:"id"`
	PatientID   string `json:"patient_id"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type PlanItemResponse struct {
	ID          string `json:"id"`
	PatientID   string `json:"patient_id"`
	BudgetID    string `json:"budget_id,omitempty"`
	Tooth       string `json:"tooth"`
	Procedure   string `json:"procedure"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Done        bool   `json:"done"`
	DoneAt      string `json:"done_at,omitempty"`
}

type PlanItemRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Tooth     string `json:"tooth"`
	Procedure string `json:"procedure" binding:"required"`
	Amount    string `json:"amount"`
}

// --- Interface ---

type BudgetService interface {
	Create(ctx context.Context, req BudgetRequest) (BudgetResponse, error)
	// Approve flips the budget to approved and spawns its treatment-plan item.
	// Approving an already-approved budget is a no-op; a budget never spawns
	// more than one item.
	Approve(ctx context.Context, id string) (BudgetResponse, error)
	Reject(ctx context.Context, id string) (BudgetResponse, error)
	ListByPatient(ctx context.Context, patientID string) ([]BudgetResponse, error)

	CreatePlanItem(ctx context.Context, req PlanItemRequest) (PlanItemResponse, error)
	TogglePlanItemDone(ctx context.Context, id string) (PlanItemResponse, error)
	ListPlanItems(ctx context.Context, patientID string) ([]PlanItemResponse, error)
}

type budgetService struct {
	budgetRepo  repository.BudgetRepository
	patientRepo repository.PatientRepository
	txManager   repository.TransactionManager
}

func NewBudgetService(
	budgetRepo repository.BudgetRepository,
	patientRepo repository.PatientRepository,
	txManager repository.TransactionManager,
) BudgetService {
	return &budgetService{budgetRepo: budgetRepo, patientRepo: patientRepo, txManager: txManager}
}

// --- Implementation ---

func (s *budgetService) Create(ctx context.Context, req BudgetRequest) (BudgetResponse, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return BudgetResponse{}, apperror.Validation("invalid patient id")
	}
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return BudgetResponse{}, apperror.NotFound("patient not found")
	}
	if req.Description == "" {
		return BudgetResponse{}, apperror.Validation("description is required")
	}
	amount := money.ParseCents(req.Amount)
	if amount <= 0 {
		return BudgetResponse{}, apperror.Validation("amount must be positive")
	}
	budget := model.Budget{
		PatientID:   patientID,
		Description: req.Description,
		AmountCents: amount,
		Status:      model.BudgetOpen,
	}
	if err := s.budgetRepo.Create(ctx, &budget); err != nil {
		return BudgetResponse{}, apperror.Integrity("failed to create budget", err)
	}
	return toBudgetResponse(budget), nil
}

func (s *budgetService) Approve(ctx context.Context, id string) (BudgetResponse, error) {
	budgetID, err := uuid.Parse(id)
	if err != nil {
		return BudgetResponse{}, apperror.Validation("invalid budget id")
	}

	var result model.Budget
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		budget, txErr := s.budgetRepo.FindByIDForUpdate(txCtx, budgetID)
		if txErr != nil {
			return apperror.NotFound("budget not found")
		}
		if budget.Status == model.BudgetRejected {
			return apperror.Conflict("budget was rejected")
		}
		if budget.Status != model.BudgetApproved {
			budget.Status = model.BudgetApproved
			if txErr := s.budgetRepo.Update(txCtx, budget); txErr != nil {
				return apperror.Integrity("failed to approve budget", txErr)
			}
		}

		// Spawn the plan item only if this budget has none yet.
		existing, txErr := s.budgetRepo.FindPlanItemByBudget(txCtx, budget.ID)
		if txErr != nil {
			return apperror.Integrity("failed to check treatment plan", txErr)
		}
		if existing == nil {
			item := model.PlanItem{
				PatientID:   budget.PatientID,
				BudgetID:    &budget.ID,
				Procedure:   budget.Description,
				AmountCents: budget.AmountCents,
			}
			if txErr := s.budgetRepo.CreatePlanItem(txCtx, &item); txErr != nil {
				return apperror.Integrity("failed to create plan item", txErr)
			}
		}
		result = *budget
		return nil
	})
	if err != nil {
		return BudgetResponse{}, err
	}
	return toBudgetResponse(result), nil
}

func (s *budgetService) Reject(ctx context.Context, id string) (BudgetResponse, error) {
	budgetID, err := uuid.Parse(id)
	if err != nil {
		return BudgetResponse{}, apperror.Validation("invalid budget id")
	}
	budget, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return BudgetResponse{}, apperror.NotFound("budget not found")
	}
	if budget.Status == model.BudgetApproved {
		return BudgetResponse{}, apperror.Conflict("budget was already approved")
	}
	budget.Status = model.BudgetRejected
	if err := s.budgetRepo.Update(ctx, budget); err != nil {
		return BudgetResponse{}, apperror.Integrity("failed to reject budget", err)
	}
	return toBudgetResponse(*budget), nil
}

func (s *budgetService) ListByPatient(ctx context.Context, patientID string) ([]BudgetResponse, error) {
	id, err := uuid.Parse(patientID)
	if err != nil {
		return nil, apperror.Validation("invalid patient id")
	}
	budgets, err := s.budgetRepo.ListByPatient(ctx, id)
	if err != nil {
		return nil, apperror.Integrity("failed to list budgets", err)
	}
	out := make([]BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	return out, nil
}

func (s *budgetService) CreatePlanItem(ctx context.Context, req PlanItemRequest) (PlanItemResponse, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return PlanItemResponse{}, apperror.Validation("invalid patient id")
	}
	if req.Procedure == "" {
		return PlanItemResponse{}, apperror.Validation("procedure is required")
	}
	item := model.PlanItem{
		PatientID:   patientID,
		Tooth:       req.Tooth,
		Procedure:   req.Procedure,
		AmountCents: money.ParseCents(req.Amount),
	}
	if err := s.budgetRepo.CreatePlanItem(ctx, &item); err != nil {
		return PlanItemResponse{}, apperror.Integrity("failed to create plan item", err)
	}
	return toPlanItemResponse(item), nil
}

func (s *budgetService) TogglePlanItemDone(ctx context.Context, id string) (PlanItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return PlanItemResponse{}, apperror.Validation("invalid plan item id")
	}
	item, err := s.budgetRepo.FindPlanItemByID(ctx, itemID)
	if err != nil {
		return PlanItemResponse{}, apperror.NotFound("plan item not found")
	}
	item.Done = !item.Done
	if item.Done {
		now := time.Now()
		item.DoneAt = &now
	} else {
		item.DoneAt = nil
	}
	if err := s.budgetRepo.UpdatePlanItem(ctx, item); err != nil {
		return PlanItemResponse{}, apperror.Integrity("failed to update plan item", err)
	}
	return toPlanItemResponse(*item), nil
}

func (s *budgetService) ListPlanItems(ctx context.Context, patientID string) ([]PlanItemResponse, error) {
	id, err := uuid.Parse(patientID)
	if err != nil {
		return nil, apperror.Validation("invalid patient id")
	}
	items, err := s.budgetRepo.ListPlanItemsByPatient(ctx, id)
	if err != nil {
		return nil, apperror.Integrity("failed to list plan items", err)
	}
	out := make([]PlanItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toPlanItemResponse(item))
	}
	return out, nil
}

func toBudgetResponse(b model.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID.String(),
		PatientID:   b.PatientID.String(),
		Description: b.Description,
		AmountCents: b.AmountCents,
		Amount:      money.FormatCents(b.AmountCents),
		Status:      b.Status,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

func toPlanItemResponse(item model.PlanItem) PlanItemResponse {
	resp := PlanItemResponse{
		ID:          item.ID.String(),
		PatientID:   item.PatientID.String(),
		Tooth:       item.Tooth,
		Procedure:   item.Procedure,
		AmountCents: item.AmountCents,
		Amount:      money.FormatCents(item.AmountCents),
		Done:        item.Done,
	}
	if item.BudgetID != nil {
		resp.BudgetID = item.BudgetID.String()
	}
	if item.DoneAt != nil {
		resp.DoneAt = item.DoneAt.Format(time.RFC3339)
	}
	return resp
}
