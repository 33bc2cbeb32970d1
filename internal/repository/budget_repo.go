package repository

import (
	"context"
	"errors"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *model.Budget) error
	Update(ctx context.Context, budget *model.Budget) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Budget, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Budget, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Budget, error)

	CreatePlanItem(ctx context.Context, item *model.PlanItem) error
	UpdatePlanItem(ctx context.Context, item *model.PlanItem) error
	FindPlanItemByID(ctx context.Context, id uuid.UUID) (*model.PlanItem, error)
	FindPlanItemByBudget(ctx context.Context, budgetID uuid.UUID) (*model.PlanItem, error)
	ListPlanItemsByPatient(ctx context.Context, patientID uuid.UUID) ([]model.PlanItem, error)
}

type budgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	return GetDB(ctx, r.db).Create(budget).Error
}

func (r *budgetRepository) Update(ctx context.Context, budget *model.Budget) error {
	return GetDB(ctx, r.db).Save(budget).Error
}

func (r *budgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	var budget model.Budget
	if err := GetDB(ctx, r.db).First(&budget, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	var budget model.Budget
	if err := GetDB(ctx, r.db).Clauses(forUpdate()).First(&budget, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]model.Budget, error) {
	var budgets []model.Budget
	err := GetDB(ctx, r.db).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *budgetRepository) CreatePlanItem(ctx context.Context, item *model.PlanItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *budgetRepository) UpdatePlanItem(ctx context.Context, item *model.PlanItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *budgetRepository) FindPlanItemByID(ctx context.Context, id uuid.UUID) (*model.PlanItem, error) {
	var item model.PlanItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *budgetRepository) FindPlanItemByBudget(ctx context.Context, budgetID uuid.UUID) (*model.PlanItem, error) {
	var item model.PlanItem
	err := GetDB(ctx, r.db).First(&item, "budget_id = ?", budgetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *budgetRepository) ListPlanItemsByPatient(ctx context.Context, patientID uuid.UUID) ([]model.PlanItem, error) {
	var items []model.PlanItem
	err := GetDB(ctx, r.db).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
