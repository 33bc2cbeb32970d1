package service

import (
	"context"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind"` // income, expense, both (default)
}

type CategoryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Active bool   `json:"active"`
}

// --- Interface ---

type CategoryService interface {
	Create(ctx context.Context, req CategoryRequest) (CategoryResponse, error)
	ToggleActive(ctx context.Context, id string) (CategoryResponse, error)
	List(ctx context.Context, activeOnly bool) ([]CategoryResponse, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// --- Implementation ---

func (s *categoryService) Create(ctx context.Context, req CategoryRequest) (CategoryResponse, error) {
	if req.Name == "" {
		return CategoryResponse{}, apperror.Validation("name is required")
	}
	kind := req.Kind
	if kind == "" {
		kind = model.CategoryBoth
	}
	if kind != model.CategoryIncome && kind != model.CategoryExpense && kind != model.CategoryBoth {
		return CategoryResponse{}, apperror.Validation("kind must be income, expense or both")
	}
	// Names are unique; repeated creates resolve to the existing category.
	category, err := s.categoryRepo.FindOrCreateByName(ctx, req.Name, kind)
	if err != nil {
		return CategoryResponse{}, apperror.Integrity("failed to create category", err)
	}
	return toCategoryResponse(*category), nil
}

func (s *categoryService) ToggleActive(ctx context.Context, id string) (CategoryResponse, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return CategoryResponse{}, apperror.Validation("invalid category id")
	}
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return CategoryResponse{}, apperror.NotFound("category not found")
	}
	category.Active = !category.Active
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return CategoryResponse{}, apperror.Integrity("failed to toggle category", err)
	}
	return toCategoryResponse(*category), nil
}

func (s *categoryService) List(ctx context.Context, activeOnly bool) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, apperror.Integrity("failed to list categories", err)
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

func toCategoryResponse(c model.Category) CategoryResponse {
	return CategoryResponse{
		ID:     c.ID.String(),
		Name:   c.Name,
		Kind:   c.Kind,
		Active: c.Active,
	}
}
