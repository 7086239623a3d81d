package service

import (
	"context"
	"fmt"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
)

// CategoryInput holds the writable category fields
type CategoryInput struct {
	Name        string
	Description string
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	Create(ctx context.Context, input CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context, filter repository.CategoryFilter) ([]*domain.Category, int, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// Create creates a new category
func (s *categoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	now := time.Now()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// Update changes the name and description of an existing category
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Description = input.Description
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists || err == repository.ErrCategoryNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// Delete removes a category. Deletion is restricted while products still
// reference the category; repository.ErrCategoryInUse is returned in that
// case and nothing changes.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

// GetByID retrieves a single category
func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// List retrieves categories matching the filter
func (s *categoryService) List(ctx context.Context, filter repository.CategoryFilter) ([]*domain.Category, int, error) {
	return s.categoryRepo.List(ctx, filter)
}
