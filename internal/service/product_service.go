package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidStatus = errors.New("status must be one of: active, inactive, discontinued")
	ErrInvalidPrice  = errors.New("price must be greater than zero")
)

// ProductInput holds the writable product fields
type ProductInput struct {
	SKU           string
	Name          string
	Description   string
	CategoryID    uuid.UUID
	Price         decimal.Decimal
	StockQuantity int
	ReorderLevel  int
	Status        domain.ProductStatus
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func validateProductInput(input ProductInput) error {
	if !input.Status.Valid() {
		return ErrInvalidStatus
	}
	if !input.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

// Create creates a new product. The category must exist; duplicate SKUs
// are rejected.
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Status == "" {
		input.Status = domain.ProductStatusActive
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New(),
		SKU:           input.SKU,
		Name:          input.Name,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		ReorderLevel:  input.ReorderLevel,
		Status:        input.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if err == repository.ErrProductSKUExists || err == repository.ErrCategoryNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// Re-read to pick up the joined category name
	return s.productRepo.FindByID(ctx, product.ID)
}

// Update replaces the writable fields of an existing product
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.SKU = input.SKU
	product.Name = input.Name
	product.Description = input.Description
	product.CategoryID = input.CategoryID
	product.Price = input.Price
	product.StockQuantity = input.StockQuantity
	product.ReorderLevel = input.ReorderLevel
	product.Status = input.Status
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if err == repository.ErrProductSKUExists || err == repository.ErrCategoryNotFound || err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.productRepo.FindByID(ctx, id)
}

// Delete removes a product along with its movement history
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetByID retrieves a single product
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves products matching the filter
func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, filter)
}
