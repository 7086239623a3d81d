package service

import (
	"context"
	"errors"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidMovementType = errors.New("movement type must be one of: in, out, adjustment")
)

// StockService defines the interface for stock adjustment logic. Every
// adjustment runs in a single database transaction: the product row is
// locked, the counter is updated and a movement record is appended, or
// nothing happens at all.
type StockService interface {
	// StockIn increments the product stock and records an "in" movement
	StockIn(ctx context.Context, productID uuid.UUID, quantity int, notes string) (*domain.Product, error)
	// StockOut decrements the product stock and records an "out" movement.
	// Returns ErrInsufficientStock, with no effect, if the decrement would
	// drive the counter below zero.
	StockOut(ctx context.Context, productID uuid.UUID, quantity int, notes string) (*domain.Product, error)
	// RecordMovement applies a movement of any type: "in" adds, "out"
	// subtracts, "adjustment" sets the absolute stock level to quantity.
	RecordMovement(ctx context.Context, productID uuid.UUID, movementType domain.MovementType, quantity int, notes string) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*domain.StockMovement, int, error)
	// ListLowStock returns products whose stock is at or below their
	// reorder level. The predicate is recomputed on every read.
	ListLowStock(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error)
}

type stockService struct {
	txRunner     repository.TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

// NewStockService creates a new instance of StockService
func NewStockService(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) StockService {
	return &stockService{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// StockIn increments the product stock and records an "in" movement
func (s *stockService) StockIn(ctx context.Context, productID uuid.UUID, quantity int, notes string) (*domain.Product, error) {
	return s.adjust(ctx, productID, domain.MovementTypeIn, quantity, notes)
}

// StockOut decrements the product stock and records an "out" movement
func (s *stockService) StockOut(ctx context.Context, productID uuid.UUID, quantity int, notes string) (*domain.Product, error) {
	return s.adjust(ctx, productID, domain.MovementTypeOut, quantity, notes)
}

// adjust performs the locked read-modify-write plus movement append for a
// single product inside one transaction
func (s *stockService) adjust(ctx context.Context, productID uuid.UUID, movementType domain.MovementType, quantity int, notes string) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var product *domain.Product
	err := s.txRunner.Run(ctx, func(products repository.ProductRepository, movements repository.StockMovementRepository) error {
		// Lock the row so concurrent adjustments of the same product
		// serialize; two concurrent stock-outs must not both observe
		// sufficient stock.
		p, err := products.FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		newQuantity, err := applyMovement(p.StockQuantity, movementType, quantity)
		if err != nil {
			return err
		}

		if err := products.UpdateStock(ctx, p.ID, newQuantity); err != nil {
			return err
		}

		now := time.Now()
		movement := &domain.StockMovement{
			ID:           uuid.New(),
			ProductID:    p.ID,
			MovementType: movementType,
			Quantity:     quantity,
			Notes:        notes,
			CreatedAt:    now,
		}
		if err := movements.Create(ctx, movement); err != nil {
			return err
		}

		p.StockQuantity = newQuantity
		p.UpdatedAt = now
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// RecordMovement applies a movement of any type and returns the appended
// audit record
func (s *stockService) RecordMovement(ctx context.Context, productID uuid.UUID, movementType domain.MovementType, quantity int, notes string) (*domain.StockMovement, error) {
	if !movementType.Valid() {
		return nil, ErrInvalidMovementType
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var movement *domain.StockMovement
	err := s.txRunner.Run(ctx, func(products repository.ProductRepository, movements repository.StockMovementRepository) error {
		p, err := products.FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		newQuantity, err := applyMovement(p.StockQuantity, movementType, quantity)
		if err != nil {
			return err
		}

		if err := products.UpdateStock(ctx, p.ID, newQuantity); err != nil {
			return err
		}

		movement = &domain.StockMovement{
			ID:           uuid.New(),
			ProductID:    p.ID,
			ProductSKU:   p.SKU,
			ProductName:  p.Name,
			MovementType: movementType,
			Quantity:     quantity,
			Notes:        notes,
			CreatedAt:    time.Now(),
		}
		return movements.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// applyMovement computes the new stock counter for a movement. Quantity is
// a positive magnitude; the movement type carries the direction.
func applyMovement(current int, movementType domain.MovementType, quantity int) (int, error) {
	switch movementType {
	case domain.MovementTypeIn:
		return current + quantity, nil
	case domain.MovementTypeOut:
		if quantity > current {
			return 0, ErrInsufficientStock
		}
		return current - quantity, nil
	case domain.MovementTypeAdjustment:
		return quantity, nil
	}
	return 0, ErrInvalidMovementType
}

// ListMovements retrieves movement records matching the filter
func (s *stockService) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*domain.StockMovement, int, error) {
	return s.movementRepo.List(ctx, filter)
}

// ListLowStock retrieves products at or below their reorder level
func (s *stockService) ListLowStock(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, repository.ProductFilter{
		LowStock: true,
		Page:     page,
		PageSize: pageSize,
	})
}
