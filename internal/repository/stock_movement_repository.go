package repository

import (
	"context"
	"fmt"

	"inventory-api/internal/domain"

	"github.com/google/uuid"
)

// MovementFilter holds the composable listing predicates for stock
// movements. Nil values mean "no constraint".
type MovementFilter struct {
	ProductID    *uuid.UUID
	MovementType *domain.MovementType
	Page         int
	PageSize     int
}

// StockMovementRepository defines the interface for the append-only
// movement log. Movements are historical facts: there is deliberately no
// update or delete operation.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *domain.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*domain.StockMovement, int, error)
	CountForProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

type stockMovementRepository struct {
	db DBTX
}

// NewStockMovementRepository creates a new instance of StockMovementRepository
func NewStockMovementRepository(db DBTX) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

// Create appends a movement record using parameterized queries
func (r *stockMovementRepository) Create(ctx context.Context, movement *domain.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		movement.ID,
		movement.ProductID,
		movement.MovementType,
		movement.Quantity,
		movement.Notes,
		movement.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to create stock movement: %w", err)
	}

	return nil
}

// List retrieves movements most recent first, with optional filtering by
// product and movement type
func (r *stockMovementRepository) List(ctx context.Context, filter MovementFilter) ([]*domain.StockMovement, int, error) {
	whereParts := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.ProductID != nil {
		whereParts = append(whereParts, fmt.Sprintf("m.product_id = $%d", argIndex))
		args = append(args, *filter.ProductID)
		argIndex++
	}

	if filter.MovementType != nil {
		whereParts = append(whereParts, fmt.Sprintf("m.movement_type = $%d", argIndex))
		args = append(args, *filter.MovementType)
		argIndex++
	}

	whereClause := ""
	for i, part := range whereParts {
		if i == 0 {
			whereClause = "WHERE " + part
		} else {
			whereClause += " AND " + part
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stock_movements m %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count stock movements: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`
		SELECT m.id, m.product_id, p.sku AS product_sku, p.name AS product_name,
		       m.movement_type, m.quantity, m.notes, m.created_at
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		%s
		ORDER BY m.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	movements := []*domain.StockMovement{}
	for rows.Next() {
		movement := &domain.StockMovement{}
		err := rows.Scan(
			&movement.ID,
			&movement.ProductID,
			&movement.ProductSKU,
			&movement.ProductName,
			&movement.MovementType,
			&movement.Quantity,
			&movement.Notes,
			&movement.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, movement)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating stock movements: %w", err)
	}

	return movements, total, nil
}

// CountForProduct returns the number of movement records for a product
func (r *stockMovementRepository) CountForProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, productID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count movements for product: %w", err)
	}
	return count, nil
}
