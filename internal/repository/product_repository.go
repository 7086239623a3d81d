package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventory-api/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductSKUExists = errors.New("product with this SKU already exists")
)

const productColumns = `
	p.id, p.sku, p.name, p.description, p.category_id, c.name AS category_name,
	p.price, p.stock_quantity, p.reorder_level, p.status, p.created_at, p.updated_at`

// ProductFilter holds the composable listing predicates for products.
// Nil/zero values mean "no constraint"; all present filters are ANDed.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Status     *domain.ProductStatus
	Search     string
	LowStock   bool
	OrderBy    string
	Desc       bool
	Page       int
	PageSize   int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// FindByIDForUpdate locks the product row for the remainder of the
	// current transaction (SELECT ... FOR UPDATE). Only meaningful on a
	// repository bound to a transaction via TxRunner.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// UpdateStock sets the authoritative stock counter for a product
	UpdateStock(ctx context.Context, id uuid.UUID, stockQuantity int) error
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, category_id, price,
			stock_quantity, reorder_level, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.SKU,
		product.Name,
		product.Description,
		product.CategoryID,
		product.Price,
		product.StockQuantity,
		product.ReorderLevel,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductSKUExists
		}
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET sku = $2, name = $3, description = $4, category_id = $5, price = $6,
		    stock_quantity = $7, reorder_level = $8, status = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.SKU,
		product.Name,
		product.Description,
		product.CategoryID,
		product.Price,
		product.StockQuantity,
		product.ReorderLevel,
		product.Status,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductSKUExists
		}
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database. Its movement history is
// removed with it (ON DELETE CASCADE).
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, productColumns)

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByIDForUpdate retrieves a product and locks its row until the
// enclosing transaction commits or rolls back
func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
		FOR UPDATE OF p
	`, productColumns)

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdateStock sets the stock counter for a product
func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, stockQuantity int) error {
	query := `UPDATE products SET stock_quantity = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, stockQuantity)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// List retrieves products with optional filtering, search, sorting and
// pagination. All provided filters are combined with AND.
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]string{
		"name":           "p.name",
		"sku":            "p.sku",
		"price":          "p.price",
		"stock_quantity": "p.stock_quantity",
		"created_at":     "p.created_at",
	}

	orderBy, ok := validSortFields[filter.OrderBy]
	if !ok {
		orderBy = "p.created_at"
		filter.Desc = true // Default: most recent first
	}

	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}

	// Build the WHERE clause from the present filters
	whereParts := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.CategoryID != nil {
		whereParts = append(whereParts, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Status != nil {
		whereParts = append(whereParts, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		whereParts = append(whereParts, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.sku ILIKE $%d OR p.description ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.LowStock {
		whereParts = append(whereParts, "p.stock_quantity <= p.reorder_level")
	}

	whereClause := ""
	for i, part := range whereParts {
		if i == 0 {
			whereClause = "WHERE " + part
		} else {
			whereClause += " AND " + part
		}
	}

	// Count total matching products
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, orderBy, direction, argIndex, argIndex+1)

	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.SKU,
			&product.Name,
			&product.Description,
			&product.CategoryID,
			&product.CategoryName,
			&product.Price,
			&product.StockQuantity,
			&product.ReorderLevel,
			&product.Status,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) scanOne(row *sql.Row) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.CategoryName,
		&product.Price,
		&product.StockQuantity,
		&product.ReorderLevel,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	return product, nil
}
