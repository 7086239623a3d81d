package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle state of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Valid reports whether the status is one of the known states
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// Product represents a tracked inventory item
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	SKU           string          `json:"sku" db:"sku"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	CategoryID    uuid.UUID       `json:"category_id" db:"category_id"`
	CategoryName  string          `json:"category_name" db:"category_name"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	ReorderLevel  int             `json:"reorder_level" db:"reorder_level"`
	Status        ProductStatus   `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// NeedsReorder reports whether the product is at or below its reorder level.
// The boundary case (stock equal to reorder level) counts as low stock.
func (p *Product) NeedsReorder() bool {
	return p.StockQuantity <= p.ReorderLevel
}

// IsInStock reports whether any stock remains
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}
