package domain

import (
	"time"

	"github.com/google/uuid"
)

// MovementType describes the direction of a stock movement
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
)

// Valid reports whether the movement type is one of the known kinds
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable audit record of a stock change event.
// Quantity is always a positive magnitude; MovementType carries the
// direction. Movements are never updated or deleted.
type StockMovement struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	ProductID    uuid.UUID    `json:"product_id" db:"product_id"`
	ProductSKU   string       `json:"product_sku" db:"product_sku"`
	ProductName  string       `json:"product_name" db:"product_name"`
	MovementType MovementType `json:"movement_type" db:"movement_type"`
	Quantity     int          `json:"quantity" db:"quantity"`
	Notes        string       `json:"notes" db:"notes"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
