package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductDependency is a directed catalog edge: adding the source product to
// a quote requires (or suggests) the target product.
//
// QuantityFormula is an arithmetic expression evaluated against the
// triggering item's quantity (variable "qty"). The default "1" means one unit
// regardless of the trigger quantity.
type ProductDependency struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID         uuid.UUID `gorm:"type:uuid;index;not null"`
	RequiredProductID uuid.UUID `gorm:"type:uuid;not null"`
	// IsAutomatic: true means the engine adds the required product without
	// user confirmation; false means it is only surfaced as a suggestion.
	IsAutomatic     bool   `gorm:"not null;default:false"`
	QuantityFormula string `gorm:"not null;default:'1'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
