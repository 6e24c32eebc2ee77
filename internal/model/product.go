package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dimensions holds the physical size of a catalog product in millimetres.
// All three axes are optional: stock panels carry no dimensions at all.
type Dimensions struct {
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Depth  decimal.Decimal `json:"depth"`
}

// Product is immutable catalog reference data: a cabinet, panel, or accessory
// that can be added to a quote as a line item.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"index;not null"`
	Category  string    `gorm:"index;not null"`
	BasePrice decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// Dimensions is nil for products without a physical size.
	Dimensions *Dimensions `gorm:"serializer:json"`
	Active     bool        `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
