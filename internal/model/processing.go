package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pricing models for processings. The rate is interpreted per model:
// a flat amount (fixed), an amount per unit (per_unit), a fraction of the
// item base total (percentage), or an amount per mm of product width
// (per_dimension).
const (
	PricingFixed        = "fixed"
	PricingPerUnit      = "per_unit"
	PricingPercentage   = "percentage"
	PricingPerDimension = "per_dimension"
)

// Processing is an optional finish or modification applied to a quote line
// item (stain color, custom cut, soft-close hardware). Immutable catalog
// reference data.
type Processing struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	PricingModel string    `gorm:"type:varchar(20);not null"`
	Rate         decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	// Categories are the product categories this processing may be applied to.
	Categories []string `gorm:"serializer:json;not null"`
	// RequiresOptions marks processings that need user-supplied configuration
	// (e.g. a paint color) before they can be costed.
	RequiresOptions bool `gorm:"not null;default:false"`
	Active          bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AppliesTo reports whether the processing is applicable to the given
// product category.
func (p Processing) AppliesTo(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}
