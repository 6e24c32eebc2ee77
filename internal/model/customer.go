package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a local copy of a record from the external customer/contract
// directory. The two discount percentages are the terms the directory
// supplies; quotes freeze them at creation time.
type Customer struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// DirectoryID is the identifier in the external directory.
	DirectoryID      string `gorm:"uniqueIndex;not null"`
	Name             string `gorm:"not null"`
	Email            *string
	ContractDiscount decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CustomerDiscount decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	// SyncedAt is when the directory last confirmed these terms.
	SyncedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
