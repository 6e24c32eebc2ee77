package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStep records one action in a quote's approval history:
// submitted, approved, or rejected. The multi-step routing workflow itself is
// external; this table only keeps the audit trail behind the status machine.
type ApprovalStep struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuoteID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Action    string    `gorm:"type:varchar(20);not null"` // submitted | approved | rejected
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	Note      *string
	CreatedAt time.Time
}
