package model

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingRule is a declarative mutual-exclusion constraint: when any
// trigger processing is already applied to an item, every excluded processing
// is removed from that item's availability. Rules evaluate in ascending
// Priority order and exclusions only accumulate within one resolution pass.
type ProcessingRule struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string      `gorm:"not null"`
	TriggerIDs  []uuid.UUID `gorm:"serializer:json;not null"`
	ExcludedIDs []uuid.UUID `gorm:"serializer:json;not null"`
	Priority    int         `gorm:"not null;default:100"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Triggered reports whether any trigger id is present in the applied set.
func (r ProcessingRule) Triggered(applied map[uuid.UUID]bool) bool {
	for _, id := range r.TriggerIDs {
		if applied[id] {
			return true
		}
	}
	return false
}
