package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote status values. Transitions are validated by the quote service:
// draft → pending_approval → approved | rejected, and
// draft/approved → sent → accepted. The approval routing itself is external;
// only the status machine and the threshold decision live here.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusSent            = "sent"
	StatusAccepted        = "accepted"
)

// AppliedProcessing is a processing attached to a quote item, with the price
// it contributed at the time it was applied.
//
// SourceRoomID is set only when the entry was inherited from a room-level
// selection. Its presence is the sole discriminator the propagator uses to
// decide whether a room change replaces the entry; manually-added entries
// carry a nil SourceRoomID and are never touched by propagation.
type AppliedProcessing struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuoteItemID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"quote_item_id"`
	ProcessingID    uuid.UUID       `gorm:"type:uuid;not null" json:"processing_id"`
	CalculatedPrice decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"calculated_price"`
	// Options holds user-supplied configuration (e.g. {"color": "walnut"}).
	Options map[string]string `gorm:"serializer:json" json:"options,omitempty"`
	// Pending is true while the processing requires options that have not been
	// supplied yet; a pending entry contributes zero to the item total.
	Pending      bool       `gorm:"not null;default:false" json:"pending"`
	SourceRoomID *uuid.UUID `gorm:"type:uuid" json:"source_room_id,omitempty"`
}

// Inherited reports whether the entry came from a room-level selection.
func (ap AppliedProcessing) Inherited() bool { return ap.SourceRoomID != nil }

// QuoteItem is one priced product line inside a quote.
// Invariant: TotalPrice == BasePrice*Quantity + Σ AppliedProcessings[].CalculatedPrice.
type QuoteItem struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuoteID            uuid.UUID           `gorm:"type:uuid;index;not null" json:"quote_id"`
	ProductID          uuid.UUID           `gorm:"type:uuid;not null" json:"product_id"`
	RoomID             *uuid.UUID          `gorm:"type:uuid" json:"room_id,omitempty"`
	Quantity           int                 `gorm:"not null" json:"quantity"`
	BasePrice          decimal.Decimal     `gorm:"type:decimal(12,4);not null" json:"base_price"`
	AppliedProcessings []AppliedProcessing `gorm:"foreignKey:QuoteItemID;constraint:OnDelete:CASCADE" json:"applied_processings"`
	TotalPrice         decimal.Decimal     `gorm:"type:decimal(12,4);not null" json:"total_price"`
}

// Room is a grouping inside a quote (e.g. "Kitchen", "Pantry") whose selected
// processing ids are auto-applied to every item created while assigned to it.
// Rooms are not priced themselves.
type Room struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuoteID       uuid.UUID   `gorm:"type:uuid;index;not null" json:"quote_id"`
	Name          string      `gorm:"not null" json:"name"`
	ProcessingIDs []uuid.UUID `gorm:"serializer:json" json:"processing_ids"`
}

// Quote is the aggregate root: a priced, discountable offer for one customer.
//
// ContractDiscount and CustomerDiscount are percentages frozen at quote
// creation from the customer directory; OrderDiscount is a flat currency
// amount editable at any time. Subtotal, TotalDiscount, FinalTotal and
// RequiresApproval are derived by the engine on every mutation.
type Quote struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CustomerID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"customer_id"`
	Items             []QuoteItem     `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
	Rooms             []Room          `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"rooms"`
	ContractDiscount  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"contract_discount"`
	CustomerDiscount  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"customer_discount"`
	OrderDiscount     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"order_discount"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"subtotal"`
	TotalDiscount     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"total_discount"`
	FinalTotal        decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"final_total"`
	RequiresApproval  bool            `gorm:"not null;default:false" json:"requires_approval"`
	ApprovalThreshold decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"approval_threshold"`
	Status            string          `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Item returns a pointer to the item with the given id, or nil.
func (q *Quote) Item(itemID uuid.UUID) *QuoteItem {
	for i := range q.Items {
		if q.Items[i].ID == itemID {
			return &q.Items[i]
		}
	}
	return nil
}

// Room returns a pointer to the room with the given id, or nil.
func (q *Quote) Room(roomID uuid.UUID) *Room {
	for i := range q.Rooms {
		if q.Rooms[i].ID == roomID {
			return &q.Rooms[i]
		}
	}
	return nil
}
