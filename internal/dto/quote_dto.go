package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateQuoteRequest struct {
	// CustomerID is the external directory id; the service resolves it to the
	// local customer record and freezes the discount terms onto the quote.
	CustomerID string `json:"customer_id" validate:"required"`
}

type AddItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Quantity  int     `json:"quantity"   validate:"required,min=1"`
	RoomID    *string `json:"room_id"    validate:"omitempty,uuid"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type ApplyProcessingRequest struct {
	ProcessingID string            `json:"processing_id" validate:"required,uuid"`
	Options      map[string]string `json:"options"`
}

type AddRoomRequest struct {
	Name          string   `json:"name"           validate:"required"`
	ProcessingIDs []string `json:"processing_ids" validate:"dive,uuid"`
}

type SetRoomProcessingsRequest struct {
	ProcessingIDs []string `json:"processing_ids" validate:"dive,uuid"`
}

type SetOrderDiscountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

type ApprovalActionRequest struct {
	Note *string `json:"note"`
}

type SendQuoteRequest struct {
	// Email overrides the customer's directory email when set.
	Email *string `json:"email" validate:"omitempty,email"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

// QuoteFilter is bound from query string of GET /v1/quotes.
type QuoteFilter struct {
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Status     string `form:"status"` // draft | pending_approval | approved | rejected | sent | accepted | all
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type QuoteListResponse struct {
	Data  []QuoteListItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type QuoteListItem struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	CustomerName     string          `json:"customer_name,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	FinalTotal       decimal.Decimal `json:"final_total"`
	RequiresApproval bool            `json:"requires_approval"`
	Status           string          `json:"status"`
	ItemCount        int             `json:"item_count"`
	CreatedAt        string          `json:"created_at"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AppliedProcessingResponse struct {
	ProcessingID    string            `json:"processing_id"`
	Name            string            `json:"name"`
	CalculatedPrice decimal.Decimal   `json:"calculated_price"`
	Options         map[string]string `json:"options,omitempty"`
	Pending         bool              `json:"pending"`
	SourceRoomID    *string           `json:"source_room_id,omitempty"`
}

type QuoteItemResponse struct {
	ID                 string                      `json:"id"`
	ProductID          string                      `json:"product_id"`
	ProductName        string                      `json:"product_name"`
	RoomID             *string                     `json:"room_id,omitempty"`
	Quantity           int                         `json:"quantity"`
	BasePrice          decimal.Decimal             `json:"base_price"`
	AppliedProcessings []AppliedProcessingResponse `json:"applied_processings"`
	TotalPrice         decimal.Decimal             `json:"total_price"`
}

type RoomResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ProcessingIDs []string `json:"processing_ids"`
}

// PendingConfigurationResponse flags an applied processing still waiting for
// user-supplied options; it contributes zero to totals until configured.
type PendingConfigurationResponse struct {
	ItemID         string `json:"item_id"`
	ProcessingID   string `json:"processing_id"`
	ProcessingName string `json:"processing_name"`
}

// DependencySuggestion is a non-automatic dependency surfaced to the user
// after an item was added; the client decides whether to add it.
type DependencySuggestion struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

type QuoteResponse struct {
	ID                string                         `json:"id"`
	CustomerID        string                         `json:"customer_id"`
	Items             []QuoteItemResponse            `json:"items"`
	Rooms             []RoomResponse                 `json:"rooms"`
	ContractDiscount  decimal.Decimal                `json:"contract_discount"`
	CustomerDiscount  decimal.Decimal                `json:"customer_discount"`
	OrderDiscount     decimal.Decimal                `json:"order_discount"`
	Subtotal          decimal.Decimal                `json:"subtotal"`
	TotalDiscount     decimal.Decimal                `json:"total_discount"`
	FinalTotal        decimal.Decimal                `json:"final_total"`
	RequiresApproval  bool                           `json:"requires_approval"`
	ApprovalThreshold decimal.Decimal                `json:"approval_threshold"`
	Status            string                         `json:"status"`
	Pending           []PendingConfigurationResponse `json:"pending_configurations,omitempty"`
	Suggestions       []DependencySuggestion         `json:"suggestions,omitempty"`
	CreatedAt         string                         `json:"created_at"`
}

// ApprovalStepResponse is one entry of a quote's approval audit trail.
type ApprovalStepResponse struct {
	ID        string  `json:"id"`
	Action    string  `json:"action"` // submitted | approved | rejected
	ActorID   string  `json:"actor_id"`
	Note      *string `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type AvailableProcessingResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	PricingModel    string          `json:"pricing_model"`
	Rate            decimal.Decimal `json:"rate"`
	RequiresOptions bool            `json:"requires_options"`
}
