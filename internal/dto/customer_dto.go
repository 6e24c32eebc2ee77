package dto

import "github.com/shopspring/decimal"

type CustomerResponse struct {
	ID               string          `json:"id"`
	DirectoryID      string          `json:"directory_id"`
	Name             string          `json:"name"`
	Email            *string         `json:"email,omitempty"`
	ContractDiscount decimal.Decimal `json:"contract_discount"`
	CustomerDiscount decimal.Decimal `json:"customer_discount"`
	SyncedAt         string          `json:"synced_at"`
}

type CustomerFilter struct {
	Name  string `form:"name"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
