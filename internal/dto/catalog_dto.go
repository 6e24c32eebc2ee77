package dto

import "github.com/shopspring/decimal"

// ─── Products ────────────────────────────────────────────────────────────────

type DimensionsDTO struct {
	Width  decimal.Decimal `json:"width"  validate:"min=0"`
	Height decimal.Decimal `json:"height" validate:"min=0"`
	Depth  decimal.Decimal `json:"depth"  validate:"min=0"`
}

type CreateProductRequest struct {
	Code       string          `json:"code"       validate:"required"`
	Name       string          `json:"name"       validate:"required"`
	Category   string          `json:"category"   validate:"required"`
	BasePrice  decimal.Decimal `json:"base_price" validate:"required"`
	Dimensions *DimensionsDTO  `json:"dimensions"`
}

type UpdateProductRequest struct {
	Name       string           `json:"name"`
	Category   string           `json:"category"`
	BasePrice  *decimal.Decimal `json:"base_price"`
	Dimensions *DimensionsDTO   `json:"dimensions"`
}

type ProductResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	BasePrice  decimal.Decimal `json:"base_price"`
	Dimensions *DimensionsDTO  `json:"dimensions,omitempty"`
	Active     bool            `json:"active"`
}

type ProductFilter struct {
	Category string `form:"category"`
	Name     string `form:"name"`
	Active   string `form:"active"` // "false" | "all" | default active-only
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Processings ─────────────────────────────────────────────────────────────

type CreateProcessingRequest struct {
	Name            string          `json:"name"          validate:"required"`
	PricingModel    string          `json:"pricing_model" validate:"required,oneof=fixed per_unit percentage per_dimension"`
	Rate            decimal.Decimal `json:"rate"          validate:"required"`
	Categories      []string        `json:"categories"    validate:"required,min=1"`
	RequiresOptions bool            `json:"requires_options"`
}

type ProcessingResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	PricingModel    string          `json:"pricing_model"`
	Rate            decimal.Decimal `json:"rate"`
	Categories      []string        `json:"categories"`
	RequiresOptions bool            `json:"requires_options"`
	Active          bool            `json:"active"`
}

// ─── Rules ───────────────────────────────────────────────────────────────────

type CreateRuleRequest struct {
	Name        string   `json:"name"         validate:"required"`
	TriggerIDs  []string `json:"trigger_ids"  validate:"required,min=1,dive,uuid"`
	ExcludedIDs []string `json:"excluded_ids" validate:"required,min=1,dive,uuid"`
	Priority    int      `json:"priority"     validate:"min=0"`
}

type RuleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TriggerIDs  []string `json:"trigger_ids"`
	ExcludedIDs []string `json:"excluded_ids"`
	Priority    int      `json:"priority"`
}

// ─── Dependencies ────────────────────────────────────────────────────────────

type CreateDependencyRequest struct {
	ProductID         string `json:"product_id"          validate:"required,uuid"`
	RequiredProductID string `json:"required_product_id" validate:"required,uuid"`
	IsAutomatic       bool   `json:"is_automatic"`
	QuantityFormula   string `json:"quantity_formula"`
}

type DependencyResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	RequiredProductID string `json:"required_product_id"`
	IsAutomatic       bool   `json:"is_automatic"`
	QuantityFormula   string `json:"quantity_formula"`
}
