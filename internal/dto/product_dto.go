package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	SKU         string           `json:"sku" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Unit        string           `json:"unit" validate:"required"`
	UnitsPerBox *decimal.Decimal `json:"units_per_box"`
	CompanyID   string           `json:"company_id" validate:"required,uuid"`
	// Optional initial per-company stock/price row for the creating company.
	InitialQuantity *decimal.Decimal `json:"initial_quantity"`
	Price           *decimal.Decimal `json:"price"`
}

// UpdateCostRequest is the manual override path — always audit-logged.
type UpdateCostRequest struct {
	NewCost    decimal.Decimal `json:"new_cost" validate:"required"`
	PurchaseID *string         `json:"purchase_id" validate:"omitempty,uuid"`
	Notes      *string         `json:"notes"`
}

type AdjustStockRequest struct {
	CompanyID string          `json:"company_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"` // signed delta
	Reason    string          `json:"reason" validate:"required,min=5"`
}

type ProductFilter struct {
	CompanyID string `form:"company_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1" validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string           `json:"id"`
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Unit        string           `json:"unit"`
	UnitsPerBox *decimal.Decimal `json:"units_per_box,omitempty"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	CompanyID   string           `json:"company_id"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type CostLogResponse struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"product_id"`
	OldCost    *decimal.Decimal `json:"old_cost,omitempty"`
	NewCost    decimal.Decimal  `json:"new_cost"`
	PurchaseID *string          `json:"purchase_id,omitempty"`
	UpdatedBy  string           `json:"updated_by"`
	Notes      *string          `json:"notes,omitempty"`
	CreatedAt  string           `json:"created_at"`
}

type UpdateCostResponse struct {
	Product       ProductResponse `json:"product"`
	AuditLogEntry CostLogResponse `json:"audit_log_entry"`
}

// StockLookupResponse is the public, cacheable stock/price read.
type StockLookupResponse struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	CompanyID string          `json:"company_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// StockMovementResponse is one row of the append-only stock audit ledger.
type StockMovementResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	CompanyID      string          `json:"company_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reason         string          `json:"reason"`
	ReferenceID    *string         `json:"reference_id,omitempty"`
	CreatedAt      string          `json:"created_at"`
}
