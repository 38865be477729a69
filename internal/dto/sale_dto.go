package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

// InterCompanyLineRequest marks where the goods come from. ParentUnitPrice is
// only meaningful when IsFromParentCompany; BranchUnitPrice is what the branch
// charges the customer.
type InterCompanyLineRequest struct {
	ProductID           string           `json:"product_id" validate:"required,uuid"`
	Quantity            decimal.Decimal  `json:"quantity" validate:"required"`
	IsFromParentCompany bool             `json:"is_from_parent_company"`
	ParentUnitPrice     *decimal.Decimal `json:"parent_unit_price"`
	BranchUnitPrice     decimal.Decimal  `json:"branch_unit_price"`
}

type CreateInterCompanySaleRequest struct {
	CustomerID      string                    `json:"customer_id" validate:"required,uuid"`
	BranchCompanyID string                    `json:"branch_company_id" validate:"required,uuid"`
	ParentCompanyID string                    `json:"parent_company_id" validate:"required,uuid"`
	Lines           []InterCompanyLineRequest `json:"lines" validate:"required,min=1,dive"`
	Discount        decimal.Decimal           `json:"discount"`
}

type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type CreateSaleRequest struct {
	CompanyID  string            `json:"company_id" validate:"required,uuid"`
	CustomerID string            `json:"customer_id" validate:"required,uuid"`
	SaleType   string            `json:"sale_type" validate:"required,oneof=cash credit"`
	Lines      []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Discount   decimal.Decimal   `json:"discount"`
}

type SettleParentSaleRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required,oneof=cash bank_transfer cheque"`
}

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	CompanyID string `form:"company_id" validate:"omitempty,uuid"`
	Status    string `form:"status,default=all"`
	Page      int    `form:"page,default=1" validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type SaleLineResponse struct {
	ProductID           string           `json:"product_id"`
	Quantity            decimal.Decimal  `json:"quantity"`
	UnitPrice           decimal.Decimal  `json:"unit_price"`
	SubTotal            decimal.Decimal  `json:"sub_total"`
	IsFromParentCompany bool             `json:"is_from_parent_company"`
	ParentUnitPrice     *decimal.Decimal `json:"parent_unit_price,omitempty"`
	BranchUnitPrice     *decimal.Decimal `json:"branch_unit_price,omitempty"`
}

type SaleResponse struct {
	ID              string             `json:"id"`
	CompanyID       string             `json:"company_id"`
	CustomerID      *string            `json:"customer_id,omitempty"`
	BuyerCompanyID  *string            `json:"buyer_company_id,omitempty"`
	ParentSaleID    *string            `json:"parent_sale_id,omitempty"`
	InvoiceNumber   int64              `json:"invoice_number"`
	Status          string             `json:"status"`
	SaleType        string             `json:"sale_type"`
	Discount        decimal.Decimal    `json:"discount"`
	Total           decimal.Decimal    `json:"total"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	RemainingAmount decimal.Decimal    `json:"remaining_amount"`
	IsFullyPaid     bool               `json:"is_fully_paid"`
	Lines           []SaleLineResponse `json:"lines"`
	CreatedAt       string             `json:"created_at"`
}

// DraftSaleResponse is returned by draft creation: no stock or ledger effect
// has happened yet.
type DraftSaleResponse struct {
	CustomerSaleID string          `json:"customer_sale_id"`
	InvoiceNumber  int64           `json:"invoice_number"`
	Total          decimal.Decimal `json:"total"`
}

// ApproveSaleResponse carries both ledger entries created by an inter-company
// approval. ParentSale is nil when no line was parent-sourced.
type ApproveSaleResponse struct {
	CustomerSale SaleResponse  `json:"customer_sale"`
	ParentSale   *SaleResponse `json:"parent_sale,omitempty"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// PaymentStateResponse is the running-totals triple returned after any
// payment application or settlement.
type PaymentStateResponse struct {
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IsFullyPaid     bool            `json:"is_fully_paid"`
}
