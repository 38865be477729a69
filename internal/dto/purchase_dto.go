package dto

import "github.com/shopspring/decimal"

type PurchaseLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"` // in the purchase currency
}

// PurchaseExpenseRequest: actual expenses create a payable and must name a
// supplier; allocation-only expenses must not.
type PurchaseExpenseRequest struct {
	CategoryID      string          `json:"category_id" validate:"required,uuid"`
	SupplierID      *string         `json:"supplier_id" validate:"omitempty,uuid"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Currency        string          `json:"currency" validate:"required,len=3"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	IsActualExpense bool            `json:"is_actual_expense"`
}

type CreatePurchaseRequest struct {
	CompanyID    string                   `json:"company_id" validate:"required,uuid"`
	SupplierID   string                   `json:"supplier_id" validate:"required,uuid"`
	Currency     string                   `json:"currency" validate:"required,len=3"`
	ExchangeRate decimal.Decimal          `json:"exchange_rate"`
	Lines        []PurchaseLineRequest    `json:"lines" validate:"required,min=1,dive"`
	Expenses     []PurchaseExpenseRequest `json:"expenses" validate:"omitempty,dive"`
}

// ApprovePurchaseRequest may carry additional expenses submitted at approval
// time; they are persisted and allocated together with the stored ones.
type ApprovePurchaseRequest struct {
	Expenses []PurchaseExpenseRequest `json:"expenses" validate:"omitempty,dive"`
}

type PurchaseFilter struct {
	CompanyID string `form:"company_id" validate:"omitempty,uuid"`
	Approved  string `form:"approved"` // "", "true", "false"
	Page      int    `form:"page,default=1" validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type PurchaseLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SubTotal  decimal.Decimal `json:"sub_total"`
}

type PurchaseResponse struct {
	ID              string                 `json:"id"`
	CompanyID       string                 `json:"company_id"`
	SupplierID      string                 `json:"supplier_id"`
	Currency        string                 `json:"currency"`
	ExchangeRate    decimal.Decimal        `json:"exchange_rate"`
	Total           decimal.Decimal        `json:"total"`
	TotalForeign    *decimal.Decimal       `json:"total_foreign,omitempty"`
	TotalExpenses   decimal.Decimal        `json:"total_expenses"`
	PaidAmount      decimal.Decimal        `json:"paid_amount"`
	RemainingAmount decimal.Decimal        `json:"remaining_amount"`
	IsFullyPaid     bool                   `json:"is_fully_paid"`
	IsApproved      bool                   `json:"is_approved"`
	Lines           []PurchaseLineResponse `json:"lines"`
	CreatedAt       string                 `json:"created_at"`
}

// ProductCostResponse reports one landed-cost mutation from an approval.
type ProductCostResponse struct {
	ProductID string           `json:"product_id"`
	OldCost   *decimal.Decimal `json:"old_cost,omitempty"`
	NewCost   decimal.Decimal  `json:"new_cost"`
}

type ApprovePurchaseResponse struct {
	Purchase     PurchaseResponse      `json:"purchase"`
	ProductCosts []ProductCostResponse `json:"product_costs"`
}

type PurchaseListResponse struct {
	Data  []PurchaseResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
