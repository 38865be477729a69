package dto

import "github.com/shopspring/decimal"

type ReturnLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

type CreateReturnRequest struct {
	SaleID string              `json:"sale_id" validate:"required,uuid"`
	Lines  []ReturnLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type CompleteReturnOrderRequest struct {
	Notes *string `json:"notes"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ReturnLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SubTotal  decimal.Decimal `json:"sub_total"`
}

type ReturnResponse struct {
	ID              string               `json:"id"`
	SaleID          string               `json:"sale_id"`
	CompanyID       string               `json:"company_id"`
	Total           decimal.Decimal      `json:"total"`
	PaidAmount      decimal.Decimal      `json:"paid_amount"`
	RemainingAmount decimal.Decimal      `json:"remaining_amount"`
	IsFullyPaid     bool                 `json:"is_fully_paid"`
	OrderID         string               `json:"return_order_id"`
	OrderStatus     string               `json:"return_order_status"`
	Lines           []ReturnLineResponse `json:"lines"`
	CreatedAt       string               `json:"created_at"`
}

// StockRestoredItem reports one stock restoration performed by completing a
// return order.
type StockRestoredItem struct {
	ProductID string          `json:"product_id"`
	CompanyID string          `json:"company_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type ReturnOrderStateResponse struct {
	Status        string              `json:"status"`
	StockRestored []StockRestoredItem `json:"stock_restored,omitempty"`
}
