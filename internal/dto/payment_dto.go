package dto

import "github.com/shopspring/decimal"

// Payment kinds accepted by POST /v1/payments.
const (
	PaymentKindSale       = "sale"
	PaymentKindPurchase   = "purchase"
	PaymentKindSaleReturn = "sale_return"
)

type ApplyPaymentRequest struct {
	Kind   string          `json:"kind" validate:"required,oneof=sale purchase sale_return"`
	ID     string          `json:"id" validate:"required,uuid"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required,oneof=cash bank_transfer cheque card"`
	Notes  *string         `json:"notes"`
	// Foreign mirror fields — set when the parent transaction is in a foreign
	// currency. Amount stays in the local currency.
	AmountForeign *decimal.Decimal `json:"amount_foreign"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate"`
}
