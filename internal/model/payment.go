package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment rows are append-only. Only the running paid/remaining totals on the
// parent record change when a payment is applied, never historical rows.

type SalePayment struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Method string          `gorm:"not null"`
	// Foreign-currency mirror, recorded when the parent transaction is in a
	// foreign currency.
	AmountForeign *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ExchangeRate  *decimal.Decimal `gorm:"type:decimal(14,6)"`
	Notes         *string
	CreatedAt     time.Time
}

type SupplierPaymentReceipt struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Method     string          `gorm:"not null"`
	AmountForeign *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ExchangeRate  *decimal.Decimal `gorm:"type:decimal(14,6)"`
	Notes         *string
	CreatedAt     time.Time
}

type ReturnPayment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleReturnID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Method       string          `gorm:"not null"`
	Notes        *string
	CreatedAt    time.Time
}
