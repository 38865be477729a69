package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Return order states. COMPLETED is the only transition that restores stock;
// CANCELLED leaves stock untouched. Both are terminal.
const (
	ReturnOrderPending   = "pending"
	ReturnOrderCompleted = "completed"
	ReturnOrderCancelled = "cancelled"
)

// SaleReturn is created against an approved sale and carries its own
// total/paid/remaining triple, reconciled by ReturnPayment rows.
type SaleReturn struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;index;not null"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"` // original selling company

	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	IsFullyPaid     bool            `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Lines    []SaleReturnLine `gorm:"foreignKey:SaleReturnID"`
	Payments []ReturnPayment  `gorm:"foreignKey:SaleReturnID"`
	Order    *ReturnOrder     `gorm:"foreignKey:SaleReturnID"`
}

type SaleReturnLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleReturnID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SubTotal     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// ReturnOrder is the warehouse receiving leg gating when returned goods
// actually restore stock.
type ReturnOrder struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleReturnID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Status       string    `gorm:"not null;default:'pending'"`
	Notes        *string
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
