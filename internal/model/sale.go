package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale lifecycle. Draft sales carry no stock or ledger effect; only the
// approval operation transitions status and debits stock.
const (
	SaleStatusDraft    = "draft"
	SaleStatusApproved = "approved"
	SaleStatusRejected = "rejected"
)

const (
	SaleTypeCash   = "cash"
	SaleTypeCredit = "credit"
)

// Sale is either a customer-facing sale (CustomerID set) or the internal
// parent→branch sale materialized on inter-company approval (BuyerCompanyID
// set). Invariant: RemainingAmount = Total − PaidAmount and
// IsFullyPaid ⇔ RemainingAmount ≤ 0.
type Sale struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID  `gorm:"type:uuid;index;not null"` // selling company
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	BuyerCompanyID *uuid.UUID `gorm:"type:uuid;index"`
	// ParentSaleID links a customer-facing inter-company sale to the internal
	// parent→branch sale created on approval.
	ParentSaleID  *uuid.UUID `gorm:"type:uuid;index"`
	InvoiceNumber int64      `gorm:"uniqueIndex;not null"`
	Status        string     `gorm:"not null;default:'draft'"`
	SaleType      string     `gorm:"not null;default:'cash'"`

	Discount        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	IsFullyPaid     bool            `gorm:"not null;default:false"`

	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Lines    []SaleLine    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

// SaleLine carries the inter-company pricing pair: ParentUnitPrice is what the
// parent charges the branch (only meaningful when IsFromParentCompany),
// BranchUnitPrice is what the branch charges the customer.
type SaleLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SubTotal  decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	IsFromParentCompany bool             `gorm:"not null;default:false"`
	ParentUnitPrice     *decimal.Decimal `gorm:"type:decimal(14,2)"`
	BranchUnitPrice     *decimal.Decimal `gorm:"type:decimal(14,2)"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
