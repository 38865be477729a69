package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase records procurement from a supplier. Total is always in the local
// currency; TotalForeign mirrors the supplier invoice when Currency is not the
// base currency, converted with the ExchangeRate recorded at creation time.
type Purchase struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	SupplierID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Currency     string          `gorm:"not null"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(14,6);not null;default:1"`

	Total         decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	TotalForeign  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	TotalExpenses decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`

	PaidAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	IsFullyPaid     bool            `gorm:"not null;default:false"`

	IsApproved bool `gorm:"not null;default:false"`
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Lines    []PurchaseLine            `gorm:"foreignKey:PurchaseID"`
	Expenses []PurchaseExpense         `gorm:"foreignKey:PurchaseID"`
	Receipts []SupplierPaymentReceipt  `gorm:"foreignKey:PurchaseID"`
	Supplier *Supplier                 `gorm:"foreignKey:SupplierID"`
}

type PurchaseLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(14,2);not null"` // local currency
	SubTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

type ExpenseCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// PurchaseExpense is a purchase-side cost (customs, freight, …) allocated
// across lines on approval. IsActualExpense=true means the expense creates a
// payable to a supplier and must name one; false means cost-allocation only,
// no liability.
type PurchaseExpense struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseID uuid.UUID  `gorm:"type:uuid;index;not null"`
	CategoryID uuid.UUID  `gorm:"type:uuid;index;not null"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`

	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency     string          `gorm:"not null"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(14,6);not null;default:1"`

	IsActualExpense bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
}
