package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry. Cost is the current landed unit cost — it is
// only mutated through purchase approval or the audited manual override, and
// every mutation appends a ProductCostLog row.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Unit        string    `gorm:"not null;default:'box'"`
	UnitsPerBox *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Cost        *decimal.Decimal `gorm:"type:decimal(14,4)"`
	// CompanyID is the creating company. Stock and price are per company —
	// see ProductStock.
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductStock is the per-(product, company) quantity-on-hand and sell price.
// Quantity is only mutated by approved sales, approved purchases, completed
// return orders, and audited manual adjustments — always inside the owning
// transaction.
type ProductStock struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_company"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_company"`
	Quantity  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// ProductCostLog records every cost mutation. Rows are immutable — never
// updated or deleted.
type ProductCostLog struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	OldCost    *decimal.Decimal `gorm:"type:decimal(14,4)"`
	NewCost    decimal.Decimal  `gorm:"type:decimal(14,4);not null"`
	PurchaseID *uuid.UUID       `gorm:"type:uuid;index"`
	UpdatedBy  string           `gorm:"not null"`
	Notes      *string
	CreatedAt  time.Time
}

// Stock movement types.
const (
	MovementSale             = "sale"
	MovementPurchase         = "purchase"
	MovementReturn           = "return"
	MovementManualAdjustment = "manual_adjustment"
)

// StockMovement records each stock change for a (product, company) pair.
// Quantity is signed: positive = in, negative = out.
type StockMovement struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type           string          `gorm:"not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	QuantityBefore decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Reason         string
	ReferenceID    *uuid.UUID `gorm:"type:uuid"` // sale, purchase or return order id
	CreatedAt      time.Time
}
