package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// money rounds to the 2-digit money precision, half up.
func money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// unitCost rounds a landed unit cost to 4 fractional digits, half up.
func unitCost(d decimal.Decimal) decimal.Decimal { return d.Round(4) }
