package infra

import (
	"fmt"

	"github.com/Aidanden/SIMS-sub007/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (sequences, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates or updates the schema. Safe to re-run.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Company{},
		&model.Customer{},
		&model.Supplier{},
		&model.Product{},
		&model.ProductStock{},
		&model.ProductCostLog{},
		&model.StockMovement{},
		&model.Sale{},
		&model.SaleLine{},
		&model.SalePayment{},
		&model.Purchase{},
		&model.PurchaseLine{},
		&model.ExpenseCategory{},
		&model.PurchaseExpense{},
		&model.SupplierPaymentReceipt{},
		&model.SaleReturn{},
		&model.SaleReturnLine{},
		&model.ReturnPayment{},
		&model.ReturnOrder{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Gap-free-enough invoice numbering; allocated inside the approval/create
		// transaction so concurrent writers never collide.
		`CREATE SEQUENCE IF NOT EXISTS sales_invoice_number_seq START 1`,
		// Movement history is almost always read per product+company, newest first.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_stock_movements_product_company') THEN
		    CREATE INDEX idx_stock_movements_product_company
		        ON stock_movements (product_id, company_id, created_at DESC);
		  END IF;
		END $$`,
		// Pending return orders are the warehouse work queue.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_return_orders_pending') THEN
		    CREATE INDEX idx_return_orders_pending
		        ON return_orders (created_at)
		        WHERE status = 'pending';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
