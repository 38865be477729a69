package repository

import (
	"context"
	"time"

	"github.com/Aidanden/SIMS-sub007/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockRepository owns the per-(product, company) quantity counters and the
// stock movement ledger. Debit is a single conditional UPDATE so the stock
// check and the debit are atomic with respect to concurrent approvals.
type StockRepository interface {
	Find(ctx context.Context, productID, companyID uuid.UUID) (*model.ProductStock, error)
	Upsert(ctx context.Context, s *model.ProductStock) error
	QuantityTx(tx *gorm.DB, productID, companyID uuid.UUID) (decimal.Decimal, error)
	// DebitTx decrements quantity when at least qty is on hand. Returns false
	// (and no mutation) when stock is insufficient or no row exists.
	DebitTx(tx *gorm.DB, productID, companyID uuid.UUID, qty decimal.Decimal) (bool, error)
	// CreditTx increments quantity, creating the stock row when absent.
	CreditTx(tx *gorm.DB, productID, companyID uuid.UUID, qty decimal.Decimal) error
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error
	ListMovements(ctx context.Context, productID, companyID uuid.UUID) ([]model.StockMovement, error)
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) Find(ctx context.Context, productID, companyID uuid.UUID) (*model.ProductStock, error) {
	var s model.ProductStock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND company_id = ?", productID, companyID).
		First(&s).Error
	return &s, err
}

func (r *stockRepo) Upsert(ctx context.Context, s *model.ProductStock) error {
	var existing model.ProductStock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND company_id = ?", s.ProductID, s.CompanyID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(s).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&existing).
		Updates(map[string]interface{}{"quantity": s.Quantity, "price": s.Price}).Error
}

func (r *stockRepo) QuantityTx(tx *gorm.DB, productID, companyID uuid.UUID) (decimal.Decimal, error) {
	var s model.ProductStock
	err := tx.Where("product_id = ? AND company_id = ?", productID, companyID).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return s.Quantity, nil
}

func (r *stockRepo) DebitTx(tx *gorm.DB, productID, companyID uuid.UUID, qty decimal.Decimal) (bool, error) {
	res := tx.Model(&model.ProductStock{}).
		Where("product_id = ? AND company_id = ? AND quantity >= ?", productID, companyID, qty).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *stockRepo) CreditTx(tx *gorm.DB, productID, companyID uuid.UUID, qty decimal.Decimal) error {
	res := tx.Model(&model.ProductStock{}).
		Where("product_id = ? AND company_id = ?", productID, companyID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&model.ProductStock{
			ProductID: productID,
			CompanyID: companyID,
			Quantity:  qty,
			Price:     decimal.Zero,
		}).Error
	}
	return nil
}

func (r *stockRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockRepo) ListMovements(ctx context.Context, productID, companyID uuid.UUID) ([]model.StockMovement, error) {
	var moves []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND company_id = ?", productID, companyID).
		Order("created_at DESC").
		Find(&moves).Error
	return moves, err
}
