package repository

import (
	"context"
	"time"

	"github.com/Aidanden/SIMS-sub007/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseFilter struct {
	CompanyID *uuid.UUID
	Approved  *bool
	Page      int
	Limit     int
}

type PurchaseRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	// FindForUpdateTx locks the row for in-transaction totals arithmetic.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	// MarkApprovedTx flips is_approved only when it is still false — the
	// compare-and-swap guard against double approval.
	MarkApprovedTx(tx *gorm.DB, id uuid.UUID, totalExpenses decimal.Decimal, approvedAt time.Time) (bool, error)
	UpdateTotalsTx(tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error
	CreateExpenseTx(tx *gorm.DB, e *model.PurchaseExpense) error
	CreateReceiptTx(tx *gorm.DB, rcpt *model.SupplierPaymentReceipt) error
	CreateExpenseCategory(ctx context.Context, c *model.ExpenseCategory) error
	List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error)
	DB() *gorm.DB
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) DB() *gorm.DB { return r.db }

func (r *purchaseRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Purchase) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Expenses").Preload("Receipts").
		First(&p, id).Error
	return &p, err
}

func (r *purchaseRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := tx.Preload("Lines").Preload("Expenses").First(&p, id).Error
	return &p, err
}

func (r *purchaseRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *purchaseRepo) MarkApprovedTx(tx *gorm.DB, id uuid.UUID, totalExpenses decimal.Decimal, approvedAt time.Time) (bool, error) {
	res := tx.Model(&model.Purchase{}).
		Where("id = ? AND is_approved = false", id).
		Updates(map[string]interface{}{
			"is_approved":    true,
			"approved_at":    approvedAt,
			"total_expenses": totalExpenses,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *purchaseRepo) UpdateTotalsTx(tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error {
	return tx.Model(&model.Purchase{}).Where("id = ?", id).Updates(map[string]interface{}{
		"paid_amount":      paid,
		"remaining_amount": remaining,
		"is_fully_paid":    fullyPaid,
	}).Error
}

func (r *purchaseRepo) CreateExpenseTx(tx *gorm.DB, e *model.PurchaseExpense) error {
	return tx.Create(e).Error
}

func (r *purchaseRepo) CreateReceiptTx(tx *gorm.DB, rcpt *model.SupplierPaymentReceipt) error {
	return tx.Create(rcpt).Error
}

func (r *purchaseRepo) CreateExpenseCategory(ctx context.Context, c *model.ExpenseCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *purchaseRepo) List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Purchase{})
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Approved != nil {
		q = q.Where("is_approved = ?", *filter.Approved)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Lines").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&purchases).Error
	return purchases, total, err
}
