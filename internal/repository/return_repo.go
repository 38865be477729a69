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

type ReturnRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, r *model.SaleReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SaleReturn, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*model.ReturnOrder, error)
	FindByOrderTx(tx *gorm.DB, orderID uuid.UUID) (*model.SaleReturn, error)
	// FindForUpdateTx locks the row for in-transaction totals arithmetic.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SaleReturn, error)
	// TransitionOrderStatusTx moves the warehouse order only out of the
	// expected state; false means another caller already transitioned it.
	TransitionOrderStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, notes *string, completedAt *time.Time) (bool, error)
	UpdateTotalsTx(tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error
	CreatePaymentTx(tx *gorm.DB, p *model.ReturnPayment) error
	DB() *gorm.DB
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) ReturnRepository { return &returnRepo{db: db} }

func (r *returnRepo) DB() *gorm.DB { return r.db }

func (r *returnRepo) CreateTx(ctx context.Context, tx *gorm.DB, ret *model.SaleReturn) error {
	return tx.WithContext(ctx).Create(ret).Error
}

func (r *returnRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SaleReturn, error) {
	var ret model.SaleReturn
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Payments").Preload("Order").
		First(&ret, id).Error
	return &ret, err
}

func (r *returnRepo) FindOrderByID(ctx context.Context, id uuid.UUID) (*model.ReturnOrder, error) {
	var o model.ReturnOrder
	err := r.db.WithContext(ctx).First(&o, id).Error
	return &o, err
}

func (r *returnRepo) FindByOrderTx(tx *gorm.DB, orderID uuid.UUID) (*model.SaleReturn, error) {
	var o model.ReturnOrder
	if err := tx.First(&o, orderID).Error; err != nil {
		return nil, err
	}
	var ret model.SaleReturn
	err := tx.Preload("Lines").First(&ret, o.SaleReturnID).Error
	return &ret, err
}

func (r *returnRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SaleReturn, error) {
	var ret model.SaleReturn
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ret, id).Error
	return &ret, err
}

func (r *returnRepo) TransitionOrderStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, notes *string, completedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to, "updated_at": time.Now()}
	if notes != nil {
		updates["notes"] = *notes
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := tx.Model(&model.ReturnOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *returnRepo) UpdateTotalsTx(tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error {
	return tx.Model(&model.SaleReturn{}).Where("id = ?", id).Updates(map[string]interface{}{
		"paid_amount":      paid,
		"remaining_amount": remaining,
		"is_fully_paid":    fullyPaid,
	}).Error
}

func (r *returnRepo) CreatePaymentTx(tx *gorm.DB, p *model.ReturnPayment) error {
	return tx.Create(p).Error
}
