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

// SaleFilter narrows sale listings.
type SaleFilter struct {
	CompanyID *uuid.UUID
	Status    string
	Page      int
	Limit     int
}

type SaleRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	// FindForUpdateTx takes a row lock so paid/remaining arithmetic happens
	// against the committed state, not a stale pre-transaction read.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	// NextInvoiceNumber draws from a PostgreSQL sequence for atomic numbering.
	NextInvoiceNumberTx(ctx context.Context, tx *gorm.DB) (int64, error)
	// TransitionStatusTx is the draft→approved compare-and-swap: it updates
	// only when the current status matches from, and reports whether a row
	// changed. The caller treats false as a state conflict.
	TransitionStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, approvedAt *time.Time) (bool, error)
	UpdateTotalsTx(tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error
	SetSaleTypeTx(tx *gorm.DB, id uuid.UUID, saleType string) error
	SetParentSaleTx(tx *gorm.DB, id, parentSaleID uuid.UUID) error
	CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Lines").Preload("Payments").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Preload("Lines").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *saleRepo) NextInvoiceNumberTx(ctx context.Context, tx *gorm.DB) (int64, error) {
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('sales_invoice_number_seq')").Scan(&num).Error
	return num, err
}

func (r *saleRepo) TransitionStatusTx(tx *gorm.DB, id uuid.UUID, from, to string, approvedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to, "updated_at": time.Now()}
	if approvedAt != nil {
		updates["approved_at"] = *approvedAt
	}
	res := tx.Model(&model.Sale{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *saleRepo) UpdateTotalsTx(tx *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Updates(map[string]interface{}{
		"paid_amount":      paid,
		"remaining_amount": remaining,
		"is_fully_paid":    fullyPaid,
	}).Error
}

func (r *saleRepo) SetSaleTypeTx(tx *gorm.DB, id uuid.UUID, saleType string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("sale_type", saleType).Error
}

func (r *saleRepo) SetParentSaleTx(tx *gorm.DB, id, parentSaleID uuid.UUID) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("parent_sale_id", parentSaleID).Error
}

func (r *saleRepo) CreatePaymentTx(tx *gorm.DB, p *model.SalePayment) error {
	return tx.Create(p).Error
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Lines").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}
