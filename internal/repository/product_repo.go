package repository

import (
	"context"

	"github.com/Aidanden/SIMS-sub007/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, companyID *uuid.UUID, page, limit int) ([]model.Product, int64, error)
	UpdateCostTx(tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error
	CreateCostLogTx(tx *gorm.DB, log *model.ProductCostLog) error
	ListCostLogs(ctx context.Context, productID uuid.UUID) ([]model.ProductCostLog, error)
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, companyID *uuid.UUID, page, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("active = true")
	if companyID != nil {
		q = q.Where("company_id = ?", *companyID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("name").Offset((page - 1) * limit).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) UpdateCostTx(tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("cost", cost).Error
}

func (r *productRepo) CreateCostLogTx(tx *gorm.DB, log *model.ProductCostLog) error {
	return tx.Create(log).Error
}

func (r *productRepo) ListCostLogs(ctx context.Context, productID uuid.UUID) ([]model.ProductCostLog, error) {
	var logs []model.ProductCostLog
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
