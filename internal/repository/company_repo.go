package repository

import (
	"context"

	"github.com/Aidanden/SIMS-sub007/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *companyRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := tx.First(&c, id).Error
	return &c, err
}

func (r *companyRepo) List(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := r.db.WithContext(ctx).Order("created_at").Find(&companies).Error
	return companies, err
}
