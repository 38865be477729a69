package service

import (
	"context"
	"time"

	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/ledger"
	"github.com/Aidanden/SIMS-sub007/internal/model"
	"github.com/Aidanden/SIMS-sub007/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService covers catalog management, the audited manual cost override
// and manual stock adjustments.
type ProductService interface {
	Create(ctx context.Context, scope Scope, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	UpdateCost(ctx context.Context, scope Scope, id uuid.UUID, req dto.UpdateCostRequest) (*dto.UpdateCostResponse, error)
	CostHistory(ctx context.Context, id uuid.UUID) ([]dto.CostLogResponse, error)
	AdjustStock(ctx context.Context, scope Scope, id uuid.UUID, req dto.AdjustStockRequest) error
}

type productService struct {
	repo        repository.ProductRepository
	stockRepo   repository.StockRepository
	companyRepo repository.CompanyRepository
}

func NewProductService(
	repo repository.ProductRepository,
	stockRepo repository.StockRepository,
	companyRepo repository.CompanyRepository,
) ProductService {
	return &productService{repo: repo, stockRepo: stockRepo, companyRepo: companyRepo}
}

func (s *productService) Create(ctx context.Context, scope Scope, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, ledger.Validation("invalid company_id")
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, notFoundOr(err, ledger.ErrCompanyNotFound)
	}
	if !scope.canActFor(companyID) {
		return nil, ledger.ErrScopeForbidden
	}

	product := model.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Unit:        req.Unit,
		UnitsPerBox: req.UnitsPerBox,
		CompanyID:   companyID,
		Active:      true,
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	if req.InitialQuantity != nil || req.Price != nil {
		stock := model.ProductStock{
			ProductID: product.ID,
			CompanyID: companyID,
			Quantity:  decimal.Zero,
			Price:     decimal.Zero,
		}
		if req.InitialQuantity != nil {
			stock.Quantity = *req.InitialQuantity
		}
		if req.Price != nil {
			stock.Price = *req.Price
		}
		if err := s.stockRepo.Upsert(ctx, &stock); err != nil {
			return nil, err
		}
	}
	return productToResponse(&product), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrProductNotFound)
	}
	return productToResponse(product), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	var companyID *uuid.UUID
	if filter.CompanyID != "" {
		id, err := uuid.Parse(filter.CompanyID)
		if err != nil {
			return nil, ledger.Validation("invalid company_id")
		}
		companyID = &id
	}
	products, total, err := s.repo.List(ctx, companyID, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// UpdateCost is the manual override path. Every mutation appends an immutable
// audit row in the same transaction as the cost write.
func (s *productService) UpdateCost(ctx context.Context, scope Scope, id uuid.UUID, req dto.UpdateCostRequest) (*dto.UpdateCostResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrProductNotFound)
	}
	if !scope.canActFor(product.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}
	if req.NewCost.IsNegative() {
		return nil, ledger.Validation("new_cost must not be negative")
	}

	logEntry := model.ProductCostLog{
		ProductID: product.ID,
		OldCost:   product.Cost,
		NewCost:   unitCost(req.NewCost),
		UpdatedBy: scope.actor(),
		Notes:     req.Notes,
	}
	if req.PurchaseID != nil {
		purchaseID, err := uuid.Parse(*req.PurchaseID)
		if err != nil {
			return nil, ledger.Validation("invalid purchase_id")
		}
		logEntry.PurchaseID = &purchaseID
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateCostLogTx(tx, &logEntry); err != nil {
			return err
		}
		return s.repo.UpdateCostTx(tx, product.ID, logEntry.NewCost)
	})
	if txErr != nil {
		return nil, txErr
	}

	newCost := logEntry.NewCost
	product.Cost = &newCost
	return &dto.UpdateCostResponse{
		Product:       *productToResponse(product),
		AuditLogEntry: costLogToResponse(&logEntry),
	}, nil
}

func (s *productService) CostHistory(ctx context.Context, id uuid.UUID) ([]dto.CostLogResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, ledger.ErrProductNotFound)
	}
	logs, err := s.repo.ListCostLogs(ctx, id)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CostLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, costLogToResponse(&logs[i]))
	}
	return items, nil
}

// AdjustStock applies a signed manual delta with an audit movement. A
// negative delta that exceeds the quantity on hand is rejected.
func (s *productService) AdjustStock(ctx context.Context, scope Scope, id uuid.UUID, req dto.AdjustStockRequest) error {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return ledger.Validation("invalid company_id")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, ledger.ErrProductNotFound)
	}
	if !scope.canActFor(companyID) {
		return ledger.ErrScopeForbidden
	}
	if req.Quantity.IsZero() {
		return ledger.Validation("quantity delta must not be zero")
	}

	return runTx(ctx, s.stockRepo.DB(), func(tx *gorm.DB) error {
		before, err := s.stockRepo.QuantityTx(tx, id, companyID)
		if err != nil {
			return err
		}
		if req.Quantity.IsPositive() {
			if err := s.stockRepo.CreditTx(tx, id, companyID, req.Quantity); err != nil {
				return err
			}
		} else {
			ok, err := s.stockRepo.DebitTx(tx, id, companyID, req.Quantity.Neg())
			if err != nil {
				return err
			}
			if !ok {
				return &ledger.InsufficientStockError{ProductID: id, CompanyID: companyID}
			}
		}
		return s.stockRepo.CreateMovementTx(tx, &model.StockMovement{
			ProductID:      id,
			CompanyID:      companyID,
			Type:           model.MovementManualAdjustment,
			Quantity:       req.Quantity,
			QuantityBefore: before,
			QuantityAfter:  before.Add(req.Quantity),
			Reason:         req.Reason,
		})
	})
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Unit:        p.Unit,
		UnitsPerBox: p.UnitsPerBox,
		Cost:        p.Cost,
		CompanyID:   p.CompanyID.String(),
	}
}

func costLogToResponse(l *model.ProductCostLog) dto.CostLogResponse {
	resp := dto.CostLogResponse{
		ID:        l.ID.String(),
		ProductID: l.ProductID.String(),
		OldCost:   l.OldCost,
		NewCost:   l.NewCost,
		UpdatedBy: l.UpdatedBy,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
	if l.PurchaseID != nil {
		id := l.PurchaseID.String()
		resp.PurchaseID = &id
	}
	return resp
}
