package service

import (
	"context"
	"time"

	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/ledger"
	"github.com/Aidanden/SIMS-sub007/internal/model"
	"github.com/Aidanden/SIMS-sub007/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnService owns sale returns and the warehouse return-order state
// machine. Completing the order is the only trigger that restores stock, to
// the company that originally sold the goods.
type ReturnService interface {
	Create(ctx context.Context, scope Scope, req dto.CreateReturnRequest) (*dto.ReturnResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error)
	CompleteOrder(ctx context.Context, scope Scope, orderID uuid.UUID, req dto.CompleteReturnOrderRequest) (*dto.ReturnOrderStateResponse, error)
	CancelOrder(ctx context.Context, scope Scope, orderID uuid.UUID) (*dto.ReturnOrderStateResponse, error)
}

type returnService struct {
	repo      repository.ReturnRepository
	saleRepo  repository.SaleRepository
	stockRepo repository.StockRepository
}

func NewReturnService(
	repo repository.ReturnRepository,
	saleRepo repository.SaleRepository,
	stockRepo repository.StockRepository,
) ReturnService {
	return &returnService{repo: repo, saleRepo: saleRepo, stockRepo: stockRepo}
}

func (s *returnService) Create(ctx context.Context, scope Scope, req dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, ledger.Validation("invalid sale_id")
	}
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrSaleNotFound)
	}
	if sale.Status != model.SaleStatusApproved {
		return nil, ledger.ErrSaleNotApproved
	}
	if !scope.canActFor(sale.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	// Quantity sold per product, across all lines of the sale.
	soldQty := make(map[uuid.UUID]decimal.Decimal, len(sale.Lines))
	soldPrice := make(map[uuid.UUID]decimal.Decimal, len(sale.Lines))
	for _, line := range sale.Lines {
		soldQty[line.ProductID] = soldQty[line.ProductID].Add(line.Quantity)
		soldPrice[line.ProductID] = line.UnitPrice
	}

	lines := make([]model.SaleReturnLine, 0, len(req.Lines))
	total := decimal.Zero
	for _, lr := range req.Lines {
		productID, err := uuid.Parse(lr.ProductID)
		if err != nil {
			return nil, ledger.Validation("invalid product_id")
		}
		if !lr.Quantity.IsPositive() {
			return nil, ledger.Validation("returned quantity must be positive")
		}
		sold, ok := soldQty[productID]
		if !ok {
			return nil, ledger.Validation("product %s is not part of the sale", productID)
		}
		if lr.Quantity.GreaterThan(sold) {
			return nil, ledger.Validation("returned quantity for product %s exceeds sold quantity", productID)
		}
		unitPrice := soldPrice[productID]
		subTotal := money(lr.Quantity.Mul(unitPrice))
		total = total.Add(subTotal)
		lines = append(lines, model.SaleReturnLine{
			ProductID: productID,
			Quantity:  lr.Quantity,
			UnitPrice: unitPrice,
			SubTotal:  subTotal,
		})
	}

	ret := model.SaleReturn{
		SaleID:          sale.ID,
		CompanyID:       sale.CompanyID,
		Total:           total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		Lines:           lines,
		Order:           &model.ReturnOrder{Status: model.ReturnOrderPending},
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(ctx, tx, &ret)
	})
	if txErr != nil {
		return nil, txErr
	}
	return returnToResponse(&ret), nil
}

func (s *returnService) Get(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrReturnNotFound)
	}
	return returnToResponse(ret), nil
}

// CompleteOrder receives the returned goods: pending→completed plus stock
// restoration to the original selling company, in one transaction.
func (s *returnService) CompleteOrder(ctx context.Context, scope Scope, orderID uuid.UUID, req dto.CompleteReturnOrderRequest) (*dto.ReturnOrderStateResponse, error) {
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrReturnOrderNotFound)
	}
	ret, err := s.repo.FindByID(ctx, order.SaleReturnID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrReturnNotFound)
	}
	if !scope.canActFor(ret.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	now := time.Now()
	restored := make([]dto.StockRestoredItem, 0, len(ret.Lines))

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.TransitionOrderStatusTx(tx, orderID, model.ReturnOrderPending, model.ReturnOrderCompleted, req.Notes, &now)
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrReturnOrderNotPending
		}
		// Re-read the return inside the transaction so the restored lines
		// reflect the committed state, not the pre-transaction snapshot.
		cur, err := s.repo.FindByOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		for _, line := range cur.Lines {
			before, err := s.stockRepo.QuantityTx(tx, line.ProductID, ret.CompanyID)
			if err != nil {
				return err
			}
			if err := s.stockRepo.CreditTx(tx, line.ProductID, ret.CompanyID, line.Quantity); err != nil {
				return err
			}
			orderRef := orderID
			if err := s.stockRepo.CreateMovementTx(tx, &model.StockMovement{
				ProductID:      line.ProductID,
				CompanyID:      ret.CompanyID,
				Type:           model.MovementReturn,
				Quantity:       line.Quantity,
				QuantityBefore: before,
				QuantityAfter:  before.Add(line.Quantity),
				Reason:         "return order completed",
				ReferenceID:    &orderRef,
			}); err != nil {
				return err
			}
			restored = append(restored, dto.StockRestoredItem{
				ProductID: line.ProductID.String(),
				CompanyID: ret.CompanyID.String(),
				Quantity:  line.Quantity,
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("return_order_id", orderID.String()).
		Int("lines_restored", len(restored)).
		Msg("return order completed")
	return &dto.ReturnOrderStateResponse{Status: model.ReturnOrderCompleted, StockRestored: restored}, nil
}

// CancelOrder abandons the warehouse leg; stock stays untouched.
func (s *returnService) CancelOrder(ctx context.Context, scope Scope, orderID uuid.UUID) (*dto.ReturnOrderStateResponse, error) {
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrReturnOrderNotFound)
	}
	ret, err := s.repo.FindByID(ctx, order.SaleReturnID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrReturnNotFound)
	}
	if !scope.canActFor(ret.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.TransitionOrderStatusTx(tx, orderID, model.ReturnOrderPending, model.ReturnOrderCancelled, nil, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrReturnOrderNotPending
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &dto.ReturnOrderStateResponse{Status: model.ReturnOrderCancelled}, nil
}

func returnToResponse(ret *model.SaleReturn) *dto.ReturnResponse {
	lines := make([]dto.ReturnLineResponse, 0, len(ret.Lines))
	for _, line := range ret.Lines {
		lines = append(lines, dto.ReturnLineResponse{
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			SubTotal:  line.SubTotal,
		})
	}
	resp := &dto.ReturnResponse{
		ID:              ret.ID.String(),
		SaleID:          ret.SaleID.String(),
		CompanyID:       ret.CompanyID.String(),
		Total:           ret.Total,
		PaidAmount:      ret.PaidAmount,
		RemainingAmount: ret.RemainingAmount,
		IsFullyPaid:     ret.IsFullyPaid,
		Lines:           lines,
		CreatedAt:       ret.CreatedAt.Format(time.RFC3339),
	}
	if ret.Order != nil {
		resp.OrderID = ret.Order.ID.String()
		resp.OrderStatus = ret.Order.Status
	}
	return resp
}
