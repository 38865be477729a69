package service

import (
	"context"

	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/ledger"
	"github.com/Aidanden/SIMS-sub007/internal/model"
	"github.com/Aidanden/SIMS-sub007/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PaymentService reconciles partial payments against sales, purchases and
// sale returns. Every application preserves paid + remaining = total and
// appends an immutable payment row in the same transaction. Overpayment is
// accepted and recorded; remaining simply goes negative.
type PaymentService interface {
	Apply(ctx context.Context, scope Scope, req dto.ApplyPaymentRequest) (*dto.PaymentStateResponse, error)
}

type paymentService struct {
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	returnRepo   repository.ReturnRepository
}

func NewPaymentService(
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
	returnRepo repository.ReturnRepository,
) PaymentService {
	return &paymentService{saleRepo: saleRepo, purchaseRepo: purchaseRepo, returnRepo: returnRepo}
}

func (s *paymentService) Apply(ctx context.Context, scope Scope, req dto.ApplyPaymentRequest) (*dto.PaymentStateResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ledger.ErrNonPositiveAmount
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, ledger.Validation("invalid id")
	}

	var state *dto.PaymentStateResponse
	switch req.Kind {
	case dto.PaymentKindSale:
		state, err = s.applyToSale(ctx, scope, id, req)
	case dto.PaymentKindPurchase:
		state, err = s.applyToPurchase(ctx, scope, id, req)
	case dto.PaymentKindSaleReturn:
		state, err = s.applyToReturn(ctx, scope, id, req)
	default:
		return nil, ledger.Validation("unknown payment kind %q", req.Kind)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("kind", req.Kind).
		Str("id", id.String()).
		Str("amount", req.Amount.String()).
		Bool("fully_paid", state.IsFullyPaid).
		Msg("payment applied")
	return state, nil
}

func (s *paymentService) applyToSale(ctx context.Context, scope Scope, id uuid.UUID, req dto.ApplyPaymentRequest) (*dto.PaymentStateResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrSaleNotFound)
	}
	if sale.Status != model.SaleStatusApproved {
		return nil, ledger.ErrSaleNotApproved
	}
	if !scope.canActFor(sale.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	// Totals arithmetic happens against the locked row so concurrent
	// applications serialize instead of overwriting each other.
	var state *dto.PaymentStateResponse
	txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		cur, err := s.saleRepo.FindForUpdateTx(tx, sale.ID)
		if err != nil {
			return err
		}
		newPaid := money(cur.PaidAmount.Add(req.Amount))
		newRemaining := money(cur.Total.Sub(newPaid))
		fullyPaid := !newRemaining.IsPositive()

		if err := s.saleRepo.CreatePaymentTx(tx, &model.SalePayment{
			SaleID:        sale.ID,
			Amount:        req.Amount,
			Method:        req.Method,
			AmountForeign: req.AmountForeign,
			ExchangeRate:  req.ExchangeRate,
			Notes:         req.Notes,
		}); err != nil {
			return err
		}
		if err := s.saleRepo.UpdateTotalsTx(tx, sale.ID, newPaid, newRemaining, fullyPaid); err != nil {
			return err
		}
		state = &dto.PaymentStateResponse{PaidAmount: newPaid, RemainingAmount: newRemaining, IsFullyPaid: fullyPaid}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return state, nil
}

func (s *paymentService) applyToPurchase(ctx context.Context, scope Scope, id uuid.UUID, req dto.ApplyPaymentRequest) (*dto.PaymentStateResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrPurchaseNotFound)
	}
	if !scope.canActFor(purchase.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	var state *dto.PaymentStateResponse
	txErr := runTx(ctx, s.purchaseRepo.DB(), func(tx *gorm.DB) error {
		cur, err := s.purchaseRepo.FindForUpdateTx(tx, purchase.ID)
		if err != nil {
			return err
		}
		newPaid := money(cur.PaidAmount.Add(req.Amount))
		newRemaining := money(cur.Total.Sub(newPaid))
		fullyPaid := !newRemaining.IsPositive()

		if err := s.purchaseRepo.CreateReceiptTx(tx, &model.SupplierPaymentReceipt{
			PurchaseID:    purchase.ID,
			Amount:        req.Amount,
			Method:        req.Method,
			AmountForeign: req.AmountForeign,
			ExchangeRate:  req.ExchangeRate,
			Notes:         req.Notes,
		}); err != nil {
			return err
		}
		if err := s.purchaseRepo.UpdateTotalsTx(tx, purchase.ID, newPaid, newRemaining, fullyPaid); err != nil {
			return err
		}
		state = &dto.PaymentStateResponse{PaidAmount: newPaid, RemainingAmount: newRemaining, IsFullyPaid: fullyPaid}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return state, nil
}

func (s *paymentService) applyToReturn(ctx context.Context, scope Scope, id uuid.UUID, req dto.ApplyPaymentRequest) (*dto.PaymentStateResponse, error) {
	ret, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrReturnNotFound)
	}
	if !scope.canActFor(ret.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	var state *dto.PaymentStateResponse
	txErr := runTx(ctx, s.returnRepo.DB(), func(tx *gorm.DB) error {
		cur, err := s.returnRepo.FindForUpdateTx(tx, ret.ID)
		if err != nil {
			return err
		}
		newPaid := money(cur.PaidAmount.Add(req.Amount))
		newRemaining := money(cur.Total.Sub(newPaid))
		fullyPaid := !newRemaining.IsPositive()

		if err := s.returnRepo.CreatePaymentTx(tx, &model.ReturnPayment{
			SaleReturnID: ret.ID,
			Amount:       req.Amount,
			Method:       req.Method,
			Notes:        req.Notes,
		}); err != nil {
			return err
		}
		if err := s.returnRepo.UpdateTotalsTx(tx, ret.ID, newPaid, newRemaining, fullyPaid); err != nil {
			return err
		}
		state = &dto.PaymentStateResponse{PaidAmount: newPaid, RemainingAmount: newRemaining, IsFullyPaid: fullyPaid}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return state, nil
}
