package service

import (
	"context"
	"errors"
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

// SaleService is the inter-company sale orchestrator. Drafts carry no stock
// or ledger effect; Approve is the single atomic operation that validates
// stock, debits the correct company, materializes the internal parent→branch
// sale and transitions the customer sale.
type SaleService interface {
	CreateInterCompanySale(ctx context.Context, scope Scope, req dto.CreateInterCompanySaleRequest) (*dto.DraftSaleResponse, error)
	CreateSale(ctx context.Context, scope Scope, req dto.CreateSaleRequest) (*dto.DraftSaleResponse, error)
	Approve(ctx context.Context, scope Scope, saleID uuid.UUID) (*dto.ApproveSaleResponse, error)
	Reject(ctx context.Context, scope Scope, saleID uuid.UUID) error
	SettleParentSale(ctx context.Context, scope Scope, saleID uuid.UUID, req dto.SettleParentSaleRequest) (*dto.PaymentStateResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo         repository.SaleRepository
	stockRepo    repository.StockRepository
	companyRepo  repository.CompanyRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
}

func NewSaleService(
	repo repository.SaleRepository,
	stockRepo repository.StockRepository,
	companyRepo repository.CompanyRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) SaleService {
	return &saleService{
		repo:         repo,
		stockRepo:    stockRepo,
		companyRepo:  companyRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
	}
}

// ── Draft creation ────────────────────────────────────────────────────────────
// No stock is checked or mutated at draft time: drafts stay editable until the
// approval commits them.

func (s *saleService) CreateInterCompanySale(ctx context.Context, scope Scope, req dto.CreateInterCompanySaleRequest) (*dto.DraftSaleResponse, error) {
	branchID, err := uuid.Parse(req.BranchCompanyID)
	if err != nil {
		return nil, ledger.Validation("invalid branch_company_id")
	}
	parentID, err := uuid.Parse(req.ParentCompanyID)
	if err != nil {
		return nil, ledger.Validation("invalid parent_company_id")
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, ledger.Validation("invalid customer_id")
	}

	branch, err := s.companyRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrCompanyNotFound)
	}
	parent, err := s.companyRepo.FindByID(ctx, parentID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrCompanyNotFound)
	}
	if parent.IsBranch() {
		return nil, ledger.ErrDeepHierarchy
	}
	if branch.ParentID == nil || *branch.ParentID != parent.ID {
		return nil, ledger.ErrCompaniesNotRelated
	}
	if !scope.canActFor(branch.ID) {
		return nil, ledger.ErrScopeForbidden
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, notFoundOr(err, ledger.ErrCustomerNotFound)
	}

	lines := make([]model.SaleLine, 0, len(req.Lines))
	total := decimal.Zero
	for _, lr := range req.Lines {
		productID, err := uuid.Parse(lr.ProductID)
		if err != nil {
			return nil, ledger.Validation("invalid product_id")
		}
		if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
			return nil, notFoundOr(err, ledger.ErrProductNotFound)
		}
		if !lr.Quantity.IsPositive() {
			return nil, ledger.Validation("line quantity must be positive")
		}
		if lr.BranchUnitPrice.IsNegative() {
			return nil, ledger.Validation("branch_unit_price must not be negative")
		}
		if lr.IsFromParentCompany {
			if lr.ParentUnitPrice == nil || lr.ParentUnitPrice.IsNegative() {
				return nil, ledger.Validation("parent-sourced lines require a non-negative parent_unit_price")
			}
			if lr.BranchUnitPrice.LessThan(*lr.ParentUnitPrice) {
				return nil, ledger.Validation("branch_unit_price must be at least parent_unit_price")
			}
		}

		branchPrice := lr.BranchUnitPrice
		subTotal := money(lr.Quantity.Mul(branchPrice))
		total = total.Add(subTotal)
		lines = append(lines, model.SaleLine{
			ProductID:           productID,
			Quantity:            lr.Quantity,
			UnitPrice:           branchPrice,
			SubTotal:            subTotal,
			IsFromParentCompany: lr.IsFromParentCompany,
			ParentUnitPrice:     lr.ParentUnitPrice,
			BranchUnitPrice:     &branchPrice,
		})
	}

	if req.Discount.IsNegative() || req.Discount.GreaterThan(total) {
		return nil, ledger.Validation("discount must be between zero and the sale total")
	}
	total = money(total.Sub(req.Discount))

	sale := model.Sale{
		CompanyID:       branch.ID,
		CustomerID:      &customerID,
		Status:          model.SaleStatusDraft,
		SaleType:        model.SaleTypeCredit,
		Discount:        req.Discount,
		Total:           total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		Lines:           lines,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextInvoiceNumberTx(ctx, tx)
		if err != nil {
			return err
		}
		sale.InvoiceNumber = num
		return s.repo.CreateTx(ctx, tx, &sale)
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.DraftSaleResponse{
		CustomerSaleID: sale.ID.String(),
		InvoiceNumber:  sale.InvoiceNumber,
		Total:          sale.Total,
	}, nil
}

func (s *saleService) CreateSale(ctx context.Context, scope Scope, req dto.CreateSaleRequest) (*dto.DraftSaleResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, ledger.Validation("invalid company_id")
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, ledger.Validation("invalid customer_id")
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, notFoundOr(err, ledger.ErrCompanyNotFound)
	}
	if !scope.canActFor(companyID) {
		return nil, ledger.ErrScopeForbidden
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, notFoundOr(err, ledger.ErrCustomerNotFound)
	}

	lines := make([]model.SaleLine, 0, len(req.Lines))
	total := decimal.Zero
	for _, lr := range req.Lines {
		productID, err := uuid.Parse(lr.ProductID)
		if err != nil {
			return nil, ledger.Validation("invalid product_id")
		}
		if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
			return nil, notFoundOr(err, ledger.ErrProductNotFound)
		}
		if !lr.Quantity.IsPositive() {
			return nil, ledger.Validation("line quantity must be positive")
		}
		if lr.UnitPrice.IsNegative() {
			return nil, ledger.Validation("unit_price must not be negative")
		}
		subTotal := money(lr.Quantity.Mul(lr.UnitPrice))
		total = total.Add(subTotal)
		lines = append(lines, model.SaleLine{
			ProductID: productID,
			Quantity:  lr.Quantity,
			UnitPrice: lr.UnitPrice,
			SubTotal:  subTotal,
		})
	}
	if req.Discount.IsNegative() || req.Discount.GreaterThan(total) {
		return nil, ledger.Validation("discount must be between zero and the sale total")
	}
	total = money(total.Sub(req.Discount))

	sale := model.Sale{
		CompanyID:       companyID,
		CustomerID:      &customerID,
		Status:          model.SaleStatusDraft,
		SaleType:        req.SaleType,
		Discount:        req.Discount,
		Total:           total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		Lines:           lines,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextInvoiceNumberTx(ctx, tx)
		if err != nil {
			return err
		}
		sale.InvoiceNumber = num
		return s.repo.CreateTx(ctx, tx, &sale)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &dto.DraftSaleResponse{
		CustomerSaleID: sale.ID.String(),
		InvoiceNumber:  sale.InvoiceNumber,
		Total:          sale.Total,
	}, nil
}

// ── Approval ──────────────────────────────────────────────────────────────────
// One transaction:
//  1. draft→approved compare-and-swap (idempotency guard against races)
//  2. atomic check-and-debit of the owning company's stock per line
//  3. materialize the internal parent→branch CREDIT sale over parent lines
//  4. customer sale becomes approved and payable (paid 0, remaining = total)

func (s *saleService) Approve(ctx context.Context, scope Scope, saleID uuid.UUID) (*dto.ApproveSaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrSaleNotFound)
	}
	if !scope.canActFor(sale.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	var parentSaleID *uuid.UUID
	now := time.Now()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.TransitionStatusTx(tx, sale.ID, model.SaleStatusDraft, model.SaleStatusApproved, &now)
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrAlreadyApproved
		}

		// Re-read inside the transaction: the draft may have been edited
		// between the initial read and the CAS.
		cur, err := s.repo.FindByIDTx(tx, sale.ID)
		if err != nil {
			return err
		}

		var parentCompanyID uuid.UUID
		hasParentLines := false
		for _, line := range cur.Lines {
			if line.IsFromParentCompany {
				hasParentLines = true
				break
			}
		}
		if hasParentLines {
			company, err := s.companyRepo.FindByIDTx(tx, cur.CompanyID)
			if err != nil {
				return err
			}
			if company.ParentID == nil {
				return ledger.Integrity("sale %s has parent-sourced lines but company %s has no parent", cur.ID, cur.CompanyID)
			}
			parentCompanyID = *company.ParentID
		}

		internalTotal := decimal.Zero
		for _, line := range cur.Lines {
			sourceCompany := cur.CompanyID
			if line.IsFromParentCompany {
				sourceCompany = parentCompanyID
				if line.ParentUnitPrice == nil {
					return ledger.Integrity("parent-sourced line %s is missing parent_unit_price", line.ID)
				}
				internalTotal = internalTotal.Add(line.ParentUnitPrice.Mul(line.Quantity))
			}

			before, err := s.stockRepo.QuantityTx(tx, line.ProductID, sourceCompany)
			if err != nil {
				return err
			}
			ok, err := s.stockRepo.DebitTx(tx, line.ProductID, sourceCompany, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &ledger.InsufficientStockError{ProductID: line.ProductID, CompanyID: sourceCompany}
			}
			saleRef := cur.ID
			if err := s.stockRepo.CreateMovementTx(tx, &model.StockMovement{
				ProductID:      line.ProductID,
				CompanyID:      sourceCompany,
				Type:           model.MovementSale,
				Quantity:       line.Quantity.Neg(),
				QuantityBefore: before,
				QuantityAfter:  before.Sub(line.Quantity),
				Reason:         "sale approval",
				ReferenceID:    &saleRef,
			}); err != nil {
				return err
			}
		}

		if hasParentLines {
			internalTotal = money(internalTotal)
			num, err := s.repo.NextInvoiceNumberTx(ctx, tx)
			if err != nil {
				return err
			}
			buyer := cur.CompanyID
			internal := model.Sale{
				CompanyID:       parentCompanyID,
				BuyerCompanyID:  &buyer,
				InvoiceNumber:   num,
				Status:          model.SaleStatusApproved,
				SaleType:        model.SaleTypeCredit,
				Total:           internalTotal,
				PaidAmount:      decimal.Zero,
				RemainingAmount: internalTotal,
				ApprovedAt:      &now,
			}
			if err := s.repo.CreateTx(ctx, tx, &internal); err != nil {
				return err
			}
			parentSaleID = &internal.ID
			if err := s.repo.SetParentSaleTx(tx, cur.ID, internal.ID); err != nil {
				return err
			}
			// Payment happens afterwards through the reconciler.
			if err := s.repo.SetSaleTypeTx(tx, cur.ID, model.SaleTypeCredit); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Bool("inter_company", parentSaleID != nil).
		Msg("sale approved")

	approved, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ApproveSaleResponse{CustomerSale: *saleToResponse(approved)}
	if parentSaleID != nil {
		internal, err := s.repo.FindByID(ctx, *parentSaleID)
		if err != nil {
			return nil, err
		}
		resp.ParentSale = saleToResponse(internal)
	}
	return resp, nil
}

func (s *saleService) Reject(ctx context.Context, scope Scope, saleID uuid.UUID) error {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return notFoundOr(err, ledger.ErrSaleNotFound)
	}
	if !scope.canActFor(sale.CompanyID) {
		return ledger.ErrScopeForbidden
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.TransitionStatusTx(tx, saleID, model.SaleStatusDraft, model.SaleStatusRejected, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrNotDraft
		}
		return nil
	})
}

// SettleParentSale appends a payment to the internal parent→branch sale and
// updates its running totals. It never touches the customer sale.
func (s *saleService) SettleParentSale(ctx context.Context, scope Scope, saleID uuid.UUID, req dto.SettleParentSaleRequest) (*dto.PaymentStateResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrSaleNotFound)
	}
	if sale.BuyerCompanyID == nil {
		return nil, ledger.ErrNotInternalSale
	}
	if !scope.canActFor(sale.CompanyID) && !scope.canActFor(*sale.BuyerCompanyID) {
		return nil, ledger.ErrScopeForbidden
	}
	if !req.Amount.IsPositive() {
		return nil, ledger.ErrNonPositiveAmount
	}

	// Lock the internal sale so concurrent settlements serialize on the
	// running totals.
	var state *dto.PaymentStateResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cur, err := s.repo.FindForUpdateTx(tx, sale.ID)
		if err != nil {
			return err
		}
		newPaid := money(cur.PaidAmount.Add(req.Amount))
		newRemaining := money(cur.Total.Sub(newPaid))
		fullyPaid := !newRemaining.IsPositive()

		if err := s.repo.CreatePaymentTx(tx, &model.SalePayment{
			SaleID: sale.ID,
			Amount: req.Amount,
			Method: req.Method,
		}); err != nil {
			return err
		}
		if err := s.repo.UpdateTotalsTx(tx, sale.ID, newPaid, newRemaining, fullyPaid); err != nil {
			return err
		}
		state = &dto.PaymentStateResponse{
			PaidAmount:      newPaid,
			RemainingAmount: newRemaining,
			IsFullyPaid:     fullyPaid,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return state, nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrSaleNotFound)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	repoFilter := repository.SaleFilter{Status: filter.Status, Page: filter.Page, Limit: filter.Limit}
	if filter.CompanyID != "" {
		id, err := uuid.Parse(filter.CompanyID)
		if err != nil {
			return nil, ledger.Validation("invalid company_id")
		}
		repoFilter.CompanyID = &id
	}
	sales, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// notFoundOr maps a gorm record-not-found onto the typed domain error and
// passes anything else through untouched.
func notFoundOr(err error, domain *ledger.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain
	}
	return err
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(v.Lines))
	for _, line := range v.Lines {
		lines = append(lines, dto.SaleLineResponse{
			ProductID:           line.ProductID.String(),
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			SubTotal:            line.SubTotal,
			IsFromParentCompany: line.IsFromParentCompany,
			ParentUnitPrice:     line.ParentUnitPrice,
			BranchUnitPrice:     line.BranchUnitPrice,
		})
	}
	resp := &dto.SaleResponse{
		ID:              v.ID.String(),
		CompanyID:       v.CompanyID.String(),
		InvoiceNumber:   v.InvoiceNumber,
		Status:          v.Status,
		SaleType:        v.SaleType,
		Discount:        v.Discount,
		Total:           v.Total,
		PaidAmount:      v.PaidAmount,
		RemainingAmount: v.RemainingAmount,
		IsFullyPaid:     v.IsFullyPaid,
		Lines:           lines,
		CreatedAt:       v.CreatedAt.Format(time.RFC3339),
	}
	if v.CustomerID != nil {
		id := v.CustomerID.String()
		resp.CustomerID = &id
	}
	if v.BuyerCompanyID != nil {
		id := v.BuyerCompanyID.String()
		resp.BuyerCompanyID = &id
	}
	if v.ParentSaleID != nil {
		id := v.ParentSaleID.String()
		resp.ParentSaleID = &id
	}
	return resp
}
