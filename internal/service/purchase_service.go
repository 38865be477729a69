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

// PurchaseService owns the purchase lifecycle: draft creation and the
// approval that allocates expenses across lines, derives landed unit costs,
// updates product costs with an audit trail and credits purchased stock.
type PurchaseService interface {
	Create(ctx context.Context, scope Scope, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)
	Approve(ctx context.Context, scope Scope, purchaseID uuid.UUID, req dto.ApprovePurchaseRequest) (*dto.ApprovePurchaseResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error)
	List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error)
}

type purchaseService struct {
	repo         repository.PurchaseRepository
	productRepo  repository.ProductRepository
	stockRepo    repository.StockRepository
	companyRepo  repository.CompanyRepository
	supplierRepo repository.SupplierRepository
	baseCurrency string
}

func NewPurchaseService(
	repo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	companyRepo repository.CompanyRepository,
	supplierRepo repository.SupplierRepository,
	baseCurrency string,
) PurchaseService {
	return &purchaseService{
		repo:         repo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		companyRepo:  companyRepo,
		supplierRepo: supplierRepo,
		baseCurrency: baseCurrency,
	}
}

// ── Draft creation ────────────────────────────────────────────────────────────

func (s *purchaseService) Create(ctx context.Context, scope Scope, req dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, ledger.Validation("invalid company_id")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, ledger.Validation("invalid supplier_id")
	}
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, notFoundOr(err, ledger.ErrCompanyNotFound)
	}
	if !scope.canActFor(companyID) {
		return nil, ledger.ErrScopeForbidden
	}
	if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
		return nil, notFoundOr(err, ledger.ErrSupplierNotFound)
	}

	rate := req.ExchangeRate
	foreign := req.Currency != s.baseCurrency
	if !foreign {
		rate = decimal.NewFromInt(1)
	} else if !rate.IsPositive() {
		return nil, ledger.Validation("foreign-currency purchases require a positive exchange_rate")
	}

	lines := make([]model.PurchaseLine, 0, len(req.Lines))
	total := decimal.Zero
	totalForeign := decimal.Zero
	for _, lr := range req.Lines {
		productID, err := uuid.Parse(lr.ProductID)
		if err != nil {
			return nil, ledger.Validation("invalid product_id")
		}
		if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
			return nil, notFoundOr(err, ledger.ErrProductNotFound)
		}
		if lr.Quantity.IsNegative() {
			return nil, ledger.Validation("line quantity must not be negative")
		}
		if lr.UnitPrice.IsNegative() {
			return nil, ledger.Validation("unit_price must not be negative")
		}
		// Line prices arrive in the purchase currency; stored values are local.
		localUnit := lr.UnitPrice.Mul(rate)
		subTotal := money(lr.Quantity.Mul(localUnit))
		total = total.Add(subTotal)
		totalForeign = totalForeign.Add(lr.Quantity.Mul(lr.UnitPrice))
		lines = append(lines, model.PurchaseLine{
			ProductID: productID,
			Quantity:  lr.Quantity,
			UnitPrice: localUnit,
			SubTotal:  subTotal,
		})
	}

	expenses, err := s.buildExpenses(req.Expenses)
	if err != nil {
		return nil, err
	}

	purchase := model.Purchase{
		CompanyID:       companyID,
		SupplierID:      supplierID,
		Currency:        req.Currency,
		ExchangeRate:    rate,
		Total:           total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		Lines:           lines,
		Expenses:        expenses,
	}
	if foreign {
		tf := money(totalForeign)
		purchase.TotalForeign = &tf
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(ctx, tx, &purchase)
	})
	if txErr != nil {
		return nil, txErr
	}
	return purchaseToResponse(&purchase), nil
}

// ── Approval ──────────────────────────────────────────────────────────────────
// One transaction: CAS on is_approved, allocate expenses proportionally to
// line value, write landed costs with audit rows, credit purchased stock.
//
// A product appearing in several lines of the same purchase is aggregated
// (quantity and value summed) before one landed cost is computed for it.

func (s *purchaseService) Approve(ctx context.Context, scope Scope, purchaseID uuid.UUID, req dto.ApprovePurchaseRequest) (*dto.ApprovePurchaseResponse, error) {
	purchase, err := s.repo.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrPurchaseNotFound)
	}
	if purchase.IsApproved {
		return nil, ledger.ErrAlreadyApproved
	}
	if !scope.canActFor(purchase.CompanyID) {
		return nil, ledger.ErrScopeForbidden
	}

	extra, err := s.buildExpenses(req.Expenses)
	if err != nil {
		return nil, err
	}
	allExpenses := append(append([]model.PurchaseExpense{}, purchase.Expenses...), extra...)
	for _, e := range allExpenses {
		if e.IsActualExpense && e.SupplierID == nil {
			return nil, ledger.ErrMissingSupplierForActualExpense
		}
	}

	// Expenses are summed in local currency; foreign expenses convert with
	// their own recorded rate.
	expenseTotal := decimal.Zero
	for _, e := range allExpenses {
		expenseTotal = expenseTotal.Add(e.Amount.Mul(e.ExchangeRate))
	}
	expenseTotal = money(expenseTotal)

	var productCosts []dto.ProductCostResponse
	now := time.Now()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.MarkApprovedTx(tx, purchase.ID, expenseTotal, now)
		if err != nil {
			return err
		}
		if !ok {
			return ledger.ErrAlreadyApproved
		}

		for i := range extra {
			extra[i].PurchaseID = purchase.ID
			if err := s.repo.CreateExpenseTx(tx, &extra[i]); err != nil {
				return err
			}
		}

		purchaseTotal := decimal.Zero
		for _, line := range purchase.Lines {
			purchaseTotal = purchaseTotal.Add(line.SubTotal)
		}

		// Aggregate duplicate products before costing; iteration order follows
		// first appearance so the audit trail is deterministic.
		type aggregate struct {
			qty   decimal.Decimal
			value decimal.Decimal
		}
		order := make([]uuid.UUID, 0, len(purchase.Lines))
		perProduct := make(map[uuid.UUID]*aggregate, len(purchase.Lines))
		for _, line := range purchase.Lines {
			agg, seen := perProduct[line.ProductID]
			if !seen {
				agg = &aggregate{qty: decimal.Zero, value: decimal.Zero}
				perProduct[line.ProductID] = agg
				order = append(order, line.ProductID)
			}
			agg.qty = agg.qty.Add(line.Quantity)
			agg.value = agg.value.Add(line.SubTotal)
		}

		for _, productID := range order {
			agg := perProduct[productID]
			if agg.qty.IsZero() {
				// Division guard: skip cost computation, approval continues.
				log.Warn().
					Str("purchase_id", purchase.ID.String()).
					Str("product_id", productID.String()).
					Msg("zero-quantity purchase line, landed cost not computed")
				continue
			}

			share := decimal.Zero
			if purchaseTotal.IsPositive() && expenseTotal.IsPositive() {
				share = agg.value.Mul(expenseTotal).Div(purchaseTotal)
			}
			landed := unitCost(agg.value.Add(share).Div(agg.qty))

			product, err := s.productRepo.FindByIDTx(tx, productID)
			if err != nil {
				return ledger.Integrity("purchase line references missing product %s", productID)
			}
			purchaseRef := purchase.ID
			notes := "landed cost from purchase approval"
			if err := s.productRepo.CreateCostLogTx(tx, &model.ProductCostLog{
				ProductID:  productID,
				OldCost:    product.Cost,
				NewCost:    landed,
				PurchaseID: &purchaseRef,
				UpdatedBy:  scope.actor(),
				Notes:      &notes,
			}); err != nil {
				return err
			}
			if err := s.productRepo.UpdateCostTx(tx, productID, landed); err != nil {
				return err
			}
			productCosts = append(productCosts, dto.ProductCostResponse{
				ProductID: productID.String(),
				OldCost:   product.Cost,
				NewCost:   landed,
			})
		}

		// Approved purchases credit the buying company's stock.
		for _, line := range purchase.Lines {
			if line.Quantity.IsZero() {
				continue
			}
			before, err := s.stockRepo.QuantityTx(tx, line.ProductID, purchase.CompanyID)
			if err != nil {
				return err
			}
			if err := s.stockRepo.CreditTx(tx, line.ProductID, purchase.CompanyID, line.Quantity); err != nil {
				return err
			}
			purchaseRef := purchase.ID
			if err := s.stockRepo.CreateMovementTx(tx, &model.StockMovement{
				ProductID:      line.ProductID,
				CompanyID:      purchase.CompanyID,
				Type:           model.MovementPurchase,
				Quantity:       line.Quantity,
				QuantityBefore: before,
				QuantityAfter:  before.Add(line.Quantity),
				Reason:         "purchase approval",
				ReferenceID:    &purchaseRef,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("purchase_id", purchase.ID.String()).
		Str("total_expenses", expenseTotal.String()).
		Int("products_recosted", len(productCosts)).
		Msg("purchase approved")

	approved, err := s.repo.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return &dto.ApprovePurchaseResponse{
		Purchase:     *purchaseToResponse(approved),
		ProductCosts: productCosts,
	}, nil
}

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseResponse, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ledger.ErrPurchaseNotFound)
	}
	return purchaseToResponse(purchase), nil
}

func (s *purchaseService) List(ctx context.Context, filter dto.PurchaseFilter) (*dto.PurchaseListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	repoFilter := repository.PurchaseFilter{Page: filter.Page, Limit: filter.Limit}
	if filter.CompanyID != "" {
		id, err := uuid.Parse(filter.CompanyID)
		if err != nil {
			return nil, ledger.Validation("invalid company_id")
		}
		repoFilter.CompanyID = &id
	}
	switch filter.Approved {
	case "true":
		v := true
		repoFilter.Approved = &v
	case "false":
		v := false
		repoFilter.Approved = &v
	}
	purchases, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		items = append(items, *purchaseToResponse(&purchases[i]))
	}
	return &dto.PurchaseListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *purchaseService) buildExpenses(reqs []dto.PurchaseExpenseRequest) ([]model.PurchaseExpense, error) {
	expenses := make([]model.PurchaseExpense, 0, len(reqs))
	for _, er := range reqs {
		categoryID, err := uuid.Parse(er.CategoryID)
		if err != nil {
			return nil, ledger.Validation("invalid expense category_id")
		}
		if !er.Amount.IsPositive() {
			return nil, ledger.Validation("expense amount must be positive")
		}
		rate := er.ExchangeRate
		if er.Currency == s.baseCurrency {
			rate = decimal.NewFromInt(1)
		} else if !rate.IsPositive() {
			return nil, ledger.Validation("foreign-currency expenses require a positive exchange_rate")
		}
		expense := model.PurchaseExpense{
			CategoryID:      categoryID,
			Amount:          er.Amount,
			Currency:        er.Currency,
			ExchangeRate:    rate,
			IsActualExpense: er.IsActualExpense,
		}
		if er.SupplierID != nil {
			supplierID, err := uuid.Parse(*er.SupplierID)
			if err != nil {
				return nil, ledger.Validation("invalid expense supplier_id")
			}
			expense.SupplierID = &supplierID
		}
		if er.IsActualExpense && expense.SupplierID == nil {
			return nil, ledger.ErrMissingSupplierForActualExpense
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

func purchaseToResponse(p *model.Purchase) *dto.PurchaseResponse {
	lines := make([]dto.PurchaseLineResponse, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, dto.PurchaseLineResponse{
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			SubTotal:  line.SubTotal,
		})
	}
	return &dto.PurchaseResponse{
		ID:              p.ID.String(),
		CompanyID:       p.CompanyID.String(),
		SupplierID:      p.SupplierID.String(),
		Currency:        p.Currency,
		ExchangeRate:    p.ExchangeRate,
		Total:           p.Total,
		TotalForeign:    p.TotalForeign,
		TotalExpenses:   p.TotalExpenses,
		PaidAmount:      p.PaidAmount,
		RemainingAmount: p.RemainingAmount,
		IsFullyPaid:     p.IsFullyPaid,
		IsApproved:      p.IsApproved,
		Lines:           lines,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}
