package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/ledger"
	"github.com/Aidanden/SIMS-sub007/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	companies *stubCompanyRepo
	customers *stubCustomerRepo
	products  *stubProductRepo
	stock     *stubStockRepo
	sales     *stubSaleRepo
	svc       SaleService

	parent   *model.Company
	branch   *model.Company
	customer *model.Customer
	tile     *model.Product
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	f := &saleFixture{
		companies: newStubCompanyRepo(),
		customers: newStubCustomerRepo(),
		products:  newStubProductRepo(),
		stock:     newStubStockRepo(),
		sales:     newStubSaleRepo(),
	}
	f.svc = NewSaleService(f.sales, f.stock, f.companies, f.customers, f.products)

	ctx := context.Background()
	f.parent = &model.Company{Name: "Parent Tiles", Code: "HQ", Active: true}
	require.NoError(t, f.companies.Create(ctx, f.parent))
	f.branch = &model.Company{Name: "Branch Tiles", Code: "BR1", ParentID: &f.parent.ID, Active: true}
	require.NoError(t, f.companies.Create(ctx, f.branch))
	f.customer = &model.Customer{Name: "Walk-in", CompanyID: f.branch.ID}
	require.NoError(t, f.customers.Create(ctx, f.customer))

	cost := dec("10")
	f.tile = &model.Product{SKU: "TILE-1", Name: "Tile 60x60", Unit: "box", Cost: &cost, CompanyID: f.parent.ID, Active: true}
	require.NoError(t, f.products.Create(ctx, f.tile))
	return f
}

func (f *saleFixture) branchScope() Scope { return Scope{ActingCompanyID: f.branch.ID, Actor: "tester"} }

func (f *saleFixture) draftInterCompanySale(t *testing.T, qty, parentPrice, branchPrice string) uuid.UUID {
	t.Helper()
	pp := dec(parentPrice)
	resp, err := f.svc.CreateInterCompanySale(context.Background(), f.branchScope(), dto.CreateInterCompanySaleRequest{
		CustomerID:      f.customer.ID.String(),
		BranchCompanyID: f.branch.ID.String(),
		ParentCompanyID: f.parent.ID.String(),
		Lines: []dto.InterCompanyLineRequest{{
			ProductID:           f.tile.ID.String(),
			Quantity:            dec(qty),
			IsFromParentCompany: true,
			ParentUnitPrice:     &pp,
			BranchUnitPrice:     dec(branchPrice),
		}},
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.CustomerSaleID)
}

func TestApproveInterCompanySale(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	f.stock.set(f.tile.ID, f.parent.ID, dec("100"))

	saleID := f.draftInterCompanySale(t, "20", "10", "15")

	resp, err := f.svc.Approve(ctx, f.branchScope(), saleID)
	require.NoError(t, err)

	// Parent company's stock is debited, the branch never held the goods.
	assert.True(t, f.stock.qty(f.tile.ID, f.parent.ID).Equal(dec("80")))
	assert.True(t, f.stock.qty(f.tile.ID, f.branch.ID).IsZero())

	// Customer sale: 20 × 15 = 300, approved, fully payable, on credit.
	assert.Equal(t, model.SaleStatusApproved, resp.CustomerSale.Status)
	assert.Equal(t, model.SaleTypeCredit, resp.CustomerSale.SaleType)
	assert.True(t, resp.CustomerSale.Total.Equal(dec("300")))
	assert.True(t, resp.CustomerSale.PaidAmount.IsZero())
	assert.True(t, resp.CustomerSale.RemainingAmount.Equal(dec("300")))

	// Internal parent→branch sale: 20 × 10 = 200, already approved.
	require.NotNil(t, resp.ParentSale)
	assert.Equal(t, model.SaleStatusApproved, resp.ParentSale.Status)
	assert.True(t, resp.ParentSale.Total.Equal(dec("200")))
	assert.Equal(t, f.parent.ID.String(), resp.ParentSale.CompanyID)
	require.NotNil(t, resp.ParentSale.BuyerCompanyID)
	assert.Equal(t, f.branch.ID.String(), *resp.ParentSale.BuyerCompanyID)

	// Customer sale links back to the internal sale.
	require.NotNil(t, resp.CustomerSale.ParentSaleID)
	assert.Equal(t, resp.ParentSale.ID, *resp.CustomerSale.ParentSaleID)

	// Exactly one outbound movement against the parent's stock.
	moves, err := f.stock.ListMovements(ctx, f.tile.ID, f.parent.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, model.MovementSale, moves[0].Type)
	assert.True(t, moves[0].Quantity.Equal(dec("-20")))
}

func TestApproveInsufficientStock(t *testing.T) {
	f := newSaleFixture(t)
	f.stock.set(f.tile.ID, f.parent.ID, dec("10"))

	saleID := f.draftInterCompanySale(t, "20", "10", "15")

	_, err := f.svc.Approve(context.Background(), f.branchScope(), saleID)
	var stockErr *ledger.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, f.tile.ID, stockErr.ProductID)
	assert.Equal(t, f.parent.ID, stockErr.CompanyID)
	// No mutation happened: the conditional debit declined.
	assert.True(t, f.stock.qty(f.tile.ID, f.parent.ID).Equal(dec("10")))
}

func TestApproveTwiceConflicts(t *testing.T) {
	f := newSaleFixture(t)
	f.stock.set(f.tile.ID, f.parent.ID, dec("100"))
	saleID := f.draftInterCompanySale(t, "5", "10", "12")

	_, err := f.svc.Approve(context.Background(), f.branchScope(), saleID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), f.branchScope(), saleID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyApproved)
	// Stock is only debited once.
	assert.True(t, f.stock.qty(f.tile.ID, f.parent.ID).Equal(dec("95")))
}

func TestCreateInterCompanySaleCompaniesNotRelated(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	other := &model.Company{Name: "Other HQ", Code: "HQ2", Active: true}
	require.NoError(t, f.companies.Create(ctx, other))

	pp := dec("10")
	_, err := f.svc.CreateInterCompanySale(ctx, f.branchScope(), dto.CreateInterCompanySaleRequest{
		CustomerID:      f.customer.ID.String(),
		BranchCompanyID: f.branch.ID.String(),
		ParentCompanyID: other.ID.String(),
		Lines: []dto.InterCompanyLineRequest{{
			ProductID:           f.tile.ID.String(),
			Quantity:            dec("1"),
			IsFromParentCompany: true,
			ParentUnitPrice:     &pp,
			BranchUnitPrice:     dec("15"),
		}},
	})
	assert.ErrorIs(t, err, ledger.ErrCompaniesNotRelated)
}

func TestCreateInterCompanySaleBranchPriceBelowParentPrice(t *testing.T) {
	f := newSaleFixture(t)
	pp := dec("10")
	_, err := f.svc.CreateInterCompanySale(context.Background(), f.branchScope(), dto.CreateInterCompanySaleRequest{
		CustomerID:      f.customer.ID.String(),
		BranchCompanyID: f.branch.ID.String(),
		ParentCompanyID: f.parent.ID.String(),
		Lines: []dto.InterCompanyLineRequest{{
			ProductID:           f.tile.ID.String(),
			Quantity:            dec("1"),
			IsFromParentCompany: true,
			ParentUnitPrice:     &pp,
			BranchUnitPrice:     dec("9"),
		}},
	})
	require.Error(t, err)
	assert.Equal(t, ledger.KindValidation, ledger.KindOf(err))
}

func TestCreateInterCompanySaleScopeForbidden(t *testing.T) {
	f := newSaleFixture(t)
	pp := dec("10")
	_, err := f.svc.CreateInterCompanySale(context.Background(), Scope{ActingCompanyID: f.parent.ID}, dto.CreateInterCompanySaleRequest{
		CustomerID:      f.customer.ID.String(),
		BranchCompanyID: f.branch.ID.String(),
		ParentCompanyID: f.parent.ID.String(),
		Lines: []dto.InterCompanyLineRequest{{
			ProductID:           f.tile.ID.String(),
			Quantity:            dec("1"),
			IsFromParentCompany: true,
			ParentUnitPrice:     &pp,
			BranchUnitPrice:     dec("15"),
		}},
	})
	assert.ErrorIs(t, err, ledger.ErrScopeForbidden)
}

func TestRejectNonDraftConflicts(t *testing.T) {
	f := newSaleFixture(t)
	f.stock.set(f.tile.ID, f.parent.ID, dec("100"))
	saleID := f.draftInterCompanySale(t, "1", "10", "15")

	_, err := f.svc.Approve(context.Background(), f.branchScope(), saleID)
	require.NoError(t, err)

	err = f.svc.Reject(context.Background(), f.branchScope(), saleID)
	assert.ErrorIs(t, err, ledger.ErrNotDraft)
}

func TestSettleParentSale(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	f.stock.set(f.tile.ID, f.parent.ID, dec("100"))
	saleID := f.draftInterCompanySale(t, "20", "10", "15")

	resp, err := f.svc.Approve(ctx, f.branchScope(), saleID)
	require.NoError(t, err)
	internalID := uuid.MustParse(resp.ParentSale.ID)

	state, err := f.svc.SettleParentSale(ctx, f.branchScope(), internalID, dto.SettleParentSaleRequest{
		Amount: dec("150"),
		Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.True(t, state.PaidAmount.Equal(dec("150")))
	assert.True(t, state.RemainingAmount.Equal(dec("50")))
	assert.False(t, state.IsFullyPaid)

	state, err = f.svc.SettleParentSale(ctx, f.branchScope(), internalID, dto.SettleParentSaleRequest{
		Amount: dec("50"),
		Method: "cash",
	})
	require.NoError(t, err)
	assert.True(t, state.RemainingAmount.IsZero())
	assert.True(t, state.IsFullyPaid)

	// Settling never touches the customer sale.
	customerSale, err := f.sales.FindByID(ctx, saleID)
	require.NoError(t, err)
	assert.True(t, customerSale.PaidAmount.IsZero())
}

func TestSettleParentSaleRejectsCustomerSale(t *testing.T) {
	f := newSaleFixture(t)
	f.stock.set(f.tile.ID, f.parent.ID, dec("100"))
	saleID := f.draftInterCompanySale(t, "20", "10", "15")
	_, err := f.svc.Approve(context.Background(), f.branchScope(), saleID)
	require.NoError(t, err)

	_, err = f.svc.SettleParentSale(context.Background(), f.branchScope(), saleID, dto.SettleParentSaleRequest{
		Amount: dec("10"),
		Method: "cash",
	})
	assert.ErrorIs(t, err, ledger.ErrNotInternalSale)
}

func TestCreatePlainSaleAndApproveDebitsOwnStock(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	f.stock.set(f.tile.ID, f.branch.ID, dec("30"))

	resp, err := f.svc.CreateSale(ctx, f.branchScope(), dto.CreateSaleRequest{
		CompanyID:  f.branch.ID.String(),
		CustomerID: f.customer.ID.String(),
		SaleType:   model.SaleTypeCash,
		Lines: []dto.SaleLineRequest{{
			ProductID: f.tile.ID.String(),
			Quantity:  dec("10"),
			UnitPrice: dec("12"),
		}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(dec("120")))

	approved, err := f.svc.Approve(ctx, f.branchScope(), uuid.MustParse(resp.CustomerSaleID))
	require.NoError(t, err)
	assert.Nil(t, approved.ParentSale)
	assert.True(t, f.stock.qty(f.tile.ID, f.branch.ID).Equal(dec("20")))
}

func TestDiscountReducesTotal(t *testing.T) {
	f := newSaleFixture(t)
	resp, err := f.svc.CreateSale(context.Background(), f.branchScope(), dto.CreateSaleRequest{
		CompanyID:  f.branch.ID.String(),
		CustomerID: f.customer.ID.String(),
		SaleType:   model.SaleTypeCash,
		Lines: []dto.SaleLineRequest{{
			ProductID: f.tile.ID.String(),
			Quantity:  dec("10"),
			UnitPrice: dec("12"),
		}},
		Discount: dec("20"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(dec("100")))

	// A discount larger than the total is rejected outright.
	_, err = f.svc.CreateSale(context.Background(), f.branchScope(), dto.CreateSaleRequest{
		CompanyID:  f.branch.ID.String(),
		CustomerID: f.customer.ID.String(),
		SaleType:   model.SaleTypeCash,
		Lines: []dto.SaleLineRequest{{
			ProductID: f.tile.ID.String(),
			Quantity:  dec("1"),
			UnitPrice: dec("12"),
		}},
		Discount: dec("20"),
	})
	require.Error(t, err)
	assert.Equal(t, ledger.KindValidation, ledger.KindOf(err))
}
