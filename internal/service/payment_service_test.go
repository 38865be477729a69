package service

import (
	"context"
	"testing"

	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/ledger"
	"github.com/Aidanden/SIMS-sub007/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type paymentFixture struct {
	sales     *stubSaleRepo
	purchases *stubPurchaseRepo
	returns   *stubReturnRepo
	svc       PaymentService
	companyID uuid.UUID
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		sales:     newStubSaleRepo(),
		purchases: newStubPurchaseRepo(),
		returns:   newStubReturnRepo(),
		companyID: uuid.New(),
	}
	f.svc = NewPaymentService(f.sales, f.purchases, f.returns)
	return f
}

func (f *paymentFixture) scope() Scope { return Scope{ActingCompanyID: f.companyID} }

func (f *paymentFixture) approvedSale(t *testing.T, total string) *model.Sale {
	t.Helper()
	sale := &model.Sale{
		CompanyID:       f.companyID,
		Status:          model.SaleStatusApproved,
		SaleType:        model.SaleTypeCredit,
		Total:           dec(total),
		PaidAmount:      decimal.Zero,
		RemainingAmount: dec(total),
	}
	require.NoError(t, f.sales.CreateTx(context.Background(), nil, sale))
	return sale
}

func TestApplyPaymentPreservesRunningTotals(t *testing.T) {
	f := newPaymentFixture()
	sale := f.approvedSale(t, "300")

	state, err := f.svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: dec("100"), Method: "cash",
	})
	require.NoError(t, err)
	assert.True(t, state.PaidAmount.Equal(dec("100")))
	assert.True(t, state.RemainingAmount.Equal(dec("200")))
	assert.False(t, state.IsFullyPaid)

	state, err = f.svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: dec("200"), Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.True(t, state.PaidAmount.Equal(dec("300")))
	assert.True(t, state.RemainingAmount.IsZero())
	assert.True(t, state.IsFullyPaid)

	// paid + remaining = total holds after every application, and each payment
	// left an immutable row.
	assert.True(t, sale.PaidAmount.Add(sale.RemainingAmount).Equal(sale.Total))
	assert.Len(t, sale.Payments, 2)
}

func TestApplyPaymentAcceptsOverpayment(t *testing.T) {
	f := newPaymentFixture()
	sale := f.approvedSale(t, "300")

	state, err := f.svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: dec("400"), Method: "cash",
	})
	require.NoError(t, err)
	assert.True(t, state.PaidAmount.Equal(dec("400")))
	assert.True(t, state.RemainingAmount.Equal(dec("-100")))
	assert.True(t, state.IsFullyPaid)
}

func TestApplyPaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newPaymentFixture()
	sale := f.approvedSale(t, "300")

	_, err := f.svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: decimal.Zero, Method: "cash",
	})
	assert.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
}

func TestApplyPaymentRequiresApprovedSale(t *testing.T) {
	f := newPaymentFixture()
	sale := &model.Sale{
		CompanyID:       f.companyID,
		Status:          model.SaleStatusDraft,
		Total:           dec("100"),
		RemainingAmount: dec("100"),
	}
	require.NoError(t, f.sales.CreateTx(context.Background(), nil, sale))

	_, err := f.svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: dec("50"), Method: "cash",
	})
	assert.ErrorIs(t, err, ledger.ErrSaleNotApproved)
}

func TestApplyPaymentToPurchaseRecordsReceipt(t *testing.T) {
	f := newPaymentFixture()
	purchase := &model.Purchase{
		CompanyID:       f.companyID,
		SupplierID:      uuid.New(),
		Currency:        "USD",
		ExchangeRate:    dec("5"),
		Total:           dec("500"),
		PaidAmount:      decimal.Zero,
		RemainingAmount: dec("500"),
		IsApproved:      true,
	}
	require.NoError(t, f.purchases.CreateTx(context.Background(), nil, purchase))

	foreign := dec("60")
	rate := dec("5")
	state, err := f.svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind:          dto.PaymentKindPurchase,
		ID:            purchase.ID.String(),
		Amount:        dec("300"),
		Method:        "bank_transfer",
		AmountForeign: &foreign,
		ExchangeRate:  &rate,
	})
	require.NoError(t, err)
	assert.True(t, state.RemainingAmount.Equal(dec("200")))
	require.Len(t, purchase.Receipts, 1)
	require.NotNil(t, purchase.Receipts[0].AmountForeign)
	assert.True(t, purchase.Receipts[0].AmountForeign.Equal(dec("60")))
}

func TestApplyPaymentToReturn(t *testing.T) {
	f := newPaymentFixture()
	ret := &model.SaleReturn{
		SaleID:          uuid.New(),
		CompanyID:       f.companyID,
		Total:           dec("75"),
		PaidAmount:      decimal.Zero,
		RemainingAmount: dec("75"),
	}
	require.NoError(t, f.returns.CreateTx(context.Background(), nil, ret))

	state, err := f.svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSaleReturn, ID: ret.ID.String(), Amount: dec("75"), Method: "cash",
	})
	require.NoError(t, err)
	assert.True(t, state.IsFullyPaid)
	assert.Len(t, ret.Payments, 1)
}

// contendedSaleRepo runs a hook the first time the payment path takes the row
// lock, standing in for a competing payment that commits while this caller
// waits for the lock.
type contendedSaleRepo struct {
	*stubSaleRepo
	onLockedRead func()
}

func (r *contendedSaleRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	if hook := r.onLockedRead; hook != nil {
		r.onLockedRead = nil
		hook()
	}
	return r.stubSaleRepo.FindForUpdateTx(tx, id)
}

func TestApplyPaymentInterleavedKeepsTotalsConsistent(t *testing.T) {
	f := newPaymentFixture()
	sale := f.approvedSale(t, "300")

	repo := &contendedSaleRepo{stubSaleRepo: f.sales}
	svc := NewPaymentService(repo, f.purchases, f.returns)

	// A second payment of 100 lands between this caller's precondition read
	// and its locked read.
	repo.onLockedRead = func() {
		_, err := svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
			Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: dec("100"), Method: "cash",
		})
		require.NoError(t, err)
	}

	state, err := svc.Apply(context.Background(), f.scope(), dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: dec("100"), Method: "cash",
	})
	require.NoError(t, err)

	// Both payments survive and the totals account for both of them.
	assert.True(t, state.PaidAmount.Equal(dec("200")))
	assert.True(t, state.RemainingAmount.Equal(dec("100")))
	require.Len(t, sale.Payments, 2)

	sum := decimal.Zero
	for _, p := range sale.Payments {
		sum = sum.Add(p.Amount)
	}
	assert.True(t, sale.PaidAmount.Equal(sum))
	assert.True(t, sale.PaidAmount.Add(sale.RemainingAmount).Equal(sale.Total))
}

func TestApplyPaymentScopeForbidden(t *testing.T) {
	f := newPaymentFixture()
	sale := f.approvedSale(t, "100")

	_, err := f.svc.Apply(context.Background(), Scope{ActingCompanyID: uuid.New()}, dto.ApplyPaymentRequest{
		Kind: dto.PaymentKindSale, ID: sale.ID.String(), Amount: dec("50"), Method: "cash",
	})
	assert.ErrorIs(t, err, ledger.ErrScopeForbidden)
}
