package service

import (
	"context"
	"time"

	"github.com/Aidanden/SIMS-sub007/internal/model"
	"github.com/Aidanden/SIMS-sub007/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so runTx executes the
// transaction body directly without a database.

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── companies ─────────────────────────────────────────────────────────────────

type stubCompanyRepo struct {
	companies map[uuid.UUID]*model.Company
}

func newStubCompanyRepo() *stubCompanyRepo {
	return &stubCompanyRepo{companies: make(map[uuid.UUID]*model.Company)}
}

func (r *stubCompanyRepo) Create(_ context.Context, c *model.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.companies[c.ID] = c
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCompanyRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Company, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubCompanyRepo) List(_ context.Context) ([]model.Company, error) {
	out := make([]model.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, *c)
	}
	return out, nil
}

// ── customers / suppliers ─────────────────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

// ── products ──────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	costLogs []model.ProductCostLog
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, companyID *uuid.UUID, _, _ int) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if companyID == nil || p.CompanyID == *companyID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) UpdateCostTx(_ *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := cost
	p.Cost = &c
	return nil
}

func (r *stubProductRepo) CreateCostLogTx(_ *gorm.DB, log *model.ProductCostLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	r.costLogs = append(r.costLogs, *log)
	return nil
}

func (r *stubProductRepo) ListCostLogs(_ context.Context, productID uuid.UUID) ([]model.ProductCostLog, error) {
	var out []model.ProductCostLog
	for _, l := range r.costLogs {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ── stock ─────────────────────────────────────────────────────────────────────

type stockKey struct {
	product uuid.UUID
	company uuid.UUID
}

type stubStockRepo struct {
	quantities map[stockKey]decimal.Decimal
	prices     map[stockKey]decimal.Decimal
	movements  []model.StockMovement
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{
		quantities: make(map[stockKey]decimal.Decimal),
		prices:     make(map[stockKey]decimal.Decimal),
	}
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) set(product, company uuid.UUID, qty decimal.Decimal) {
	r.quantities[stockKey{product, company}] = qty
}

func (r *stubStockRepo) qty(product, company uuid.UUID) decimal.Decimal {
	return r.quantities[stockKey{product, company}]
}

func (r *stubStockRepo) Find(_ context.Context, productID, companyID uuid.UUID) (*model.ProductStock, error) {
	k := stockKey{productID, companyID}
	q, ok := r.quantities[k]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.ProductStock{ProductID: productID, CompanyID: companyID, Quantity: q, Price: r.prices[k]}, nil
}

func (r *stubStockRepo) Upsert(_ context.Context, s *model.ProductStock) error {
	k := stockKey{s.ProductID, s.CompanyID}
	r.quantities[k] = s.Quantity
	r.prices[k] = s.Price
	return nil
}

func (r *stubStockRepo) QuantityTx(_ *gorm.DB, productID, companyID uuid.UUID) (decimal.Decimal, error) {
	return r.quantities[stockKey{productID, companyID}], nil
}

func (r *stubStockRepo) DebitTx(_ *gorm.DB, productID, companyID uuid.UUID, qty decimal.Decimal) (bool, error) {
	k := stockKey{productID, companyID}
	cur, ok := r.quantities[k]
	if !ok || cur.LessThan(qty) {
		return false, nil
	}
	r.quantities[k] = cur.Sub(qty)
	return true, nil
}

func (r *stubStockRepo) CreditTx(_ *gorm.DB, productID, companyID uuid.UUID, qty decimal.Decimal) error {
	k := stockKey{productID, companyID}
	r.quantities[k] = r.quantities[k].Add(qty)
	return nil
}

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, productID, companyID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID && m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── sales ─────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales       map[uuid.UUID]*model.Sale
	nextInvoice int64
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) CreateTx(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Lines {
		if s.Lines[i].ID == uuid.Nil {
			s.Lines[i].ID = uuid.New()
		}
		s.Lines[i].SaleID = s.ID
	}
	s.CreatedAt = time.Now()
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) NextInvoiceNumberTx(_ context.Context, _ *gorm.DB) (int64, error) {
	r.nextInvoice++
	return r.nextInvoice, nil
}

func (r *stubSaleRepo) TransitionStatusTx(_ *gorm.DB, id uuid.UUID, from, to string, approvedAt *time.Time) (bool, error) {
	s, ok := r.sales[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	if approvedAt != nil {
		s.ApprovedAt = approvedAt
	}
	return true, nil
}

func (r *stubSaleRepo) UpdateTotalsTx(_ *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.PaidAmount = paid
	s.RemainingAmount = remaining
	s.IsFullyPaid = fullyPaid
	return nil
}

func (r *stubSaleRepo) SetSaleTypeTx(_ *gorm.DB, id uuid.UUID, saleType string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.SaleType = saleType
	return nil
}

func (r *stubSaleRepo) SetParentSaleTx(_ *gorm.DB, id, parentSaleID uuid.UUID) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p := parentSaleID
	s.ParentSaleID = &p
	return nil
}

func (r *stubSaleRepo) CreatePaymentTx(_ *gorm.DB, p *model.SalePayment) error {
	s, ok := r.sales[p.SaleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.Payments = append(s.Payments, *p)
	return nil
}

func (r *stubSaleRepo) List(_ context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if filter.CompanyID != nil && s.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

// ── purchases ─────────────────────────────────────────────────────────────────

type stubPurchaseRepo struct {
	purchases map[uuid.UUID]*model.Purchase
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{purchases: make(map[uuid.UUID]*model.Purchase)}
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

func (r *stubPurchaseRepo) CreateTx(_ context.Context, _ *gorm.DB, p *model.Purchase) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Lines {
		if p.Lines[i].ID == uuid.Nil {
			p.Lines[i].ID = uuid.New()
		}
		p.Lines[i].PurchaseID = p.ID
	}
	for i := range p.Expenses {
		if p.Expenses[i].ID == uuid.Nil {
			p.Expenses[i].ID = uuid.New()
		}
		p.Expenses[i].PurchaseID = p.ID
	}
	p.CreatedAt = time.Now()
	r.purchases[p.ID] = p
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPurchaseRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubPurchaseRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubPurchaseRepo) MarkApprovedTx(_ *gorm.DB, id uuid.UUID, totalExpenses decimal.Decimal, approvedAt time.Time) (bool, error) {
	p, ok := r.purchases[id]
	if !ok || p.IsApproved {
		return false, nil
	}
	p.IsApproved = true
	p.ApprovedAt = &approvedAt
	p.TotalExpenses = totalExpenses
	return true, nil
}

func (r *stubPurchaseRepo) UpdateTotalsTx(_ *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error {
	p, ok := r.purchases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PaidAmount = paid
	p.RemainingAmount = remaining
	p.IsFullyPaid = fullyPaid
	return nil
}

func (r *stubPurchaseRepo) CreateExpenseTx(_ *gorm.DB, e *model.PurchaseExpense) error {
	p, ok := r.purchases[e.PurchaseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	p.Expenses = append(p.Expenses, *e)
	return nil
}

func (r *stubPurchaseRepo) CreateReceiptTx(_ *gorm.DB, rcpt *model.SupplierPaymentReceipt) error {
	p, ok := r.purchases[rcpt.PurchaseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if rcpt.ID == uuid.Nil {
		rcpt.ID = uuid.New()
	}
	p.Receipts = append(p.Receipts, *rcpt)
	return nil
}

func (r *stubPurchaseRepo) CreateExpenseCategory(_ context.Context, c *model.ExpenseCategory) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (r *stubPurchaseRepo) List(_ context.Context, filter repository.PurchaseFilter) ([]model.Purchase, int64, error) {
	var out []model.Purchase
	for _, p := range r.purchases {
		if filter.CompanyID != nil && p.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Approved != nil && p.IsApproved != *filter.Approved {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// ── returns ───────────────────────────────────────────────────────────────────

type stubReturnRepo struct {
	returns map[uuid.UUID]*model.SaleReturn
	orders  map[uuid.UUID]*model.ReturnOrder
}

func newStubReturnRepo() *stubReturnRepo {
	return &stubReturnRepo{
		returns: make(map[uuid.UUID]*model.SaleReturn),
		orders:  make(map[uuid.UUID]*model.ReturnOrder),
	}
}

func (r *stubReturnRepo) DB() *gorm.DB { return nil }

func (r *stubReturnRepo) CreateTx(_ context.Context, _ *gorm.DB, ret *model.SaleReturn) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	for i := range ret.Lines {
		if ret.Lines[i].ID == uuid.Nil {
			ret.Lines[i].ID = uuid.New()
		}
		ret.Lines[i].SaleReturnID = ret.ID
	}
	if ret.Order != nil {
		if ret.Order.ID == uuid.Nil {
			ret.Order.ID = uuid.New()
		}
		ret.Order.SaleReturnID = ret.ID
		r.orders[ret.Order.ID] = ret.Order
	}
	ret.CreatedAt = time.Now()
	r.returns[ret.ID] = ret
	return nil
}

func (r *stubReturnRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SaleReturn, error) {
	ret, ok := r.returns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ret, nil
}

func (r *stubReturnRepo) FindOrderByID(_ context.Context, id uuid.UUID) (*model.ReturnOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubReturnRepo) FindByOrderTx(_ *gorm.DB, orderID uuid.UUID) (*model.SaleReturn, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(context.Background(), o.SaleReturnID)
}

func (r *stubReturnRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.SaleReturn, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubReturnRepo) TransitionOrderStatusTx(_ *gorm.DB, id uuid.UUID, from, to string, notes *string, completedAt *time.Time) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	if notes != nil {
		o.Notes = notes
	}
	if completedAt != nil {
		o.CompletedAt = completedAt
	}
	return true, nil
}

func (r *stubReturnRepo) UpdateTotalsTx(_ *gorm.DB, id uuid.UUID, paid, remaining decimal.Decimal, fullyPaid bool) error {
	ret, ok := r.returns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ret.PaidAmount = paid
	ret.RemainingAmount = remaining
	ret.IsFullyPaid = fullyPaid
	return nil
}

func (r *stubReturnRepo) CreatePaymentTx(_ *gorm.DB, p *model.ReturnPayment) error {
	ret, ok := r.returns[p.SaleReturnID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	ret.Payments = append(ret.Payments, *p)
	return nil
}
