// Package ledger holds the domain error taxonomy shared by the core services.
// Every error the core reports carries a Kind so callers can distinguish
// validation problems, state conflicts, business-rule violations and
// integrity failures without string matching.
package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

type Kind int

const (
	KindValidation Kind = iota + 1 // bad input, no side effects
	KindNotFound                   // referenced record does not exist
	KindConflict                   // state conflict (already approved, not pending)
	KindBusiness                   // business-rule violation, transaction aborted
	KindIntegrity                  // integrity failure, fatal for the operation
)

// Error is a typed domain error. Code is a stable machine-readable identifier.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrAlreadyApproved       = newErr(KindConflict, "ALREADY_APPROVED", "record is already approved")
	ErrNotDraft              = newErr(KindConflict, "NOT_DRAFT", "sale is no longer in draft state")
	ErrReturnOrderNotPending = newErr(KindConflict, "RETURN_ORDER_NOT_PENDING", "return order is not pending")
	ErrCompaniesNotRelated   = newErr(KindBusiness, "COMPANIES_NOT_RELATED", "branch company does not belong to the given parent")
	ErrCustomerNotFound      = newErr(KindNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
	ErrCompanyNotFound       = newErr(KindNotFound, "COMPANY_NOT_FOUND", "company not found")
	ErrSupplierNotFound      = newErr(KindNotFound, "SUPPLIER_NOT_FOUND", "supplier not found")
	ErrProductNotFound       = newErr(KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrSaleNotFound          = newErr(KindNotFound, "SALE_NOT_FOUND", "sale not found")
	ErrPurchaseNotFound      = newErr(KindNotFound, "PURCHASE_NOT_FOUND", "purchase not found")
	ErrReturnNotFound        = newErr(KindNotFound, "RETURN_NOT_FOUND", "sale return not found")
	ErrReturnOrderNotFound   = newErr(KindNotFound, "RETURN_ORDER_NOT_FOUND", "return order not found")

	ErrMissingSupplierForActualExpense = newErr(KindValidation, "MISSING_SUPPLIER_FOR_ACTUAL_EXPENSE",
		"actual expenses must specify a supplier")
	ErrNonPositiveAmount = newErr(KindValidation, "NON_POSITIVE_AMOUNT", "amount must be greater than zero")
	ErrDeepHierarchy     = newErr(KindBusiness, "HIERARCHY_TOO_DEEP", "a branch's parent must not itself be a branch")
	ErrScopeForbidden    = newErr(KindBusiness, "SCOPE_FORBIDDEN", "acting company is not allowed to perform this operation")
	ErrNotInternalSale   = newErr(KindBusiness, "NOT_INTERNAL_SALE", "sale is not an internal parent-to-branch sale")
	ErrSaleNotApproved   = newErr(KindBusiness, "SALE_NOT_APPROVED", "sale is not approved")
)

// InsufficientStockError names the product that failed the stock check; the
// whole approval transaction is rolled back when it is returned.
type InsufficientStockError struct {
	ProductID uuid.UUID
	CompanyID uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s at company %s", e.ProductID, e.CompanyID)
}

// DomainKind maps to the taxonomy for typed errors from this package;
// InsufficientStockError is a business-rule violation.
func (e *InsufficientStockError) DomainKind() Kind { return KindBusiness }

// KindOf extracts the taxonomy kind from any error produced by the core.
// Unknown errors are treated as integrity failures.
func KindOf(err error) Kind {
	switch e := err.(type) {
	case *Error:
		return e.Kind
	case *InsufficientStockError:
		return e.DomainKind()
	default:
		return KindIntegrity
	}
}

// Validation builds an input-validation error with a free-form message.
func Validation(format string, args ...any) *Error {
	return newErr(KindValidation, "INVALID_INPUT", format, args...)
}

// Integrity builds a fatal integrity error (e.g. a line referencing a deleted
// product).
func Integrity(format string, args ...any) *Error {
	return newErr(KindIntegrity, "INTEGRITY", format, args...)
}
