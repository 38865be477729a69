package handler

import (
	"net/http"
	"reflect"

	"github.com/Aidanden/SIMS-sub007/internal/apierror"
	"github.com/Aidanden/SIMS-sub007/internal/ledger"
	"github.com/Aidanden/SIMS-sub007/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the domain error taxonomy onto HTTP statuses. Integrity
// and unknown errors are logged with full detail and answered with a safe 500.
func respondError(c *gin.Context, err error) {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		c.JSON(http.StatusBadRequest, envelope(err))
	case ledger.KindNotFound:
		c.JSON(http.StatusNotFound, envelope(err))
	case ledger.KindConflict, ledger.KindBusiness:
		c.JSON(http.StatusConflict, envelope(err))
	default:
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("operation failed")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

func envelope(err error) *apierror.APIError {
	if de, ok := err.(*ledger.Error); ok {
		return apierror.WithCode(de.Code, de.Msg)
	}
	if _, ok := err.(*ledger.InsufficientStockError); ok {
		return apierror.WithCode("INSUFFICIENT_STOCK", err.Error())
	}
	return apierror.New(err.Error())
}
