package handler

import (
	"net/http"

	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/middleware"
	"github.com/Aidanden/SIMS-sub007/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// Apply records a payment against a sale, a purchase or a sale return and
// rolls the paid/remaining/fully-paid state forward.
func (h *PaymentsHandler) Apply(c *gin.Context) {
	var req dto.ApplyPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Apply(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
