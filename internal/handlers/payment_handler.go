package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boost-service/internal/services"
	"boost-service/pkg/common"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

func (h *PaymentHandler) CreatePix(c *gin.Context) {
	var req services.CreatePixPaymentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	if req.OrderID == 0 || req.Phone == "" || req.TaxID == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("order_id, phone and tax_id are required", nil, http.StatusBadRequest))
		return
	}

	payment, err := h.Payments.CreatePixPayment(CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(payment, "Payment created"))
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	payment, err := h.Payments.GetPayment(id, CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(payment, "Payment"))
}
