package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boost-service/internal/services"
	"boost-service/pkg/common"
)

type WithdrawalHandler struct {
	Withdrawals *services.WithdrawalService
}

func NewWithdrawalHandler(withdrawals *services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{Withdrawals: withdrawals}
}

func (h *WithdrawalHandler) Request(c *gin.Context) {
	var req services.WithdrawRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	withdrawal, err := h.Withdrawals.RequestWithdrawal(CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(withdrawal, "Withdrawal requested"))
}

func (h *WithdrawalHandler) List(c *gin.Context) {
	all := c.Query("all") == "true"
	items, err := h.Withdrawals.ListWithdrawals(CurrentUser(c), all)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(items, "Withdrawals"))
}

func (h *WithdrawalHandler) Balance(c *gin.Context) {
	balance, err := h.Withdrawals.WithdrawableBalance(CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"balance": balance}, "Withdrawable balance"))
}
