package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boost-service/internal/models"
	"boost-service/internal/services"
	"boost-service/pkg/common"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid id", nil, http.StatusBadRequest))
		return 0, false
	}
	return uint(id), true
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	order, err := h.Orders.CreateOrder(CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(order, "Order created"))
}

func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	orders, total, err := h.Orders.ListOrders(CurrentUser(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.PaginateResponse(orders, total, page, limit, "Orders"))
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.Orders.GetOrder(id)
	if err != nil {
		respondError(c, err)
		return
	}

	user := CurrentUser(c)
	if user.Role == models.RoleClient && order.UserID != user.ID {
		respondError(c, services.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(order, "Order"))
}

func (h *OrderHandler) Accept(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.Orders.AcceptOrder(id, CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(order, "Order accepted"))
}

func (h *OrderHandler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.Orders.CompleteOrder(id, CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(order, "Order completed"))
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req cancelRequest
	_ = c.ShouldBindJSON(&req) // reason is optional

	order, err := h.Orders.CancelOrder(id, CurrentUser(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled",
		"order": gin.H{
			"id":               order.ID,
			"status":           order.Status,
			"refund_processed": order.RefundProcessed,
		},
	})
}
