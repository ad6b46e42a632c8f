package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boost-service/internal/services"
	"boost-service/pkg/common"
)

type DisputeHandler struct {
	Disputes *services.DisputeService
}

func NewDisputeHandler(disputes *services.DisputeService) *DisputeHandler {
	return &DisputeHandler{Disputes: disputes}
}

type openDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *DisputeHandler) Open(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	var req openDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	dispute, err := h.Disputes.OpenDispute(orderID, CurrentUser(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(dispute, "Dispute opened"))
}

func (h *DisputeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	dispute, messages, err := h.Disputes.GetDispute(id, CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"dispute":  dispute,
		"messages": messages,
	}, "Dispute"))
}

type disputeMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *DisputeHandler) AddMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req disputeMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	msg, err := h.Disputes.AddMessage(id, CurrentUser(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(msg, "Message added"))
}

type resolveDisputeRequest struct {
	Status     string `json:"status" binding:"required"`
	Resolution string `json:"resolution"`
}

func (h *DisputeHandler) Resolve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	dispute, err := h.Disputes.Resolve(id, CurrentUser(c), req.Status, req.Resolution)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(dispute, "Dispute resolved"))
}
