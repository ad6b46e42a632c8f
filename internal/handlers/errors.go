package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"boost-service/internal/services"
	"boost-service/pkg/common"
)

// respondError maps service errors onto the HTTP taxonomy. Unknown errors are
// logged with context and surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	var cfgErr *services.ConfigurationError
	var valErr *services.ValidationError

	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(valErr.Msg, nil, http.StatusBadRequest))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Not found", nil, http.StatusNotFound))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, common.NewErrorResponse("Operation not allowed", nil, http.StatusForbidden))
	case errors.Is(err, services.ErrAlreadyAssigned):
		c.JSON(http.StatusConflict, common.NewErrorResponse("Order already assigned to a booster", nil, http.StatusConflict))
	case errors.Is(err, services.ErrDuplicateDispute):
		c.JSON(http.StatusConflict, common.NewErrorResponse("Order already has a dispute", nil, http.StatusConflict))
	case errors.Is(err, services.ErrOverlappingRange):
		c.JSON(http.StatusConflict, common.NewErrorResponse("Range overlaps an enabled pricing range", nil, http.StatusConflict))
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, common.NewErrorResponse("Order state does not allow this operation", nil, http.StatusConflict))
	case errors.Is(err, services.ErrPaymentPending):
		c.JSON(http.StatusConflict, common.NewErrorResponse("Order already has a pending payment", nil, http.StatusConflict))
	case errors.Is(err, services.ErrDisputeResolved):
		c.JSON(http.StatusConflict, common.NewErrorResponse("Dispute is already resolved", nil, http.StatusConflict))
	case errors.Is(err, services.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Amount not available for withdrawal", nil, http.StatusBadRequest))
	case errors.Is(err, services.ErrWithdrawalOpen):
		c.JSON(http.StatusConflict, common.NewErrorResponse("A withdrawal is already in progress", nil, http.StatusConflict))
	case errors.Is(err, services.ErrRefundFailed):
		c.JSON(http.StatusBadGateway, common.NewErrorResponse("Refund failed, cancellation not applied. Try again or contact support.", nil, http.StatusBadGateway))
	case errors.As(err, &cfgErr):
		// Operator problem, not a user problem. Never fall back to a price.
		logrus.Errorf("pricing configuration error: %v", cfgErr)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Pricing is not configured for this request", nil, http.StatusInternalServerError))
	default:
		logrus.WithField("path", c.FullPath()).Errorf("unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Internal server error", nil, http.StatusInternalServerError))
	}
}
