package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"boost-service/internal/services"
)

type WebhookHandler struct {
	Webhooks *services.WebhookService
	Pix      *services.PixService
}

func NewWebhookHandler(webhooks *services.WebhookService, pix *services.PixService) *WebhookHandler {
	return &WebhookHandler{Webhooks: webhooks, Pix: pix}
}

// HandleProviderWebhook acknowledges with 200 even when the business outcome
// is a failure; only transport-level problems (bad signature, bad JSON) get
// error statuses. The provider retries anything else into a storm.
func (h *WebhookHandler) HandleProviderWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if !h.Pix.VerifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	result := h.Webhooks.HandleEvent(event, body)
	c.JSON(http.StatusOK, result)
}
