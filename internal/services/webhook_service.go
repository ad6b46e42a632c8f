package services

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/metrics"
	"boost-service/internal/models"
)

// WebhookEvent is the provider's notification envelope.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WebhookResult is always acknowledged with HTTP 200 to the provider; the
// business outcome travels in Processed/Error. Collapsing the two layers into
// one error path would turn every business hiccup into a provider retry storm.
type WebhookResult struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

type billingPaidData struct {
	PixQrCode struct {
		ID string `json:"id"`
	} `json:"pixQrCode"`
}

type withdrawData struct {
	TransactionID string `json:"transactionId"`
	Receipt       string `json:"receipt"`
	Reason        string `json:"reason"`
}

// WebhookService reconciles provider events with local payment/order state.
type WebhookService struct {
	DB            *gorm.DB
	Orders        *OrderService
	Notifications *NotificationService
}

func NewWebhookService(db *gorm.DB, orders *OrderService, notifications *NotificationService) *WebhookService {
	return &WebhookService{DB: db, Orders: orders, Notifications: notifications}
}

// HandleEvent processes one provider event. It must be safe to receive the
// same event any number of times.
func (s *WebhookService) HandleEvent(event WebhookEvent, raw []byte) WebhookResult {
	var result WebhookResult
	var providerID string

	switch event.Event {
	case "billing.paid":
		result, providerID = s.handleBillingPaid(event.Data)
	case "withdraw.done":
		result, providerID = s.handleWithdraw(event.Data, models.WithdrawalCompleted)
	case "withdraw.failed":
		result, providerID = s.handleWithdraw(event.Data, models.WithdrawalFailed)
	default:
		result = WebhookResult{Received: true, Processed: false, Message: "Event ignored"}
	}

	outcome := "ok"
	if !result.Processed {
		outcome = "rejected"
	}
	metrics.WebhookEventsTotal.WithLabelValues(event.Event, outcome).Inc()

	s.logCallback(event.Event, providerID, raw, result)
	return result
}

func (s *WebhookService) handleBillingPaid(data json.RawMessage) (WebhookResult, string) {
	var payload billingPaidData
	if err := json.Unmarshal(data, &payload); err != nil || payload.PixQrCode.ID == "" {
		return WebhookResult{Received: true, Processed: false, Error: "Pagamento não encontrado"}, ""
	}
	providerID := payload.PixQrCode.ID

	var payment models.Payment
	if err := s.DB.Where("provider_id = ?", providerID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return WebhookResult{Received: true, Processed: false, Error: "Pagamento não encontrado"}, providerID
		}
		logrus.Errorf("lookup payment %s: %v", providerID, err)
		return WebhookResult{Received: true, Processed: false, Error: "Internal error"}, providerID
	}

	// Replayed event: already applied, acknowledge without touching anything.
	if payment.Status == models.PaymentPaid {
		return WebhookResult{Received: true, Processed: true, Message: "Already processed"}, providerID
	}
	if payment.Status == models.PaymentRefunded {
		return WebhookResult{Received: true, Processed: false, Error: "Payment already refunded"}, providerID
	}

	var order models.Order
	if err := s.DB.First(&order, payment.OrderID).Error; err != nil {
		logrus.Errorf("lookup order %d for payment %s: %v", payment.OrderID, providerID, err)
		return WebhookResult{Received: true, Processed: false, Error: "Order not found"}, providerID
	}

	var notification *models.Notification
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
			Updates(map[string]interface{}{
				"status":  models.PaymentPaid,
				"paid_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent delivery of the same event won the race.
			return ErrInvalidTransition
		}

		// An order accepted while still PENDING is already past PAID; the
		// confirmation then only needs to land on the payment row.
		if err := s.Orders.markPaidTx(tx, order.ID); err != nil && err != ErrInvalidTransition {
			return err
		}

		var nerr error
		notification, nerr = s.Notifications.NotifyTx(tx, order.UserID, "Pagamento confirmado",
			"Recebemos seu pagamento. Seu pedido está disponível para os boosters.")
		return nerr
	})
	if err == ErrInvalidTransition {
		return WebhookResult{Received: true, Processed: true, Message: "Already processed"}, providerID
	}
	if err != nil {
		logrus.WithField("provider_id", providerID).Errorf("apply billing.paid: %v", err)
		return WebhookResult{Received: true, Processed: false, Error: "Failed to apply payment"}, providerID
	}

	s.Notifications.EnqueueDelivery(notification)

	logrus.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"provider_id": providerID,
	}).Info("payment confirmed via webhook")
	return WebhookResult{Received: true, Processed: true, Message: "Payment confirmed"}, providerID
}

func (s *WebhookService) handleWithdraw(data json.RawMessage, status string) (WebhookResult, string) {
	var payload withdrawData
	if err := json.Unmarshal(data, &payload); err != nil || payload.TransactionID == "" {
		return WebhookResult{Received: true, Processed: false, Error: "Withdrawal not found"}, ""
	}

	updates := map[string]interface{}{"status": status}
	if payload.Receipt != "" {
		updates["receipt"] = payload.Receipt
	}
	if status == models.WithdrawalFailed && payload.Reason != "" {
		updates["comment"] = payload.Reason
	}

	res := s.DB.Model(&models.Withdrawal{}).
		Where("provider_ref = ? AND status IN ?", payload.TransactionID,
			[]string{models.WithdrawalPending, models.WithdrawalProcessing}).
		Updates(updates)
	if res.Error != nil {
		logrus.Errorf("update withdrawal %s: %v", payload.TransactionID, res.Error)
		return WebhookResult{Received: true, Processed: false, Error: "Internal error"}, payload.TransactionID
	}
	if res.RowsAffected == 0 {
		// Possibly a foreign or delayed event; report without raising.
		return WebhookResult{Received: true, Processed: false, Error: "Withdrawal not found"}, payload.TransactionID
	}

	logrus.WithFields(logrus.Fields{
		"provider_ref": payload.TransactionID,
		"status":       status,
	}).Info("withdrawal updated via webhook")
	return WebhookResult{Received: true, Processed: true, Message: "Withdrawal updated"}, payload.TransactionID
}

func (s *WebhookService) logCallback(eventType, providerID string, raw []byte, result WebhookResult) {
	response, _ := json.Marshal(result)
	entry := models.CallbackLog{
		EventType:  eventType,
		ProviderID: providerID,
		Request:    string(raw),
		Response:   string(response),
		Processed:  result.Processed,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		logrus.Errorf("persist callback log: %v", err)
	}
}
