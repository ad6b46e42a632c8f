package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/metrics"
	"boost-service/internal/models"
)

// RefundSweeper cancels and refunds paid orders no booster claimed within the
// configured timeout. It is triggered hourly and must tolerate overlapping
// runs: the conditional cancel update means a second sweep that raced the
// first simply matches zero rows.
type RefundSweeper struct {
	DB            *gorm.DB
	Pix           PixAPI
	Notifications *NotificationService
	TimeoutHours  int
}

func NewRefundSweeper(db *gorm.DB, pix PixAPI, notifications *NotificationService, timeoutHours int) *RefundSweeper {
	return &RefundSweeper{
		DB:            db,
		Pix:           pix,
		Notifications: notifications,
		TimeoutHours:  timeoutHours,
	}
}

type SweepResult struct {
	Refunded []uint
	Failed   []uint
}

// Run processes one sweep. Orders are handled independently; one failure never
// aborts the batch. A zero timeout disables the sweeper (deployment kill
// switch), returning an empty result.
func (s *RefundSweeper) Run() SweepResult {
	var result SweepResult
	if s.TimeoutHours <= 0 {
		return result
	}

	cutoff := time.Now().Add(-time.Duration(s.TimeoutHours) * time.Hour)

	var stale []models.Order
	err := s.DB.Where("status = ? AND booster_id IS NULL AND updated_at < ?", models.OrderPaid, cutoff).
		Find(&stale).Error
	if err != nil {
		logrus.Errorf("refund sweeper: select stale orders: %v", err)
		return result
	}

	for i := range stale {
		order := &stale[i]
		if err := s.refundAndCancel(order); err != nil {
			logrus.WithField("order_id", order.ID).Errorf("refund sweeper: %v", err)
			metrics.SweeperRefundsTotal.WithLabelValues("failed").Inc()
			result.Failed = append(result.Failed, order.ID)
			continue
		}
		metrics.SweeperRefundsTotal.WithLabelValues("refunded").Inc()
		result.Refunded = append(result.Refunded, order.ID)
	}

	if len(result.Refunded) > 0 || len(result.Failed) > 0 {
		logrus.WithFields(logrus.Fields{
			"refunded": len(result.Refunded),
			"failed":   len(result.Failed),
		}).Info("refund sweep finished")
	}
	return result
}

// refundAndCancel refunds the order's payment, then atomically cancels the
// order. The refund comes first: an order is never cancelled without a
// successful refund.
func (s *RefundSweeper) refundAndCancel(order *models.Order) error {
	var payment models.Payment
	err := s.DB.Where("order_id = ? AND status = ?", order.ID, models.PaymentPaid).
		First(&payment).Error
	if err != nil {
		return fmt.Errorf("paid payment not found: %w", err)
	}

	if err := s.Pix.Refund(payment.ProviderID, payment.Amount); err != nil {
		return fmt.Errorf("refund: %w", err)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ? AND booster_id IS NULL", order.ID, models.OrderPaid).
			Updates(map[string]interface{}{
				"status":           models.OrderCancelled,
				"cancel_reason":    "AUTO_TIMEOUT",
				"cancelled_by":     models.CancelledBySystem,
				"refund_processed": true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Claimed or cancelled by a concurrent actor after selection.
			return ErrInvalidTransition
		}
		return tx.Model(&payment).Update("status", models.PaymentRefunded).Error
	})
	if err != nil {
		return err
	}

	metrics.OrdersCancelledTotal.WithLabelValues(models.CancelledBySystem).Inc()

	// Best effort: a notification failure does not undo the cancellation.
	if err := s.Notifications.Notify(order.UserID, "Pedido cancelado",
		fmt.Sprintf("Seu pedido #%d foi cancelado e reembolsado: nenhum booster o aceitou a tempo.", order.ID)); err != nil {
		logrus.Errorf("notify auto-refund of order %d: %v", order.ID, err)
	}
	return nil
}

// StartScheduler registers the hourly sweep. No cron entry is created when the
// sweeper is disabled.
func (s *RefundSweeper) StartScheduler() *cron.Cron {
	if s.TimeoutHours <= 0 {
		logrus.Info("refund sweeper disabled: REFUND_TIMEOUT_HOURS not set")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc("0 * * * *", func() {
		s.Run()
	})
	if err != nil {
		logrus.Errorf("schedule refund sweeper: %v", err)
		return nil
	}
	c.Start()
	logrus.Infof("refund sweeper scheduled hourly (timeout %dh)", s.TimeoutHours)
	return c
}
