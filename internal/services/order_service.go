package services

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/metrics"
	"boost-service/internal/models"
)

// OrderService owns the order state machine:
//
//	PENDING -> PAID -> IN_PROGRESS -> COMPLETED
//	PENDING|PAID -> CANCELLED
//	IN_PROGRESS -> DISPUTED (via DisputeService)
//
// COMPLETED and CANCELLED are terminal.
type OrderService struct {
	DB            *gorm.DB
	Pricing       *PricingService
	Commission    *CommissionService
	Notifications *NotificationService
	Pix           PixAPI
}

func NewOrderService(db *gorm.DB, pricing *PricingService, commission *CommissionService, notifications *NotificationService, pix PixAPI) *OrderService {
	return &OrderService{
		DB:            db,
		Pricing:       pricing,
		Commission:    commission,
		Notifications: notifications,
		Pix:           pix,
	}
}

type CreateOrderDTO struct {
	Game        string  `json:"game"`
	GameMode    string  `json:"game_mode"`
	CurrentRank int     `json:"current_rank"`
	TargetRank  int     `json:"target_rank"`
	Description string  `json:"description"`
	Total       float64 `json:"total"`
}

// CreateOrder inserts a PENDING order after validating the submitted total
// against the pricing engine's quote.
func (s *OrderService) CreateOrder(owner *models.User, req CreateOrderDTO) (*models.Order, error) {
	if req.CurrentRank >= req.TargetRank {
		return nil, validationErrorf("current rank must be below target rank")
	}

	quote, err := s.Pricing.CalculatePrice(req.Game, req.GameMode, req.CurrentRank, req.TargetRank)
	if err != nil {
		return nil, err
	}
	if math.Abs(quote-req.Total) > 0.01 {
		return nil, validationErrorf("submitted total %.2f does not match quoted price %.2f", req.Total, quote)
	}

	order := models.Order{
		UserID:      owner.ID,
		Game:        req.Game,
		GameMode:    req.GameMode,
		CurrentRank: req.CurrentRank,
		TargetRank:  req.TargetRank,
		Description: req.Description,
		Total:       quote,
		Status:      models.OrderPending,
	}
	if err := s.DB.Create(&order).Error; err != nil {
		return nil, err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(order.Game, order.GameMode).Inc()
	return &order, nil
}

func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.First(&order, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders is role-scoped: clients see their own orders, boosters see their
// assignments plus the unclaimed paid queue, admins see everything.
func (s *OrderService) ListOrders(user *models.User, page, limit int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := s.DB.Model(&models.Order{})
	switch user.Role {
	case models.RoleClient:
		q = q.Where("user_id = ?", user.ID)
	case models.RoleBooster:
		q = q.Where("booster_id = ? OR (booster_id IS NULL AND status = ?)", user.ID, models.OrderPaid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&orders).Error
	return orders, total, err
}

// markPaidTx transitions PENDING -> PAID inside an existing transaction. Only
// the webhook reconciliation path calls this.
func (s *OrderService) markPaidTx(tx *gorm.DB, orderID uint) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderPending).
		Update("status", models.OrderPaid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// AcceptOrder assigns the booster and transitions to IN_PROGRESS. The update
// is conditional on booster_id still being null, so of two concurrent
// acceptors exactly one wins and the other gets ErrAlreadyAssigned. Commission
// rows are materialized inside the same transaction, exactly once per order.
func (s *OrderService) AcceptOrder(orderID uint, booster *models.User) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !booster.CanAccept(order) {
		if booster.Role != models.RoleBooster || !booster.Active {
			return nil, ErrForbidden
		}
		// The actor is fine; the order is claimed or past acceptance. The
		// conditional update below re-checks against fresh state anyway.
		return nil, ErrAlreadyAssigned
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND booster_id IS NULL AND status IN ?", orderID,
				[]string{models.OrderPending, models.OrderPaid}).
			Updates(map[string]interface{}{
				"booster_id": booster.ID,
				"status":     models.OrderInProgress,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyAssigned
		}

		if err := tx.First(order, orderID).Error; err != nil {
			return err
		}

		return s.Commission.SplitRevenue(tx, order, booster)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"booster_id": booster.ID,
	}).Info("order accepted")

	if err := s.Notifications.Notify(order.UserID, "Pedido em andamento",
		fmt.Sprintf("Seu pedido #%d foi aceito por um booster.", order.ID)); err != nil {
		logrus.Errorf("notify order %d acceptance: %v", order.ID, err)
	}

	return order, nil
}

// CompleteOrder transitions IN_PROGRESS -> COMPLETED and realizes the pending
// commission/revenue rows so the funds become withdrawable.
func (s *OrderService) CompleteOrder(orderID uint, actor *models.User) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !actor.CanComplete(order) {
		return nil, ErrForbidden
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderInProgress).
			Updates(map[string]interface{}{
				"status":       models.OrderCompleted,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		return s.Commission.RealizeOrder(tx, orderID)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCompletedTotal.Inc()
	logrus.WithField("order_id", orderID).Info("order completed")

	if err := s.Notifications.Notify(order.UserID, "Pedido concluído",
		fmt.Sprintf("Seu pedido #%d foi concluído.", order.ID)); err != nil {
		logrus.Errorf("notify order %d completion: %v", order.ID, err)
	}

	if err := s.DB.First(order, orderID).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels a PENDING or PAID order. A PAID payment must be refunded
// with the provider before the status flips; a refund failure leaves the order
// untouched so the caller can retry or escalate.
func (s *OrderService) CancelOrder(orderID uint, actor *models.User, reason string) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderPending && order.Status != models.OrderPaid {
		return nil, ErrInvalidTransition
	}
	if !actor.CanCancel(order) {
		return nil, ErrForbidden
	}

	initiator := models.CancelledByClient
	if actor.Role == models.RoleAdmin {
		initiator = models.CancelledByAdmin
	}

	hasPaid := true
	var payment models.Payment
	if err := s.DB.Where("order_id = ? AND status = ?", orderID, models.PaymentPaid).
		First(&payment).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			// Cannot tell whether money changed hands; abort rather than
			// cancel without a refund.
			logrus.WithField("order_id", orderID).Errorf("paid payment lookup failed, cancellation aborted: %v", err)
			return nil, err
		}
		hasPaid = false
	}

	if hasPaid {
		if err := s.Pix.Refund(payment.ProviderID, payment.Amount); err != nil {
			logrus.WithFields(logrus.Fields{
				"order_id":   orderID,
				"payment_id": payment.ID,
			}).Errorf("refund failed, cancellation aborted: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID, []string{models.OrderPending, models.OrderPaid}).
			Updates(map[string]interface{}{
				"status":           models.OrderCancelled,
				"cancel_reason":    reason,
				"cancelled_by":     initiator,
				"refund_processed": hasPaid,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		if hasPaid {
			return tx.Model(&payment).Update("status", models.PaymentRefunded).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCancelledTotal.WithLabelValues(initiator).Inc()
	logrus.WithFields(logrus.Fields{
		"order_id":  orderID,
		"initiator": initiator,
		"refunded":  hasPaid,
	}).Info("order cancelled")

	if err := s.Notifications.Notify(order.UserID, "Pedido cancelado",
		fmt.Sprintf("Seu pedido #%d foi cancelado.", order.ID)); err != nil {
		logrus.Errorf("notify order %d cancellation: %v", order.ID, err)
	}

	if err := s.DB.First(order, orderID).Error; err != nil {
		return nil, err
	}
	return order, nil
}
