package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/models"
)

var terminalDisputeStatuses = map[string]bool{
	models.DisputeResolvedRefund:  true,
	models.DisputeResolvedPayout:  true,
	models.DisputeResolvedPartial: true,
	models.DisputeCancelled:       true,
}

// DisputeService layers the conflict-resolution state machine on top of
// orders. Resolution is a manual adjudication record only: it never refunds or
// pays out by itself.
type DisputeService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewDisputeService(db *gorm.DB, notifications *NotificationService) *DisputeService {
	return &DisputeService{DB: db, Notifications: notifications}
}

// OpenDispute creates the order's single dispute and moves the order to
// DISPUTED. Only the order's client or its assigned booster may open one.
func (s *DisputeService) OpenDispute(orderID uint, creator *models.User, reason string) (*models.Dispute, error) {
	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !creator.CanDispute(&order) {
		return nil, ErrForbidden
	}
	if order.Status != models.OrderInProgress {
		return nil, ErrInvalidTransition
	}

	dispute := models.Dispute{
		OrderID:   orderID,
		CreatorID: creator.ID,
		Reason:    reason,
		Status:    models.DisputeOpen,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dispute).Error; err != nil {
			// The unique index on order_id enforces one dispute per order.
			if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
				return ErrDuplicateDispute
			}
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderInProgress).
			Update("status", models.OrderDisputed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   orderID,
		"dispute_id": dispute.ID,
		"creator_id": creator.ID,
	}).Info("dispute opened")

	s.notifyParties(&order, "Disputa aberta",
		fmt.Sprintf("Uma disputa foi aberta para o pedido #%d.", orderID), creator.ID)

	return &dispute, nil
}

func (s *DisputeService) GetDispute(id uint, user *models.User) (*models.Dispute, []models.DisputeMessage, error) {
	var dispute models.Dispute
	if err := s.DB.First(&dispute, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var order models.Order
	if err := s.DB.First(&order, dispute.OrderID).Error; err != nil {
		return nil, nil, err
	}
	if user.Role != models.RoleAdmin && !user.CanDispute(&order) {
		return nil, nil, ErrForbidden
	}

	var messages []models.DisputeMessage
	if err := s.DB.Where("dispute_id = ?", id).Order("created_at asc").Find(&messages).Error; err != nil {
		return nil, nil, err
	}
	return &dispute, messages, nil
}

// AddMessage appends to the dispute thread. Parties and admins may post until
// the dispute is resolved.
func (s *DisputeService) AddMessage(disputeID uint, author *models.User, text string) (*models.DisputeMessage, error) {
	dispute, _, err := s.GetDispute(disputeID, author)
	if err != nil {
		return nil, err
	}
	if dispute.Resolved() {
		return nil, ErrDisputeResolved
	}

	msg := models.DisputeMessage{
		DisputeID: disputeID,
		UserID:    author.ID,
		Message:   text,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Resolve sets the terminal status. Admin only. Money movement, if the
// resolution requires any, is a separate explicit admin action through the
// order/withdrawal paths.
func (s *DisputeService) Resolve(disputeID uint, admin *models.User, status, resolution string) (*models.Dispute, error) {
	if !admin.CanResolveDispute() {
		return nil, ErrForbidden
	}
	if !terminalDisputeStatuses[status] {
		return nil, validationErrorf("invalid resolution status %q", status)
	}

	var dispute models.Dispute
	if err := s.DB.First(&dispute, disputeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	res := s.DB.Model(&models.Dispute{}).
		Where("id = ? AND status = ?", disputeID, models.DisputeOpen).
		Updates(map[string]interface{}{
			"status":      status,
			"resolution":  resolution,
			"resolved_by": admin.ID,
			"resolved_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDisputeResolved
	}

	logrus.WithFields(logrus.Fields{
		"dispute_id": disputeID,
		"status":     status,
		"admin_id":   admin.ID,
	}).Info("dispute resolved")

	var order models.Order
	if err := s.DB.First(&order, dispute.OrderID).Error; err == nil {
		s.notifyParties(&order, "Disputa resolvida",
			fmt.Sprintf("A disputa do pedido #%d foi resolvida: %s.", order.ID, status), 0)
	}

	if err := s.DB.First(&dispute, disputeID).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

// notifyParties notifies the client and the assigned booster, skipping the
// actor who triggered the event.
func (s *DisputeService) notifyParties(order *models.Order, title, message string, skip uint) {
	recipients := []uint{order.UserID}
	if order.BoosterID != nil {
		recipients = append(recipients, *order.BoosterID)
	}
	for _, id := range recipients {
		if id == skip {
			continue
		}
		if err := s.Notifications.Notify(id, title, message); err != nil {
			logrus.Errorf("notify dispute update to user %d: %v", id, err)
		}
	}
}
