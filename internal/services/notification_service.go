package services

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/models"
)

// Asynq task types owned by this service.
const (
	TypeNotificationDeliver = "notification:deliver"
	TypePixPayout           = "withdrawal:payout"
)

type NotificationPayload struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
}

type PayoutTaskPayload struct {
	WithdrawalID uint `json:"withdrawal_id"`
}

type NotificationService struct {
	DB    *gorm.DB
	Queue *asynq.Client // nil in tests: rows are still written, delivery skipped
}

func NewNotificationService(db *gorm.DB, queue *asynq.Client) *NotificationService {
	return &NotificationService{DB: db, Queue: queue}
}

// Notify writes the in-app notification row and queues delivery. Delivery is
// best effort; a queue failure never fails the calling flow.
func (s *NotificationService) Notify(userID uint, title, message string) error {
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		return err
	}

	s.enqueueDelivery(&n)
	return nil
}

// NotifyTx is Notify inside an existing transaction; delivery is queued only
// by the caller after commit, so rolled-back flows never notify.
func (s *NotificationService) NotifyTx(tx *gorm.DB, userID uint, title, message string) (*models.Notification, error) {
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := tx.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// EnqueueDelivery dispatches delivery of an already-committed notification.
func (s *NotificationService) EnqueueDelivery(n *models.Notification) {
	s.enqueueDelivery(n)
}

func (s *NotificationService) enqueueDelivery(n *models.Notification) {
	if s.Queue == nil {
		return
	}

	payload, err := json.Marshal(NotificationPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Title:          n.Title,
		Message:        n.Message,
	})
	if err != nil {
		logrus.Errorf("marshal notification payload: %v", err)
		return
	}

	if _, err := s.Queue.Enqueue(asynq.NewTask(TypeNotificationDeliver, payload)); err != nil {
		logrus.WithField("user_id", n.UserID).Errorf("enqueue notification delivery: %v", err)
	}
}

// MarkRead flips a notification owned by the user.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	res := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(userID uint) ([]models.Notification, error) {
	var items []models.Notification
	err := s.DB.Where("user_id = ?", userID).Order("created_at desc").Limit(100).Find(&items).Error
	return items, err
}
