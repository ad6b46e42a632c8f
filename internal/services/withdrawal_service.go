package services

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/models"
	"boost-service/pkg/common"
)

// WithdrawalService pays out realized commission/revenue over PIX. Funds
// become withdrawable when an order completes and its rows flip to PAID.
type WithdrawalService struct {
	DB        *gorm.DB
	Queue     *asynq.Client // nil in tests: payout submission is skipped
	Pix       PixAPI
	MinAmount float64
}

func NewWithdrawalService(db *gorm.DB, queue *asynq.Client, pix PixAPI, minAmount float64) *WithdrawalService {
	return &WithdrawalService{DB: db, Queue: queue, Pix: pix, MinAmount: minAmount}
}

// WithdrawableBalance is realized earnings minus everything already requested.
// Failed and rejected withdrawals release their funds.
func (s *WithdrawalService) WithdrawableBalance(user *models.User) (float64, error) {
	var earned float64

	switch user.Role {
	case models.RoleBooster:
		err := s.DB.Model(&models.BoosterCommission{}).
			Where("booster_id = ? AND status = ?", user.ID, models.RevenuePaid).
			Select("COALESCE(SUM(amount), 0)").Scan(&earned).Error
		if err != nil {
			return 0, err
		}
	case models.RoleAdmin:
		err := s.DB.Model(&models.AdminRevenue{}).
			Where("admin_id = ? AND status = ?", user.ID, models.RevenuePaid).
			Select("COALESCE(SUM(amount), 0)").Scan(&earned).Error
		if err != nil {
			return 0, err
		}
	default:
		return 0, nil
	}

	var withdrawn float64
	err := s.DB.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status IN ?", user.ID,
			[]string{models.WithdrawalPending, models.WithdrawalProcessing, models.WithdrawalCompleted}).
		Select("COALESCE(SUM(amount), 0)").Scan(&withdrawn).Error
	if err != nil {
		return 0, err
	}

	return common.Round2(earned - withdrawn), nil
}

type WithdrawRequestDTO struct {
	Amount     float64 `json:"amount"`
	PixKey     string  `json:"pix_key"`
	PixKeyType string  `json:"pix_key_type"`
}

// RequestWithdrawal validates the request and records it PENDING; the actual
// provider submission happens asynchronously in the worker. One outstanding
// withdrawal per user at a time.
func (s *WithdrawalService) RequestWithdrawal(user *models.User, req WithdrawRequestDTO) (*models.Withdrawal, error) {
	if req.Amount < s.MinAmount {
		return nil, ErrInsufficientFunds
	}
	if req.PixKey == "" {
		return nil, ErrInsufficientFunds
	}

	var outstanding int64
	err := s.DB.Model(&models.Withdrawal{}).
		Where("user_id = ? AND status IN ?", user.ID,
			[]string{models.WithdrawalPending, models.WithdrawalProcessing}).
		Count(&outstanding).Error
	if err != nil {
		return nil, err
	}
	if outstanding > 0 {
		return nil, ErrWithdrawalOpen
	}

	balance, err := s.WithdrawableBalance(user)
	if err != nil {
		return nil, err
	}
	if req.Amount > balance {
		return nil, ErrInsufficientFunds
	}

	withdrawal := models.Withdrawal{
		UserID:     user.ID,
		Amount:     common.Round2(req.Amount),
		PixKey:     req.PixKey,
		PixKeyType: req.PixKeyType,
		Status:     models.WithdrawalPending,
	}
	if err := s.DB.Create(&withdrawal).Error; err != nil {
		return nil, err
	}

	s.enqueuePayout(&withdrawal)

	logrus.WithFields(logrus.Fields{
		"user_id":       user.ID,
		"withdrawal_id": withdrawal.ID,
		"amount":        withdrawal.Amount,
	}).Info("withdrawal requested")
	return &withdrawal, nil
}

func (s *WithdrawalService) enqueuePayout(w *models.Withdrawal) {
	if s.Queue == nil {
		return
	}
	payload, err := json.Marshal(PayoutTaskPayload{WithdrawalID: w.ID})
	if err != nil {
		logrus.Errorf("marshal payout payload: %v", err)
		return
	}
	if _, err := s.Queue.Enqueue(asynq.NewTask(TypePixPayout, payload)); err != nil {
		logrus.WithField("withdrawal_id", w.ID).Errorf("enqueue payout: %v", err)
	}
}

// SubmitPayout sends a PENDING withdrawal to the provider and moves it to
// PROCESSING. The provider's withdraw.done/withdraw.failed webhook finishes
// it. Called from the worker.
func (s *WithdrawalService) SubmitPayout(withdrawalID uint) error {
	var withdrawal models.Withdrawal
	if err := s.DB.First(&withdrawal, withdrawalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	if withdrawal.Status != models.WithdrawalPending {
		// Replayed task; nothing to do.
		return nil
	}

	receipt, err := s.Pix.CreateWithdrawal(PayoutRequest{
		Reference:  common.GenerateReference("WD"),
		Amount:     withdrawal.Amount,
		PixKey:     withdrawal.PixKey,
		PixKeyType: withdrawal.PixKeyType,
	})
	if err != nil {
		logrus.WithField("withdrawal_id", withdrawalID).Errorf("submit payout: %v", err)
		return s.DB.Model(&withdrawal).Updates(map[string]interface{}{
			"status":  models.WithdrawalFailed,
			"comment": "provider rejected the payout request",
		}).Error
	}

	return s.DB.Model(&withdrawal).Updates(map[string]interface{}{
		"status":       models.WithdrawalProcessing,
		"provider_ref": receipt.TransactionID,
	}).Error
}

// ListWithdrawals returns the user's own requests, or everyone's for admins
// when all is set.
func (s *WithdrawalService) ListWithdrawals(user *models.User, all bool) ([]models.Withdrawal, error) {
	var items []models.Withdrawal
	q := s.DB.Order("created_at desc").Limit(200)
	if !all || user.Role != models.RoleAdmin {
		q = q.Where("user_id = ?", user.ID)
	}
	err := q.Find(&items).Error
	return items, err
}
