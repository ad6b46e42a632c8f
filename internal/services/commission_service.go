package services

import (
	"math"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"boost-service/internal/metrics"
	"boost-service/internal/models"
	"boost-service/pkg/common"
)

// DefaultBoosterPercentage applies when no commission_configs row exists yet.
const DefaultBoosterPercentage = 0.70

type CommissionService struct {
	DB *gorm.DB
}

func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{DB: db}
}

// GetConfig returns the single-row platform split, creating the default row on
// first read so admins always have something to edit.
func (s *CommissionService) GetConfig() (*models.CommissionConfig, error) {
	return getConfig(s.DB)
}

func getConfig(db *gorm.DB) (*models.CommissionConfig, error) {
	var cfg models.CommissionConfig
	err := db.First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.CommissionConfig{
			BoosterPercentage: DefaultBoosterPercentage,
			AdminPercentage:   1 - DefaultBoosterPercentage,
		}
		if err := db.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig replaces the platform split. Both values must be in [0,1] and
// sum to 1; callers validate with ValidateSplitConfig first.
func (s *CommissionService) UpdateConfig(boosterPct, adminPct float64, updatedBy uint) (*models.CommissionConfig, error) {
	cfg, err := s.GetConfig()
	if err != nil {
		return nil, err
	}

	cfg.BoosterPercentage = boosterPct
	cfg.AdminPercentage = adminPct
	cfg.UpdatedBy = updatedBy
	if err := s.DB.Save(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetBoosterOverride changes a booster's personal percentage and appends the
// change to the audit history. nil restores the platform default.
func (s *CommissionService) SetBoosterOverride(boosterID uint, pct *float64, changedBy uint) error {
	var booster models.User
	if err := s.DB.First(&booster, boosterID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	cfg, err := s.GetConfig()
	if err != nil {
		return err
	}

	old := cfg.BoosterPercentage
	if booster.CommissionOverride != nil {
		old = *booster.CommissionOverride
	}
	updated := cfg.BoosterPercentage
	if pct != nil {
		updated = *pct
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&booster).Update("commission_override", pct).Error; err != nil {
			return err
		}
		history := models.BoosterCommissionHistory{
			BoosterID:     boosterID,
			OldPercentage: old,
			NewPercentage: updated,
			ChangedBy:     changedBy,
		}
		return tx.Create(&history).Error
	})
}

// AdminShare is one active admin's weight in the pool distribution.
type AdminShare struct {
	AdminID     uint
	ProfitShare float64
}

// SplitResult is the computed (not yet persisted) revenue split of one order.
type SplitResult struct {
	BoosterPercentage float64
	BoosterAmount     float64
	AdminPool         float64
	Admins            []AdminSlice
}

type AdminSlice struct {
	AdminID    uint
	Percentage float64 // fraction of the order total, not of the pool
	Amount     float64
}

// ComputeSplit is the pure split arithmetic: booster cut first, then the
// remaining pool weighted by profit shares, equal split when every weight is
// zero. Slice amounts plus the booster amount reconcile to the order total
// within one cent of rounding drift.
func ComputeSplit(total, boosterPct float64, admins []AdminShare) SplitResult {
	res := SplitResult{
		BoosterPercentage: boosterPct,
		BoosterAmount:     common.Round2(total * boosterPct),
	}
	res.AdminPool = common.Round2(total - res.BoosterAmount)
	if len(admins) == 0 {
		return res
	}

	adminPoolPct := 1 - boosterPct

	totalShares := 0.0
	for _, a := range admins {
		totalShares += a.ProfitShare
	}

	for _, a := range admins {
		fraction := 1.0 / float64(len(admins))
		if totalShares > 0 {
			fraction = a.ProfitShare / totalShares
		}
		res.Admins = append(res.Admins, AdminSlice{
			AdminID:    a.AdminID,
			Percentage: adminPoolPct * fraction,
			Amount:     common.Round2(res.AdminPool * fraction),
		})
	}

	return res
}

// SplitRevenue materializes commission rows for an accepted order. Runs inside
// the caller's acceptance transaction so the rows and the status change commit
// or roll back together.
func (s *CommissionService) SplitRevenue(tx *gorm.DB, order *models.Order, booster *models.User) error {
	// Read (and possibly seed) the config through tx so nothing escapes the
	// caller's acceptance transaction.
	cfg, err := getConfig(tx)
	if err != nil {
		return err
	}

	boosterPct := cfg.BoosterPercentage
	if booster.CommissionOverride != nil {
		boosterPct = *booster.CommissionOverride
	}

	var adminUsers []models.User
	if err := tx.Where("role = ? AND active = ?", models.RoleAdmin, true).Find(&adminUsers).Error; err != nil {
		return err
	}

	shares := make([]AdminShare, 0, len(adminUsers))
	for _, a := range adminUsers {
		shares = append(shares, AdminShare{AdminID: a.ID, ProfitShare: a.ProfitShare})
	}

	split := ComputeSplit(order.Total, boosterPct, shares)

	commission := models.BoosterCommission{
		OrderID:    order.ID,
		BoosterID:  booster.ID,
		OrderTotal: order.Total,
		Percentage: split.BoosterPercentage,
		Amount:     split.BoosterAmount,
		Status:     models.RevenuePending,
	}
	if err := tx.Create(&commission).Error; err != nil {
		return err
	}

	if len(split.Admins) == 0 {
		// Known leak in the platform rules: the pool stays unassigned when no
		// admin is active. Surface it loudly instead of changing behavior.
		metrics.UndistributedPoolTotal.Inc()
		metrics.UndistributedPoolAmount.Add(split.AdminPool)
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,
			"amount":   split.AdminPool,
		}).Error("admin pool undistributed: no active admins")
		return nil
	}

	for _, slice := range split.Admins {
		revenue := models.AdminRevenue{
			OrderID:    order.ID,
			AdminID:    slice.AdminID,
			OrderTotal: order.Total,
			Percentage: slice.Percentage,
			Amount:     slice.Amount,
			Status:     models.RevenuePending,
		}
		if err := tx.Create(&revenue).Error; err != nil {
			return err
		}
	}

	return nil
}

// RealizeOrder flips the order's PENDING commission/revenue rows to PAID. It
// realizes the split created at acceptance and never recomputes it.
func (s *CommissionService) RealizeOrder(tx *gorm.DB, orderID uint) error {
	if err := tx.Model(&models.BoosterCommission{}).
		Where("order_id = ? AND status = ?", orderID, models.RevenuePending).
		Update("status", models.RevenuePaid).Error; err != nil {
		return err
	}
	return tx.Model(&models.AdminRevenue{}).
		Where("order_id = ? AND status = ?", orderID, models.RevenuePending).
		Update("status", models.RevenuePaid).Error
}

// ValidateSplitConfig checks an admin-submitted platform split.
func ValidateSplitConfig(boosterPct, adminPct float64) bool {
	if boosterPct < 0 || boosterPct > 1 || adminPct < 0 || adminPct > 1 {
		return false
	}
	return math.Abs(boosterPct+adminPct-1) < 1e-9
}
