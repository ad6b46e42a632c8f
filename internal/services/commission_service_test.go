package services

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"boost-service/internal/models"
)

func TestComputeSplitWeightedShares(t *testing.T) {
	// 20% booster override, two admins weighted 1.0 and 3.0 over a 100.00 order.
	admins := []AdminShare{
		{AdminID: 1, ProfitShare: 1.0},
		{AdminID: 2, ProfitShare: 3.0},
	}

	res := ComputeSplit(100.00, 0.20, admins)

	assert.Equal(t, 20.00, res.BoosterAmount)
	assert.Equal(t, 80.00, res.AdminPool)
	require.Len(t, res.Admins, 2)
	assert.Equal(t, 20.00, res.Admins[0].Amount)
	assert.Equal(t, 60.00, res.Admins[1].Amount)
	assert.InDelta(t, 0.20, res.Admins[0].Percentage, 1e-9)
	assert.InDelta(t, 0.60, res.Admins[1].Percentage, 1e-9)
}

func TestComputeSplitEqualWhenSharesZero(t *testing.T) {
	admins := []AdminShare{
		{AdminID: 1, ProfitShare: 0},
		{AdminID: 2, ProfitShare: 0},
	}

	res := ComputeSplit(100.00, 0.70, admins)

	assert.Equal(t, 70.00, res.BoosterAmount)
	require.Len(t, res.Admins, 2)
	assert.Equal(t, 15.00, res.Admins[0].Amount)
	assert.Equal(t, 15.00, res.Admins[1].Amount)
}

func TestComputeSplitNoAdmins(t *testing.T) {
	res := ComputeSplit(100.00, 0.70, nil)

	assert.Equal(t, 70.00, res.BoosterAmount)
	assert.Equal(t, 30.00, res.AdminPool)
	assert.Empty(t, res.Admins)
}

// Slice amounts plus the booster amount must reconcile to the order total
// within a cent of rounding drift, for awkward totals too.
func TestComputeSplitConservation(t *testing.T) {
	admins := []AdminShare{
		{AdminID: 1, ProfitShare: 1.0},
		{AdminID: 2, ProfitShare: 1.0},
		{AdminID: 3, ProfitShare: 1.0},
	}

	for _, total := range []float64{100.00, 99.99, 33.35, 0.01, 1234.57} {
		res := ComputeSplit(total, 0.70, admins)

		sum := res.BoosterAmount
		for _, a := range res.Admins {
			sum += a.Amount
		}
		if math.Abs(sum-total) > 0.01 {
			t.Errorf("total %.2f: split sums to %.4f", total, sum)
		}
	}
}

func TestValidateSplitConfig(t *testing.T) {
	assert.True(t, ValidateSplitConfig(0.70, 0.30))
	assert.True(t, ValidateSplitConfig(0, 1))
	assert.True(t, ValidateSplitConfig(1, 0))
	assert.False(t, ValidateSplitConfig(0.70, 0.40))
	assert.False(t, ValidateSplitConfig(-0.1, 1.1))
	assert.False(t, ValidateSplitConfig(0.5, 0.4))
}

func TestGetConfigCreatesDefault(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCommissionService(testDB)

	cfg, err := svc.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if cfg.BoosterPercentage != DefaultBoosterPercentage {
		t.Errorf("Expected default booster percentage %.2f, got %.2f", DefaultBoosterPercentage, cfg.BoosterPercentage)
	}

	var count int64
	testDB.Model(&models.CommissionConfig{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 config row, got %d", count)
	}
}

func TestSplitRevenueConfigRowStaysInTransaction(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCommissionService(testDB)
	client := createUser(t, models.RoleClient)
	booster := createUser(t, models.RoleBooster)
	order := createOrder(t, client, models.OrderPaid, 100.00)

	abort := errors.New("abort")
	err := testDB.Transaction(func(tx *gorm.DB) error {
		if err := svc.SplitRevenue(tx, order, booster); err != nil {
			return err
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("Expected forced rollback, got %v", err)
	}

	// The default config row seeded on first read rolls back with the split.
	var count int64
	testDB.Model(&models.CommissionConfig{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no config row after rollback, got %d", count)
	}
	testDB.Model(&models.BoosterCommission{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no commission rows after rollback, got %d", count)
	}
}

func TestSetBoosterOverrideWritesHistory(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCommissionService(testDB)
	booster := createUser(t, models.RoleBooster)
	admin := createUser(t, models.RoleAdmin)

	pct := 0.25
	if err := svc.SetBoosterOverride(booster.ID, &pct, admin.ID); err != nil {
		t.Fatalf("SetBoosterOverride failed: %v", err)
	}

	var updated models.User
	testDB.First(&updated, booster.ID)
	if updated.CommissionOverride == nil || *updated.CommissionOverride != 0.25 {
		t.Errorf("Expected override 0.25, got %v", updated.CommissionOverride)
	}

	var history models.BoosterCommissionHistory
	if err := testDB.Where("booster_id = ?", booster.ID).First(&history).Error; err != nil {
		t.Fatalf("history row not written: %v", err)
	}
	if history.OldPercentage != DefaultBoosterPercentage || history.NewPercentage != 0.25 {
		t.Errorf("Expected history %.2f -> 0.25, got %.2f -> %.2f",
			DefaultBoosterPercentage, history.OldPercentage, history.NewPercentage)
	}

	// Restoring the default appends a second entry.
	if err := svc.SetBoosterOverride(booster.ID, nil, admin.ID); err != nil {
		t.Fatalf("restore default failed: %v", err)
	}
	var count int64
	testDB.Model(&models.BoosterCommissionHistory{}).Where("booster_id = ?", booster.ID).Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 history rows, got %d", count)
	}
}
