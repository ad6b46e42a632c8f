package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boost-service/internal/models"
)

func rateRange(start, end int, price float64) models.PricingConfig {
	return models.PricingConfig{
		Game:       "CS2",
		GameMode:   "PREMIER",
		RangeStart: start,
		RangeEnd:   end,
		Price:      price,
		Unit:       models.UnitPer1000,
		Enabled:    true,
	}
}

func TestCalculateRateBasedCrossesRanges(t *testing.T) {
	ranges := []models.PricingConfig{
		rateRange(0, 10000, 50),
		rateRange(10000, 20000, 60),
	}

	// 9000 -> 11000: one started block at 50, one at 60.
	price, err := calculateRateBased("CS2", "PREMIER", ranges, 9000, 11000)
	require.NoError(t, err)
	assert.Equal(t, 110.00, price)
}

func TestCalculateRateBasedPartialBlockRoundsUp(t *testing.T) {
	ranges := []models.PricingConfig{rateRange(0, 10000, 50)}

	// 1500 points is two started blocks of 1000.
	price, err := calculateRateBased("CS2", "PREMIER", ranges, 0, 1500)
	require.NoError(t, err)
	assert.Equal(t, 100.00, price)
}

func TestCalculateRateBasedSkipsGaps(t *testing.T) {
	ranges := []models.PricingConfig{
		rateRange(0, 1000, 50),
		rateRange(2000, 3000, 70),
	}

	// The uncovered stretch 1000..2000 is free; only the covered segments charge.
	price, err := calculateRateBased("CS2", "PREMIER", ranges, 500, 2500)
	require.NoError(t, err)
	assert.Equal(t, 120.00, price)
}

func TestCalculateRateBasedNoRanges(t *testing.T) {
	_, err := calculateRateBased("CS2", "PREMIER", nil, 0, 1000)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "CS2", cfgErr.Game)
}

func TestCalculateRateBasedTargetBeyondCoverage(t *testing.T) {
	ranges := []models.PricingConfig{rateRange(0, 1000, 50)}

	_, err := calculateRateBased("CS2", "PREMIER", ranges, 0, 5000)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 1000, cfgErr.Point)
}

func TestCalculateLevelBasedInclusiveRanges(t *testing.T) {
	ranges := []models.PricingConfig{
		{Game: "CS2", GameMode: "GAMERS_CLUB", RangeStart: 2, RangeEnd: 10, Price: 5, Unit: models.UnitLevel, Enabled: true},
		{Game: "CS2", GameMode: "GAMERS_CLUB", RangeStart: 11, RangeEnd: 20, Price: 8, Unit: models.UnitLevel, Enabled: true},
	}

	// Levels 9 and 10 at 5, levels 11 and 12 at 8.
	price, err := calculateLevelBased("CS2", "GAMERS_CLUB", ranges, 8, 12)
	require.NoError(t, err)
	assert.Equal(t, 26.00, price)
}

func TestCalculateLevelBasedUncoveredLevel(t *testing.T) {
	ranges := []models.PricingConfig{
		{Game: "CS2", GameMode: "GAMERS_CLUB", RangeStart: 2, RangeEnd: 10, Price: 5, Unit: models.UnitLevel, Enabled: true},
	}

	_, err := calculateLevelBased("CS2", "GAMERS_CLUB", ranges, 8, 12)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 11, cfgErr.Point)
}

func TestCalculatePriceNoopWhenAlreadyAtTarget(t *testing.T) {
	// Short-circuits before touching storage.
	svc := NewPricingService(nil)

	price, err := svc.CalculatePrice("CS2", "PREMIER", 1500, 1500)
	require.NoError(t, err)
	assert.Equal(t, 0.00, price)

	price, err = svc.CalculatePrice("CS2", "PREMIER", 2000, 1500)
	require.NoError(t, err)
	assert.Equal(t, 0.00, price)
}

func TestFindRange(t *testing.T) {
	ranges := []models.PricingConfig{
		rateRange(0, 1000, 50),
		rateRange(2000, 3000, 70),
	}

	r, gap := findRange(ranges, 500)
	require.NotNil(t, r)
	assert.False(t, gap)
	assert.Equal(t, 0, r.RangeStart)

	r, gap = findRange(ranges, 2000)
	require.NotNil(t, r)
	assert.False(t, gap)
	assert.Equal(t, 2000, r.RangeStart)

	r, gap = findRange(ranges, 1500)
	require.NotNil(t, r)
	assert.True(t, gap)
	assert.Equal(t, 2000, r.RangeStart)

	r, _ = findRange(ranges, 4000)
	assert.Nil(t, r)
}

func TestCheckOverlap(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewPricingService(testDB)

	existing := rateRange(0, 10000, 50)
	if err := testDB.Create(&existing).Error; err != nil {
		t.Fatalf("seed range: %v", err)
	}

	overlapping := rateRange(9000, 12000, 60)
	if err := svc.CheckOverlap(&overlapping); err != ErrOverlappingRange {
		t.Errorf("Expected ErrOverlappingRange, got %v", err)
	}

	adjacent := rateRange(10000, 20000, 60)
	if err := svc.CheckOverlap(&adjacent); err != nil {
		t.Errorf("Adjacent range rejected: %v", err)
	}

	// A disabled range never conflicts.
	disabled := rateRange(5000, 6000, 60)
	disabled.Enabled = false
	if err := svc.CheckOverlap(&disabled); err != nil {
		t.Errorf("Disabled range rejected: %v", err)
	}

	// Updating a range in place is checked against everyone but itself.
	existing.RangeEnd = 9000
	if err := svc.CheckOverlap(&existing); err != nil {
		t.Errorf("In-place shrink rejected: %v", err)
	}
}

func TestCalculatePriceUsesEnabledRangesOnly(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewPricingService(testDB)

	enabled := rateRange(0, 10000, 50)
	disabled := rateRange(10000, 20000, 60)
	disabled.Enabled = false
	testDB.Create(&enabled)
	testDB.Create(&disabled)

	price, err := svc.CalculatePrice("CS2", "PREMIER", 0, 5000)
	if err != nil {
		t.Fatalf("CalculatePrice failed: %v", err)
	}
	if price != 250.00 {
		t.Errorf("Expected 250.00, got %.2f", price)
	}

	// The disabled range does not extend coverage.
	if _, err := svc.CalculatePrice("CS2", "PREMIER", 0, 15000); err == nil {
		t.Error("Expected configuration error beyond enabled coverage")
	}
}
