package services

import (
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"

	"boost-service/internal/models"
	"boost-service/pkg/common"
)

// maxPricingIterations bounds the range walk. Hitting it means the enabled
// ranges form a cycle or never advance toward the target.
const maxPricingIterations = 10000

// Modes priced per level instead of per 1000 rating points.
var levelModes = map[string]bool{
	"GAMERS_CLUB": true,
}

type PricingService struct {
	DB *gorm.DB
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{DB: db}
}

func (s *PricingService) loadRanges(game, mode string) ([]models.PricingConfig, error) {
	var ranges []models.PricingConfig
	err := s.DB.Where("game = ? AND game_mode = ? AND enabled = ?", game, mode, true).
		Order("range_start asc").
		Find(&ranges).Error
	if err != nil {
		return nil, err
	}
	return ranges, nil
}

// CalculatePrice converts a rating/level delta into a price. current >= target
// is a no-op quote of 0, not an error.
func (s *PricingService) CalculatePrice(game, mode string, current, target int) (float64, error) {
	if current >= target {
		return 0, nil
	}

	ranges, err := s.loadRanges(game, mode)
	if err != nil {
		return 0, err
	}

	if levelModes[strings.ToUpper(mode)] {
		return calculateLevelBased(game, mode, ranges, current, target)
	}
	return calculateRateBased(game, mode, ranges, current, target)
}

// ValidateRange performs the pricing walk without charging. Used to pre-flight
// quotes and admin range edits.
func (s *PricingService) ValidateRange(game, mode string, current, target int) error {
	_, err := s.CalculatePrice(game, mode, current, target)
	return err
}

// CheckOverlap rejects a range that would overlap an already-enabled range of
// the same (game, mode). cfg.ID is excluded so updates can shrink in place.
func (s *PricingService) CheckOverlap(cfg *models.PricingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	var count int64
	err := s.DB.Model(&models.PricingConfig{}).
		Where("game = ? AND game_mode = ? AND enabled = ? AND id <> ?", cfg.Game, cfg.GameMode, true, cfg.ID).
		Where("range_start < ? AND ? < range_end", cfg.RangeEnd, cfg.RangeStart).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrOverlappingRange
	}
	return nil
}

// calculateRateBased walks [current, target) in sub-segments bounded by the
// matching ranges. Each segment costs ceil(points/1000) * range price.
func calculateRateBased(game, mode string, ranges []models.PricingConfig, current, target int) (float64, error) {
	if len(ranges) == 0 {
		return 0, &ConfigurationError{Game: game, Mode: mode, Point: current, Msg: "no enabled price ranges"}
	}

	total := 0.0
	cur := current
	iterations := 0

	for cur < target {
		iterations++
		if iterations > maxPricingIterations {
			return 0, &ConfigurationError{Game: game, Mode: mode, Point: cur, Msg: "iteration limit exceeded, ranges do not advance"}
		}

		r, gap := findRange(ranges, cur)
		if r == nil {
			return 0, &ConfigurationError{Game: game, Mode: mode, Point: cur, Msg: "no price range covers this rating"}
		}
		if gap {
			// The gap between cur and the next range start is not charged.
			cur = r.RangeStart
			continue
		}

		segEnd := r.RangeEnd
		if segEnd > target {
			segEnd = target
		}
		points := segEnd - cur
		total += math.Ceil(float64(points)/1000.0) * r.Price
		cur = segEnd
	}

	return common.Round2(total), nil
}

// findRange resolves the range owning a point: first a range containing it,
// then a range starting exactly at it, then the nearest range after it (gap).
func findRange(ranges []models.PricingConfig, point int) (*models.PricingConfig, bool) {
	for i := range ranges {
		if ranges[i].Contains(point) {
			return &ranges[i], false
		}
	}
	for i := range ranges {
		if ranges[i].RangeStart == point {
			return &ranges[i], false
		}
	}

	var next *models.PricingConfig
	for i := range ranges {
		if ranges[i].RangeStart > point {
			if next == nil || ranges[i].RangeStart < next.RangeStart {
				next = &ranges[i]
			}
		}
	}
	if next != nil {
		return next, true
	}
	return nil, false
}

// calculateLevelBased charges each level from current+1 through target at the
// exact price of its owning range. Any uncovered level is a configuration error.
func calculateLevelBased(game, mode string, ranges []models.PricingConfig, current, target int) (float64, error) {
	if len(ranges) == 0 {
		return 0, &ConfigurationError{Game: game, Mode: mode, Point: current, Msg: "no enabled price ranges"}
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].RangeStart < ranges[j].RangeStart })

	total := 0.0
	for level := current + 1; level <= target; level++ {
		price, ok := levelPrice(ranges, level)
		if !ok {
			return 0, &ConfigurationError{Game: game, Mode: mode, Point: level, Msg: "no price range covers this level"}
		}
		total += price
	}

	return common.Round2(total), nil
}

// Level ranges are inclusive on both ends: a [2,10] range owns levels 2..10.
func levelPrice(ranges []models.PricingConfig, level int) (float64, bool) {
	for i := range ranges {
		if ranges[i].RangeStart <= level && level <= ranges[i].RangeEnd {
			return ranges[i].Price, true
		}
	}
	return 0, false
}
