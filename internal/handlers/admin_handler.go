package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"boost-service/internal/models"
	"boost-service/internal/services"
	"boost-service/pkg/common"
)

type AdminHandler struct {
	DB         *gorm.DB
	Commission *services.CommissionService
	Pricing    *services.PricingService
}

func NewAdminHandler(db *gorm.DB, commission *services.CommissionService, pricing *services.PricingService) *AdminHandler {
	return &AdminHandler{DB: db, Commission: commission, Pricing: pricing}
}

func (h *AdminHandler) GetCommissionConfig(c *gin.Context) {
	cfg, err := h.Commission.GetConfig()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(cfg, "Commission config"))
}

type commissionConfigRequest struct {
	BoosterPercentage float64 `json:"booster_percentage"`
	AdminPercentage   float64 `json:"admin_percentage"`
}

func (h *AdminHandler) UpdateCommissionConfig(c *gin.Context) {
	var req commissionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if !services.ValidateSplitConfig(req.BoosterPercentage, req.AdminPercentage) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(
			"booster_percentage and admin_percentage must each be within [0,1] and sum to 1", nil, http.StatusBadRequest))
		return
	}

	cfg, err := h.Commission.UpdateConfig(req.BoosterPercentage, req.AdminPercentage, CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(cfg, "Commission config updated"))
}

type boosterOverrideRequest struct {
	Percentage *float64 `json:"percentage"` // null restores the platform default
}

func (h *AdminHandler) SetBoosterOverride(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req boosterOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	if req.Percentage != nil && (*req.Percentage < 0 || *req.Percentage > 1) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("percentage must be within [0,1]", nil, http.StatusBadRequest))
		return
	}

	if err := h.Commission.SetBoosterOverride(id, req.Percentage, CurrentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Booster commission updated"))
}

type pricingRequest struct {
	Game       string  `json:"game" binding:"required"`
	GameMode   string  `json:"game_mode" binding:"required"`
	RangeStart int     `json:"range_start"`
	RangeEnd   int     `json:"range_end"`
	Price      float64 `json:"price"`
	Unit       string  `json:"unit"`
	Enabled    *bool   `json:"enabled"`
}

func (h *AdminHandler) ListPricing(c *gin.Context) {
	var ranges []models.PricingConfig
	q := h.DB.Order("game asc, game_mode asc, range_start asc")
	if game := c.Query("game"); game != "" {
		q = q.Where("game = ?", game)
	}
	if err := q.Find(&ranges).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(ranges, "Pricing ranges"))
}

func (h *AdminHandler) CreatePricing(c *gin.Context) {
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	if req.RangeStart >= req.RangeEnd {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("range_start must be below range_end", nil, http.StatusBadRequest))
		return
	}

	cfg := models.PricingConfig{
		Game:       req.Game,
		GameMode:   req.GameMode,
		RangeStart: req.RangeStart,
		RangeEnd:   req.RangeEnd,
		Price:      req.Price,
		Unit:       req.Unit,
		Enabled:    true,
	}
	if cfg.Unit == "" {
		cfg.Unit = models.UnitPer1000
	}
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}

	if err := h.Pricing.CheckOverlap(&cfg); err != nil {
		respondError(c, err)
		return
	}
	if err := h.DB.Create(&cfg).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(cfg, "Pricing range created"))
}

func (h *AdminHandler) UpdatePricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var cfg models.PricingConfig
	if err := h.DB.First(&cfg, id).Error; err != nil {
		respondError(c, services.ErrNotFound)
		return
	}

	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	if req.RangeStart >= req.RangeEnd {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("range_start must be below range_end", nil, http.StatusBadRequest))
		return
	}

	cfg.Game = req.Game
	cfg.GameMode = req.GameMode
	cfg.RangeStart = req.RangeStart
	cfg.RangeEnd = req.RangeEnd
	cfg.Price = req.Price
	if req.Unit != "" {
		cfg.Unit = req.Unit
	}
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}

	if err := h.Pricing.CheckOverlap(&cfg); err != nil {
		respondError(c, err)
		return
	}
	if err := h.DB.Save(&cfg).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(cfg, "Pricing range updated"))
}

type pricingPatchRequest struct {
	Enabled *bool    `json:"enabled"`
	Price   *float64 `json:"price"`
}

func (h *AdminHandler) PatchPricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var cfg models.PricingConfig
	if err := h.DB.First(&cfg, id).Error; err != nil {
		respondError(c, services.ErrNotFound)
		return
	}

	var req pricingPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if req.Price != nil {
		cfg.Price = *req.Price
	}
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
		// Re-enabling may collide with ranges added while this one was off.
		if cfg.Enabled {
			if err := h.Pricing.CheckOverlap(&cfg); err != nil {
				respondError(c, err)
				return
			}
		}
	}

	if err := h.DB.Save(&cfg).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(cfg, "Pricing range updated"))
}

func (h *AdminHandler) DeletePricing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.DB.Delete(&models.PricingConfig{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, services.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Pricing range deleted"))
}

// Quote is the public price calculator backing the storefront form.
func (h *AdminHandler) Quote(c *gin.Context) {
	var req struct {
		Game     string `form:"game" binding:"required"`
		GameMode string `form:"game_mode" binding:"required"`
		Current  int    `form:"current"`
		Target   int    `form:"target"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	price, err := h.Pricing.CalculatePrice(req.Game, req.GameMode, req.Current, req.Target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"price": price}, "Quote"))
}
