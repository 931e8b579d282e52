package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/httpresp"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/pricing"
)

type PricingHandler struct {
	db *gorm.DB
}

func NewPricingHandler(db *gorm.DB) *PricingHandler {
	return &PricingHandler{db: db}
}

type UpdatePricingRuleRequest struct {
	Name                 string  `json:"name" binding:"required"`
	CommissionFreelancer float64 `json:"commission_freelancer"`
	CommissionShop       float64 `json:"commission_shop"`
}

// GetActive returns the rule new bookings are priced with. When no row
// is active the platform defaults apply, which is what we report.
func (h *PricingHandler) GetActive(c *gin.Context) {
	var rule models.PricingRule
	err := h.db.
		Where("is_active = true").
		Order("updated_at DESC").
		First(&rule).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpresp.OK(c, pricing.DefaultRule)
		return
	}
	if err != nil {
		httperr.Internal(c, "failed_to_load_pricing_rule", "Failed to load pricing rule.")
		return
	}

	httpresp.OK(c, rule)
}

// UpdateActive installs a new rule and retires the previous one. Already
// committed bookings keep the breakdown they were priced with.
func (h *PricingHandler) UpdateActive(c *gin.Context) {
	var req UpdatePricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid pricing rule payload.")
		return
	}

	for _, rate := range []float64{req.CommissionFreelancer, req.CommissionShop} {
		if rate < 0 || rate > 1 {
			httperr.BadRequest(c, "invalid_commission_rate", "Rates must be within [0, 1].")
			return
		}
	}

	rule := models.PricingRule{
		Name:                 req.Name,
		CommissionFreelancer: req.CommissionFreelancer,
		CommissionShop:       req.CommissionShop,
		IsActive:             true,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PricingRule{}).
			Where("is_active = true").
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(&rule).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_update_pricing_rule", "Failed to update pricing rule.")
		return
	}

	httpresp.OK(c, rule)
}
