package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sharpcutlabs/booking-api/internal/cache"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/httpresp"
	"github.com/sharpcutlabs/booking-api/internal/middleware"
	"github.com/sharpcutlabs/booking-api/internal/models"
)

type ShiftHandler struct {
	db    *gorm.DB
	cache *cache.ScheduleCache
}

func NewShiftHandler(db *gorm.DB, sc *cache.ScheduleCache) *ShiftHandler {
	return &ShiftHandler{db: db, cache: sc}
}

type ShiftEntry struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type UpdateShiftsRequest struct {
	Shifts []ShiftEntry `json:"shifts"`
}

func (h *ShiftHandler) List(c *gin.Context) {
	barberID, ok := barberFromContext(c)
	if !ok {
		return
	}

	var shifts []models.Shift
	if err := h.db.
		Where("barber_id = ?", barberID).
		Order("weekday ASC, start_time ASC").
		Find(&shifts).Error; err != nil {
		httperr.Internal(c, "failed_to_list_shifts", "Failed to list shifts.")
		return
	}

	httpresp.List(c, shifts)
}

// Update replaces the whole weekly calendar in one transaction. Partial
// edits are not supported; the frontend always submits the full week.
func (h *ShiftHandler) Update(c *gin.Context) {
	barberID, ok := barberFromContext(c)
	if !ok {
		return
	}

	var req UpdateShiftsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid shifts payload.")
		return
	}

	for _, s := range req.Shifts {
		if s.Weekday < 0 || s.Weekday > 6 {
			httperr.BadRequest(c, "invalid_weekday", "Weekday must be between 0 and 6.")
			return
		}
		if !isValidClock(s.StartTime) || !isValidClock(s.EndTime) {
			httperr.BadRequest(c, "invalid_time_format", "Times must be HH:MM.")
			return
		}
		if s.StartTime >= s.EndTime {
			httperr.BadRequest(c, "invalid_time_window", "Start must precede end.")
			return
		}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("barber_id = ?", barberID).
			Delete(&models.Shift{}).Error; err != nil {
			return err
		}
		for _, s := range req.Shifts {
			row := models.Shift{
				BarberID:  barberID,
				Weekday:   s.Weekday,
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_update_shifts", "Failed to update shifts.")
		return
	}

	h.cache.Invalidate(c.Request.Context(), barberID)

	var shifts []models.Shift
	h.db.
		Where("barber_id = ?", barberID).
		Order("weekday ASC, start_time ASC").
		Find(&shifts)

	httpresp.List(c, shifts)
}

func barberFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(middleware.ContextBarberID)
	if !ok {
		httperr.Forbidden(c, "not_a_barber", "Barber profile required.")
		return 0, false
	}
	return v.(uint), true
}
