package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sharpcutlabs/booking-api/internal/cache"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/httpresp"
	"github.com/sharpcutlabs/booking-api/internal/models"
)

type TimeBlockHandler struct {
	db    *gorm.DB
	cache *cache.ScheduleCache
}

func NewTimeBlockHandler(db *gorm.DB, sc *cache.ScheduleCache) *TimeBlockHandler {
	return &TimeBlockHandler{db: db, cache: sc}
}

type CreateTimeBlockRequest struct {
	StartDatetime string `json:"start_datetime" binding:"required"`
	EndDatetime   string `json:"end_datetime" binding:"required"`
	Reason        string `json:"reason"`
	Note          string `json:"note"`
}

func (h *TimeBlockHandler) List(c *gin.Context) {
	barberID, ok := barberFromContext(c)
	if !ok {
		return
	}

	q := h.db.Where("barber_id = ?", barberID)

	// Optional range filter, overlap semantics.
	if fromStr := c.Query("from"); fromStr != "" {
		var barber models.Barber
		if err := h.db.Preload("Shop").First(&barber, barberID).Error; err != nil {
			httperr.NotFound(c, "barber_not_found", "Barber not found.")
			return
		}
		loc := locationForBarber(&barber)

		from, err := parseDateIn(loc, fromStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Invalid from date.")
			return
		}
		to := from.AddDate(0, 0, 1)
		if toStr := c.Query("to"); toStr != "" {
			toDay, err := parseDateIn(loc, toStr)
			if err != nil {
				httperr.BadRequest(c, "invalid_date", "Invalid to date.")
				return
			}
			to = toDay.AddDate(0, 0, 1)
		}
		q = q.Where("start_datetime < ? AND end_datetime > ?", to, from)
	}

	var blocks []models.TimeBlock
	if err := q.Order("start_datetime ASC").Find(&blocks).Error; err != nil {
		httperr.Internal(c, "failed_to_list_time_blocks", "Failed to list time blocks.")
		return
	}

	httpresp.List(c, blocks)
}

func (h *TimeBlockHandler) Create(c *gin.Context) {
	barberID, ok := barberFromContext(c)
	if !ok {
		return
	}

	var req CreateTimeBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid time block payload.")
		return
	}

	var barber models.Barber
	if err := h.db.Preload("Shop").First(&barber, barberID).Error; err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}
	loc := locationForBarber(&barber)

	start, err := parseStartIn(loc, req.StartDatetime)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid start datetime.")
		return
	}
	end, err := parseStartIn(loc, req.EndDatetime)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid end datetime.")
		return
	}
	if !start.Before(end) {
		httperr.BadRequest(c, "invalid_time_window", "Start must precede end.")
		return
	}

	block := models.TimeBlock{
		BarberID:      barberID,
		StartDatetime: start,
		EndDatetime:   end,
		Reason:        req.Reason,
		Note:          req.Note,
	}
	if err := h.db.Create(&block).Error; err != nil {
		httperr.Internal(c, "failed_to_create_time_block", "Failed to create time block.")
		return
	}

	h.cache.Invalidate(c.Request.Context(), barberID)

	httpresp.Created(c, block)
}

func (h *TimeBlockHandler) Delete(c *gin.Context) {
	barberID, ok := barberFromContext(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_time_block_id", "Invalid time block id.")
		return
	}

	res := h.db.
		Where("id = ? AND barber_id = ?", id, barberID).
		Delete(&models.TimeBlock{})
	if res.Error != nil {
		httperr.Internal(c, "failed_to_delete_time_block", "Failed to delete time block.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "time_block_not_found", "Time block not found.")
		return
	}

	h.cache.Invalidate(c.Request.Context(), barberID)

	httpresp.OK(c, gin.H{"deleted": true, "deleted_at": time.Now().UTC()})
}
