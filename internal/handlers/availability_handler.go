package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/httpresp"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/usecase/availability"
)

type AvailabilityHandler struct {
	db       *gorm.DB
	resolver *availability.Resolver
}

func NewAvailabilityHandler(db *gorm.DB, resolver *availability.Resolver) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, resolver: resolver}
}

type slotDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Get resolves free slots for a barber.
//
// GET /api/barbers/:id/availability?from=2026-09-07&to=2026-09-08&duration_minutes=30[&step_minutes=15]
// A single ?date= is shorthand for that one day.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	barberID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_barber_id", "Invalid barber id.")
		return
	}

	var barber models.Barber
	if err := h.db.Preload("Shop").First(&barber, barberID).Error; err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	loc := locationForBarber(&barber)

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if date := c.Query("date"); date != "" {
		fromStr, toStr = date, date
	}
	if fromStr == "" || toStr == "" {
		httperr.BadRequest(c, "missing_range", "from/to or date is required.")
		return
	}

	from, err := parseDateIn(loc, fromStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid from date.")
		return
	}
	toDay, err := parseDateIn(loc, toStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid to date.")
		return
	}
	to := toDay.AddDate(0, 0, 1) // inclusive end date

	durationMin, err := strconv.Atoi(c.DefaultQuery("duration_minutes", "0"))
	if err != nil || durationMin <= 0 {
		httperr.BadRequest(c, "invalid_duration", "duration_minutes must be positive.")
		return
	}

	stepMin, _ := strconv.Atoi(c.DefaultQuery("step_minutes", "0"))

	slots, err := h.resolver.FreeSlots(
		c.Request.Context(),
		uint(barberID),
		from,
		to,
		time.Duration(durationMin)*time.Minute,
		time.Duration(stepMin)*time.Minute,
	)
	if err != nil {
		var be httperr.BusinessError
		if errors.As(err, &be) {
			httperr.BadRequest(c, be.Code, "Invalid availability request.")
			return
		}
		httperr.Internal(c, "availability_error", "Failed to resolve availability.")
		return
	}

	out := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotDTO(s))
	}

	httpresp.OK(c, gin.H{"slots": out})
}

// ListServices exposes the bookable services of a barber.
func (h *AvailabilityHandler) ListServices(c *gin.Context) {
	barberID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_barber_id", "Invalid barber id.")
		return
	}

	var services []models.Service
	if err := h.db.
		Where("barber_id = ? AND active = true", barberID).
		Order("name ASC").
		Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Failed to list services.")
		return
	}

	httpresp.List(c, services)
}
