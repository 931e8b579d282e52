package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/sharpcutlabs/booking-api/internal/domain/booking"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/httpresp"
	"github.com/sharpcutlabs/booking-api/internal/middleware"
	"github.com/sharpcutlabs/booking-api/internal/models"
	ucBooking "github.com/sharpcutlabs/booking-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db         *gorm.DB
	commit     *ucBooking.Commit
	transition *ucBooking.Transition
}

func NewBookingHandler(
	db *gorm.DB,
	commit *ucBooking.Commit,
	transition *ucBooking.Transition,
) *BookingHandler {
	return &BookingHandler{
		db:         db,
		commit:     commit,
		transition: transition,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	BarberID   uint   `json:"barber_id" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	ServiceIDs []uint `json:"service_ids" binding:"required"`
	Notes      string `json:"notes"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid booking payload.")
		return
	}

	var barber models.Barber
	if err := h.db.Preload("Shop").First(&barber, req.BarberID).Error; err != nil {
		httperr.BadRequest(c, "barber_not_found", "Barber not found.")
		return
	}

	start, err := parseStartIn(locationForBarber(&barber), req.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_date_or_time", "Invalid start time.")
		return
	}

	clientID := userID
	booking, err := h.commit.Execute(c.Request.Context(), ucBooking.CommitInput{
		BarberID:   req.BarberID,
		ClientID:   &clientID,
		StartTime:  start,
		ServiceIDs: req.ServiceIDs,
		Notes:      req.Notes,
	})

	if err != nil {
		switch {
		case httperr.IsBusiness(err, "time_conflict") || httperr.IsExclusionConflict(err):
			// Stale availability is expected; the client re-fetches slots.
			httperr.Conflict(c, "time_conflict", "The requested window is no longer free.")
		case httperr.IsLockTimeout(err):
			httperr.Unavailable(c, "lock_timeout", "Could not reserve the slot in time, retry shortly.")
		case isValidationCode(err):
			httperr.BadRequest(c, businessCode(err), "Invalid booking request.")
		default:
			httperr.Internal(c, "failed_to_create_booking", "Failed to create booking.")
		}
		return
	}

	httpresp.Created(c, booking)
}

func isValidationCode(err error) bool {
	for _, code := range []string{
		"barber_not_found",
		"service_required",
		"service_not_found",
		"invalid_duration",
		"invalid_date_or_time",
		"start_in_past",
		"start_too_soon",
		"invalid_amount",
		"invalid_commission_rate",
	} {
		if httperr.IsBusiness(err, code) {
			return true
		}
	}
	return false
}

func businessCode(err error) string {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return "invalid_request"
}

// ======================================================
// STATUS TRANSITIONS (barber / admin)
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context)  { h.patchStatus(c, domain.StatusConfirmed) }
func (h *BookingHandler) Cancel(c *gin.Context)   { h.patchStatus(c, domain.StatusCancelled) }
func (h *BookingHandler) Complete(c *gin.Context) { h.patchStatus(c, domain.StatusCompleted) }
func (h *BookingHandler) NoShow(c *gin.Context)   { h.patchStatus(c, domain.StatusNoShow) }

func (h *BookingHandler) patchStatus(c *gin.Context, target domain.Status) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	booking, err := h.transition.Execute(c.Request.Context(), uint(id), target, userID)
	if err != nil {
		switch {
		case httperr.IsBusiness(err, "booking_not_found"):
			httperr.NotFound(c, "booking_not_found", "Booking not found.")
		case httperr.IsBusiness(err, "invalid_state"):
			httperr.BadRequest(c, "invalid_state", "Transition not allowed from the current status.")
		default:
			httperr.Internal(c, "failed_to_update_booking", "Failed to update booking.")
		}
		return
	}

	httpresp.OK(c, booking)
}

// ======================================================
// LIST (barber agenda)
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	barberID, ok := barberFromContext(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	var barber models.Barber
	if err := h.db.Preload("Shop").First(&barber, barberID).Error; err != nil {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	date, err := parseDateIn(locationForBarber(&barber), dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}
	end := date.AddDate(0, 0, 1)

	// Select by overlap, not start date, so a booking that crosses
	// midnight shows on every day it occupies.
	clause, args := overlapWindow(date, end)

	var bookings []models.Booking
	h.db.
		Preload("Services").
		Where("barber_id = ?", barberID).
		Where(clause, args...).
		Order("start_time ASC").
		Find(&bookings)

	httpresp.List(c, bookings)
}
