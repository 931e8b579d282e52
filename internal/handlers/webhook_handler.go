package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sharpcutlabs/booking-api/internal/audit"
	domain "github.com/sharpcutlabs/booking-api/internal/domain/booking"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/httpresp"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/payments"
)

type WebhookHandler struct {
	db         *gorm.DB
	gateway    payments.Gateway
	dispatcher *audit.Dispatcher
}

func NewWebhookHandler(db *gorm.DB, gateway payments.Gateway, dispatcher *audit.Dispatcher) *WebhookHandler {
	return &WebhookHandler{db: db, gateway: gateway, dispatcher: dispatcher}
}

type paymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// HandlePayment ingests gateway notifications. The notification body is
// untrusted; the payment is always re-fetched from the gateway before
// any state change. Non-payment events and unknown references are acked
// with 200 so the gateway stops retrying them.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	var notif paymentNotification
	if err := c.ShouldBindJSON(&notif); err != nil {
		httperr.BadRequest(c, "invalid_notification", "Invalid notification payload.")
		return
	}

	if notif.Type != "payment" {
		httpresp.OK(c, gin.H{"ignored": true})
		return
	}

	paymentID, err := strconv.Atoi(notif.Data.ID)
	if err != nil {
		httperr.BadRequest(c, "invalid_payment_id", "Invalid payment id.")
		return
	}

	info, err := h.gateway.VerifyPayment(c.Request.Context(), paymentID)
	if err != nil {
		httperr.Internal(c, "payment_verification_failed", "Could not verify payment.")
		return
	}

	if info.Status == payments.StatusPending {
		httpresp.OK(c, gin.H{"pending": true})
		return
	}

	var booking models.Booking
	if err := h.db.Where("public_id = ?", info.ExternalReference).First(&booking).Error; err != nil {
		httpresp.OK(c, gin.H{"ignored": true})
		return
	}

	paymentStatus := domain.PaymentFailed
	if info.Status == payments.StatusApproved {
		paymentStatus = domain.PaymentPaid
	}

	// Idempotent: replayed notifications land on the same values.
	updates := map[string]interface{}{
		"payment_status": string(paymentStatus),
		"payment_ref":    notif.Data.ID,
	}
	if err := h.db.Model(&booking).Updates(updates).Error; err != nil {
		httperr.Internal(c, "failed_to_update_payment", "Failed to record payment result.")
		return
	}

	bookingID := booking.ID
	h.dispatcher.Dispatch(audit.Event{
		Action:   "payment_" + string(paymentStatus),
		Entity:   "booking",
		EntityID: &bookingID,
		Metadata: gin.H{"payment_ref": notif.Data.ID},
	})

	httpresp.OK(c, gin.H{"processed": true})
}
