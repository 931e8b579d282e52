package booking

import "github.com/sharpcutlabs/booking-api/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Active reports whether the booking occupies a slot in the ledger.
// Completed, cancelled and no-show bookings free their window.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ===============================
// Payment Status
// ===============================

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// ===============================
// Transitions
// ===============================

// CanTransition rejects any status change outside the allowed set. The
// matrix is exhaustive on purpose: a new status must be placed here
// explicitly before any code can move a booking into it.
func CanTransition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return httperr.ErrBusiness("invalid_state")
	}

	allowed := false
	switch from {
	case StatusPending:
		allowed = to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		allowed = to == StatusCompleted || to == StatusCancelled || to == StatusNoShow
	case StatusCompleted, StatusCancelled, StatusNoShow:
		allowed = false // terminal
	}

	if !allowed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}
