package booking

import (
	"context"
	"time"

	"github.com/sharpcutlabs/booking-api/internal/audit"
	domain "github.com/sharpcutlabs/booking-api/internal/domain/booking"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/notify"
)

// Transition drives the barber/admin status changes (confirm, cancel,
// complete, no-show). It never inserts ledger rows; create is Commit's job.
type Transition struct {
	repo   domain.Repository
	audit  auditSink
	events eventSink

	now func() time.Time
}

func NewTransition(
	repo domain.Repository,
	auditor auditSink,
	events eventSink,
) *Transition {
	return &Transition{
		repo:   repo,
		audit:  auditor,
		events: events,
		now:    time.Now,
	}
}

func (uc *Transition) Execute(
	ctx context.Context,
	bookingID uint,
	target domain.Status,
	actorID uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := uc.now()

	switch target {
	case domain.StatusConfirmed:
		err = domain.Confirm(b)
	case domain.StatusCancelled:
		err = domain.Cancel(b, now)
	case domain.StatusCompleted:
		err = domain.Complete(b, now)
	case domain.StatusNoShow:
		err = domain.MarkNoShow(b)
	default:
		err = httperr.ErrBusiness("invalid_state")
	}
	if err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			UserID:   &actorID,
			Action:   "booking_" + string(target),
			Entity:   "booking",
			EntityID: &b.ID,
		})
	}
	if uc.events != nil && target == domain.StatusCancelled {
		uc.events.Publish(notify.Event{
			Type:      notify.BookingCancelled,
			BookingID: b.PublicID.String(),
			BarberID:  b.BarberID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
	}

	return b, nil
}
