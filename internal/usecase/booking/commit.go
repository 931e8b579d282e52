package booking

import (
	"context"
	"time"

	"github.com/sharpcutlabs/booking-api/internal/audit"
	domain "github.com/sharpcutlabs/booking-api/internal/domain/booking"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/notify"
	"github.com/sharpcutlabs/booking-api/internal/pricing"
	"github.com/sharpcutlabs/booking-api/internal/schedule"
	"github.com/sharpcutlabs/booking-api/internal/usecase/availability"
)

// ======================================================
// INPUT
// ======================================================

type CommitInput struct {
	BarberID uint
	ClientID *uint

	// Already parsed in the shop timezone by the API boundary.
	StartTime time.Time

	ServiceIDs []uint
	Notes      string
}

// ======================================================
// USE CASE
// ======================================================

type auditSink interface {
	Dispatch(ev audit.Event)
}

type eventSink interface {
	Publish(ev notify.Event)
}

// Commit is the only mutation path into the booking ledger. It validates
// the candidate window, then re-checks it inside a transaction serialized
// per barber before inserting the booking and its line items atomically.
type Commit struct {
	repo   domain.Repository
	audit  auditSink
	events eventSink

	now func() time.Time
}

func NewCommit(
	repo domain.Repository,
	auditor auditSink,
	events eventSink,
) *Commit {
	return &Commit{
		repo:   repo,
		audit:  auditor,
		events: events,
		now:    time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Commit) Execute(
	ctx context.Context,
	in CommitInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// 1. Barber
	// --------------------------------------------------
	// The repository reports a missing row as the barber_not_found
	// business error; storage failures pass through to the 500 path.
	barber, err := uc.repo.GetBarberByID(ctx, in.BarberID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Services: price + duration snapshots
	// --------------------------------------------------
	if len(in.ServiceIDs) == 0 {
		return nil, httperr.ErrBusiness("service_required")
	}

	services, err := uc.repo.ListServicesByIDs(ctx, in.BarberID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	if len(services) != len(in.ServiceIDs) {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	totalMinutes := 0
	gross := 0.0
	items := make([]models.BookingService, 0, len(services))
	for _, s := range services {
		totalMinutes += s.DurationMin
		gross += s.Price
		items = append(items, models.BookingService{
			ServiceID:   s.ID,
			Name:        s.Name,
			Price:       s.Price,
			DurationMin: s.DurationMin,
		})
	}
	if totalMinutes <= 0 {
		return nil, httperr.ErrBusiness("invalid_duration")
	}

	// --------------------------------------------------
	// 3. Candidate window, in the future
	// --------------------------------------------------
	start := in.StartTime
	end := start.Add(time.Duration(totalMinutes) * time.Minute)
	if !start.Before(end) {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	if !start.After(uc.now()) {
		return nil, httperr.ErrBusiness("start_in_past")
	}
	if barber.Shop != nil && barber.Shop.MinAdvanceMinutes > 0 {
		lead := time.Duration(barber.Shop.MinAdvanceMinutes) * time.Minute
		if start.Before(uc.now().Add(lead)) {
			return nil, httperr.ErrBusiness("start_too_soon")
		}
	}
	win := schedule.Interval{Start: start, End: end}

	// --------------------------------------------------
	// 4. Pricing snapshot
	// --------------------------------------------------
	rule, err := uc.repo.ActivePricingRule(ctx)
	if err != nil {
		return nil, err
	}
	breakdown, err := pricing.Breakdown(gross, barber.IsFreelancer(), rule)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Serialized re-check + insert
	// --------------------------------------------------
	created := &models.Booking{
		BarberID:           in.BarberID,
		ClientID:           in.ClientID,
		StartTime:          start,
		EndTime:            end,
		Status:             string(domain.InitialStatus()),
		PaymentStatus:      string(domain.PaymentUnpaid),
		PriceAtBooking:     breakdown.Gross,
		FinancialBreakdown: breakdown,
		Services:           items,
		Notes:              in.Notes,
	}

	err = uc.repo.WithBarberLock(ctx, in.BarberID, func(tx domain.Repository) error {
		free, err := availability.WindowFree(ctx, tx, in.BarberID, win)
		if err != nil {
			return err
		}
		if !free {
			return httperr.ErrBusiness("time_conflict")
		}
		return tx.CreateBooking(ctx, created)
	})

	if err != nil {
		if httperr.IsExclusionConflict(err) {
			// Lost the race at the constraint, not the pre-check.
			return nil, httperr.ErrBusiness("time_conflict")
		}
		return nil, err
	}

	// --------------------------------------------------
	// 6. Audit + fire-and-forget event
	// --------------------------------------------------
	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			UserID:   in.ClientID,
			Action:   "booking_created",
			Entity:   "booking",
			EntityID: &created.ID,
		})
	}
	if uc.events != nil {
		uc.events.Publish(notify.Event{
			Type:      notify.BookingCreated,
			BookingID: created.PublicID.String(),
			BarberID:  created.BarberID,
			StartTime: created.StartTime,
			EndTime:   created.EndTime,
		})
	}

	return created, nil
}
