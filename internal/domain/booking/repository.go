package booking

import (
	"context"
	"time"

	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/schedule"
)

type Repository interface {
	// -------- Barber / catalog --------

	// GetBarberByID reports a missing row as the barber_not_found
	// business error; any other error is a storage failure.
	GetBarberByID(
		ctx context.Context,
		id uint,
	) (*models.Barber, error)

	ListServicesByIDs(
		ctx context.Context,
		barberID uint,
		ids []uint,
	) ([]models.Service, error)

	// -------- Shift Calendar --------
	WeeklyShifts(
		ctx context.Context,
		barberID uint,
	) ([]models.Shift, error)

	// -------- Time Block Registry --------
	BlocksFor(
		ctx context.Context,
		barberID uint,
		from time.Time,
		to time.Time,
	) ([]schedule.Interval, error)

	// -------- Booking Ledger (reads) --------
	ActiveBookingIntervals(
		ctx context.Context,
		barberID uint,
		from time.Time,
		to time.Time,
	) ([]schedule.Interval, error)

	// GetBookingByID reports a missing row as the booking_not_found
	// business error; any other error is a storage failure.
	GetBookingByID(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// -------- Pricing --------
	ActivePricingRule(
		ctx context.Context,
	) (*models.PricingRule, error)

	// -------- Booking Ledger (sole write path) --------

	// WithBarberLock runs fn inside a transaction that serializes all
	// commits for the given barber. Concurrent commits for other barbers
	// proceed independently. If the lock cannot be acquired within the
	// storage layer's budget, fn is never called and the retryable
	// lock_timeout error is returned.
	WithBarberLock(
		ctx context.Context,
		barberID uint,
		fn func(tx Repository) error,
	) error

	// CreateBooking inserts the booking row and its line items. Only the
	// commit use case may call it, and only inside WithBarberLock.
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error
}
