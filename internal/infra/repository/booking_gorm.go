package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/sharpcutlabs/booking-api/internal/domain/booking"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/schedule"
)

// Advisory lock namespace for booking commits. The single bigint form is
// used because the two-int4 form would truncate barber ids past 31 bits;
// namespace + id is injective over the whole id range, so commits
// serialize per barber, not globally.
const bookingLockNamespace = int64(4301) << 32

func barberLockKey(barberID uint) int64 {
	return bookingLockNamespace + int64(barberID)
}

type BookingGormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewBookingGormRepository(db *gorm.DB, lockTimeout time.Duration) *BookingGormRepository {
	return &BookingGormRepository{db: db, lockTimeout: lockTimeout}
}

// --------------------------------------------------
// Barber / catalog
// --------------------------------------------------

func (r *BookingGormRepository) GetBarberByID(
	ctx context.Context,
	id uint,
) (*models.Barber, error) {

	var barber models.Barber
	if err := r.db.WithContext(ctx).
		Preload("Shop").
		First(&barber, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("barber_not_found")
		}
		return nil, err
	}
	return &barber, nil
}

func (r *BookingGormRepository) ListServicesByIDs(
	ctx context.Context,
	barberID uint,
	ids []uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND active = true AND id IN ?", barberID, ids).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Shift Calendar
// --------------------------------------------------

func (r *BookingGormRepository) WeeklyShifts(
	ctx context.Context,
	barberID uint,
) ([]models.Shift, error) {

	var shifts []models.Shift
	if err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("weekday ASC, start_time ASC").
		Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

// --------------------------------------------------
// Time Block Registry
// --------------------------------------------------

func (r *BookingGormRepository) BlocksFor(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
) ([]schedule.Interval, error) {

	var blocks []models.TimeBlock
	if err := r.db.WithContext(ctx).
		Where(
			"barber_id = ? AND start_datetime < ? AND end_datetime > ?",
			barberID, to, from,
		).
		Order("start_datetime ASC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}

	bounds := schedule.Interval{Start: from, End: to}
	out := make([]schedule.Interval, 0, len(blocks))
	for _, b := range blocks {
		c := schedule.Clip(schedule.Interval{Start: b.StartDatetime, End: b.EndDatetime}, bounds)
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	return out, nil
}

// --------------------------------------------------
// Booking Ledger (reads)
// --------------------------------------------------

func (r *BookingGormRepository) ActiveBookingIntervals(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
) ([]schedule.Interval, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where(
			"barber_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			barberID,
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed)},
			to, from,
		).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	bounds := schedule.Interval{Start: from, End: to}
	out := make([]schedule.Interval, 0, len(bookings))
	for _, b := range bookings {
		c := schedule.Clip(schedule.Interval{Start: b.StartTime, End: b.EndTime}, bounds)
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *BookingGormRepository) GetBookingByID(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Services").
		First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("booking_not_found")
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// --------------------------------------------------
// Pricing
// --------------------------------------------------

// ActivePricingRule returns nil (no error) when no rule is active; the
// pricing engine then applies the platform default.
func (r *BookingGormRepository) ActivePricingRule(
	ctx context.Context,
) (*models.PricingRule, error) {

	var rule models.PricingRule
	err := r.db.WithContext(ctx).
		Where("is_active = true").
		Order("updated_at DESC").
		First(&rule).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// --------------------------------------------------
// Booking Ledger (sole write path)
// --------------------------------------------------

// WithBarberLock opens a transaction, bounds lock acquisition with
// lock_timeout, then takes an advisory xact lock keyed by barber id.
// The lock is released automatically at commit/rollback. Timeouts come
// back as the retryable lock_timeout business error.
func (r *BookingGormRepository) WithBarberLock(
	ctx context.Context,
	barberID uint,
	fn func(tx domain.Repository) error,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		budget := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if err := tx.Exec(budget).Error; err != nil {
			return err
		}

		err := tx.Exec(
			"SELECT pg_advisory_xact_lock(?)",
			barberLockKey(barberID),
		).Error
		if err != nil {
			if httperr.IsLockTimeout(err) {
				return httperr.ErrBusiness("lock_timeout")
			}
			return err
		}

		return fn(&BookingGormRepository{db: tx, lockTimeout: r.lockTimeout})
	})
}

// CreateBooking inserts the booking row together with its line items;
// gorm persists the association in the same transaction, so booking and
// items commit or roll back as one.
func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
