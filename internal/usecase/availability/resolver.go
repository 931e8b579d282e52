package availability

import (
	"context"
	"time"

	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/schedule"
)

// ScheduleSource provides the three inputs of slot resolution. The booking
// repository satisfies it directly; the redis cache decorates the
// read-mostly shift and block lookups.
type ScheduleSource interface {
	WeeklyShifts(ctx context.Context, barberID uint) ([]models.Shift, error)

	BlocksFor(
		ctx context.Context,
		barberID uint,
		from time.Time,
		to time.Time,
	) ([]schedule.Interval, error)

	ActiveBookingIntervals(
		ctx context.Context,
		barberID uint,
		from time.Time,
		to time.Time,
	) ([]schedule.Interval, error)
}

// MaxRange caps a single availability request. Expansion walks the range
// day by day, so an unbounded range would turn one request into an
// arbitrarily large scan; wider lookups must page.
const MaxRange = 31 * 24 * time.Hour

type Resolver struct {
	src ScheduleSource
}

func NewResolver(src ScheduleSource) *Resolver {
	return &Resolver{src: src}
}

// FreeSlots resolves the bookable slots of the requested duration inside
// [from, to): weekly shifts expanded onto absolute datetimes, minus time
// blocks, minus active bookings, quantized at step (defaults to the
// duration). An empty day is an empty result, never an error.
//
// from/to are expected in the shop timezone already; expansion inherits
// their location.
func (r *Resolver) FreeSlots(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
	duration time.Duration,
	step time.Duration,
) ([]schedule.Interval, error) {

	if duration <= 0 {
		return nil, httperr.ErrBusiness("invalid_duration")
	}
	if !to.After(from) {
		return nil, httperr.ErrBusiness("invalid_range")
	}
	if to.Sub(from) > MaxRange {
		return nil, httperr.ErrBusiness("range_too_wide")
	}
	if step <= 0 {
		step = duration
	}

	free, err := freeIntervals(ctx, r.src, barberID, schedule.Interval{Start: from, End: to})
	if err != nil {
		return nil, err
	}

	var slots []schedule.Interval
	for _, f := range free {
		if f.Duration() < duration {
			continue
		}
		for s := f.Start; !s.Add(duration).After(f.End); s = s.Add(step) {
			slots = append(slots, schedule.Interval{Start: s, End: s.Add(duration)})
		}
	}

	return slots, nil
}

// WindowFree re-runs the resolution restricted to a candidate window and
// reports whether the whole window is free. The commit use case calls it
// with the transaction-scoped repository so the check is authoritative.
func WindowFree(
	ctx context.Context,
	src ScheduleSource,
	barberID uint,
	win schedule.Interval,
) (bool, error) {

	free, err := freeIntervals(ctx, src, barberID, win)
	if err != nil {
		return false, err
	}

	for _, f := range free {
		if schedule.Contains(f, win) {
			return true, nil
		}
	}
	return false, nil
}

func freeIntervals(
	ctx context.Context,
	src ScheduleSource,
	barberID uint,
	bounds schedule.Interval,
) ([]schedule.Interval, error) {

	shifts, err := src.WeeklyShifts(ctx, barberID)
	if err != nil {
		return nil, err
	}

	windows := expand(shifts, bounds)
	if len(windows) == 0 {
		return nil, nil
	}

	blocks, err := src.BlocksFor(ctx, barberID, bounds.Start, bounds.End)
	if err != nil {
		return nil, err
	}

	booked, err := src.ActiveBookingIntervals(ctx, barberID, bounds.Start, bounds.End)
	if err != nil {
		return nil, err
	}

	busy := append(blocks, booked...)
	return schedule.SubtractAll(windows, busy), nil
}

// expand projects the weekly template onto absolute datetimes for every
// date touching bounds, merges overlapping rows (split shifts), and clips
// to bounds so partially covered days keep their late portion.
func expand(shifts []models.Shift, bounds schedule.Interval) []schedule.Interval {
	if len(shifts) == 0 {
		return nil
	}

	byWeekday := make(map[int][]models.Shift)
	for _, s := range shifts {
		byWeekday[s.Weekday] = append(byWeekday[s.Weekday], s)
	}

	loc := bounds.Start.Location()
	first := time.Date(
		bounds.Start.Year(), bounds.Start.Month(), bounds.Start.Day(),
		0, 0, 0, 0, loc,
	)

	var windows []schedule.Interval
	for day := first; day.Before(bounds.End); day = day.AddDate(0, 0, 1) {
		for _, s := range byWeekday[int(day.Weekday())] {
			start, okStart := clockOn(day, s.StartTime, loc)
			end, okEnd := clockOn(day, s.EndTime, loc)
			if !okStart || !okEnd || !end.After(start) {
				continue
			}
			windows = append(windows, schedule.Interval{Start: start, End: end})
		}
	}

	merged := schedule.Merge(windows)

	var out []schedule.Interval
	for _, w := range merged {
		if c := schedule.Clip(w, bounds); !c.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

func clockOn(day time.Time, hm string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	), true
}
