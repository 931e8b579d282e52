package handlers

import (
	"time"

	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/timezone"
)

// All scheduling math runs in the shop's reference timezone; freelancers
// fall back to the platform default. Client-local conversion is the
// frontend's job.
func locationForBarber(b *models.Barber) *time.Location {
	if b != nil && b.Shop != nil && b.Shop.Timezone != "" {
		return timezone.Location(b.Shop.Timezone)
	}
	return timezone.Location("")
}

func parseDateIn(loc *time.Location, s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

// parseStartIn accepts RFC3339 or a local "date time" pair rendered as a
// single string in the shop timezone.
func parseStartIn(loc *time.Location, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation("2006-01-02 15:04", s, loc)
}

func isValidClock(hm string) bool {
	_, err := time.Parse("15:04", hm)
	return err == nil
}

// overlapWindow is the half-open intersection predicate for rows with
// start_time/end_time columns: a row matches when its window intersects
// [from, to). Back-to-back windows do not match.
func overlapWindow(from, to time.Time) (string, []interface{}) {
	return "start_time < ? AND end_time > ?", []interface{}{to, from}
}
