package booking

import (
	"testing"
	"time"

	"github.com/sharpcutlabs/booking-api/internal/models"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}

	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if to == ok {
					want = true
				}
			}

			err := CanTransition(from, to)
			if want && err != nil {
				t.Errorf("%s -> %s rejected: %v", from, to, err)
			}
			if !want && err == nil {
				t.Errorf("%s -> %s allowed, want rejection", from, to)
			}
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	if err := CanTransition(Status("scheduled"), StatusCancelled); err == nil {
		t.Error("unknown source status accepted")
	}
	if err := CanTransition(StatusPending, Status("done")); err == nil {
		t.Error("unknown target status accepted")
	}
}

func TestActive(t *testing.T) {
	if !StatusPending.Active() || !StatusConfirmed.Active() {
		t.Error("pending/confirmed must occupy a slot")
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		if s.Active() {
			t.Errorf("%s must not occupy a slot", s)
		}
	}
}

func TestDomainActions(t *testing.T) {
	now := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)

	b := &models.Booking{Status: string(StatusPending)}
	if err := Confirm(b); err != nil {
		t.Fatal(err)
	}
	if err := Complete(b, now); err != nil {
		t.Fatal(err)
	}
	if b.CompletedAt == nil || !b.CompletedAt.Equal(now) {
		t.Error("CompletedAt not stamped")
	}

	// completed is terminal
	if err := Cancel(b, now); err == nil {
		t.Error("cancel after completion accepted")
	}

	b2 := &models.Booking{Status: string(StatusConfirmed)}
	if err := MarkNoShow(b2); err != nil {
		t.Fatal(err)
	}
	if b2.Status != string(StatusNoShow) {
		t.Errorf("status = %s", b2.Status)
	}
}
