package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/sharpcutlabs/booking-api/internal/domain/booking"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/models"
)

func newTransition(repo domain.Repository) *Transition {
	uc := NewTransition(repo, nil, nil)
	uc.now = func() time.Time { return testNow }
	return uc
}

func seedBooking(repo *fakeRepo, status domain.Status) *models.Booking {
	b := &models.Booking{
		BarberID:  1,
		StartTime: testMonday.Add(14 * time.Hour),
		EndTime:   testMonday.Add(14*time.Hour + 30*time.Minute),
		Status:    string(status),
	}
	_ = repo.CreateBooking(context.Background(), b)
	return b
}

func TestTransition_ConfirmThenComplete(t *testing.T) {
	repo := newFakeRepo()
	uc := newTransition(repo)
	b := seedBooking(repo, domain.StatusPending)

	got, err := uc.Execute(context.Background(), b.ID, domain.StatusConfirmed, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != string(domain.StatusConfirmed) {
		t.Fatalf("status = %s", got.Status)
	}

	got, err = uc.Execute(context.Background(), b.ID, domain.StatusCompleted, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(testNow) {
		t.Error("CompletedAt not stamped with the clock")
	}
}

func TestTransition_IllegalRejected(t *testing.T) {
	repo := newFakeRepo()
	uc := newTransition(repo)

	done := seedBooking(repo, domain.StatusCompleted)
	if _, err := uc.Execute(context.Background(), done.ID, domain.StatusPending, 1); !httperr.IsBusiness(err, "invalid_state") {
		t.Errorf("completed -> pending: got %v", err)
	}

	pending := seedBooking(repo, domain.StatusPending)
	if _, err := uc.Execute(context.Background(), pending.ID, domain.StatusNoShow, 1); !httperr.IsBusiness(err, "invalid_state") {
		t.Errorf("pending -> no_show: got %v", err)
	}
}

func TestTransition_NotFound(t *testing.T) {
	repo := newFakeRepo()
	uc := newTransition(repo)

	if _, err := uc.Execute(context.Background(), 999, domain.StatusCancelled, 1); !httperr.IsBusiness(err, "booking_not_found") {
		t.Errorf("got %v", err)
	}
}

type downBookingRepo struct {
	*fakeRepo
}

func (r *downBookingRepo) GetBookingByID(_ context.Context, _ uint) (*models.Booking, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestTransition_StorageErrorNotMaskedAsNotFound(t *testing.T) {
	uc := newTransition(&downBookingRepo{newFakeRepo()})

	_, err := uc.Execute(context.Background(), 1, domain.StatusConfirmed, 1)
	if err == nil {
		t.Fatal("expected an error")
	}
	if httperr.IsBusiness(err, "booking_not_found") {
		t.Fatal("storage failure reported as booking_not_found")
	}
}
