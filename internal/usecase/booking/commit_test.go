package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	domain "github.com/sharpcutlabs/booking-api/internal/domain/booking"
	"github.com/sharpcutlabs/booking-api/internal/httperr"
	"github.com/sharpcutlabs/booking-api/internal/models"
	"github.com/sharpcutlabs/booking-api/internal/schedule"
)

// fakeRepo is an in-memory Repository. WithBarberLock serializes per
// barber with a mutex, mirroring the advisory-lock semantics the gorm
// implementation gets from Postgres.
type fakeRepo struct {
	mu sync.Mutex

	barberMu map[uint]*sync.Mutex

	barbers  map[uint]*models.Barber
	services map[uint]models.Service
	shifts   []models.Shift
	blocks   []schedule.Interval
	rule     *models.PricingRule

	bookings []*models.Booking
	nextID   uint
}

func newFakeRepo() *fakeRepo {
	shopID := uint(7)
	return &fakeRepo{
		barberMu: map[uint]*sync.Mutex{},
		barbers: map[uint]*models.Barber{
			1: {ID: 1, DisplayName: "Freelancer"},
			2: {ID: 2, DisplayName: "Shop barber", ShopID: &shopID},
		},
		services: map[uint]models.Service{
			10: {ID: 10, BarberID: 1, Name: "Cut", Price: 30, DurationMin: 30, Active: true},
			11: {ID: 11, BarberID: 1, Name: "Beard", Price: 15, DurationMin: 15, Active: true},
		},
		shifts: []models.Shift{
			{BarberID: 1, Weekday: int(time.Monday), StartTime: "09:00", EndTime: "17:00"},
		},
		rule: &models.PricingRule{Name: "standard", CommissionFreelancer: 0.10, CommissionShop: 0.05, IsActive: true},
	}
}

func (f *fakeRepo) GetBarberByID(_ context.Context, id uint) (*models.Barber, error) {
	if b, ok := f.barbers[id]; ok {
		return b, nil
	}
	return nil, httperr.ErrBusiness("barber_not_found")
}

func (f *fakeRepo) ListServicesByIDs(_ context.Context, barberID uint, ids []uint) ([]models.Service, error) {
	var out []models.Service
	for _, id := range ids {
		if s, ok := f.services[id]; ok && s.BarberID == barberID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) WeeklyShifts(_ context.Context, barberID uint) ([]models.Shift, error) {
	var out []models.Shift
	for _, s := range f.shifts {
		if s.BarberID == barberID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) BlocksFor(_ context.Context, _ uint, from, to time.Time) ([]schedule.Interval, error) {
	bounds := schedule.Interval{Start: from, End: to}
	var out []schedule.Interval
	for _, b := range f.blocks {
		if c := schedule.Clip(b, bounds); !c.IsZero() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ActiveBookingIntervals(_ context.Context, barberID uint, from, to time.Time) ([]schedule.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bounds := schedule.Interval{Start: from, End: to}
	var out []schedule.Interval
	for _, b := range f.bookings {
		if b.BarberID != barberID || !domain.Status(b.Status).Active() {
			continue
		}
		if c := schedule.Clip(schedule.Interval{Start: b.StartTime, End: b.EndTime}, bounds); !c.IsZero() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetBookingByID(_ context.Context, id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, httperr.ErrBusiness("booking_not_found")
}

func (f *fakeRepo) UpdateBooking(_ context.Context, _ *models.Booking) error {
	return nil
}

func (f *fakeRepo) ActivePricingRule(_ context.Context) (*models.PricingRule, error) {
	return f.rule, nil
}

func (f *fakeRepo) WithBarberLock(_ context.Context, barberID uint, fn func(tx domain.Repository) error) error {
	f.mu.Lock()
	lock, ok := f.barberMu[barberID]
	if !ok {
		lock = &sync.Mutex{}
		f.barberMu[barberID] = lock
	}
	f.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(f)
}

func (f *fakeRepo) CreateBooking(_ context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	b.ID = f.nextID
	b.PublicID = uuid.New()
	f.bookings = append(f.bookings, b)
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// Monday 2026-09-07, "now" fixed at 08:00.
var (
	testMonday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	testNow    = testMonday.Add(8 * time.Hour)
)

func newCommit(repo domain.Repository) *Commit {
	uc := NewCommit(repo, nil, nil)
	uc.now = func() time.Time { return testNow }
	return uc
}

func TestCommit_Success(t *testing.T) {
	repo := newFakeRepo()
	uc := newCommit(repo)

	clientID := uint(99)
	b, err := uc.Execute(context.Background(), CommitInput{
		BarberID:   1,
		ClientID:   &clientID,
		StartTime:  testMonday.Add(14 * time.Hour),
		ServiceIDs: []uint{10, 11},
		Notes:      "first visit",
	})
	if err != nil {
		t.Fatal(err)
	}

	if b.Status != string(domain.StatusPending) {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if !b.EndTime.Equal(testMonday.Add(14*time.Hour + 45*time.Minute)) {
		t.Errorf("end time = %v, want 14:45", b.EndTime)
	}
	if len(b.Services) != 2 {
		t.Fatalf("line items = %d, want 2", len(b.Services))
	}
	if b.Services[0].Price != 30 || b.Services[1].Price != 15 {
		t.Error("price snapshots not captured")
	}

	bd := b.FinancialBreakdown
	if bd.Gross != 45.00 || bd.PlatformFee != 4.50 || bd.ProviderNet != 40.50 {
		t.Errorf("breakdown = %+v", bd)
	}
	if bd.PlatformFee+bd.ProviderNet != bd.Gross {
		t.Error("breakdown does not sum to gross")
	}
	if b.PriceAtBooking != 45.00 {
		t.Errorf("price_at_booking = %v", b.PriceAtBooking)
	}
}

func TestCommit_ValidationErrors(t *testing.T) {
	repo := newFakeRepo()
	uc := newCommit(repo)

	cases := []struct {
		name string
		in   CommitInput
		code string
	}{
		{
			"unknown barber",
			CommitInput{BarberID: 42, StartTime: testMonday.Add(14 * time.Hour), ServiceIDs: []uint{10}},
			"barber_not_found",
		},
		{
			"no services",
			CommitInput{BarberID: 1, StartTime: testMonday.Add(14 * time.Hour)},
			"service_required",
		},
		{
			"unknown service",
			CommitInput{BarberID: 1, StartTime: testMonday.Add(14 * time.Hour), ServiceIDs: []uint{10, 404}},
			"service_not_found",
		},
		{
			"start in past",
			CommitInput{BarberID: 1, StartTime: testMonday.Add(7 * time.Hour), ServiceIDs: []uint{10}},
			"start_in_past",
		},
	}

	for _, tc := range cases {
		_, err := uc.Execute(context.Background(), tc.in)
		if !httperr.IsBusiness(err, tc.code) {
			t.Errorf("%s: got %v, want %s", tc.name, err, tc.code)
		}
	}

	if len(repo.bookings) != 0 {
		t.Fatalf("%d bookings written by failed commits", len(repo.bookings))
	}
}

func TestCommit_ConflictWithExistingBooking(t *testing.T) {
	repo := newFakeRepo()
	uc := newCommit(repo)

	first, err := uc.Execute(context.Background(), CommitInput{
		BarberID:   1,
		StartTime:  testMonday.Add(14 * time.Hour),
		ServiceIDs: []uint{10},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Same window again.
	_, err = uc.Execute(context.Background(), CommitInput{
		BarberID:   1,
		StartTime:  testMonday.Add(14 * time.Hour),
		ServiceIDs: []uint{10},
	})
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("got %v, want time_conflict", err)
	}

	// Back-to-back right after the first must succeed.
	_, err = uc.Execute(context.Background(), CommitInput{
		BarberID:   1,
		StartTime:  first.EndTime,
		ServiceIDs: []uint{10},
	})
	if err != nil {
		t.Fatalf("back-to-back booking rejected: %v", err)
	}
}

func TestCommit_OutsideShiftRejected(t *testing.T) {
	repo := newFakeRepo()
	uc := newCommit(repo)

	_, err := uc.Execute(context.Background(), CommitInput{
		BarberID:   1,
		StartTime:  testMonday.Add(20 * time.Hour),
		ServiceIDs: []uint{10},
	})
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("got %v, want time_conflict for window outside shifts", err)
	}
}

// Two concurrent commits for the same window: exactly one 201, one 409.
func TestCommit_ConcurrentSameWindow(t *testing.T) {
	repo := newFakeRepo()
	uc := newCommit(repo)

	start := testMonday.Add(14 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), CommitInput{
				BarberID:   1,
				StartTime:  start,
				ServiceIDs: []uint{10},
			})
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case httperr.IsBusiness(err, "time_conflict"):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Fatalf("successes=%d conflicts=%d, want exactly 1/1", successes, conflicts)
	}
	if len(repo.bookings) != 1 {
		t.Fatalf("ledger has %d bookings, want 1", len(repo.bookings))
	}
}

// Many overlapping candidate windows racing: one winner per overlap group.
func TestCommit_ConcurrentOverlapGroup(t *testing.T) {
	repo := newFakeRepo()
	uc := newCommit(repo)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// All windows overlap 14:00-14:30 via 15-minute offsets.
			start := testMonday.Add(14*time.Hour + time.Duration(i%2)*15*time.Minute)
			_, errs[i] = uc.Execute(context.Background(), CommitInput{
				BarberID:   1,
				StartTime:  start,
				ServiceIDs: []uint{10},
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if !httperr.IsBusiness(err, "time_conflict") {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("got %d successes, want 1", successes)
	}

	// Safety invariant: active bookings are pairwise non-overlapping.
	for i, a := range repo.bookings {
		for _, b := range repo.bookings[i+1:] {
			if schedule.Overlaps(
				schedule.Interval{Start: a.StartTime, End: a.EndTime},
				schedule.Interval{Start: b.StartTime, End: b.EndTime},
			) {
				t.Fatalf("overlapping bookings committed: %v / %v", a, b)
			}
		}
	}
}

// Different barbers must not contend: both commits succeed.
func TestCommit_DifferentBarbersIndependent(t *testing.T) {
	repo := newFakeRepo()
	repo.shifts = append(repo.shifts, models.Shift{
		BarberID: 2, Weekday: int(time.Monday), StartTime: "09:00", EndTime: "17:00",
	})
	repo.services[20] = models.Service{ID: 20, BarberID: 2, Name: "Cut", Price: 40, DurationMin: 30, Active: true}

	uc := newCommit(repo)
	start := testMonday.Add(14 * time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	ids := []struct {
		barber  uint
		service uint
	}{{1, 10}, {2, 20}}

	for i, p := range ids {
		wg.Add(1)
		go func(i int, barber, service uint) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), CommitInput{
				BarberID:   barber,
				StartTime:  start,
				ServiceIDs: []uint{service},
			})
		}(i, p.barber, p.service)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("barber %d commit failed: %v", ids[i].barber, err)
		}
	}
}

func TestCommit_MinAdvanceWindow(t *testing.T) {
	repo := newFakeRepo()
	repo.barbers[2].Shop = &models.Shop{ID: 7, MinAdvanceMinutes: 120}
	repo.shifts = append(repo.shifts, models.Shift{
		BarberID: 2, Weekday: int(time.Monday), StartTime: "09:00", EndTime: "17:00",
	})
	repo.services[20] = models.Service{ID: 20, BarberID: 2, Name: "Cut", Price: 40, DurationMin: 30, Active: true}

	uc := newCommit(repo)

	// 09:00 is only an hour after "now", inside the 2h notice window.
	_, err := uc.Execute(context.Background(), CommitInput{
		BarberID:   2,
		StartTime:  testMonday.Add(9 * time.Hour),
		ServiceIDs: []uint{20},
	})
	if !httperr.IsBusiness(err, "start_too_soon") {
		t.Fatalf("got %v, want start_too_soon", err)
	}

	_, err = uc.Execute(context.Background(), CommitInput{
		BarberID:   2,
		StartTime:  testMonday.Add(11 * time.Hour),
		ServiceIDs: []uint{20},
	})
	if err != nil {
		t.Fatalf("booking past the notice window rejected: %v", err)
	}
}

func TestCommit_ShopAffiliationRate(t *testing.T) {
	repo := newFakeRepo()
	repo.shifts = append(repo.shifts, models.Shift{
		BarberID: 2, Weekday: int(time.Monday), StartTime: "09:00", EndTime: "17:00",
	})
	repo.services[20] = models.Service{ID: 20, BarberID: 2, Name: "Cut", Price: 100, DurationMin: 30, Active: true}

	uc := newCommit(repo)

	b, err := uc.Execute(context.Background(), CommitInput{
		BarberID:   2,
		StartTime:  testMonday.Add(10 * time.Hour),
		ServiceIDs: []uint{20},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.FinancialBreakdown.PlatformFee != 5.00 {
		t.Errorf("shop-affiliated fee = %v, want 5.00 at 5%%", b.FinancialBreakdown.PlatformFee)
	}
}

// A repo whose barber lookup fails at the storage layer, as opposed to
// finding no row.
type downBarberRepo struct {
	*fakeRepo
}

func (r *downBarberRepo) GetBarberByID(_ context.Context, _ uint) (*models.Barber, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestCommit_StorageErrorNotMaskedAsNotFound(t *testing.T) {
	repo := &downBarberRepo{newFakeRepo()}
	uc := newCommit(repo)

	_, err := uc.Execute(context.Background(), CommitInput{
		BarberID:   1,
		StartTime:  testMonday.Add(14 * time.Hour),
		ServiceIDs: []uint{10},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if httperr.IsBusiness(err, "barber_not_found") {
		t.Fatal("storage failure reported as barber_not_found")
	}
}

// A repo that cannot acquire the per-barber lock in budget: the commit
// surfaces the retryable error and writes nothing.
type lockTimeoutRepo struct {
	*fakeRepo
}

func (r *lockTimeoutRepo) WithBarberLock(_ context.Context, _ uint, _ func(tx domain.Repository) error) error {
	return httperr.ErrBusiness("lock_timeout")
}

func TestCommit_LockTimeout(t *testing.T) {
	repo := &lockTimeoutRepo{newFakeRepo()}
	uc := newCommit(repo)

	_, err := uc.Execute(context.Background(), CommitInput{
		BarberID:   1,
		StartTime:  testMonday.Add(14 * time.Hour),
		ServiceIDs: []uint{10},
	})
	if !httperr.IsBusiness(err, "lock_timeout") {
		t.Fatalf("got %v, want lock_timeout", err)
	}
	if len(repo.bookings) != 0 {
		t.Fatal("booking written despite lock timeout")
	}
}
