package schedule

import (
	"testing"
	"time"
)

func at(t *testing.T, hm string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", "2026-09-07 "+hm)
	if err != nil {
		t.Fatalf("bad time %q: %v", hm, err)
	}
	return parsed
}

func iv(t *testing.T, start, end string) Interval {
	t.Helper()
	return Interval{Start: at(t, start), End: at(t, end)}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", iv(t, "09:00", "10:00"), iv(t, "11:00", "12:00"), false},
		{"back_to_back", iv(t, "09:00", "10:00"), iv(t, "10:00", "11:00"), false},
		{"partial", iv(t, "09:00", "10:30"), iv(t, "10:00", "11:00"), true},
		{"contained", iv(t, "09:00", "12:00"), iv(t, "10:00", "11:00"), true},
		{"identical", iv(t, "09:00", "10:00"), iv(t, "09:00", "10:00"), true},
	}

	for _, tc := range cases {
		if got := Overlaps(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
		if got := Overlaps(tc.b, tc.a); got != tc.want {
			t.Errorf("%s (swapped): Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSubtract_Identity(t *testing.T) {
	free := iv(t, "09:00", "17:00")

	got := Subtract(free, nil)
	if len(got) != 1 || got[0] != free {
		t.Fatalf("Subtract(I, []) = %v, want [%v]", got, free)
	}
}

func TestSubtract_Annihilation(t *testing.T) {
	free := iv(t, "09:00", "17:00")

	got := Subtract(free, []Interval{free})
	if len(got) != 0 {
		t.Fatalf("Subtract(I, [I]) = %v, want []", got)
	}
}

func TestSubtract_SplitsAndClips(t *testing.T) {
	free := iv(t, "09:00", "17:00")
	busy := []Interval{
		iv(t, "08:00", "09:30"), // clipped at the left edge
		iv(t, "12:00", "13:00"), // splits the middle
		iv(t, "16:30", "18:00"), // clipped at the right edge
	}

	got := Subtract(free, busy)
	want := []Interval{
		iv(t, "09:30", "12:00"),
		iv(t, "13:00", "16:30"),
	}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSubtract_OverlappingBusy(t *testing.T) {
	free := iv(t, "09:00", "17:00")
	busy := []Interval{
		iv(t, "10:00", "12:00"),
		iv(t, "11:00", "13:00"),
		iv(t, "11:30", "11:45"),
	}

	got := Subtract(free, busy)
	want := []Interval{
		iv(t, "09:00", "10:00"),
		iv(t, "13:00", "17:00"),
	}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMerge(t *testing.T) {
	in := []Interval{
		iv(t, "14:00", "18:00"),
		iv(t, "09:00", "12:00"),
		iv(t, "11:00", "13:00"), // overlaps first morning window
		iv(t, "13:00", "14:00"), // touches, must coalesce
		{},                      // zero interval ignored
	}

	got := Merge(in)
	want := []Interval{iv(t, "09:00", "18:00")}

	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
}

func TestClip(t *testing.T) {
	bounds := iv(t, "09:00", "17:00")

	if got := Clip(iv(t, "08:00", "10:00"), bounds); got != iv(t, "09:00", "10:00") {
		t.Errorf("left clip: got %v", got)
	}
	if got := Clip(iv(t, "16:00", "19:00"), bounds); got != iv(t, "16:00", "17:00") {
		t.Errorf("right clip: got %v", got)
	}
	if got := Clip(iv(t, "18:00", "19:00"), bounds); !got.IsZero() {
		t.Errorf("disjoint clip: got %v, want zero", got)
	}
}
