package schedule

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End). All endpoints are
// instants in the shop's reference timezone; conversion from client-local
// time happens at the API boundary, never here.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) IsZero() bool {
	return !i.End.After(i.Start)
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// intervals (one ends exactly when the next starts) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Contains reports whether outer fully covers inner.
func Contains(outer, inner Interval) bool {
	return !inner.Start.Before(outer.Start) && !inner.End.After(outer.End)
}

// Clip returns the portion of i that lies inside bounds, or a zero
// interval if they do not intersect.
func Clip(i, bounds Interval) Interval {
	out := i
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	if out.IsZero() {
		return Interval{}
	}
	return out
}

// Subtract removes every busy interval from free, returning the zero or
// more disjoint remainders sorted by start.
func Subtract(free Interval, busy []Interval) []Interval {
	if free.IsZero() {
		return nil
	}

	sorted := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if Overlaps(free, b) {
			sorted = append(sorted, b)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var out []Interval
	cursor := free.Start

	for _, b := range sorted {
		if b.Start.After(cursor) {
			out = append(out, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if cursor.Before(free.End) {
		out = append(out, Interval{Start: cursor, End: free.End})
	}

	return out
}

// SubtractAll applies Subtract to every free interval, preserving order.
func SubtractAll(free []Interval, busy []Interval) []Interval {
	var out []Interval
	for _, f := range free {
		out = append(out, Subtract(f, busy)...)
	}
	return out
}

// Merge sorts intervals and coalesces any that overlap or touch, so split
// shifts entered as overlapping rows are never double-counted downstream.
func Merge(intervals []Interval) []Interval {
	var in []Interval
	for _, i := range intervals {
		if !i.IsZero() {
			in = append(in, i)
		}
	}
	if len(in) == 0 {
		return nil
	}

	sort.Slice(in, func(i, j int) bool {
		return in[i].Start.Before(in[j].Start)
	})

	out := []Interval{in[0]}
	for _, i := range in[1:] {
		last := &out[len(out)-1]
		if !i.Start.After(last.End) {
			if i.End.After(last.End) {
				last.End = i.End
			}
			continue
		}
		out = append(out, i)
	}

	return out
}
