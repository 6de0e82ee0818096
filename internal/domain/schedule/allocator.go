package schedule

import (
	"errors"
	"sort"
	"time"
)

// Slot is a concrete [start, end) interval for a single itinerary item.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the slot length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

func (s Slot) overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Allocator owns one day's [start, end) window and a movable cursor. Two
// insertion modes coexist: AddItem places sequentially after the cursor
// (attractions only care about relative order and travel time), while
// InsertFixedItem pins to a real-world clock constraint (flights, meals) and
// leaves the cursor alone until the caller advances it.
type Allocator struct {
	dayStart time.Time
	dayEnd   time.Time
	cursor   time.Time
	placed   []Slot
}

// New binds an allocator to a single day's window.
func New(dayStart, dayEnd time.Time) (*Allocator, error) {
	if !dayStart.Before(dayEnd) {
		return nil, errors.New("day start must precede day end")
	}
	return &Allocator{dayStart: dayStart, dayEnd: dayEnd, cursor: dayStart}, nil
}

// AddItem places an item sequentially. The earliest feasible start is
// max(cursor + travel, minStart); if that start collides with an already
// pinned slot the item slides past it. Returns false when the item cannot end
// before the day boundary, leaving the cursor untouched.
func (a *Allocator) AddItem(duration, travel time.Duration, minStart *time.Time) (Slot, bool) {
	if duration <= 0 {
		return Slot{}, false
	}
	start := a.cursor.Add(travel)
	if minStart != nil && minStart.After(start) {
		start = *minStart
	}
	start = a.slidePastConflicts(start, duration)
	end := start.Add(duration)
	if end.After(a.dayEnd) {
		return Slot{}, false
	}
	slot := Slot{Start: start, End: end}
	a.placed = append(a.placed, slot)
	a.cursor = end
	return slot, true
}

// InsertFixedItem pins an item to an exact window. It succeeds only when the
// window lies inside the day and does not overlap anything already placed.
// The cursor is not moved; callers that need sequencing after a fixed
// insertion call AdvanceTo explicitly.
func (a *Allocator) InsertFixedItem(start, end time.Time) (Slot, bool) {
	if !start.Before(end) {
		return Slot{}, false
	}
	if start.Before(a.dayStart) || end.After(a.dayEnd) {
		return Slot{}, false
	}
	candidate := Slot{Start: start, End: end}
	for _, existing := range a.placed {
		if candidate.overlaps(existing) {
			return Slot{}, false
		}
	}
	a.placed = append(a.placed, candidate)
	return candidate, true
}

// CanFit is a side-effect-free probe: would an item of the given duration,
// plus a safety buffer, still end before the day boundary if placed now?
func (a *Allocator) CanFit(duration, buffer time.Duration) bool {
	if duration <= 0 {
		return false
	}
	return !a.cursor.Add(duration + buffer).After(a.dayEnd)
}

// AdvanceTo forcibly moves the cursor forward. Moving backward is a no-op.
func (a *Allocator) AdvanceTo(t time.Time) {
	if t.After(a.cursor) {
		a.cursor = t
	}
}

// Cursor returns the current insertion point.
func (a *Allocator) Cursor() time.Time {
	return a.cursor
}

// DayStart returns the lower bound of the window.
func (a *Allocator) DayStart() time.Time {
	return a.dayStart
}

// DayEnd returns the upper bound of the window.
func (a *Allocator) DayEnd() time.Time {
	return a.dayEnd
}

// Remaining reports the time left between the cursor and the day boundary.
func (a *Allocator) Remaining() time.Duration {
	if a.cursor.After(a.dayEnd) {
		return 0
	}
	return a.dayEnd.Sub(a.cursor)
}

// Placed returns the placed slots in start order.
func (a *Allocator) Placed() []Slot {
	out := make([]Slot, len(a.placed))
	copy(out, a.placed)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (a *Allocator) slidePastConflicts(start time.Time, duration time.Duration) time.Time {
	for moved := true; moved; {
		moved = false
		candidate := Slot{Start: start, End: start.Add(duration)}
		for _, existing := range a.placed {
			if candidate.overlaps(existing) && existing.End.After(start) {
				start = existing.End
				moved = true
			}
		}
	}
	return start
}
