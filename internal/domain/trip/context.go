package trip

import (
	"github.com/voyora/tripweaver/internal/domain/budget"
	"github.com/voyora/tripweaver/internal/domain/schedule"
)

// DayContext threads one day's mutable scheduling state through the
// logistics, meal, and activity passes. The used-attraction set and grocery
// flag are trip-wide and carried across days by the orchestrator.
type DayContext struct {
	Day       *Day
	Alloc     *schedule.Allocator
	Budget    *budget.Tracker
	Prefs     *Preferences
	Resources *Resources

	// Used holds attraction ids already placed anywhere in the trip. An id,
	// once present, is never placed again.
	Used map[string]struct{}

	// LastCoords is the running "last known position" travel times are
	// computed from.
	LastCoords *Coordinates

	IsArrival   bool
	IsDeparture bool
	IsLast      bool

	// Groceries records whether a grocery run has happened yet; self-catered
	// meals are only permitted afterwards.
	Groceries bool

	// Meals carries the concurrently prefetched restaurant resolutions,
	// keyed by (day, meal type). Missing keys degrade to "no restaurant
	// found".
	Meals map[MealKey]*Restaurant
}

// Place appends an item to the day and updates the running position when the
// item carries coordinates.
func (dc *DayContext) Place(item Item) {
	dc.Day.Items = append(dc.Day.Items, item)
	if item.Coords != nil {
		dc.LastCoords = item.Coords
	}
}

// MarkUsed records an attraction id as consumed for the rest of the trip.
func (dc *DayContext) MarkUsed(id string) {
	if id == "" {
		return
	}
	dc.Used[id] = struct{}{}
}

// IsUsed reports whether an attraction id has been placed anywhere already.
func (dc *DayContext) IsUsed(id string) bool {
	_, ok := dc.Used[id]
	return ok
}

// ResolvedMeal looks up the prefetched restaurant for this day's meal slot.
func (dc *DayContext) ResolvedMeal(meal MealType) *Restaurant {
	if dc.Meals == nil {
		return nil
	}
	return dc.Meals[MealKey{Day: dc.Day.Number, Meal: meal}]
}
