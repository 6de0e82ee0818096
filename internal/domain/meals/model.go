package meals

import (
	"context"
	"time"

	"github.com/voyora/tripweaver/internal/domain/trip"
)

// ResolverFunc is the external restaurant-resolution collaborator. It applies
// its own ranking, fallback, and de-duplication; a nil result means "no
// restaurant found" and the scheduler degrades accordingly.
type ResolverFunc func(ctx context.Context, meal trip.MealType, cityCenter *trip.Coordinates, prefs *trip.Preferences, day int, last *trip.Coordinates) (*trip.Restaurant, error)

// Kind says how a meal was resolved.
type Kind string

const (
	KindIncluded    Kind = "hotel_included"
	KindSelfCatered Kind = "self_catered"
	KindPicnic      Kind = "picnic"
	KindRestaurant  Kind = "restaurant"
)

// Config carries the meal cadence constants. The retry windows and cutoffs
// are empirically chosen and deliberately overridable rather than derived.
type Config struct {
	BreakfastEarliestHour int
	BreakfastCutoffHour   int
	BreakfastMinutes      int
	LunchWindows          []string
	LunchLatest           string
	LunchMinutes          int
	DinnerStart           string
	DinnerMinutes         int
	DinnerEarliestEndHour int
	PicnicTriggerMinutes  int
	SelfCateredMinutes    int
	SelfCateredPerPerson  float64
	PriceTable            map[trip.BudgetTier]map[trip.MealType]float64
}

// DefaultConfig returns the cadence the engine ships with.
func DefaultConfig() Config {
	return Config{
		BreakfastEarliestHour: 7,
		BreakfastCutoffHour:   10,
		BreakfastMinutes:      45,
		LunchWindows:          []string{"12:30", "12:00", "13:00", "13:30"},
		LunchLatest:           "14:30",
		LunchMinutes:          60,
		DinnerStart:           "19:00",
		DinnerMinutes:         90,
		DinnerEarliestEndHour: 20,
		PicnicTriggerMinutes:  180,
		SelfCateredMinutes:    30,
		SelfCateredPerPerson:  6,
		PriceTable:            DefaultPriceTable(),
	}
}

// DefaultPriceTable is the per-person restaurant price lookup keyed by budget
// tier and meal type.
func DefaultPriceTable() map[trip.BudgetTier]map[trip.MealType]float64 {
	return map[trip.BudgetTier]map[trip.MealType]float64{
		trip.TierBudget: {
			trip.MealBreakfast: 8,
			trip.MealLunch:     12,
			trip.MealDinner:    18,
		},
		trip.TierModerate: {
			trip.MealBreakfast: 14,
			trip.MealLunch:     22,
			trip.MealDinner:    35,
		},
		trip.TierLuxury: {
			trip.MealBreakfast: 28,
			trip.MealLunch:     45,
			trip.MealDinner:    80,
		},
	}
}

// perPersonPrice looks up the restaurant price for a tier and meal, falling
// back to the moderate tier for unknown tiers.
func (c Config) perPersonPrice(tier trip.BudgetTier, meal trip.MealType) float64 {
	table, ok := c.PriceTable[tier]
	if !ok {
		table = c.PriceTable[trip.TierModerate]
	}
	return table[meal]
}

// mealDuration returns the placement duration for a resolution kind.
func (c Config) mealDuration(meal trip.MealType, kind Kind) time.Duration {
	switch {
	case kind == KindSelfCatered || kind == KindPicnic:
		return time.Duration(c.SelfCateredMinutes) * time.Minute
	case meal == trip.MealBreakfast:
		return time.Duration(c.BreakfastMinutes) * time.Minute
	case meal == trip.MealLunch:
		return time.Duration(c.LunchMinutes) * time.Minute
	default:
		return time.Duration(c.DinnerMinutes) * time.Minute
	}
}
