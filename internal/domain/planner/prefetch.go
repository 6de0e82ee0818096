package planner

import (
	"context"
	"sync"

	"github.com/voyora/tripweaver/internal/domain/meals"
	"github.com/voyora/tripweaver/internal/domain/trip"
)

// prefetchMeals resolves a restaurant for every meal slot that could need one,
// concurrently, before the sequential day loop starts. Slots that resolve to
// nothing (or fail) are simply absent from the map; the scheduler treats that
// as "no restaurant found" and degrades.
func (s *service) prefetchMeals(ctx context.Context, prefs *trip.Preferences, res *trip.Resources) map[trip.MealKey]*trip.Restaurant {
	if len(res.Restaurants) == 0 {
		return nil
	}
	resolver := meals.NewListResolver(res.Restaurants, prefs.BudgetTier)

	var anchor *trip.Coordinates
	if res.Lodging != nil && res.Lodging.Coords != nil {
		anchor = res.Lodging.Coords
	}

	keys := make([]trip.MealKey, 0, prefs.DurationDays*3)
	for day := 1; day <= prefs.DurationDays; day++ {
		if !(res.Lodging != nil && res.Lodging.BreakfastIncluded) {
			keys = append(keys, trip.MealKey{Day: day, Meal: trip.MealBreakfast})
		}
		keys = append(keys, trip.MealKey{Day: day, Meal: trip.MealLunch})
		if day < prefs.DurationDays {
			keys = append(keys, trip.MealKey{Day: day, Meal: trip.MealDinner})
		}
	}

	resolved := make(map[trip.MealKey]*trip.Restaurant, len(keys))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key trip.MealKey) {
			defer wg.Done()
			r, err := resolver(ctx, key.Meal, prefs.CityCenter, prefs, key.Day, anchor)
			if err != nil || r == nil {
				if err != nil {
					s.logger.Warn("restaurant resolution failed", "day", key.Day, "meal", key.Meal, "error", err)
				}
				return
			}
			mu.Lock()
			resolved[key] = r
			mu.Unlock()
		}(key)
	}
	wg.Wait()
	return resolved
}
