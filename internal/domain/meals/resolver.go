package meals

import (
	"context"
	"sync"

	"github.com/voyora/tripweaver/internal/domain/trip"
	"github.com/voyora/tripweaver/pkg/geo"
)

// NewListResolver builds the default ResolverFunc over the request's
// pre-ranked restaurant list. It scores by proximity to the traveler's last
// known position, tier fit, and rating, and de-duplicates against a shared
// used-id set so the same restaurant is not proposed twice in one trip.
func NewListResolver(restaurants []trip.Restaurant, tier trip.BudgetTier) ResolverFunc {
	var mu sync.Mutex
	used := make(map[string]struct{})

	return func(_ context.Context, meal trip.MealType, cityCenter *trip.Coordinates, _ *trip.Preferences, _ int, last *trip.Coordinates) (*trip.Restaurant, error) {
		anchor := last
		if anchor == nil {
			anchor = cityCenter
		}
		mu.Lock()
		defer mu.Unlock()

		var (
			best      *trip.Restaurant
			bestScore float64
		)
		for i := range restaurants {
			r := &restaurants[i]
			if _, taken := used[r.ID]; taken {
				continue
			}
			score := scoreRestaurant(r, anchor, tier)
			if best == nil || score > bestScore {
				best = r
				bestScore = score
			}
		}
		if best == nil {
			return nil, nil
		}
		used[best.ID] = struct{}{}
		picked := *best
		return &picked, nil
	}
}

func scoreRestaurant(r *trip.Restaurant, anchor *trip.Coordinates, tier trip.BudgetTier) float64 {
	score := r.Rating
	if anchor != nil && r.Coords != nil {
		km := geo.DistanceKm(anchor.Lat, anchor.Lng, r.Coords.Lat, r.Coords.Lng)
		// Every kilometer away costs half a rating point, capped so far
		// options stay comparable instead of unreachable.
		penalty := km * 0.5
		if penalty > 4 {
			penalty = 4
		}
		score -= penalty
	}
	if tierMatches(tier, r.PriceTier) {
		score += 1
	}
	return score
}

func tierMatches(tier trip.BudgetTier, priceTier int) bool {
	switch tier {
	case trip.TierBudget:
		return priceTier <= 2
	case trip.TierLuxury:
		return priceTier >= 3
	default:
		return priceTier == 2 || priceTier == 3
	}
}
