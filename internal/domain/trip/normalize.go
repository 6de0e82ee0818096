package trip

import (
	"strings"

	"github.com/google/uuid"

	"github.com/voyora/tripweaver/pkg/util"
)

// Normalization bounds applied once before scheduling. Durations outside the
// window are almost always upstream data errors.
const (
	minAttractionMinutes     = 15
	maxAttractionMinutes     = 480
	defaultAttractionMinutes = 90
	defaultOpenTime          = "08:00"
	defaultCloseTime         = "22:00"
)

// Normalize clamps candidate durations and costs, fills reliability tags, and
// drops attractions without usable coordinates. A candidate with no location
// can never pass the geographic checks, and defaulting it to city center
// would fabricate data; the next candidate in the ranked pool replaces it
// naturally. Returns the number of dropped attractions.
func (r *Resources) Normalize() int {
	dropped := 0
	kept := r.Attractions[:0]
	for _, a := range r.Attractions {
		if a.Coords == nil || strings.TrimSpace(a.Name) == "" {
			dropped++
			continue
		}
		kept = append(kept, normalizeAttraction(a))
	}
	r.Attractions = kept

	for i := range r.Restaurants {
		if r.Restaurants[i].ID == "" {
			r.Restaurants[i].ID = uuid.NewString()
		}
		if r.Restaurants[i].PriceTier < 1 {
			r.Restaurants[i].PriceTier = 2
		}
		if r.Restaurants[i].PriceTier > 4 {
			r.Restaurants[i].PriceTier = 4
		}
	}
	return dropped
}

func normalizeAttraction(a Attraction) Attraction {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.DurationMinutes <= 0 {
		a.DurationMinutes = defaultAttractionMinutes
	}
	if a.DurationMinutes < minAttractionMinutes {
		a.DurationMinutes = minAttractionMinutes
	}
	if a.DurationMinutes > maxAttractionMinutes {
		a.DurationMinutes = maxAttractionMinutes
	}
	if a.Cost < 0 {
		a.Cost = 0
	}
	if a.Reliability == "" {
		a.Reliability = ReliabilityEstimated
	}
	if _, err := util.ParseClock(a.OpenTime); err != nil {
		a.OpenTime = defaultOpenTime
	}
	if _, err := util.ParseClock(a.CloseTime); err != nil {
		a.CloseTime = defaultCloseTime
	}
	return a
}
