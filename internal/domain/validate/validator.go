package validate

import (
	"log/slog"
	"time"

	"github.com/voyora/tripweaver/internal/domain/trip"
	"github.com/voyora/tripweaver/pkg/geo"
	"github.com/voyora/tripweaver/pkg/util"
)

// Config carries the validator's thresholds.
type Config struct {
	// OperatingRadiusKm bounds how far from the destination's center an item
	// may plausibly sit. A day whose own stops cluster elsewhere is treated
	// as a day trip and measured against its own anchor instead.
	OperatingRadiusKm float64

	MustSeeMinutes int
}

// DefaultConfig returns the thresholds the engine ships with.
func DefaultConfig() Config {
	return Config{
		OperatingRadiusKm: 60,
		MustSeeMinutes:    90,
	}
}

// Validator runs once over the fully assembled itinerary: cross-day
// deduplication, residual overlap repair, must-see enforcement, and the
// geographic sanity filter.
type Validator struct {
	cfg    Config
	logger *slog.Logger
}

// New wires the post-generation validator.
func New(cfg Config, logger *slog.Logger) *Validator {
	return &Validator{cfg: cfg, logger: logger.With("component", "validate")}
}

// Validate repairs the itinerary in place.
func (v *Validator) Validate(itin *trip.Itinerary, prefs *trip.Preferences, res *trip.Resources) {
	v.dedupAcrossDays(itin)
	v.filterImplausible(itin, prefs)
	v.repairOverlaps(itin)
	v.enforceMustSee(itin, prefs, res)
	for i := range itin.Days {
		itin.Days[i].SortItems()
	}
}

// dedupAcrossDays drops activities that coincidentally landed on two
// different days, keeping the longer instance.
func (v *Validator) dedupAcrossDays(itin *trip.Itinerary) {
	type placed struct {
		day, idx int
		duration time.Duration
	}
	best := make(map[string]placed)
	drop := make(map[[2]int]bool)

	for di := range itin.Days {
		for ii, item := range itin.Days[di].Items {
			if item.Type != trip.ItemActivity || item.SourceID == "" {
				continue
			}
			dur := item.End.Sub(item.Start)
			prev, seen := best[item.SourceID]
			if !seen {
				best[item.SourceID] = placed{day: di, idx: ii, duration: dur}
				continue
			}
			if dur > prev.duration {
				drop[[2]int{prev.day, prev.idx}] = true
				best[item.SourceID] = placed{day: di, idx: ii, duration: dur}
			} else {
				drop[[2]int{di, ii}] = true
			}
		}
	}
	if len(drop) == 0 {
		return
	}
	v.logger.Warn("removing duplicate activities across days", "count", len(drop))
	v.removeMarked(itin, drop)
}

// filterImplausible removes items whose coordinates fall outside the
// destination's operating radius, unless the day itself anchors elsewhere (a
// day trip).
func (v *Validator) filterImplausible(itin *trip.Itinerary, prefs *trip.Preferences) {
	center := prefs.CityCenter
	if center == nil {
		return
	}
	drop := make(map[[2]int]bool)
	for di := range itin.Days {
		anchor := dayAnchor(&itin.Days[di])
		for ii, item := range itin.Days[di].Items {
			if item.Type != trip.ItemActivity || item.Coords == nil {
				continue
			}
			fromCenter := geo.DistanceKm(center.Lat, center.Lng, item.Coords.Lat, item.Coords.Lng)
			if fromCenter <= v.cfg.OperatingRadiusKm {
				continue
			}
			if anchor != nil {
				fromAnchor := geo.DistanceKm(anchor.Lat, anchor.Lng, item.Coords.Lat, item.Coords.Lng)
				if fromAnchor <= v.cfg.OperatingRadiusKm {
					continue
				}
			}
			v.logger.Warn("dropping geographically implausible item",
				"title", item.Title, "distanceKm", fromCenter)
			drop[[2]int{di, ii}] = true
		}
	}
	v.removeMarked(itin, drop)
}

// repairOverlaps nudges the later of two overlapping non-paired items forward
// until the day is overlap-free.
func (v *Validator) repairOverlaps(itin *trip.Itinerary) {
	for di := range itin.Days {
		day := &itin.Days[di]
		day.SortItems()
		for i := 1; i < len(day.Items); i++ {
			prev := &day.Items[i-1]
			cur := &day.Items[i]
			if !cur.Start.Before(prev.End) {
				continue
			}
			if prev.Paired && cur.Paired {
				continue
			}
			shift := prev.End.Sub(cur.Start)
			cur.Start = cur.Start.Add(shift)
			cur.End = cur.End.Add(shift)
			cur.StartClock = util.Clock(cur.Start)
			cur.EndClock = util.Clock(cur.End)
			v.logger.Warn("nudged overlapping item forward",
				"day", day.Number, "title", cur.Title, "shift", shift)
		}
	}
}

// enforceMustSee force-inserts any must-see attraction the generation pass
// never placed, into the least-loaded middle day.
func (v *Validator) enforceMustSee(itin *trip.Itinerary, prefs *trip.Preferences, res *trip.Resources) {
	placed := make(map[string]bool)
	for _, day := range itin.Days {
		for _, item := range day.Items {
			if item.SourceID != "" {
				placed[item.SourceID] = true
			}
		}
	}

	for i := range res.Attractions {
		a := &res.Attractions[i]
		if !a.MustSee || placed[a.ID] {
			continue
		}
		di := v.leastLoadedMiddleDay(itin)
		if di < 0 {
			return
		}
		day := &itin.Days[di]
		start := dayTail(day)
		minutes := a.DurationMinutes
		if minutes <= 0 {
			minutes = v.cfg.MustSeeMinutes
		}
		end := start.Add(time.Duration(minutes) * time.Minute)

		item := trip.Item{
			ID:          "must-see-" + a.ID,
			Day:         day.Number,
			Start:       start,
			End:         end,
			StartClock:  util.Clock(start),
			EndClock:    util.Clock(end),
			Type:        trip.ItemActivity,
			Title:       a.Name,
			Description: a.Description,
			Coords:      a.Coords,
			Cost:        a.Cost * float64(prefs.PartySize),
			SourceID:    a.ID,
		}
		day.Items = append(day.Items, item)
		placed[a.ID] = true
		v.logger.Warn("force-inserted missing must-see attraction",
			"attraction", a.Name, "day", day.Number)
	}
}

// leastLoadedMiddleDay prefers interior days; first and last days carry
// logistics and should not absorb repairs unless they are all there is.
func (v *Validator) leastLoadedMiddleDay(itin *trip.Itinerary) int {
	lo, hi := 1, len(itin.Days)-2
	if hi < lo {
		lo, hi = 0, len(itin.Days)-1
	}
	best, bestLoad := -1, 0
	for i := lo; i <= hi && i < len(itin.Days); i++ {
		load := len(itin.Days[i].Items)
		if best < 0 || load < bestLoad {
			best, bestLoad = i, load
		}
	}
	return best
}

func (v *Validator) removeMarked(itin *trip.Itinerary, drop map[[2]int]bool) {
	if len(drop) == 0 {
		return
	}
	for di := range itin.Days {
		kept := itin.Days[di].Items[:0]
		for ii, item := range itin.Days[di].Items {
			if !drop[[2]int{di, ii}] {
				kept = append(kept, item)
			}
		}
		itin.Days[di].Items = kept
	}
}

// dayAnchor is the centroid of a day's located items; nil when the day has
// nothing to anchor on.
func dayAnchor(day *trip.Day) *trip.Coordinates {
	var lat, lng float64
	n := 0
	for _, item := range day.Items {
		if item.Coords != nil {
			lat += item.Coords.Lat
			lng += item.Coords.Lng
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &trip.Coordinates{Lat: lat / float64(n), Lng: lng / float64(n)}
}

// dayTail is the timestamp after the day's last item, or 10:00 on an empty
// day.
func dayTail(day *trip.Day) time.Time {
	if len(day.Items) == 0 {
		minutes, _ := util.ParseClock("10:00")
		return util.AtClock(day.Date, minutes)
	}
	latest := day.Items[0].End
	for _, item := range day.Items[1:] {
		if item.End.After(latest) {
			latest = item.End
		}
	}
	return latest
}
