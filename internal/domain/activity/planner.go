package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/voyora/tripweaver/internal/domain/advisor"
	"github.com/voyora/tripweaver/internal/domain/budget"
	"github.com/voyora/tripweaver/internal/domain/trip"
	"github.com/voyora/tripweaver/pkg/geo"
	"github.com/voyora/tripweaver/pkg/util"
)

// Config carries the placement constants. All empirically chosen, all
// overridable.
type Config struct {
	GapFillMinMinutes    int
	ClosingBufferMinutes int
	TravelSpeedKmh       float64
	MinTravelMinutes     int
	MaxTravelMinutes     int
	DefaultTravelMinutes int
}

// DefaultConfig returns the constants the engine ships with.
func DefaultConfig() Config {
	return Config{
		GapFillMinMinutes:    45,
		ClosingBufferMinutes: 30,
		TravelSpeedKmh:       20,
		MinTravelMinutes:     5,
		MaxTravelMinutes:     60,
		DefaultTravelMinutes: 15,
	}
}

// Planner places ranked attraction candidates into a day using greedy,
// locally-good placement.
type Planner struct {
	cfg    Config
	logger *slog.Logger
}

// NewPlanner wires the activity planner.
func NewPlanner(cfg Config, logger *slog.Logger) *Planner {
	return &Planner{cfg: cfg, logger: logger.With("component", "activity")}
}

// PlaceActivities walks the candidates in ranked order and places every one
// that survives the checks: not used trip-wide, reachable and finished before
// the deadline, inside opening hours with the closing safety margin, and
// affordable for the whole party.
func (p *Planner) PlaceActivities(ctx context.Context, dc *trip.DayContext, candidates []trip.Attraction, deadline time.Time) {
	for i := range candidates {
		p.tryPlace(dc, &candidates[i], deadline)
	}
}

// FillGap scans the full candidate pool, not just the day's pre-allocation,
// whenever more than the threshold remains before the next deadline. Items
// are placed greedily in ranked order and the remaining window re-evaluated
// after each placement; this is what keeps sparse days from having large
// unplanned voids.
func (p *Planner) FillGap(ctx context.Context, dc *trip.DayContext, pool []trip.Attraction, deadline time.Time, session advisor.Session) {
	threshold := time.Duration(p.cfg.GapFillMinMinutes) * time.Minute
	for deadline.Sub(dc.Alloc.Cursor()) > threshold {
		feasible := p.feasibleNow(dc, pool, deadline)
		if len(feasible) == 0 {
			return
		}
		choice := feasible[0]
		if len(feasible) > 1 && session != nil && session.Enabled() {
			choice = p.adviseChoice(ctx, dc, feasible, deadline, session)
		}
		if !p.tryPlace(dc, choice, deadline) {
			return
		}
	}
}

// adviseChoice asks the oracle to arbitrate between competing gap fillers.
// Any advisor failure resolves deterministically inside the session.
func (p *Planner) adviseChoice(ctx context.Context, dc *trip.DayContext, feasible []*trip.Attraction, deadline time.Time, session advisor.Session) *trip.Attraction {
	options := make([]advisor.Option, 0, len(feasible))
	byID := make(map[string]*trip.Attraction, len(feasible))
	for _, cand := range feasible {
		options = append(options, advisor.Option{
			ID:              cand.ID,
			Label:           cand.Name,
			Category:        advisor.CategoryActivity,
			DurationMinutes: cand.DurationMinutes,
		})
		byID[cand.ID] = cand
	}
	res, err := session.Decide(ctx, advisor.Request{
		Kind:             advisor.KindGapFill,
		Summary:          "unplanned time before the next fixed commitment, several candidates fit",
		Options:          options,
		AvailableMinutes: int(deadline.Sub(dc.Alloc.Cursor()) / time.Minute),
		TimeOfDay:        dc.Alloc.Cursor(),
	})
	if err != nil {
		return feasible[0]
	}
	if chosen, ok := byID[res.OptionID]; ok {
		return chosen
	}
	return feasible[0]
}

func (p *Planner) feasibleNow(dc *trip.DayContext, pool []trip.Attraction, deadline time.Time) []*trip.Attraction {
	var out []*trip.Attraction
	for i := range pool {
		cand := &pool[i]
		if dc.IsUsed(cand.ID) {
			continue
		}
		if _, _, ok := p.feasibleSlot(dc, cand, deadline); !ok {
			continue
		}
		out = append(out, cand)
	}
	return out
}

// tryPlace runs the full check ladder for one candidate and places it on
// success. Infeasible candidates are skipped, never fatal.
func (p *Planner) tryPlace(dc *trip.DayContext, cand *trip.Attraction, deadline time.Time) bool {
	if dc.IsUsed(cand.ID) || cand.Coords == nil {
		return false
	}
	travel, minStart, ok := p.feasibleSlot(dc, cand, deadline)
	if !ok {
		return false
	}
	cost := cand.Cost * float64(dc.Prefs.PartySize)
	if cost > 0 && !dc.Budget.CanAfford(budget.CategoryActivities, cost) {
		p.logger.Debug("activity over budget, skipping", "attraction", cand.Name, "cost", cost)
		return false
	}

	duration := time.Duration(cand.DurationMinutes) * time.Minute
	slot, placed := dc.Alloc.AddItem(duration, travel, minStart)
	if !placed {
		return false
	}
	if cost > 0 {
		dc.Budget.Spend(budget.CategoryActivities, cost)
	}

	item := trip.NewItem(dc.Day.Number, trip.ItemActivity, cand.Name, slot)
	item.Description = cand.Description
	item.Coords = cand.Coords
	item.Cost = cost
	item.SourceID = cand.ID
	dc.Place(item)
	dc.MarkUsed(cand.ID)
	return true
}

// feasibleSlot checks deadline and opening-hours feasibility for a candidate
// placed at the current cursor, returning the travel time and the optional
// opening-time floor for the start.
func (p *Planner) feasibleSlot(dc *trip.DayContext, cand *trip.Attraction, deadline time.Time) (time.Duration, *time.Time, bool) {
	travel := p.travelTime(dc.LastCoords, cand.Coords)
	duration := time.Duration(cand.DurationMinutes) * time.Minute

	start := dc.Alloc.Cursor().Add(travel)
	var minStart *time.Time
	if openMin, err := util.ParseClock(cand.OpenTime); err == nil {
		opens := util.AtClock(dc.Day.Date, openMin)
		if opens.After(start) {
			start = opens
			minStart = &opens
		}
	}
	end := start.Add(duration)
	if end.After(deadline) || end.After(dc.Alloc.DayEnd()) {
		return 0, nil, false
	}
	if closeMin, err := util.ParseClock(cand.CloseTime); err == nil {
		closes := util.AtClock(dc.Day.Date, closeMin)
		margin := time.Duration(p.cfg.ClosingBufferMinutes) * time.Minute
		if end.After(closes.Add(-margin)) {
			return 0, nil, false
		}
	}
	return travel, minStart, true
}

// travelTime estimates inter-stop travel from great-circle distance, clamped
// to sane bounds. Unknown positions cost the default.
func (p *Planner) travelTime(from, to *trip.Coordinates) time.Duration {
	if from == nil || to == nil {
		return time.Duration(p.cfg.DefaultTravelMinutes) * time.Minute
	}
	km := geo.DistanceKm(from.Lat, from.Lng, to.Lat, to.Lng)
	minutes := int(km / p.cfg.TravelSpeedKmh * 60)
	if minutes < p.cfg.MinTravelMinutes {
		minutes = p.cfg.MinTravelMinutes
	}
	if minutes > p.cfg.MaxTravelMinutes {
		minutes = p.cfg.MaxTravelMinutes
	}
	return time.Duration(minutes) * time.Minute
}
