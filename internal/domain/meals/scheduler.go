package meals

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voyora/tripweaver/internal/domain/budget"
	"github.com/voyora/tripweaver/internal/domain/schedule"
	"github.com/voyora/tripweaver/internal/domain/trip"
	"github.com/voyora/tripweaver/pkg/util"
)

// Scheduler places breakfast, lunch, and dinner into a day. Meals pin to
// real-world clock windows, so they use fixed-time insertion with retries
// where attractions use sequential placement.
type Scheduler struct {
	cfg    Config
	logger *slog.Logger
}

// NewScheduler wires the meal scheduler.
func NewScheduler(cfg Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, logger: logger.With("component", "meals")}
}

// ScheduleBreakfast places breakfast right after the day opens. Skipped on
// arrival days, on pre-dawn departure mornings, and once the morning is
// already past the cutoff hour.
func (s *Scheduler) ScheduleBreakfast(ctx context.Context, dc *trip.DayContext) {
	if dc.IsArrival {
		return
	}
	hour := dc.Alloc.Cursor().Hour()
	if hour < s.cfg.BreakfastEarliestHour || hour >= s.cfg.BreakfastCutoffHour {
		return
	}
	kind, restaurant, ok := s.resolve(dc, trip.MealBreakfast)
	if !ok {
		return
	}
	duration := s.cfg.mealDuration(trip.MealBreakfast, kind)
	slot, placed := dc.Alloc.AddItem(duration, 0, nil)
	if !placed {
		return
	}
	s.placeMeal(dc, trip.MealBreakfast, kind, restaurant, slot)
}

// ScheduleLunch forces lunch into a fixed midday window, trying several
// candidate start times in order. Failing all of them, it lands immediately
// after the current block provided the result still ends before the latest
// acceptable lunch time.
func (s *Scheduler) ScheduleLunch(ctx context.Context, dc *trip.DayContext) {
	// Days that end before mid-afternoon cannot host a lunch.
	if s.windowClosesBefore(dc, 14) {
		return
	}
	kind, restaurant, ok := s.resolve(dc, trip.MealLunch)
	if !ok {
		return
	}
	if s.straddlingActivity(dc, s.cfg.LunchWindows[0]) != nil {
		// A long booked block covers the window; eat where we are.
		kind, restaurant = KindPicnic, nil
	}
	duration := s.cfg.mealDuration(trip.MealLunch, kind)

	for _, window := range s.cfg.LunchWindows {
		minutes, err := util.ParseClock(window)
		if err != nil {
			continue
		}
		start := util.AtClock(dc.Day.Date, minutes)
		if start.Before(dc.Alloc.DayStart()) {
			continue
		}
		if slot, placed := dc.Alloc.InsertFixedItem(start, start.Add(duration)); placed {
			dc.Alloc.AdvanceTo(slot.End)
			s.placeMeal(dc, trip.MealLunch, kind, restaurant, slot)
			return
		}
	}

	latestMinutes, err := util.ParseClock(s.cfg.LunchLatest)
	if err != nil {
		return
	}
	latest := util.AtClock(dc.Day.Date, latestMinutes)
	if dc.Alloc.Cursor().Add(duration).After(latest) {
		s.logger.Debug("lunch skipped, no feasible window", "day", dc.Day.Number)
		return
	}
	if slot, placed := dc.Alloc.AddItem(duration, 0, nil); placed {
		s.placeMeal(dc, trip.MealLunch, kind, restaurant, slot)
	}
}

// ScheduleDinner places dinner from its configured start time onward. Never
// scheduled on the last day, nor on days whose usable window closes before
// the evening begins.
func (s *Scheduler) ScheduleDinner(ctx context.Context, dc *trip.DayContext) {
	if dc.IsLast {
		return
	}
	if s.windowClosesBefore(dc, s.cfg.DinnerEarliestEndHour) {
		return
	}
	kind, restaurant, ok := s.resolve(dc, trip.MealDinner)
	if !ok {
		return
	}
	duration := s.cfg.mealDuration(trip.MealDinner, kind)
	minutes, err := util.ParseClock(s.cfg.DinnerStart)
	if err != nil {
		return
	}
	minStart := util.AtClock(dc.Day.Date, minutes)
	slot, placed := dc.Alloc.AddItem(duration, 0, &minStart)
	if !placed {
		return
	}
	s.placeMeal(dc, trip.MealDinner, kind, restaurant, slot)
}

// resolve walks the resolution ladder: hotel-included, self-catered,
// restaurant. Budget exhaustion downgrades to self-catering when the lodging
// strategy supports it, otherwise the meal is skipped rather than forced.
func (s *Scheduler) resolve(dc *trip.DayContext, meal trip.MealType) (Kind, *trip.Restaurant, bool) {
	lodging := dc.Resources.Lodging
	if meal == trip.MealBreakfast && lodging != nil && lodging.BreakfastIncluded {
		return KindIncluded, nil, true
	}
	if selfCateringAllowed(s.cfg, dc, meal) {
		return KindSelfCatered, nil, true
	}
	restaurant := dc.ResolvedMeal(meal)
	if restaurant == nil {
		s.logger.Debug("no restaurant resolved", "day", dc.Day.Number, "meal", meal)
		return s.downgrade(dc)
	}
	cost := s.cfg.perPersonPrice(dc.Prefs.BudgetTier, meal) * float64(dc.Prefs.PartySize)
	if !dc.Budget.CanAfford(budget.CategoryFood, cost) {
		s.logger.Debug("restaurant over food ceiling", "day", dc.Day.Number, "meal", meal, "cost", cost)
		return s.downgrade(dc)
	}
	return KindRestaurant, restaurant, true
}

func (s *Scheduler) downgrade(dc *trip.DayContext) (Kind, *trip.Restaurant, bool) {
	lodging := dc.Resources.Lodging
	if lodging != nil && lodging.HasKitchen && dc.Groceries {
		return KindSelfCatered, nil, true
	}
	return "", nil, false
}

func (s *Scheduler) placeMeal(dc *trip.DayContext, meal trip.MealType, kind Kind, restaurant *trip.Restaurant, slot schedule.Slot) {
	var (
		title  string
		coords *trip.Coordinates
		cost   float64
	)
	party := float64(dc.Prefs.PartySize)
	lodging := dc.Resources.Lodging

	switch kind {
	case KindIncluded:
		title = fmt.Sprintf("%s at %s (included)", mealLabel(meal), lodging.Name)
		coords = lodging.Coords
	case KindSelfCatered:
		title = fmt.Sprintf("Self-catered %s", meal)
		if lodging != nil {
			coords = lodging.Coords
		}
		cost = s.cfg.SelfCateredPerPerson * party
	case KindPicnic:
		title = fmt.Sprintf("Picnic %s", meal)
		coords = dc.LastCoords
		cost = s.cfg.SelfCateredPerPerson * party
	case KindRestaurant:
		title = fmt.Sprintf("%s at %s", mealLabel(meal), restaurant.Name)
		coords = restaurant.Coords
		cost = s.cfg.perPersonPrice(dc.Prefs.BudgetTier, meal) * party
	}

	if cost > 0 && !dc.Budget.Spend(budget.CategoryFood, cost) {
		// The ladder already checked affordability; a race here means skip.
		return
	}

	item := trip.NewItem(dc.Day.Number, trip.ItemRestaurant, title, slot)
	item.Coords = coords
	item.Cost = cost
	item.Description = string(kind)
	if restaurant != nil {
		item.SourceID = restaurant.ID
	}
	dc.Place(item)
}

// windowClosesBefore reports whether the day's usable window ends before the
// given clock hour on the day's own date. A window stretched past midnight by
// an overnight leg never closes early.
func (s *Scheduler) windowClosesBefore(dc *trip.DayContext, hour int) bool {
	end := dc.Alloc.DayEnd()
	if !util.SameDate(end, dc.Day.Date) {
		return false
	}
	return end.Hour() < hour
}

// straddlingActivity returns a booked activity longer than the picnic trigger
// that covers the given clock time, if any.
func (s *Scheduler) straddlingActivity(dc *trip.DayContext, window string) *trip.Item {
	minutes, err := util.ParseClock(window)
	if err != nil {
		return nil
	}
	at := util.AtClock(dc.Day.Date, minutes)
	trigger := time.Duration(s.cfg.PicnicTriggerMinutes) * time.Minute
	for i := range dc.Day.Items {
		item := &dc.Day.Items[i]
		if item.Type != trip.ItemActivity {
			continue
		}
		if item.End.Sub(item.Start) <= trigger {
			continue
		}
		if item.Start.Before(at) && item.End.After(at) {
			return item
		}
	}
	return nil
}

func mealLabel(meal trip.MealType) string {
	switch meal {
	case trip.MealBreakfast:
		return "Breakfast"
	case trip.MealLunch:
		return "Lunch"
	default:
		return "Dinner"
	}
}
