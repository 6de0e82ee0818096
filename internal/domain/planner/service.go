package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/voyora/tripweaver/internal/domain/activity"
	"github.com/voyora/tripweaver/internal/domain/advisor"
	"github.com/voyora/tripweaver/internal/domain/budget"
	"github.com/voyora/tripweaver/internal/domain/logistics"
	"github.com/voyora/tripweaver/internal/domain/meals"
	"github.com/voyora/tripweaver/internal/domain/schedule"
	"github.com/voyora/tripweaver/internal/domain/trip"
	"github.com/voyora/tripweaver/internal/domain/validate"
	apperrors "github.com/voyora/tripweaver/pkg/errors"
	"github.com/voyora/tripweaver/pkg/util"
)

// dayType classifies a day from its position and the prior day's carryover.
type dayType string

const (
	daySingle           dayType = "single"
	dayArrival          dayType = "arrival"
	dayFull             dayType = "full"
	dayDeparture        dayType = "departure"
	dayOvernightArrival dayType = "overnight_arrival"
)

// Config carries the orchestrator's window and pacing constants.
type Config struct {
	DayStartClock string
	DayEndClock   string

	// LunchTargetClock anchors the morning deadline; AfternoonEndClock caps
	// the afternoon before dinner.
	LunchTargetClock string
	AfternoonEndClock string

	GroceryRunMinutes    int
	GroceryCostPerPerson float64

	// EnergyCheckMinutes is the placed-activity total past which the advisor
	// is asked whether to keep going into the evening.
	EnergyCheckMinutes int

	// LateArrivalMinutes is the usable-remainder threshold below which the
	// advisor is asked whether an arrival evening is worth planning at all.
	LateArrivalMinutes int
}

// DefaultConfig returns the constants the engine ships with.
func DefaultConfig() Config {
	return Config{
		DayStartClock:        "09:00",
		DayEndClock:          "22:00",
		LunchTargetClock:     "12:30",
		AfternoonEndClock:    "19:00",
		GroceryRunMinutes:    45,
		GroceryCostPerPerson: 12,
		EnergyCheckMinutes:   7 * 60,
		LateArrivalMinutes:   120,
	}
}

// Service generates complete itineraries.
type Service interface {
	Generate(ctx context.Context, prefs trip.Preferences, res trip.Resources) (*trip.Itinerary, error)
}

type service struct {
	cfg        Config
	logistics  *logistics.Handler
	meals      *meals.Scheduler
	activities *activity.Planner
	advisors   *advisor.Factory
	validator  *validate.Validator
	logger     *slog.Logger
}

// NewService wires the trip orchestrator.
func NewService(cfg Config, lh *logistics.Handler, ms *meals.Scheduler, ap *activity.Planner, af *advisor.Factory, v *validate.Validator, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		logistics:  lh,
		meals:      ms,
		activities: ap,
		advisors:   af,
		validator:  v,
		logger:     logger.With("component", "planner"),
	}
}

// Generate runs the full pipeline: normalize, commit fixed budget, prefetch
// restaurant resolutions concurrently, then build days strictly in order
// while threading the used-attraction set, the running budget, and any
// overnight carryover from one day to the next.
func (s *service) Generate(ctx context.Context, prefs trip.Preferences, res trip.Resources) (*trip.Itinerary, error) {
	if err := validatePrefs(&prefs); err != nil {
		return nil, err
	}

	dropped := res.Normalize()
	if dropped > 0 {
		s.logger.Warn("dropped unusable candidates during normalization", "count", dropped)
	}

	tracker := s.newTracker(&prefs, &res)
	session := s.advisors.NewSession()
	prefetched := s.prefetchMeals(ctx, &prefs, &res)

	used := make(map[string]struct{})
	groceriesDone := false
	var carry *logistics.Carryover
	days := make([]trip.Day, 0, prefs.DurationDays+1)

	for i := 1; i <= prefs.DurationDays; i++ {
		dt := classifyDay(i, prefs.DurationDays, carry)
		day, nextCarry, nowGroceries := s.generateDay(ctx, dayInput{
			number:     i,
			kind:       dt,
			prefs:      &prefs,
			res:        &res,
			tracker:    tracker,
			used:       used,
			carry:      carry,
			groceries:  groceriesDone,
			prefetched: prefetched,
			session:    session,
		})
		carry = nextCarry
		groceriesDone = groceriesDone || nowGroceries
		days = append(days, day)
	}

	// A return leg landing past midnight earns a short extra day holding only
	// the origin-side pickup.
	if carry != nil && carry.Homebound {
		days = append(days, s.homeboundDay(ctx, prefs.DurationDays+1, &prefs, &res, tracker, carry))
	}

	itin := &trip.Itinerary{
		Destination: prefs.Destination,
		Days:        days,
		Costs:       tracker.Breakdown(),
		Oracle:      session.Usage(),
	}
	s.validator.Validate(itin, &prefs, &res)

	if empty(itin.Days) {
		return nil, apperrors.Wrap(apperrors.CodeNoItinerary, "no feasible itinerary for the given inputs", nil)
	}
	return itin, nil
}

type dayInput struct {
	number     int
	kind       dayType
	prefs      *trip.Preferences
	res        *trip.Resources
	tracker    *budget.Tracker
	used       map[string]struct{}
	carry      *logistics.Carryover
	groceries  bool
	prefetched map[trip.MealKey]*trip.Restaurant
	session    advisor.Session
}

func (s *service) generateDay(ctx context.Context, in dayInput) (trip.Day, *logistics.Carryover, bool) {
	date := in.prefs.StartDate.AddDate(0, 0, in.number-1)
	day := trip.Day{Number: in.number, Date: date, Theme: dayTheme(in.kind, in.prefs.Destination)}

	alloc, err := schedule.New(s.dayWindow(date, in))
	if err != nil {
		s.logger.Error("day window construction failed", "day", in.number, "error", err)
		return day, nil, false
	}

	dc := &trip.DayContext{
		Day:         &day,
		Alloc:       alloc,
		Budget:      in.tracker,
		Prefs:       in.prefs,
		Resources:   in.res,
		Used:        in.used,
		LastCoords:  in.prefs.CityCenter,
		IsArrival:   in.kind == dayArrival || in.kind == daySingle || in.kind == dayOvernightArrival,
		IsDeparture: in.kind == dayDeparture || in.kind == daySingle,
		IsLast:      in.number == in.prefs.DurationDays,
		Groceries:   in.groceries,
		Meals:       in.prefetched,
	}

	if in.carry != nil {
		s.logistics.ConsumeCarryover(ctx, dc, in.carry)
	}

	if in.kind == dayArrival || in.kind == daySingle {
		if co := s.logistics.PlaceDeparture(ctx, dc); co != nil {
			day.SortItems()
			return day, co, false
		}
	}

	deadline := alloc.DayEnd()
	if dc.IsLast {
		deadline = s.logistics.ReturnConstraints(dc)
	}

	planActivities := true
	if dc.IsArrival && !dc.IsLast {
		planActivities = s.arrivalWorthPlanning(ctx, dc, deadline, in.session)
	}

	morning, afternoon := s.partition(dc, in.res.Attractions)

	if planActivities {
		if !dc.IsArrival {
			s.meals.ScheduleBreakfast(ctx, dc)
			s.activities.PlaceActivities(ctx, dc, morning, s.morningDeadline(date, deadline))
			s.activities.FillGap(ctx, dc, in.res.Attractions, s.morningDeadline(date, deadline), in.session)
		}

		if !dc.IsLast || deadline.Hour() >= 15 {
			s.meals.ScheduleLunch(ctx, dc)
		}

		afternoonEnd := s.afternoonDeadline(date, deadline)
		s.activities.PlaceActivities(ctx, dc, afternoon, afternoonEnd)

		groceries := false
		if !in.groceries {
			groceries = s.placeGroceryRun(dc)
		}

		if s.eveningWorthContinuing(ctx, dc, in.session) {
			s.activities.FillGap(ctx, dc, in.res.Attractions, afternoonEnd, in.session)
		}
		s.meals.ScheduleDinner(ctx, dc)

		in.groceries = in.groceries || groceries
	}

	var nextCarry *logistics.Carryover
	if dc.IsLast {
		nextCarry = s.logistics.PlaceReturn(ctx, dc)
		s.repairMissingReturn(dc)
	}

	day.SortItems()
	return day, nextCarry, in.groceries
}

// homeboundDay holds only the deferred origin-side arrival of an overnight
// return leg.
func (s *service) homeboundDay(ctx context.Context, number int, prefs *trip.Preferences, res *trip.Resources, tracker *budget.Tracker, carry *logistics.Carryover) trip.Day {
	date := prefs.StartDate.AddDate(0, 0, number-1)
	day := trip.Day{Number: number, Date: date, Theme: "Arrival home"}

	start, _ := util.ParseClock("00:00")
	end, _ := util.ParseClock(s.cfg.DayEndClock)
	alloc, err := schedule.New(util.AtClock(date, start), util.AtClock(date, end))
	if err != nil {
		return day
	}
	dc := &trip.DayContext{Day: &day, Alloc: alloc, Budget: tracker, Prefs: prefs, Resources: res}
	s.logistics.ConsumeCarryover(ctx, dc, carry)
	day.SortItems()
	return day
}

// dayWindow derives the day's [start, end) bounds, widened on logistics days
// so fixed-time legs outside the default window remain placeable.
func (s *service) dayWindow(date time.Time, in dayInput) (time.Time, time.Time) {
	startMin, _ := util.ParseClock(s.cfg.DayStartClock)
	endMin, _ := util.ParseClock(s.cfg.DayEndClock)
	start := util.AtClock(date, startMin)
	end := util.AtClock(date, endMin)

	if in.carry != nil && in.carry.ArrivalTime.Before(start) {
		start = in.carry.ArrivalTime
	}

	widen := func(dep, arr time.Time, bufferMin int) {
		earliest := dep.Add(-time.Duration(bufferMin+90) * time.Minute)
		if earliest.Before(start) && util.SameDate(earliest, date) {
			start = earliest
		}
		if arr.After(end) {
			end = arr
		}
	}
	if in.kind == dayArrival || in.kind == daySingle {
		if f := in.res.OutboundFlight; f != nil {
			widen(f.Departure, f.Arrival, 120)
		} else if t := in.res.OutboundTransport; t != nil {
			widen(t.Departure, t.Arrival, 45)
		}
	}
	if in.number == in.prefs.DurationDays {
		if f := in.res.ReturnFlight; f != nil {
			widen(f.Departure, f.Arrival, 120)
		} else if t := in.res.ReturnTransport; t != nil {
			widen(t.Departure, t.Arrival, 45)
		}
	}
	return start, end
}

// partition splits the still-unused ranked candidates: first half morning,
// remainder afternoon. Arrival days push everything into the afternoon.
func (s *service) partition(dc *trip.DayContext, all []trip.Attraction) ([]trip.Attraction, []trip.Attraction) {
	remaining := make([]trip.Attraction, 0, len(all))
	for _, a := range all {
		if !dc.IsUsed(a.ID) {
			remaining = append(remaining, a)
		}
	}

	daysLeft := dc.Prefs.DurationDays - dc.Day.Number + 1
	if daysLeft < 1 {
		daysLeft = 1
	}
	share := (len(remaining) + daysLeft - 1) / daysLeft
	if share > len(remaining) {
		share = len(remaining)
	}
	todays := remaining[:share]

	if dc.IsArrival {
		return nil, todays
	}
	half := (len(todays) + 1) / 2
	return todays[:half], todays[half:]
}

func (s *service) morningDeadline(date time.Time, limit time.Time) time.Time {
	minutes, _ := util.ParseClock(s.cfg.LunchTargetClock)
	d := util.AtClock(date, minutes)
	if limit.Before(d) {
		return limit
	}
	return d
}

func (s *service) afternoonDeadline(date time.Time, limit time.Time) time.Time {
	minutes, _ := util.ParseClock(s.cfg.AfternoonEndClock)
	d := util.AtClock(date, minutes)
	if limit.Before(d) {
		return limit
	}
	return d
}

// arrivalWorthPlanning asks the advisor whether a compressed arrival evening
// should host activities at all. Under the fallback rules, less than an hour
// of usable time resolves to the hotel.
func (s *service) arrivalWorthPlanning(ctx context.Context, dc *trip.DayContext, deadline time.Time, session advisor.Session) bool {
	remaining := int(deadline.Sub(dc.Alloc.Cursor()).Minutes())
	if remaining >= s.cfg.LateArrivalMinutes {
		return true
	}
	resp, err := session.Decide(ctx, advisor.Request{
		Kind:    advisor.KindLateArrival,
		Summary: "arrived late with a short usable evening",
		Options: []advisor.Option{
			{ID: "explore", Label: "Short walk near the hotel", Category: advisor.CategoryActivity, DurationMinutes: 60},
			{ID: "rest", Label: "Settle in at the hotel", Category: advisor.CategoryHotel},
		},
		AvailableMinutes: remaining,
		TimeOfDay:        dc.Alloc.Cursor(),
	})
	if err != nil {
		return true
	}
	return resp.OptionID != "rest"
}

// eveningWorthContinuing asks the advisor, once the day is already long,
// whether to keep filling toward dinner or wind down.
func (s *service) eveningWorthContinuing(ctx context.Context, dc *trip.DayContext, session advisor.Session) bool {
	placed := 0
	for _, item := range dc.Day.Items {
		if item.Type == trip.ItemActivity {
			placed += int(item.End.Sub(item.Start).Minutes())
		}
	}
	if placed < s.cfg.EnergyCheckMinutes {
		return true
	}
	resp, err := session.Decide(ctx, advisor.Request{
		Kind:    advisor.KindEnergy,
		Summary: "long day of activities already placed",
		Options: []advisor.Option{
			{ID: "more", Label: "Fit in one more stop", Category: advisor.CategoryContinue},
			{ID: "wind-down", Label: "Head toward dinner", Category: advisor.CategoryEndDay},
		},
		AvailableMinutes: int(dc.Alloc.Remaining().Minutes()),
		TimeOfDay:        dc.Alloc.Cursor(),
		Energy:           "exhausted",
	})
	if err != nil {
		return true
	}
	return resp.OptionID != "wind-down"
}

// placeGroceryRun inserts one shopping stop when the lodging can actually use
// groceries. Self-catered meals unlock only after it has happened.
func (s *service) placeGroceryRun(dc *trip.DayContext) bool {
	lodging := dc.Resources.Lodging
	if lodging == nil || !lodging.HasKitchen || len(dc.Resources.GroceryStores) == 0 {
		return false
	}
	store := dc.Resources.GroceryStores[0]
	cost := s.cfg.GroceryCostPerPerson * float64(dc.Prefs.PartySize)
	if !dc.Budget.CanAfford(budget.CategoryFood, cost) {
		return false
	}
	slot, ok := dc.Alloc.AddItem(time.Duration(s.cfg.GroceryRunMinutes)*time.Minute, 10*time.Minute, nil)
	if !ok {
		return false
	}
	item := trip.NewItem(dc.Day.Number, trip.ItemActivity, "Grocery run at "+store.Name, slot)
	item.Coords = store.Coords
	item.Cost = cost
	dc.Budget.Spend(budget.CategoryFood, cost)
	dc.Place(item)
	dc.Groceries = true
	return true
}

// repairMissingReturn force-appends the return leg when the day's items are
// missing it. This is a correctness bug somewhere upstream, so it logs at
// error level.
func (s *service) repairMissingReturn(dc *trip.DayContext) {
	if !s.logistics.HasReturnLeg(dc.Resources) {
		return
	}
	for _, item := range dc.Day.Items {
		if item.Type == trip.ItemFlight || (item.Type == trip.ItemTransport && dc.Resources.ReturnTransport != nil && item.Start.Equal(dc.Resources.ReturnTransport.Departure)) {
			return
		}
	}
	repaired := s.logistics.SynthesizeReturnItem(dc)
	if repaired == nil {
		return
	}
	s.logger.Error("return leg missing from final day, force-inserting", "day", dc.Day.Number)
	dc.Place(*repaired)
}

func (s *service) newTracker(prefs *trip.Preferences, res *trip.Resources) *budget.Tracker {
	tracker := budget.NewTracker(prefs.TotalBudget, prefs.PartySize, prefs.DurationDays)
	party := float64(prefs.PartySize)

	var flights float64
	if res.OutboundFlight != nil {
		flights += res.OutboundFlight.Price * party
	}
	if res.ReturnFlight != nil {
		flights += res.ReturnFlight.Price * party
	}
	if res.OutboundTransport != nil {
		flights += res.OutboundTransport.Price * party
	}
	if res.ReturnTransport != nil {
		flights += res.ReturnTransport.Price * party
	}
	if flights > 0 {
		tracker.CommitFixed(budget.CategoryFlights, flights)
	}

	if res.Lodging != nil {
		nights := prefs.DurationDays - 1
		if nights > 0 {
			tracker.CommitFixed(budget.CategoryAccommodation, res.Lodging.PricePerNight*float64(nights))
		}
	}
	if res.Parking != nil {
		tracker.CommitFixed(budget.CategoryParking, res.Parking.DailyRate*float64(prefs.DurationDays))
	}

	tracker.Rebalance()
	return tracker
}

func classifyDay(number, total int, carry *logistics.Carryover) dayType {
	switch {
	case total == 1:
		return daySingle
	case carry != nil && !carry.Homebound:
		return dayOvernightArrival
	case number == 1:
		return dayArrival
	case number == total:
		return dayDeparture
	default:
		return dayFull
	}
}

func dayTheme(dt dayType, destination string) string {
	switch dt {
	case dayArrival:
		return "Arrival"
	case dayOvernightArrival:
		return "Arrival"
	case dayDeparture:
		return "Departure"
	case daySingle:
		return "Day trip"
	default:
		return "Exploring " + destination
	}
}

func validatePrefs(prefs *trip.Preferences) error {
	switch {
	case prefs.Destination == "":
		return apperrors.Wrap(apperrors.CodeInvalidInput, "destination is required", nil)
	case prefs.StartDate.IsZero():
		return apperrors.Wrap(apperrors.CodeInvalidInput, "start date is required", nil)
	case prefs.DurationDays < 1:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "duration must be at least one day", nil)
	case prefs.PartySize < 1:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "party size must be at least one", nil)
	case prefs.TotalBudget <= 0:
		return apperrors.Wrap(apperrors.CodeInvalidInput, "total budget must be positive", nil)
	}
	if prefs.BudgetTier == "" {
		prefs.BudgetTier = trip.TierModerate
	}
	return nil
}

func empty(days []trip.Day) bool {
	for _, d := range days {
		if len(d.Items) > 0 {
			return false
		}
	}
	return true
}
