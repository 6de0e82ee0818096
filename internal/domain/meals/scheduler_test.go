package meals

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voyora/tripweaver/internal/domain/budget"
	"github.com/voyora/tripweaver/internal/domain/schedule"
	"github.com/voyora/tripweaver/internal/domain/trip"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler() *Scheduler {
	return NewScheduler(DefaultConfig(), newTestLogger())
}

// dayFixture builds a DayContext over a 09:00-22:00 window with a lodging and
// resolved restaurants for every meal of the day.
func dayFixture(t *testing.T, dayNum int) *trip.DayContext {
	t.Helper()
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayNum-1)
	alloc, err := schedule.New(date.Add(9*time.Hour), date.Add(22*time.Hour))
	require.NoError(t, err)

	tracker := budget.NewTracker(2000, 2, 5)
	tracker.Rebalance()

	lodging := &trip.Accommodation{
		ID:     "hotel-1",
		Name:   "Hotel Aurora",
		Coords: &trip.Coordinates{Lat: 48.2, Lng: 16.37},
	}
	return &trip.DayContext{
		Day:       &trip.Day{Number: dayNum, Date: date},
		Alloc:     alloc,
		Budget:    tracker,
		Prefs:     &trip.Preferences{PartySize: 2, BudgetTier: trip.TierModerate},
		Resources: &trip.Resources{Lodging: lodging},
		Used:      map[string]struct{}{},
		Meals: map[trip.MealKey]*trip.Restaurant{
			{Day: dayNum, Meal: trip.MealBreakfast}: {ID: "r-b", Name: "Cafe Klimt", Coords: &trip.Coordinates{Lat: 48.21, Lng: 16.36}},
			{Day: dayNum, Meal: trip.MealLunch}:     {ID: "r-l", Name: "Trattoria Sole", Coords: &trip.Coordinates{Lat: 48.2, Lng: 16.38}},
			{Day: dayNum, Meal: trip.MealDinner}:    {ID: "r-d", Name: "Gasthaus Brandl", Coords: &trip.Coordinates{Lat: 48.19, Lng: 16.37}},
		},
	}
}

func onlyItem(t *testing.T, dc *trip.DayContext) trip.Item {
	t.Helper()
	require.Len(t, dc.Day.Items, 1)
	return dc.Day.Items[0]
}

func TestScheduleLunch_PrefersPrimaryWindow(t *testing.T) {
	dc := dayFixture(t, 1)
	newTestScheduler().ScheduleLunch(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, trip.ItemRestaurant, item.Type)
	require.Equal(t, "12:30", item.StartClock)
	require.Equal(t, "13:30", item.EndClock)
	require.Equal(t, "Lunch at Trattoria Sole", item.Title)
	require.Equal(t, 44.0, item.Cost)
	require.Equal(t, 44.0, dc.Budget.Committed(budget.CategoryFood))
	// Fixed insertion must advance the cursor past the meal.
	require.Equal(t, item.End, dc.Alloc.Cursor())
}

func TestScheduleLunch_RetriesLaterWindow(t *testing.T) {
	dc := dayFixture(t, 1)
	// A pinned block covers 12:30, 12:00, and 13:00; the 13:30 retry fits.
	_, ok := dc.Alloc.InsertFixedItem(dc.Day.Date.Add(11*time.Hour+50*time.Minute), dc.Day.Date.Add(13*time.Hour+25*time.Minute))
	require.True(t, ok)

	newTestScheduler().ScheduleLunch(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, "13:30", item.StartClock)
}

func TestScheduleLunch_PicnicWhenLongActivityStraddlesNoon(t *testing.T) {
	dc := dayFixture(t, 1)
	minStart := dc.Day.Date.Add(10*time.Hour + 30*time.Minute)
	slot, ok := dc.Alloc.AddItem(195*time.Minute, 0, &minStart)
	require.True(t, ok)
	activity := trip.NewItem(1, trip.ItemActivity, "Schonbrunn Palace", slot)
	dc.Place(activity)

	newTestScheduler().ScheduleLunch(context.Background(), dc)

	require.Len(t, dc.Day.Items, 2)
	lunch := dc.Day.Items[1]
	require.Equal(t, "Picnic lunch", lunch.Title)
	require.Equal(t, string(KindPicnic), lunch.Description)
	// Every fixed window conflicts with the activity, so the picnic lands
	// sequentially right after it and still ends before the cutoff.
	require.Equal(t, "13:45", lunch.StartClock)
	require.Equal(t, "14:15", lunch.EndClock)
	require.Equal(t, 12.0, lunch.Cost)
}

func TestScheduleLunch_SkippedWhenDayEndsEarly(t *testing.T) {
	dc := dayFixture(t, 1)
	alloc, err := schedule.New(dc.Day.Date.Add(9*time.Hour), dc.Day.Date.Add(13*time.Hour))
	require.NoError(t, err)
	dc.Alloc = alloc

	newTestScheduler().ScheduleLunch(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}

func TestScheduleLunch_PlacedWhenWindowStretchesPastMidnight(t *testing.T) {
	dc := dayFixture(t, 1)
	// An overnight return leg stretches the usable window to 00:30 the next
	// day; the midday itself is still entirely free.
	alloc, err := schedule.New(dc.Day.Date.Add(9*time.Hour), dc.Day.Date.Add(24*time.Hour+30*time.Minute))
	require.NoError(t, err)
	dc.Alloc = alloc

	newTestScheduler().ScheduleLunch(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, "12:30", item.StartClock)
	require.Equal(t, "Lunch at Trattoria Sole", item.Title)
}

func TestScheduleLunch_SkippedPastLatestStart(t *testing.T) {
	dc := dayFixture(t, 1)
	_, ok := dc.Alloc.InsertFixedItem(dc.Day.Date.Add(11*time.Hour+45*time.Minute), dc.Day.Date.Add(14*time.Hour+30*time.Minute))
	require.True(t, ok)
	dc.Alloc.AdvanceTo(dc.Day.Date.Add(14*time.Hour + 30*time.Minute))

	newTestScheduler().ScheduleLunch(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}

func TestScheduleBreakfast_SkippedOnArrivalDay(t *testing.T) {
	dc := dayFixture(t, 1)
	dc.IsArrival = true

	newTestScheduler().ScheduleBreakfast(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}

func TestScheduleBreakfast_SkippedPastCutoff(t *testing.T) {
	dc := dayFixture(t, 1)
	dc.Alloc.AdvanceTo(dc.Day.Date.Add(10*time.Hour + 5*time.Minute))

	newTestScheduler().ScheduleBreakfast(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}

func TestScheduleBreakfast_SkippedOnPreDawnDeparture(t *testing.T) {
	dc := dayFixture(t, 1)
	// An early return leg widens the window back to 03:30; nobody gets
	// seated at a restaurant before dawn.
	alloc, err := schedule.New(dc.Day.Date.Add(3*time.Hour+30*time.Minute), dc.Day.Date.Add(9*time.Hour))
	require.NoError(t, err)
	dc.Alloc = alloc

	newTestScheduler().ScheduleBreakfast(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}

func TestScheduleBreakfast_IncludedCostsNothing(t *testing.T) {
	dc := dayFixture(t, 1)
	dc.Resources.Lodging.BreakfastIncluded = true

	newTestScheduler().ScheduleBreakfast(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, "Breakfast at Hotel Aurora (included)", item.Title)
	require.Zero(t, item.Cost)
	require.Equal(t, dc.Resources.Lodging.Coords, item.Coords)
	require.Equal(t, "09:00", item.StartClock)
	require.Equal(t, "09:45", item.EndClock)
	require.Zero(t, dc.Budget.Committed(budget.CategoryFood))
}

func TestScheduleBreakfast_RestaurantSpendsFromFood(t *testing.T) {
	dc := dayFixture(t, 1)

	newTestScheduler().ScheduleBreakfast(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, "Breakfast at Cafe Klimt", item.Title)
	require.Equal(t, 28.0, item.Cost)
	require.Equal(t, "r-b", dc.Day.Items[0].SourceID)
	require.Equal(t, 28.0, dc.Budget.Committed(budget.CategoryFood))
}

func TestScheduleDinner_NeverOnFinalDay(t *testing.T) {
	dc := dayFixture(t, 1)
	dc.IsLast = true

	newTestScheduler().ScheduleDinner(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}

func TestScheduleDinner_StartsAtConfiguredClock(t *testing.T) {
	dc := dayFixture(t, 1)

	newTestScheduler().ScheduleDinner(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, "Dinner at Gasthaus Brandl", item.Title)
	require.Equal(t, "19:00", item.StartClock)
	require.Equal(t, "20:30", item.EndClock)
	require.Equal(t, 70.0, item.Cost)
}

func TestScheduleDinner_SkippedWhenEveningTruncated(t *testing.T) {
	dc := dayFixture(t, 1)
	alloc, err := schedule.New(dc.Day.Date.Add(9*time.Hour), dc.Day.Date.Add(19*time.Hour+30*time.Minute))
	require.NoError(t, err)
	dc.Alloc = alloc

	newTestScheduler().ScheduleDinner(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}

func TestScheduleDinner_PlacedWhenWindowStretchesPastMidnight(t *testing.T) {
	dc := dayFixture(t, 1)
	alloc, err := schedule.New(dc.Day.Date.Add(9*time.Hour), dc.Day.Date.Add(24*time.Hour+30*time.Minute))
	require.NoError(t, err)
	dc.Alloc = alloc

	newTestScheduler().ScheduleDinner(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, "19:00", item.StartClock)
	require.Equal(t, "20:30", item.EndClock)
}

func TestScheduleDinner_SelfCateredOnEvenDaysWithKitchen(t *testing.T) {
	dc := dayFixture(t, 2)
	dc.Resources.Lodging.HasKitchen = true
	dc.Groceries = true

	newTestScheduler().ScheduleDinner(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, "Self-catered dinner", item.Title)
	require.Equal(t, string(KindSelfCatered), item.Description)
	require.Equal(t, 12.0, item.Cost)
	require.Equal(t, "19:00", item.StartClock)
	require.Equal(t, "19:30", item.EndClock)
}

func TestScheduleDinner_DowngradesWhenRestaurantUnaffordable(t *testing.T) {
	dc := dayFixture(t, 1)
	// Food ceiling 45: a 70 dinner for two is declined, self-catering is not.
	dc.Budget = budget.NewTracker(100, 2, 3)
	dc.Budget.Rebalance()
	dc.Resources.Lodging.HasKitchen = true
	dc.Groceries = true

	newTestScheduler().ScheduleDinner(context.Background(), dc)

	item := onlyItem(t, dc)
	require.Equal(t, string(KindSelfCatered), item.Description)
	require.Equal(t, 12.0, item.Cost)
}

func TestScheduleDinner_SkippedWhenNoFallbackExists(t *testing.T) {
	dc := dayFixture(t, 1)
	dc.Budget = budget.NewTracker(100, 2, 3)
	dc.Budget.Rebalance()
	// No kitchen: the ladder has nowhere to go below the restaurant.

	newTestScheduler().ScheduleDinner(context.Background(), dc)
	require.Empty(t, dc.Day.Items)
}
