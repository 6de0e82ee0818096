package activity

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

func newTestPlanner() *Planner {
	return NewPlanner(DefaultConfig(), newTestLogger())
}

var center = trip.Coordinates{Lat: 48.2, Lng: 16.37}

func activityFixture(t *testing.T) *trip.DayContext {
	t.Helper()
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	alloc, err := schedule.New(date.Add(9*time.Hour), date.Add(22*time.Hour))
	require.NoError(t, err)

	tracker := budget.NewTracker(2000, 2, 5)
	tracker.Rebalance()

	return &trip.DayContext{
		Day:       &trip.Day{Number: 2, Date: date},
		Alloc:     alloc,
		Budget:    tracker,
		Prefs:     &trip.Preferences{PartySize: 2, BudgetTier: trip.TierModerate},
		Resources: &trip.Resources{},
		Used:      map[string]struct{}{},
	}
}

func candidate(id string, minutes int, cost float64) trip.Attraction {
	c := center
	return trip.Attraction{
		ID:              id,
		Name:            "Attraction " + id,
		Coords:          &c,
		DurationMinutes: minutes,
		Cost:            cost,
	}
}

func TestPlaceActivities_PlacesInRankedOrder(t *testing.T) {
	dc := activityFixture(t)
	candidates := []trip.Attraction{candidate("a", 60, 10), candidate("b", 90, 15)}

	newTestPlanner().PlaceActivities(context.Background(), dc, candidates, dc.Alloc.DayEnd())

	require.Len(t, dc.Day.Items, 2)
	// Unknown starting position costs the default 15 minutes of travel; after
	// the first stop the positions coincide and travel clamps to the minimum.
	require.Equal(t, "09:15", dc.Day.Items[0].StartClock)
	require.Equal(t, "10:15", dc.Day.Items[0].EndClock)
	require.Equal(t, "10:20", dc.Day.Items[1].StartClock)
	require.Equal(t, "11:50", dc.Day.Items[1].EndClock)
	require.True(t, dc.IsUsed("a"))
	require.True(t, dc.IsUsed("b"))
	require.Equal(t, 50.0, dc.Budget.Committed(budget.CategoryActivities))
}

func TestPlaceActivities_DeadlineBoundsPlacement(t *testing.T) {
	dc := activityFixture(t)
	deadline := dc.Day.Date.Add(10 * time.Hour)
	candidates := []trip.Attraction{candidate("a", 60, 0)}

	newTestPlanner().PlaceActivities(context.Background(), dc, candidates, deadline)

	require.Empty(t, dc.Day.Items)
	require.False(t, dc.IsUsed("a"))
}

func TestPlaceActivities_OpeningTimeFloorsStart(t *testing.T) {
	dc := activityFixture(t)
	cand := candidate("a", 60, 0)
	cand.OpenTime = "11:00"

	newTestPlanner().PlaceActivities(context.Background(), dc, []trip.Attraction{cand}, dc.Alloc.DayEnd())

	require.Len(t, dc.Day.Items, 1)
	require.Equal(t, "11:00", dc.Day.Items[0].StartClock)
}

func TestPlaceActivities_ClosingMarginRejects(t *testing.T) {
	dc := activityFixture(t)
	cand := candidate("a", 60, 0)
	cand.OpenTime = "11:00"
	// Would end 12:00, but the visit must clear closing by the 30 minute
	// safety margin.
	cand.CloseTime = "12:15"

	newTestPlanner().PlaceActivities(context.Background(), dc, []trip.Attraction{cand}, dc.Alloc.DayEnd())
	require.Empty(t, dc.Day.Items)
}

func TestPlaceActivities_OverBudgetSkipsNotFails(t *testing.T) {
	dc := activityFixture(t)
	dc.Budget = budget.NewTracker(100, 2, 3)
	dc.Budget.Rebalance()
	// Activities ceiling is 35: the first candidate costs 60 for the party
	// and is skipped, the second still lands.
	candidates := []trip.Attraction{candidate("pricey", 60, 30), candidate("cheap", 60, 10)}

	newTestPlanner().PlaceActivities(context.Background(), dc, candidates, dc.Alloc.DayEnd())

	require.Len(t, dc.Day.Items, 1)
	require.Equal(t, "Attraction cheap", dc.Day.Items[0].Title)
	require.False(t, dc.IsUsed("pricey"))
}

func TestPlaceActivities_NeverRepeatsAcrossTrip(t *testing.T) {
	dc := activityFixture(t)
	dc.MarkUsed("a")

	newTestPlanner().PlaceActivities(context.Background(), dc, []trip.Attraction{candidate("a", 60, 0)}, dc.Alloc.DayEnd())
	require.Empty(t, dc.Day.Items)
}

func TestPlaceActivities_MissingCoordsSkipped(t *testing.T) {
	dc := activityFixture(t)
	cand := candidate("a", 60, 0)
	cand.Coords = nil

	newTestPlanner().PlaceActivities(context.Background(), dc, []trip.Attraction{cand}, dc.Alloc.DayEnd())
	require.Empty(t, dc.Day.Items)
}

func TestFillGap_PlacesGreedilyUntilThreshold(t *testing.T) {
	dc := activityFixture(t)
	deadline := dc.Day.Date.Add(12 * time.Hour)
	pool := []trip.Attraction{candidate("short", 40, 0), candidate("long", 70, 0)}

	newTestPlanner().FillGap(context.Background(), dc, pool, deadline, nil)

	require.Len(t, dc.Day.Items, 2)
	require.Equal(t, "Attraction short", dc.Day.Items[0].Title)
	require.Equal(t, "Attraction long", dc.Day.Items[1].Title)
	// 50 minutes remain after the second placement, above the threshold, but
	// the pool is exhausted.
	require.Equal(t, "11:10", dc.Alloc.Cursor().Format("15:04"))
}

func TestFillGap_IgnoresGapsBelowThreshold(t *testing.T) {
	dc := activityFixture(t)
	deadline := dc.Day.Date.Add(9*time.Hour + 40*time.Minute)
	pool := []trip.Attraction{candidate("short", 20, 0)}

	newTestPlanner().FillGap(context.Background(), dc, pool, deadline, nil)
	require.Empty(t, dc.Day.Items)
}

func TestFillGap_StopsWhenNothingFits(t *testing.T) {
	dc := activityFixture(t)
	deadline := dc.Day.Date.Add(10 * time.Hour)
	pool := []trip.Attraction{candidate("long", 300, 0)}

	newTestPlanner().FillGap(context.Background(), dc, pool, deadline, nil)
	require.Empty(t, dc.Day.Items)
}
