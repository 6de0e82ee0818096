package logistics

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

func newTestHandler() *Handler {
	return NewHandler(DefaultConfig(), newTestLogger())
}

var hotelCoords = trip.Coordinates{Lat: 48.2, Lng: 16.37}

// logisticsFixture binds a DayContext to an explicitly widened window, the way
// the orchestrator does for days whose legs spill past the usual bounds.
func logisticsFixture(t *testing.T, dayNum int, date time.Time, start, end time.Time) *trip.DayContext {
	t.Helper()
	alloc, err := schedule.New(start, end)
	require.NoError(t, err)
	tracker := budget.NewTracker(2000, 2, 5)
	tracker.Rebalance()
	return &trip.DayContext{
		Day:       &trip.Day{Number: dayNum, Date: date},
		Alloc:     alloc,
		Budget:    tracker,
		Prefs:     &trip.Preferences{PartySize: 2, DurationDays: 5},
		Resources: &trip.Resources{},
		Used:      map[string]struct{}{},
	}
}

func itemTypes(day *trip.Day) []trip.ItemType {
	types := make([]trip.ItemType, len(day.Items))
	for i, item := range day.Items {
		types[i] = item.Type
	}
	return types
}

func findItem(t *testing.T, day *trip.Day, typ trip.ItemType) trip.Item {
	t.Helper()
	for _, item := range day.Items {
		if item.Type == typ {
			return item
		}
	}
	t.Fatalf("no %s item placed", typ)
	return trip.Item{}
}

func TestPlaceDeparture_SameDayFlight(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 1, date, date.Add(7*time.Hour), date.Add(22*time.Hour))
	airport := trip.Coordinates{Lat: 48.2, Lng: 16.37}
	dc.Resources.OutboundFlight = &trip.Flight{
		ID: "f1", Carrier: "OS", Number: "101",
		FromAirport: "VIE", ToAirport: "FCO",
		Departure: date.Add(10 * time.Hour), Arrival: date.Add(12 * time.Hour),
		Price: 120, ToCoords: &airport,
	}
	dc.Resources.Lodging = &trip.Accommodation{Name: "Hotel Aurora", Coords: &hotelCoords}

	carry := newTestHandler().PlaceDeparture(context.Background(), dc)
	require.Nil(t, carry)

	// Origin transfer, terminal check-in, the flight, destination transfer,
	// then a luggage drop paired with the 15:00 check-in (arrival is more
	// than two hours before the posted time).
	require.Equal(t, []trip.ItemType{
		trip.ItemTransport, trip.ItemCheckIn, trip.ItemFlight,
		trip.ItemTransport, trip.ItemHotel, trip.ItemCheckIn,
	}, itemTypes(dc.Day))

	transfer := dc.Day.Items[0]
	require.Equal(t, "07:30", transfer.StartClock)
	require.Equal(t, "08:00", transfer.EndClock)
	require.Equal(t, 25.0, transfer.Cost)

	terminal := dc.Day.Items[1]
	require.Equal(t, "08:00", terminal.StartClock)
	require.Equal(t, "10:00", terminal.EndClock)

	flight := dc.Day.Items[2]
	require.Equal(t, "Flight OS101 VIE → FCO", flight.Title)
	require.Equal(t, 240.0, flight.Cost)

	drop := dc.Day.Items[4]
	require.True(t, drop.Paired)
	require.Equal(t, "12:10", drop.StartClock)

	lateCheckIn := dc.Day.Items[5]
	require.True(t, lateCheckIn.Paired)
	require.Equal(t, "15:00", lateCheckIn.StartClock)

	// Activities resume after the drop, not after the 15:00 check-in.
	require.Equal(t, date.Add(12*time.Hour+30*time.Minute), dc.Alloc.Cursor())
	require.Equal(t, 25.0, dc.Budget.Committed(budget.CategoryTransport))
}

func TestPlaceDeparture_ParkingBeforeTerminal(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 1, date, date.Add(7*time.Hour), date.Add(22*time.Hour))
	dc.Resources.OutboundFlight = &trip.Flight{
		FromAirport: "VIE", ToAirport: "FCO",
		Departure: date.Add(10 * time.Hour), Arrival: date.Add(12 * time.Hour),
	}
	dc.Resources.Parking = &trip.ParkingOption{Name: "P3 Long Stay", DailyRate: 18}

	newTestHandler().PlaceDeparture(context.Background(), dc)

	parking := findItem(t, dc.Day, trip.ItemParking)
	require.Equal(t, "07:45", parking.StartClock)
	require.Equal(t, "08:00", parking.EndClock)
	require.Equal(t, 90.0, parking.Cost)

	// The transfer shifts earlier to absorb the parking stop.
	transfer := findItem(t, dc.Day, trip.ItemTransport)
	require.Equal(t, "07:15", transfer.StartClock)
	require.Equal(t, "07:45", transfer.EndClock)
}

func TestPlaceDeparture_OvernightDefersArrival(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 1, date, date.Add(9*time.Hour), date.Add(26*time.Hour))
	dc.Resources.OutboundFlight = &trip.Flight{
		FromAirport: "VIE", ToAirport: "BKK",
		Departure: date.Add(23 * time.Hour), Arrival: date.Add(26 * time.Hour),
	}
	dc.Resources.Lodging = &trip.Accommodation{Name: "Riverside", Coords: &hotelCoords}

	carry := newTestHandler().PlaceDeparture(context.Background(), dc)

	require.NotNil(t, carry)
	require.False(t, carry.Homebound)
	require.Equal(t, date.Add(26*time.Hour), carry.ArrivalTime)
	require.Equal(t, "BKK", carry.ArrivalName)
	require.Same(t, dc.Resources.Lodging, carry.Lodging)

	// No arrival-side items leak onto the departure day.
	require.Equal(t, []trip.ItemType{trip.ItemTransport, trip.ItemCheckIn, trip.ItemFlight}, itemTypes(dc.Day))
}

func TestConsumeCarryover_NightArrivalChecksInImmediately(t *testing.T) {
	date := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 2, date, date.Add(2*time.Hour), date.Add(22*time.Hour))
	dc.Resources.Lodging = &trip.Accommodation{Name: "Riverside", Coords: &hotelCoords, CheckInTime: "15:00"}

	newTestHandler().ConsumeCarryover(context.Background(), dc, &Carryover{
		ArrivalTime: date.Add(2 * time.Hour),
		ArrivalName: "BKK",
	})

	require.Equal(t, []trip.ItemType{trip.ItemTransport, trip.ItemCheckIn}, itemTypes(dc.Day))
	checkIn := dc.Day.Items[1]
	require.Equal(t, "Check in at Riverside", checkIn.Title)
	require.Equal(t, "02:30", checkIn.StartClock)
	require.False(t, checkIn.Paired)
	require.Equal(t, date.Add(3*time.Hour), dc.Alloc.Cursor())
}

func TestConsumeCarryover_HomeboundOnlyPicksUpCar(t *testing.T) {
	date := time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 6, date, date, date.Add(22*time.Hour))
	dc.Resources.Lodging = &trip.Accommodation{Name: "Riverside", Coords: &hotelCoords}
	dc.Resources.Parking = &trip.ParkingOption{Name: "P3 Long Stay", DailyRate: 18}

	newTestHandler().ConsumeCarryover(context.Background(), dc, &Carryover{
		ArrivalTime: date.Add(1 * time.Hour),
		Homebound:   true,
	})

	require.Equal(t, []trip.ItemType{trip.ItemParking}, itemTypes(dc.Day))
	require.Equal(t, "Pick up car at P3 Long Stay", dc.Day.Items[0].Title)
	require.Equal(t, date.Add(75*time.Minute), dc.Alloc.Cursor())
}

func TestPlaceDeparture_EarlyCheckInUnderTwoHours(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 1, date, date.Add(7*time.Hour), date.Add(22*time.Hour))
	arrivalCoords := hotelCoords
	dc.Resources.OutboundFlight = &trip.Flight{
		FromAirport: "VIE", ToAirport: "FCO",
		Departure: date.Add(11 * time.Hour), Arrival: date.Add(13 * time.Hour),
		ToCoords: &arrivalCoords,
	}
	dc.Resources.Lodging = &trip.Accommodation{Name: "Hotel Aurora", Coords: &hotelCoords, CheckInTime: "15:00"}

	newTestHandler().PlaceDeparture(context.Background(), dc)

	checkIn := dc.Day.Items[len(dc.Day.Items)-1]
	require.Equal(t, "Early check-in at Hotel Aurora", checkIn.Title)
	require.Equal(t, "13:10", checkIn.StartClock)
	require.Equal(t, "13:40", checkIn.EndClock)
}

func TestPlaceDeparture_PaidLuggageStorage(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 1, date, date.Add(7*time.Hour), date.Add(22*time.Hour))
	arrivalCoords := hotelCoords
	dc.Resources.OutboundFlight = &trip.Flight{
		FromAirport: "VIE", ToAirport: "FCO",
		Departure: date.Add(10 * time.Hour), Arrival: date.Add(12 * time.Hour),
		ToCoords: &arrivalCoords,
	}
	dc.Resources.Lodging = &trip.Accommodation{Name: "Hotel Aurora", Coords: &hotelCoords, CheckInTime: "15:00"}
	dc.Resources.LuggageStorages = []trip.LuggageStorage{{Name: "StowAway Central", HourlyRate: 4}}

	newTestHandler().PlaceDeparture(context.Background(), dc)

	drop := findItem(t, dc.Day, trip.ItemHotel)
	require.Equal(t, "Luggage drop at StowAway Central", drop.Title)
	// 12:10 to 15:00 rounds up to three billable hours.
	require.Equal(t, 12.0, drop.Cost)
	require.Equal(t, 12.0, dc.Budget.Committed(budget.CategoryOther))
}

func TestPlaceReturn_SameDaySequence(t *testing.T) {
	date := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 5, date, date.Add(9*time.Hour), date.Add(22*time.Hour))
	dc.Day.Number = 5
	dc.IsLast = true
	airport := hotelCoords
	dc.Resources.ReturnFlight = &trip.Flight{
		Carrier: "OS", Number: "102",
		FromAirport: "FCO", ToAirport: "VIE",
		Departure: date.Add(18 * time.Hour), Arrival: date.Add(20 * time.Hour),
		Price: 110, FromCoords: &airport,
	}
	dc.Resources.Lodging = &trip.Accommodation{Name: "Hotel Aurora", Coords: &hotelCoords, CheckOutTime: "11:00"}
	dc.Resources.Parking = &trip.ParkingOption{Name: "P3 Long Stay", DailyRate: 18}

	h := newTestHandler()

	// The constraint probe must not disturb the allocator.
	deadline := h.ReturnConstraints(dc)
	require.Equal(t, date.Add(15*time.Hour+50*time.Minute), deadline)
	require.Empty(t, dc.Day.Items)
	require.Equal(t, date.Add(9*time.Hour), dc.Alloc.Cursor())

	carry := h.PlaceReturn(context.Background(), dc)
	require.Nil(t, carry)

	require.Equal(t, []trip.ItemType{
		trip.ItemCheckOut, trip.ItemTransport, trip.ItemCheckIn,
		trip.ItemFlight, trip.ItemParking,
	}, itemTypes(dc.Day))

	checkout := dc.Day.Items[0]
	require.Equal(t, "10:30", checkout.StartClock)
	require.Equal(t, "11:00", checkout.EndClock)

	transfer := dc.Day.Items[1]
	require.Equal(t, "15:50", transfer.StartClock)
	require.Equal(t, "16:00", transfer.EndClock)

	flight := dc.Day.Items[3]
	require.Equal(t, "Flight OS102 FCO → VIE", flight.Title)
	require.Equal(t, 220.0, flight.Cost)

	pickup := dc.Day.Items[4]
	require.Equal(t, "20:00", pickup.StartClock)
	require.Equal(t, "20:15", pickup.EndClock)
}

func TestPlaceReturn_OvernightReturnsHomeboundCarryover(t *testing.T) {
	date := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 5, date, date.Add(9*time.Hour), date.Add(25*time.Hour))
	dc.Resources.ReturnFlight = &trip.Flight{
		FromAirport: "BKK", ToAirport: "VIE",
		Departure: date.Add(22*time.Hour + 30*time.Minute), Arrival: date.Add(25 * time.Hour),
	}
	dc.Resources.Parking = &trip.ParkingOption{Name: "P3 Long Stay", DailyRate: 18}

	carry := newTestHandler().PlaceReturn(context.Background(), dc)

	require.NotNil(t, carry)
	require.True(t, carry.Homebound)
	require.Equal(t, date.Add(25*time.Hour), carry.ArrivalTime)
	// The pickup belongs to the next day, not this one.
	for _, item := range dc.Day.Items {
		require.NotEqual(t, trip.ItemParking, item.Type)
	}
}

func TestReturnConstraints_NoLegLeavesDayOpen(t *testing.T) {
	date := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 5, date, date.Add(9*time.Hour), date.Add(22*time.Hour))

	deadline := newTestHandler().ReturnConstraints(dc)
	require.Equal(t, dc.Alloc.DayEnd(), deadline)
}

func TestHasReturnLeg_CoversGroundTransport(t *testing.T) {
	h := newTestHandler()
	require.False(t, h.HasReturnLeg(&trip.Resources{}))
	require.True(t, h.HasReturnLeg(&trip.Resources{
		ReturnTransport: &trip.TransportOption{Mode: "train", From: "Roma Termini", To: "Wien Hbf"},
	}))
}

func TestSynthesizeReturnItem_RebuildsLegFromRecord(t *testing.T) {
	date := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	dc := logisticsFixture(t, 5, date, date.Add(9*time.Hour), date.Add(22*time.Hour))
	dc.Resources.ReturnFlight = &trip.Flight{
		Carrier: "OS", Number: "102", FromAirport: "FCO", ToAirport: "VIE",
		Departure: date.Add(18 * time.Hour), Arrival: date.Add(20 * time.Hour),
	}

	item := newTestHandler().SynthesizeReturnItem(dc)

	require.NotNil(t, item)
	require.Equal(t, "repair-5", item.ID)
	require.Equal(t, trip.ItemFlight, item.Type)
	require.Equal(t, date.Add(18*time.Hour), item.Start)
	require.Equal(t, date.Add(20*time.Hour), item.End)
	require.Equal(t, "18:00", item.StartClock)
}
