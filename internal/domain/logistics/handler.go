package logistics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/voyora/tripweaver/internal/domain/budget"
	"github.com/voyora/tripweaver/internal/domain/trip"
	"github.com/voyora/tripweaver/pkg/geo"
	"github.com/voyora/tripweaver/pkg/util"
)

// Handler is the arrival/departure/overnight state machine. Every leg uses
// fixed-time insertion because travel logistics pin to real-world clocks; a
// leg that cannot be placed shrinks the activity window instead of failing
// the day.
type Handler struct {
	cfg    Config
	logger *slog.Logger
}

// NewHandler wires the logistics handler.
func NewHandler(cfg Config, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, logger: logger.With("component", "logistics")}
}

// PlaceDeparture places the origin-side departure items for the trip's first
// day: optional parking drop, origin-terminal transfer, terminal check-in,
// and the leg itself. When the leg lands on a later calendar date it returns
// a Carryover and the day hosts no further items.
func (h *Handler) PlaceDeparture(ctx context.Context, dc *trip.DayContext) *Carryover {
	leg := outboundLeg(dc.Resources, h.cfg)
	if leg == nil {
		return nil
	}

	terminalArrival := leg.departure.Add(-leg.buffer)
	transferEnd := terminalArrival
	if dc.Resources.Parking != nil {
		transferEnd = terminalArrival.Add(-time.Duration(h.cfg.ParkingMinutes) * time.Minute)
	}

	transferDur, transferCost := h.transfer(dc.Prefs.OriginCoords, leg.fromCoords)
	h.insertTransfer(dc, transferEnd.Add(-transferDur), transferEnd, "Transfer to "+leg.fromName, transferCost, leg.fromCoords)

	if parking := dc.Resources.Parking; parking != nil {
		if slot, ok := dc.Alloc.InsertFixedItem(transferEnd, terminalArrival); ok {
			item := trip.NewItem(dc.Day.Number, trip.ItemParking, "Park at "+parking.Name, slot)
			item.Coords = parking.Coords
			item.Cost = parking.DailyRate * float64(dc.Prefs.DurationDays)
			dc.Place(item)
		}
	}

	if slot, ok := dc.Alloc.InsertFixedItem(terminalArrival, leg.departure); ok {
		item := trip.NewItem(dc.Day.Number, trip.ItemCheckIn, "Check-in at "+leg.fromName, slot)
		item.Coords = leg.fromCoords
		dc.Place(item)
	}

	h.insertLeg(dc, leg)
	dc.Alloc.AdvanceTo(leg.arrival)

	if leg.overnight() {
		h.logger.Info("outbound leg is overnight, deferring arrival logistics",
			"departure", leg.departure, "arrival", leg.arrival)
		return &Carryover{
			ArrivalTime:   leg.arrival,
			ArrivalName:   leg.toName,
			ArrivalCoords: leg.toCoords,
			Lodging:       dc.Resources.Lodging,
		}
	}

	h.placeArrivalSide(dc, leg.arrival, leg.toName, leg.toCoords)
	return nil
}

// ConsumeCarryover spends a previous day's deferred arrival before anything
// else is planned for the day. A homebound carryover only places the
// origin-side pickup.
func (h *Handler) ConsumeCarryover(ctx context.Context, dc *trip.DayContext, co *Carryover) {
	if co == nil {
		return
	}
	if co.Homebound {
		h.placeParkingPickup(dc, co.ArrivalTime)
		return
	}
	h.placeArrivalSide(dc, co.ArrivalTime, co.ArrivalName, co.ArrivalCoords)
}

// PlaceReturn places the destination-side departure items for the last day:
// checkout timed against the transfer, hotel-terminal transfer, terminal
// check-in, the return leg, and (same-day arrival only) the parking pickup.
func (h *Handler) PlaceReturn(ctx context.Context, dc *trip.DayContext) *Carryover {
	leg := homeboundLeg(dc.Resources, h.cfg)
	if leg == nil {
		return nil
	}

	terminalArrival := leg.departure.Add(-leg.buffer)
	var lodgingCoords *trip.Coordinates
	if dc.Resources.Lodging != nil {
		lodgingCoords = dc.Resources.Lodging.Coords
	}
	transferDur, transferCost := h.transfer(lodgingCoords, leg.fromCoords)
	transferStart := terminalArrival.Add(-transferDur)

	if lodging := dc.Resources.Lodging; lodging != nil {
		checkoutEnd := transferStart
		if posted := h.clockOn(dc.Day.Date, lodging.CheckOutTime, "11:00"); posted.Before(checkoutEnd) {
			checkoutEnd = posted
		}
		checkoutStart := checkoutEnd.Add(-time.Duration(h.cfg.CheckOutMinutes) * time.Minute)
		if slot, ok := dc.Alloc.InsertFixedItem(checkoutStart, checkoutEnd); ok {
			item := trip.NewItem(dc.Day.Number, trip.ItemCheckOut, "Check out of "+lodging.Name, slot)
			item.Coords = lodging.Coords
			dc.Place(item)
		} else {
			h.logger.Warn("checkout could not be placed, window shrinks", "day", dc.Day.Number)
		}
	}

	h.insertTransfer(dc, transferStart, terminalArrival, "Transfer to "+leg.fromName, transferCost, leg.fromCoords)

	if slot, ok := dc.Alloc.InsertFixedItem(terminalArrival, leg.departure); ok {
		item := trip.NewItem(dc.Day.Number, trip.ItemCheckIn, "Check-in at "+leg.fromName, slot)
		item.Coords = leg.fromCoords
		dc.Place(item)
	}

	h.insertLeg(dc, leg)
	dc.Alloc.AdvanceTo(leg.arrival)

	if leg.overnight() {
		h.logger.Info("return leg is overnight, deferring origin arrival",
			"departure", leg.departure, "arrival", leg.arrival)
		return &Carryover{
			ArrivalTime:   leg.arrival,
			ArrivalName:   leg.toName,
			ArrivalCoords: leg.toCoords,
			Homebound:     true,
		}
	}

	h.placeParkingPickup(dc, leg.arrival)
	return nil
}

// ReturnConstraints computes the latest permissible activity end on the
// departure day without mutating the allocator, so the orchestrator can
// pre-shrink the usable window.
func (h *Handler) ReturnConstraints(dc *trip.DayContext) time.Time {
	leg := homeboundLeg(dc.Resources, h.cfg)
	if leg == nil {
		return dc.Alloc.DayEnd()
	}
	terminalArrival := leg.departure.Add(-leg.buffer)
	var lodgingCoords *trip.Coordinates
	if dc.Resources.Lodging != nil {
		lodgingCoords = dc.Resources.Lodging.Coords
	}
	transferDur, _ := h.transfer(lodgingCoords, leg.fromCoords)
	latest := terminalArrival.Add(-transferDur)
	if latest.After(dc.Alloc.DayEnd()) {
		return dc.Alloc.DayEnd()
	}
	return latest
}

// HasReturnLeg reports whether the resources include a homebound leg at all.
func (h *Handler) HasReturnLeg(res *trip.Resources) bool {
	return homeboundLeg(res, h.cfg) != nil
}

// SynthesizeReturnItem rebuilds the return leg item directly from the known
// record. The orchestrator force-appends it when the last day is missing its
// mandatory leg.
func (h *Handler) SynthesizeReturnItem(dc *trip.DayContext) *trip.Item {
	leg := homeboundLeg(dc.Resources, h.cfg)
	if leg == nil {
		return nil
	}
	item := trip.Item{
		ID:         fmt.Sprintf("repair-%d", dc.Day.Number),
		Day:        dc.Day.Number,
		Start:      leg.departure,
		End:        leg.arrival,
		StartClock: util.Clock(leg.departure),
		EndClock:   util.Clock(leg.arrival),
		Type:       leg.itemType,
		Title:      leg.title,
		Coords:     leg.fromCoords,
	}
	return &item
}

// placeArrivalSide inserts the destination-terminal transfer and the
// check-in variant: full, early (<2h before posted check-in), or luggage
// drop plus later full check-in (>2h early). Night arrivals check in
// immediately. Advances the cursor to where activities may begin.
func (h *Handler) placeArrivalSide(dc *trip.DayContext, arrival time.Time, fromName string, fromCoords *trip.Coordinates) {
	lodging := dc.Resources.Lodging
	if lodging == nil {
		dc.Alloc.AdvanceTo(arrival)
		return
	}

	transferDur, transferCost := h.transfer(fromCoords, lodging.Coords)
	hotelArrive := arrival.Add(transferDur)
	h.insertTransfer(dc, arrival, hotelArrive, "Transfer to "+lodging.Name, transferCost, lodging.Coords)

	checkInAt := h.clockOn(dc.Day.Date, lodging.CheckInTime, "15:00")
	early := checkInAt.Sub(hotelArrive)
	checkInDur := time.Duration(h.cfg.CheckInMinutes) * time.Minute

	switch {
	case hotelArrive.Hour() < h.cfg.NightArrivalHour || early <= 0:
		h.insertCheckIn(dc, hotelArrive, hotelArrive.Add(checkInDur), "Check in at "+lodging.Name, lodging, false)
	case early <= time.Duration(h.cfg.EarlyCheckInHours)*time.Hour:
		h.insertCheckIn(dc, hotelArrive, hotelArrive.Add(checkInDur), "Early check-in at "+lodging.Name, lodging, false)
	default:
		h.placeLuggageDrop(dc, hotelArrive, checkInAt, lodging)
	}
}

// placeLuggageDrop pairs a luggage drop with the later full check-in so the
// hours in between stay usable for activities.
func (h *Handler) placeLuggageDrop(dc *trip.DayContext, at, checkInAt time.Time, lodging *trip.Accommodation) {
	dropDur := time.Duration(h.cfg.LuggageDropMinutes) * time.Minute
	title := "Luggage drop at " + lodging.Name
	coords := lodging.Coords
	var cost float64

	if storages := dc.Resources.LuggageStorages; len(storages) > 0 {
		storage := storages[0]
		title = "Luggage drop at " + storage.Name
		coords = storage.Coords
		hours := math.Ceil(checkInAt.Sub(at).Hours())
		if hours < 1 {
			hours = 1
		}
		cost = storage.HourlyRate * hours
	}

	if slot, ok := dc.Alloc.InsertFixedItem(at, at.Add(dropDur)); ok {
		item := trip.NewItem(dc.Day.Number, trip.ItemHotel, title, slot)
		item.Coords = coords
		item.Cost = cost
		item.Paired = true
		if cost > 0 && !dc.Budget.Spend(budget.CategoryOther, cost) {
			item.Cost = 0
		}
		dc.Place(item)
		dc.Alloc.AdvanceTo(slot.End)
	} else {
		dc.Alloc.AdvanceTo(at)
	}

	checkInDur := time.Duration(h.cfg.CheckInMinutes) * time.Minute
	if slot, ok := dc.Alloc.InsertFixedItem(checkInAt, checkInAt.Add(checkInDur)); ok {
		item := trip.NewItem(dc.Day.Number, trip.ItemCheckIn, "Check in at "+lodging.Name, slot)
		item.Coords = lodging.Coords
		item.Paired = true
		dc.Place(item)
	}
}

func (h *Handler) insertCheckIn(dc *trip.DayContext, start, end time.Time, title string, lodging *trip.Accommodation, paired bool) {
	slot, ok := dc.Alloc.InsertFixedItem(start, end)
	if !ok {
		h.logger.Warn("check-in could not be placed, window shrinks", "day", dc.Day.Number)
		dc.Alloc.AdvanceTo(start)
		return
	}
	item := trip.NewItem(dc.Day.Number, trip.ItemCheckIn, title, slot)
	item.Coords = lodging.Coords
	item.Paired = paired
	dc.Place(item)
	dc.Alloc.AdvanceTo(slot.End)
}

func (h *Handler) insertTransfer(dc *trip.DayContext, start, end time.Time, title string, cost float64, destCoords *trip.Coordinates) {
	slot, ok := dc.Alloc.InsertFixedItem(start, end)
	if !ok {
		h.logger.Warn("transfer could not be placed, window shrinks", "day", dc.Day.Number, "title", title)
		return
	}
	item := trip.NewItem(dc.Day.Number, trip.ItemTransport, title, slot)
	item.Coords = destCoords
	item.Cost = cost
	if cost > 0 && !dc.Budget.Spend(budget.CategoryTransport, cost) {
		h.logger.Warn("transfer exceeds transport ceiling, placed without debit", "title", title, "cost", cost)
	}
	dc.Place(item)
}

func (h *Handler) insertLeg(dc *trip.DayContext, leg *leg) {
	slot, ok := dc.Alloc.InsertFixedItem(leg.departure, leg.arrival)
	if !ok {
		h.logger.Error("travel leg could not be placed", "day", dc.Day.Number, "title", leg.title)
		return
	}
	item := trip.NewItem(dc.Day.Number, leg.itemType, leg.title, slot)
	item.Coords = leg.fromCoords
	item.Cost = leg.price * float64(dc.Prefs.PartySize)
	dc.Place(item)
}

func (h *Handler) placeParkingPickup(dc *trip.DayContext, at time.Time) {
	parking := dc.Resources.Parking
	if parking == nil {
		return
	}
	dur := time.Duration(h.cfg.ParkingMinutes) * time.Minute
	if slot, ok := dc.Alloc.InsertFixedItem(at, at.Add(dur)); ok {
		item := trip.NewItem(dc.Day.Number, trip.ItemParking, "Pick up car at "+parking.Name, slot)
		item.Coords = parking.Coords
		dc.Place(item)
		dc.Alloc.AdvanceTo(slot.End)
	}
}

// transfer derives duration and cost of a ground transfer from real
// great-circle distance. Unknown positions fall back to defaults rather than
// a fabricated location.
func (h *Handler) transfer(from, to *trip.Coordinates) (time.Duration, float64) {
	if from == nil || to == nil {
		return time.Duration(h.cfg.DefaultTransferMinutes) * time.Minute, h.cfg.DefaultTransferCost
	}
	km := geo.DistanceKm(from.Lat, from.Lng, to.Lat, to.Lng)
	minutes := int(km / h.cfg.TransferSpeedKmh * 60)
	if minutes < h.cfg.MinTransferMinutes {
		minutes = h.cfg.MinTransferMinutes
	}
	cost := math.Round(km * h.cfg.TransferRatePerKm)
	return time.Duration(minutes) * time.Minute, cost
}

func (h *Handler) clockOn(date time.Time, clock, fallback string) time.Time {
	minutes, err := util.ParseClock(clock)
	if err != nil {
		minutes, _ = util.ParseClock(fallback)
	}
	return util.AtClock(date, minutes)
}
