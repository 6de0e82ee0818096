package logistics

import (
	"fmt"
	"time"

	"github.com/voyora/tripweaver/internal/domain/trip"
)

// Config carries the logistics timing constants.
type Config struct {
	AirportBufferMinutes   int
	StationBufferMinutes   int
	CheckInMinutes         int
	CheckOutMinutes        int
	LuggageDropMinutes     int
	ParkingMinutes         int
	TransferSpeedKmh       float64
	TransferRatePerKm      float64
	MinTransferMinutes     int
	DefaultTransferMinutes int
	DefaultTransferCost    float64
	EarlyCheckInHours      int
	NightArrivalHour       int
}

// DefaultConfig returns the constants the engine ships with.
func DefaultConfig() Config {
	return Config{
		AirportBufferMinutes:   120,
		StationBufferMinutes:   45,
		CheckInMinutes:         30,
		CheckOutMinutes:        30,
		LuggageDropMinutes:     20,
		ParkingMinutes:         15,
		TransferSpeedKmh:       40,
		TransferRatePerKm:      1.8,
		MinTransferMinutes:     10,
		DefaultTransferMinutes: 30,
		DefaultTransferCost:    25,
		EarlyCheckInHours:      2,
		NightArrivalHour:       6,
	}
}

// Carryover is the deferred arrival state produced when a leg lands on a
// later calendar date than it departed. It is consumed exactly once, at the
// start of the following day, before any other planning.
type Carryover struct {
	ArrivalTime   time.Time
	ArrivalName   string
	ArrivalCoords *trip.Coordinates
	Lodging       *trip.Accommodation

	// Homebound marks the return leg's carryover: the next day only places
	// arrival-side logistics at the origin (parking pickup), never lodging.
	Homebound bool
}

// leg abstracts an outbound or return journey over flight vs ground
// transport, so the state machine places both the same way.
type leg struct {
	itemType   trip.ItemType
	title      string
	departure  time.Time
	arrival    time.Time
	fromName   string
	toName     string
	fromCoords *trip.Coordinates
	toCoords   *trip.Coordinates
	price      float64
	buffer     time.Duration
}

func (l *leg) overnight() bool {
	ay, am, ad := l.departure.Date()
	by, bm, bd := l.arrival.Date()
	return (ay != by || am != bm || ad != bd) && l.arrival.After(l.departure)
}

func outboundLeg(res *trip.Resources, cfg Config) *leg {
	if f := res.OutboundFlight; f != nil {
		return flightLeg(f, cfg)
	}
	if t := res.OutboundTransport; t != nil {
		return transportLeg(t, cfg)
	}
	return nil
}

func homeboundLeg(res *trip.Resources, cfg Config) *leg {
	if f := res.ReturnFlight; f != nil {
		return flightLeg(f, cfg)
	}
	if t := res.ReturnTransport; t != nil {
		return transportLeg(t, cfg)
	}
	return nil
}

func flightLeg(f *trip.Flight, cfg Config) *leg {
	return &leg{
		itemType:   trip.ItemFlight,
		title:      fmt.Sprintf("Flight %s %s → %s", flightNumber(f), f.FromAirport, f.ToAirport),
		departure:  f.Departure,
		arrival:    f.Arrival,
		fromName:   f.FromAirport,
		toName:     f.ToAirport,
		fromCoords: f.FromCoords,
		toCoords:   f.ToCoords,
		price:      f.Price,
		buffer:     time.Duration(cfg.AirportBufferMinutes) * time.Minute,
	}
}

func transportLeg(t *trip.TransportOption, cfg Config) *leg {
	return &leg{
		itemType:   trip.ItemTransport,
		title:      fmt.Sprintf("%s %s → %s", transportLabel(t.Mode), t.From, t.To),
		departure:  t.Departure,
		arrival:    t.Arrival,
		fromName:   t.From,
		toName:     t.To,
		fromCoords: t.FromCoords,
		toCoords:   t.ToCoords,
		price:      t.Price,
		buffer:     time.Duration(cfg.StationBufferMinutes) * time.Minute,
	}
}

func flightNumber(f *trip.Flight) string {
	if f.Carrier == "" && f.Number == "" {
		return f.ID
	}
	return f.Carrier + f.Number
}

func transportLabel(mode string) string {
	switch mode {
	case "train":
		return "Train"
	case "bus":
		return "Bus"
	case "car":
		return "Drive"
	default:
		return "Transport"
	}
}
