package trip

import (
	"time"

	"github.com/voyora/tripweaver/pkg/util"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BudgetTier buckets travelers by spending appetite. It keys the meal price
// table and the default activity allowance.
type BudgetTier string

const (
	TierBudget   BudgetTier = "budget"
	TierModerate BudgetTier = "moderate"
	TierLuxury   BudgetTier = "luxury"
)

// Reliability tags where a candidate's data came from.
type Reliability string

const (
	ReliabilityVerified  Reliability = "verified"
	ReliabilityEstimated Reliability = "estimated"
	ReliabilityGenerated Reliability = "generated"
)

// Preferences is the immutable trip input supplied by the caller.
type Preferences struct {
	Origin       string       `json:"origin"`
	Destination  string       `json:"destination"`
	OriginCoords *Coordinates `json:"originCoords,omitempty"`
	CityCenter   *Coordinates `json:"cityCenter,omitempty"`
	StartDate    time.Time    `json:"startDate"`
	DurationDays int          `json:"durationDays"`
	PartySize    int          `json:"partySize"`
	BudgetTier   BudgetTier   `json:"budgetTier"`
	TotalBudget  float64      `json:"totalBudget"`
	Interests    []string     `json:"interests,omitempty"`
	MustInclude  []string     `json:"mustInclude,omitempty"`
	Dietary      []string     `json:"dietary,omitempty"`
}

// Attraction is a pre-ranked sightseeing candidate supplied by an external
// finder. Consumed read-only after one normalization pass.
type Attraction struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Coords          *Coordinates `json:"coordinates,omitempty"`
	DurationMinutes int          `json:"durationMinutes"`
	Cost            float64      `json:"estimatedCost"`
	Rating          float64      `json:"rating"`
	OpenTime        string       `json:"openTime"`
	CloseTime       string       `json:"closeTime"`
	MustSee         bool         `json:"mustSee"`
	Reliability     Reliability  `json:"reliability"`
}

// Restaurant is a dining candidate.
type Restaurant struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Coords    *Coordinates `json:"coordinates,omitempty"`
	Cuisine   string       `json:"cuisine,omitempty"`
	PriceTier int          `json:"priceTier"`
	Rating    float64      `json:"rating"`
}

// Flight is one flight leg with local departure/arrival times.
type Flight struct {
	ID          string       `json:"id"`
	Carrier     string       `json:"carrier"`
	Number      string       `json:"number"`
	FromAirport string       `json:"fromAirport"`
	ToAirport   string       `json:"toAirport"`
	Departure   time.Time    `json:"departure"`
	Arrival     time.Time    `json:"arrival"`
	Price       float64      `json:"price"`
	FromCoords  *Coordinates `json:"fromCoords,omitempty"`
	ToCoords    *Coordinates `json:"toCoords,omitempty"`
}

// Overnight reports whether the leg lands on a later calendar date than it
// departs, which defers arrival logistics to the next day.
func (f *Flight) Overnight() bool {
	if f == nil {
		return false
	}
	return !util.SameDate(f.Departure, f.Arrival) && f.Arrival.After(f.Departure)
}

// TransportOption is a ground leg (train, bus, rental car).
type TransportOption struct {
	ID         string       `json:"id"`
	Mode       string       `json:"mode"`
	From       string       `json:"from"`
	To         string       `json:"to"`
	Departure  time.Time    `json:"departure"`
	Arrival    time.Time    `json:"arrival"`
	Price      float64      `json:"price"`
	FromCoords *Coordinates `json:"fromCoords,omitempty"`
	ToCoords   *Coordinates `json:"toCoords,omitempty"`
}

// Accommodation is the lodging booked for the whole stay.
type Accommodation struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Kind              string       `json:"kind"`
	Coords            *Coordinates `json:"coordinates,omitempty"`
	PricePerNight     float64      `json:"pricePerNight"`
	CheckInTime       string       `json:"checkInTime"`
	CheckOutTime      string       `json:"checkOutTime"`
	BreakfastIncluded bool         `json:"breakfastIncluded"`
	HasKitchen        bool         `json:"hasKitchen"`
	Rating            float64      `json:"rating"`
}

// ParkingOption is long-stay parking at the origin terminal.
type ParkingOption struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Coords    *Coordinates `json:"coordinates,omitempty"`
	DailyRate float64      `json:"dailyRate"`
}

// LuggageStorage is a paid locker or drop point near the destination.
type LuggageStorage struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Coords     *Coordinates `json:"coordinates,omitempty"`
	HourlyRate float64      `json:"hourlyRate"`
}

// GroceryStore supports the self-catering meal strategy.
type GroceryStore struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Coords *Coordinates `json:"coordinates,omitempty"`
}

// Resources bundles the pre-ranked candidate lists handed to the engine. All
// lists are read-only after Normalize.
type Resources struct {
	Attractions       []Attraction     `json:"attractions"`
	Restaurants       []Restaurant     `json:"restaurants"`
	OutboundFlight    *Flight          `json:"outboundFlight,omitempty"`
	ReturnFlight      *Flight          `json:"returnFlight,omitempty"`
	OutboundTransport *TransportOption `json:"outboundTransport,omitempty"`
	ReturnTransport   *TransportOption `json:"returnTransport,omitempty"`
	Lodging           *Accommodation   `json:"lodging,omitempty"`
	Parking           *ParkingOption   `json:"parking,omitempty"`
	LuggageStorages   []LuggageStorage `json:"luggageStorages,omitempty"`
	GroceryStores     []GroceryStore   `json:"groceryStores,omitempty"`
}

// MealType identifies one of the three daily meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// MealKey addresses one meal slot of one day in the prefetched resolution map.
type MealKey struct {
	Day  int
	Meal MealType
}
