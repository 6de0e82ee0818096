package trip

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/voyora/tripweaver/internal/domain/schedule"
	"github.com/voyora/tripweaver/pkg/metrics"
	"github.com/voyora/tripweaver/pkg/util"
)

// ItemType tags the atomic schedulable unit.
type ItemType string

const (
	ItemFlight     ItemType = "flight"
	ItemTransport  ItemType = "transport"
	ItemCheckIn    ItemType = "checkin"
	ItemCheckOut   ItemType = "checkout"
	ItemHotel      ItemType = "hotel"
	ItemParking    ItemType = "parking"
	ItemActivity   ItemType = "activity"
	ItemRestaurant ItemType = "restaurant"
)

// Item is one scheduled unit of the itinerary. Within a day, items are kept
// in non-decreasing start order with dense order indices 0..n-1.
type Item struct {
	ID          string       `json:"id"`
	Day         int          `json:"day"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	StartClock  string       `json:"startTime"`
	EndClock    string       `json:"endTime"`
	Type        ItemType     `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Coords      *Coordinates `json:"coordinates,omitempty"`
	Cost        float64      `json:"estimatedCost"`
	Order       int          `json:"order"`

	// SourceID links back to the candidate that produced the item, used for
	// trip-wide deduplication. Paired marks items (luggage drop + pickup)
	// exempt from the per-day overlap invariant.
	SourceID string `json:"-"`
	Paired   bool   `json:"-"`
}

// NewItem builds an item over a placed slot with rendered clock times.
func NewItem(day int, typ ItemType, title string, slot schedule.Slot) Item {
	return Item{
		ID:         uuid.NewString(),
		Day:        day,
		Start:      slot.Start,
		End:        slot.End,
		StartClock: util.Clock(slot.Start),
		EndClock:   util.Clock(slot.End),
		Type:       typ,
		Title:      title,
	}
}

// Day is one ordered sequence of items on a date.
type Day struct {
	Number int       `json:"day"`
	Date   time.Time `json:"date"`
	Theme  string    `json:"theme,omitempty"`
	Items  []Item    `json:"items"`
}

// SortItems re-sorts the day by start time and reassigns dense order indices.
func (d *Day) SortItems() {
	sort.SliceStable(d.Items, func(i, j int) bool {
		return d.Items[i].Start.Before(d.Items[j].Start)
	})
	for i := range d.Items {
		d.Items[i].Order = i
	}
}

// Itinerary is the engine's final output: ordered days, a per-category cost
// breakdown, and the oracle cost accounting.
type Itinerary struct {
	Destination string              `json:"destination"`
	Days        []Day               `json:"days"`
	Costs       map[string]float64  `json:"costs"`
	Oracle      metrics.OracleUsage `json:"oracleUsage"`
}
