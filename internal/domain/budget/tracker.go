package budget

// Category partitions trip spend for ceilings and reporting.
type Category string

const (
	CategoryFlights       Category = "flights"
	CategoryAccommodation Category = "accommodation"
	CategoryFood          Category = "food"
	CategoryActivities    Category = "activities"
	CategoryTransport     Category = "transport"
	CategoryParking       Category = "parking"
	CategoryOther         Category = "other"
)

// variableShares splits whatever remains after fixed costs across the
// variable categories.
var variableShares = map[Category]float64{
	CategoryFood:       0.45,
	CategoryActivities: 0.35,
	CategoryTransport:  0.15,
	CategoryOther:      0.05,
}

var fixedCategories = map[Category]bool{
	CategoryFlights:       true,
	CategoryAccommodation: true,
	CategoryParking:       true,
}

// Tracker is a per-category spend ledger against ceilings. It is a soft
// constraint: callers skip a purchase when declined, the tracker never
// cancels already-placed items.
type Tracker struct {
	total      float64
	partySize  int
	days       int
	committed  map[Category]float64
	ceilings   map[Category]float64
	rebalanced bool
}

// NewTracker builds a ledger over the trip's total budget. Variable ceilings
// start from an estimate of the remainder and are rebalanced once the fixed
// costs are known.
func NewTracker(total float64, partySize, days int) *Tracker {
	if partySize < 1 {
		partySize = 1
	}
	if days < 1 {
		days = 1
	}
	t := &Tracker{
		total:     total,
		partySize: partySize,
		days:      days,
		committed: make(map[Category]float64),
		ceilings:  make(map[Category]float64),
	}
	// Until fixed costs are committed, assume roughly half the budget stays
	// variable.
	for cat, share := range variableShares {
		t.ceilings[cat] = total * 0.5 * share
	}
	return t
}

// CommitFixed records an upfront cost (flights, accommodation nights,
// parking) and pins that category's ceiling to what was actually paid.
func (t *Tracker) CommitFixed(cat Category, amount float64) {
	if amount < 0 {
		amount = 0
	}
	t.committed[cat] += amount
	t.ceilings[cat] = t.committed[cat]
}

// Rebalance redistributes the delta between the budget and the committed
// fixed costs into the variable category ceilings. It runs at most once,
// after all fixed costs are known.
func (t *Tracker) Rebalance() {
	if t.rebalanced {
		return
	}
	t.rebalanced = true

	var fixed float64
	for cat := range fixedCategories {
		fixed += t.committed[cat]
	}
	remaining := t.total - fixed
	if remaining < 0 {
		remaining = 0
	}
	for cat, share := range variableShares {
		ceiling := remaining * share
		if ceiling < t.committed[cat] {
			ceiling = t.committed[cat]
		}
		t.ceilings[cat] = ceiling
	}
}

// CanAfford reports whether committing amount would stay within the
// category's ceiling.
func (t *Tracker) CanAfford(cat Category, amount float64) bool {
	if amount <= 0 {
		return true
	}
	return t.committed[cat]+amount <= t.ceilings[cat]+0.001
}

// Spend is the only mutator for variable categories. A declined spend leaves
// the ledger untouched; a refund can never drive the category negative.
func (t *Tracker) Spend(cat Category, amount float64) bool {
	if amount < 0 {
		t.committed[cat] += amount
		if t.committed[cat] < 0 {
			t.committed[cat] = 0
		}
		return true
	}
	if !t.CanAfford(cat, amount) {
		return false
	}
	t.committed[cat] += amount
	return true
}

// Committed returns the category's running total.
func (t *Tracker) Committed(cat Category) float64 {
	return t.committed[cat]
}

// Ceiling returns the category's current ceiling.
func (t *Tracker) Ceiling(cat Category) float64 {
	return t.ceilings[cat]
}

// Remaining reports the headroom left in a category.
func (t *Tracker) Remaining(cat Category) float64 {
	rem := t.ceilings[cat] - t.committed[cat]
	if rem < 0 {
		return 0
	}
	return rem
}

// DailyActivityAllowance is the per-day activities headroom used to pace
// placement across the trip.
func (t *Tracker) DailyActivityAllowance() float64 {
	return t.ceilings[CategoryActivities] / float64(t.days)
}

// Breakdown snapshots committed spend per category for the final report.
func (t *Tracker) Breakdown() map[string]float64 {
	out := make(map[string]float64, len(t.committed))
	for cat, amount := range t.committed {
		out[string(cat)] = amount
	}
	return out
}
