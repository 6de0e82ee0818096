package advisor

import (
	"context"
	"time"

	"github.com/voyora/tripweaver/pkg/metrics"
)

// Kind enumerates the ambiguous scheduling questions the advisor can answer.
type Kind string

const (
	KindLateArrival Kind = "late_arrival"
	KindGapFill     Kind = "gap_fill"
	KindOrdering    Kind = "ordering"
	KindEnergy      Kind = "energy"
	KindMealTiming  Kind = "meal_timing"
)

// Option categories the fallback rules key on.
const (
	CategoryHotel    = "hotel"
	CategoryActivity = "activity"
	CategoryEndDay   = "end_day"
	CategoryContinue = "continue"
	CategoryEatNow   = "eat_now"
	CategoryEatLater = "eat_later"
)

// Option is one choice offered to the advisor.
type Option struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	Category        string `json:"category,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// Request is an ephemeral ambiguous-choice question with a compact state
// summary. It is never persisted.
type Request struct {
	Kind             Kind
	Summary          string
	Options          []Option
	Constraints      []string
	AvailableMinutes int
	TimeOfDay        time.Time
	Energy           string
}

// Response is the resolved choice.
type Response struct {
	OptionID   string  `json:"optionId"`
	Rationale  string  `json:"rationale"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Session answers questions for one trip generation. It is bounded by a
// per-trip oracle call cap and is optional for correctness: with no oracle
// configured every answer comes from the deterministic fallback rules.
type Session interface {
	Decide(ctx context.Context, req Request) (Response, error)
	// Enabled reports whether an oracle is configured at all; callers can
	// skip building a question when every answer would be deterministic
	// anyway.
	Enabled() bool
	Usage() metrics.OracleUsage
}

// Store caches oracle decisions keyed by (question kind, coarse time-of-day
// bucket, energy level).
type Store interface {
	Get(ctx context.Context, key string) (Response, bool, error)
	Save(ctx context.Context, key string, res Response, ttl time.Duration) error
}

// offered reports whether the chosen id is among the options.
func offered(req Request, optionID string) bool {
	for _, opt := range req.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// timeBucket coarsens a timestamp so operationally similar moments share a
// cache entry.
func timeBucket(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return "night"
	case h < 11:
		return "morning"
	case h < 15:
		return "midday"
	case h < 18:
		return "afternoon"
	case h < 22:
		return "evening"
	default:
		return "night"
	}
}
