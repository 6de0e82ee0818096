package advisor

import "fmt"

// Fallback holds one closed-form procedure per question kind. It is the
// always-available implementation the oracle path degrades to, so every rule
// must resolve for any non-empty option list.
type Fallback struct{}

// Decide resolves a request deterministically.
func (Fallback) Decide(req Request) Response {
	switch req.Kind {
	case KindLateArrival:
		return lateArrivalRule(req)
	case KindGapFill:
		return gapFillRule(req)
	case KindOrdering:
		return pick(req.Options[0], "keeping the ranked order")
	case KindEnergy:
		return energyRule(req)
	case KindMealTiming:
		return mealTimingRule(req)
	default:
		return pick(req.Options[0], "unknown question, first option")
	}
}

// Under an hour of usable evening, heading to the hotel always wins when it
// is on the table.
func lateArrivalRule(req Request) Response {
	if req.AvailableMinutes < 60 {
		if opt, ok := byCategory(req.Options, CategoryHotel); ok {
			return pick(opt, fmt.Sprintf("only %d minutes left, go to the hotel", req.AvailableMinutes))
		}
	}
	return pick(req.Options[0], "enough time remains for the top-ranked option")
}

// Gap filling favors the option whose duration is closest to the available
// window, preferring one that actually fits on a tie.
func gapFillRule(req Request) Response {
	best := req.Options[0]
	bestScore := gapScore(best, req.AvailableMinutes)
	for _, opt := range req.Options[1:] {
		if score := gapScore(opt, req.AvailableMinutes); score < bestScore {
			best = opt
			bestScore = score
		}
	}
	return pick(best, fmt.Sprintf("duration closest to the %d minute gap", req.AvailableMinutes))
}

func gapScore(opt Option, available int) int {
	diff := available - opt.DurationMinutes
	if diff < 0 {
		// Overruns are worse than equally sized underruns.
		return -diff*2 + 1
	}
	return diff
}

func energyRule(req Request) Response {
	if req.Energy == "exhausted" {
		if opt, ok := byCategory(req.Options, CategoryEndDay); ok {
			return pick(opt, "party is exhausted, end the day")
		}
	}
	if opt, ok := byCategory(req.Options, CategoryContinue); ok {
		return pick(opt, "energy allows continuing")
	}
	return pick(req.Options[0], "no explicit continue option, keep ranking")
}

func mealTimingRule(req Request) Response {
	want := CategoryEatLater
	if timeBucket(req.TimeOfDay) == "midday" {
		want = CategoryEatNow
	}
	if opt, ok := byCategory(req.Options, want); ok {
		return pick(opt, "meal window relative to time of day")
	}
	return pick(req.Options[0], "no timing-tagged option offered")
}

func byCategory(options []Option, category string) (Option, bool) {
	for _, opt := range options {
		if opt.Category == category {
			return opt, true
		}
	}
	return Option{}, false
}

func pick(opt Option, rationale string) Response {
	return Response{
		OptionID:   opt.ID,
		Rationale:  rationale,
		Confidence: 0.6,
		Source:     "fallback",
	}
}
