package meals

import "github.com/voyora/tripweaver/internal/domain/trip"

// selfCateringAllowed decides, per day and meal, whether cooking at the
// lodging is on the table. Requirements: the lodging has a kitchen, a grocery
// run already happened, and the day-parity alternation keeps the trip from
// being entirely home-cooked. The budget tier widens eligibility: budget
// travelers also self-cater lunches on even days.
func selfCateringAllowed(cfg Config, dc *trip.DayContext, meal trip.MealType) bool {
	lodging := dc.Resources.Lodging
	if lodging == nil || !lodging.HasKitchen {
		return false
	}
	if !dc.Groceries {
		return false
	}
	even := dc.Day.Number%2 == 0
	switch meal {
	case trip.MealBreakfast:
		return true
	case trip.MealDinner:
		return even
	case trip.MealLunch:
		return even && dc.Prefs.BudgetTier == trip.TierBudget
	default:
		return false
	}
}
