package services

import (
	"strings"
	"time"

	"tripforge/schema"
)

// Surplus thresholds for the budget status classification, in USD.
const (
	underBudgetSurplus = 500.0
	criticalShortfall  = -500.0
)

// budgetCategories is the fixed iteration order for the breakdown so the
// report is deterministic.
var budgetCategories = []string{
	"flights",
	"hotels",
	"transportation",
	"food",
	"activities",
	"shopping",
	"misc",
	"other",
}

// TripPlan is the budget aggregator's input: the party, the window and
// the planned components.
type TripPlan struct {
	TripID      string                 `json:"trip_id"`
	Destination string                 `json:"destination"`
	Window      schema.TripWindow      `json:"window"`
	Travelers   schema.Traveler        `json:"travelers"`
	Components  []schema.TripComponent `json:"components"`
	TotalBudget float64                `json:"total_budget"`
}

// DailyRate is one per-person-per-day spend estimate.
type DailyRate struct {
	Category        string  `json:"category"`
	PerPersonPerDay float64 `json:"per_person_per_day"`
}

// CalculateBudget buckets the plan's components by category, adds the
// daily estimates scaled by party size and nights, and classifies the
// overall surplus or shortfall.
//
// A category appears in the breakdown only when its total is strictly
// positive. The output is the raw report shape shared with external
// budget collaborators; schema.NormalizeBudget turns it into the
// canonical BudgetResult.
func CalculateBudget(plan TripPlan, rates []DailyRate) schema.RawBudgetReport {
	nights := plan.Window.Nights()
	party := plan.Travelers.Count()

	planned := make(map[string]float64)
	for _, c := range plan.Components {
		planned[strings.ToLower(string(c.Category))] += c.Cost
	}

	daily := make(map[string]float64, len(rates))
	for _, r := range rates {
		daily[strings.ToLower(r.Category)] = r.PerPersonPerDay * float64(party) * float64(nights)
	}

	var breakdown []schema.RawBudgetCategory
	for _, cat := range budgetCategories {
		p := planned[cat]
		d := daily[cat]
		total := p + d
		if total <= 0 {
			continue
		}
		line := schema.RawBudgetCategory{
			Category:           cat,
			PlannedCost:        ptr(p),
			EstimatedDailyCost: ptr(d),
			TotalCategoryCost:  ptr(total),
		}
		if plan.TotalBudget > 0 {
			line.PercentageOfBudget = ptr(total / plan.TotalBudget * 100)
		}
		breakdown = append(breakdown, line)
	}

	var totalPlanned float64
	for _, c := range plan.Components {
		totalPlanned += c.Cost
	}
	var totalEstimated float64
	for _, v := range daily {
		totalEstimated += v
	}
	surplus := plan.TotalBudget - (totalPlanned + totalEstimated)

	now := time.Now()
	return schema.RawBudgetReport{
		TripID:               plan.TripID,
		TotalPlannedCost:     ptr(totalPlanned),
		TotalEstimatedCost:   ptr(totalEstimated),
		TotalBudget:          ptr(plan.TotalBudget),
		SurplusShortfall:     ptr(surplus),
		BudgetStatus:         string(classifySurplus(surplus)),
		BreakdownByCategory:  breakdown,
		Currency:             schema.CurrencyUSD,
		CalculationTimestamp: &now,
	}
}

// classifySurplus applies the status boundaries in order; all boundaries
// are inclusive on the lower side of each band.
func classifySurplus(surplus float64) schema.BudgetStatus {
	switch {
	case surplus > underBudgetSurplus:
		return schema.StatusUnderBudget
	case surplus > 0:
		return schema.StatusOnBudget
	case surplus > criticalShortfall:
		return schema.StatusOverBudget
	default:
		return schema.StatusCritical
	}
}

func ptr[T any](v T) *T {
	return &v
}
