package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripforge/schema"
)

func TestFallbackSummaryEmpty(t *testing.T) {
	text := FallbackSummary(SearchAggregate{}, schema.BudgetResult{})
	assert.Contains(t, text, "No flights were found")
}

func TestFallbackSummaryBestOption(t *testing.T) {
	agg := SearchAggregate{
		RouteCombinations: 4,
		Flights: []RankedFlight{{
			FlightOption: schema.FlightOption{Carrier: "United Airlines", PriceUSD: 712, Stops: 0},
			Route:        "SFO → PVG",
		}},
		TotalResults: 1,
	}
	budget := schema.BudgetResult{Status: schema.StatusOverBudget, OverUnderUSD: -230}

	text := FallbackSummary(agg, budget)
	assert.Contains(t, text, "SFO → PVG")
	assert.Contains(t, text, "$712")
	assert.Contains(t, text, "4 route combinations")
	assert.Contains(t, text, "exceeds the budget by $230")
}

func TestSummarizeSearchWithoutKey(t *testing.T) {
	c := NewAIClient("", "")
	_, err := c.SummarizeSearch(SearchAggregate{}, schema.BudgetResult{})
	assert.Error(t, err)
}
