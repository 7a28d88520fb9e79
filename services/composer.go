package services

import (
	"github.com/google/uuid"

	"tripforge/schema"
)

// ComposeOptions are the caller-controlled knobs of itinerary assembly.
// Confidence judgement belongs to the ranking collaborator; the composer
// only applies an explicit override.
type ComposeOptions struct {
	ContingencyUSD float64
	Tradeoffs      []string
	Confidence     schema.Confidence
}

// ComposeItinerary assembles one selected flight, one hotel, the chosen
// activities and the caller's day-by-day plan into a terminal candidate.
// Totals are summed per category; confidence defaults to medium.
func ComposeItinerary(flight schema.FlightOption, hotel schema.HotelOption, activities []schema.ActivityOption, daily []schema.DailyPlan, opts ComposeOptions) schema.ItineraryCandidate {
	var activityTotal float64
	for _, a := range activities {
		activityTotal += a.PriceUSD
	}

	totals := map[string]float64{
		"flights":     flight.PriceUSD,
		"lodging":     hotel.PriceTotalUSD,
		"daily":       activityTotal,
		"contingency": opts.ContingencyUSD,
	}
	totals["tee"] = totals["flights"] + totals["lodging"] + totals["daily"] + totals["contingency"]

	confidence := opts.Confidence
	if confidence == "" {
		confidence = schema.ConfidenceMedium
	}

	return schema.ItineraryCandidate{
		ID:         uuid.New().String(),
		Flight:     flight,
		Hotel:      hotel,
		Activities: activities,
		Daily:      daily,
		TotalsUSD:  totals,
		Tradeoffs:  opts.Tradeoffs,
		Confidence: confidence,
	}
}
